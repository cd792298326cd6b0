package chain

import (
	"context"
	"fmt"
	"math/big"

	"paywatch/internal/config"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Ledger is the read-only view of the upstream node the poller needs.
type Ledger interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	Logs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error)
}

type EthLedger struct {
	client   *ethclient.Client
	contract common.Address
}

func Init(config *config.Config) *EthLedger {
	url := config.Chain.RpcUrl + config.Chain.ApiKey
	return Connect(url, config.Chain.ContractAddress)
}

func Connect(url string, contract string) *EthLedger {
	client, err := ethclient.Dial(url)
	if err != nil {
		panic("Can't connect: " + err.Error())
	}

	_, err = client.ChainID(context.Background())
	if err != nil {
		panic("Can't connect: " + err.Error())
	}

	fmt.Println("chain: connected to", url)

	return &EthLedger{client: client, contract: common.HexToAddress(contract)}
}

func (l *EthLedger) CurrentHeight(ctx context.Context) (uint64, error) {
	return l.client.BlockNumber(ctx)
}

func (l *EthLedger) Logs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{l.contract},
	}
	return l.client.FilterLogs(ctx, query)
}

func (l *EthLedger) BlockTimestamp(ctx context.Context, blockNumber uint64) (int64, error) {
	header, err := l.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, err
	}
	return int64(header.Time), nil
}
