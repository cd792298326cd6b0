package chain

import (
	"math/big"
	"strings"

	"paywatch/internal/domain"
	"paywatch/internal/logger"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// settlement contract event vocabulary
const contractABI = `[
	{"type":"event","name":"MerchantRegistered","inputs":[{"name":"merchant","type":"address","indexed":true},{"name":"businessName","type":"string","indexed":false},{"name":"timestamp","type":"uint256","indexed":false}]},
	{"type":"event","name":"MerchantDeactivated","inputs":[{"name":"merchant","type":"address","indexed":true}]},
	{"type":"event","name":"MerchantReactivated","inputs":[{"name":"merchant","type":"address","indexed":true}]},
	{"type":"event","name":"PaymentIntentCreated","inputs":[{"name":"paymentId","type":"bytes32","indexed":true},{"name":"merchant","type":"address","indexed":true},{"name":"token","type":"address","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"expiry","type":"uint256","indexed":false}]},
	{"type":"event","name":"PaymentCompleted","inputs":[{"name":"paymentId","type":"bytes32","indexed":true},{"name":"payer","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"platformFee","type":"uint256","indexed":false}]},
	{"type":"event","name":"PaymentRefunded","inputs":[{"name":"paymentId","type":"bytes32","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"PaymentExpired","inputs":[{"name":"paymentId","type":"bytes32","indexed":true}]},
	{"type":"event","name":"PaymentCancelled","inputs":[{"name":"paymentId","type":"bytes32","indexed":true}]}
]`

type Decoder struct {
	abi abi.ABI
	l   logger.Logger
}

func NewDecoder(l logger.Logger) *Decoder {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		panic("abi parse error: " + err.Error())
	}
	return &Decoder{abi: parsed, l: l}
}

// Decode maps a raw log to exactly one typed event. ok is false for
// logs with unknown signatures (ignored) and for logs whose payload
// cannot be unpacked (logged, skipped); either way the batch goes on.
func (d *Decoder) Decode(lg types.Log) (domain.ChainEvent, bool) {
	if len(lg.Topics) == 0 {
		return nil, false
	}

	ev, err := d.abi.EventByID(lg.Topics[0])
	if err != nil {
		// not part of the vocabulary
		return nil, false
	}

	args := map[string]any{}

	if err := abi.ParseTopicsIntoMap(args, indexedInputs(ev.Inputs), lg.Topics[1:]); err != nil {
		d.l.Debug("decode: bad topics", "event", ev.Name, "tx", lg.TxHash.Hex(), "error", err.Error())
		return nil, false
	}

	if err := d.abi.UnpackIntoMap(args, ev.Name, lg.Data); err != nil {
		d.l.Debug("decode: bad data", "event", ev.Name, "tx", lg.TxHash.Hex(), "error", err.Error())
		return nil, false
	}

	switch ev.Name {
	case domain.EV_MERCHANT_REGISTERED:
		return domain.MerchantRegistered{
			Merchant:     addrArg(args, "merchant"),
			BusinessName: args["businessName"].(string),
			Timestamp:    intArg(args, "timestamp"),
		}, true
	case domain.EV_MERCHANT_DEACTIVATED:
		return domain.MerchantDeactivated{Merchant: addrArg(args, "merchant")}, true
	case domain.EV_MERCHANT_REACTIVATED:
		return domain.MerchantReactivated{Merchant: addrArg(args, "merchant")}, true
	case domain.EV_PAYMENT_INTENT_CREATED:
		return domain.PaymentIntentCreated{
			PaymentID: hashArg(args, "paymentId"),
			Merchant:  addrArg(args, "merchant"),
			Token:     addrArg(args, "token"),
			Amount:    amountArg(args, "amount"),
			Expiry:    intArg(args, "expiry"),
		}, true
	case domain.EV_PAYMENT_COMPLETED:
		return domain.PaymentCompleted{
			PaymentID:   hashArg(args, "paymentId"),
			Payer:       addrArg(args, "payer"),
			Amount:      amountArg(args, "amount"),
			PlatformFee: amountArg(args, "platformFee"),
		}, true
	case domain.EV_PAYMENT_REFUNDED:
		return domain.PaymentRefunded{
			PaymentID: hashArg(args, "paymentId"),
			Amount:    amountArg(args, "amount"),
		}, true
	case domain.EV_PAYMENT_EXPIRED:
		return domain.PaymentExpired{PaymentID: hashArg(args, "paymentId")}, true
	case domain.EV_PAYMENT_CANCELLED:
		return domain.PaymentCancelled{PaymentID: hashArg(args, "paymentId")}, true
	}

	return nil, false
}

func indexedInputs(inputs abi.Arguments) abi.Arguments {
	var indexed abi.Arguments
	for _, in := range inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	return indexed
}

func addrArg(args map[string]any, name string) string {
	return args[name].(common.Address).Hex()
}

// indexed bytes32 topics unpack as [32]byte
func hashArg(args map[string]any, name string) string {
	return common.Hash(args[name].([32]byte)).Hex()
}

// amounts stay arbitrary-precision, never float
func amountArg(args map[string]any, name string) decimal.Decimal {
	return decimal.NewFromBigInt(args[name].(*big.Int), 0)
}

func intArg(args map[string]any, name string) int64 {
	return args[name].(*big.Int).Int64()
}
