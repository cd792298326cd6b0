package v1

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func validAddress(address string) bool {
	return common.IsHexAddress(address)
}

// 0x-prefixed bytes32
func validPaymentId(id string) bool {
	if !strings.HasPrefix(id, "0x") || len(id) != 66 {
		return false
	}
	_, err := hex.DecodeString(id[2:])
	return err == nil
}
