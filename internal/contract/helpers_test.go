package contract_test

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func newUnsentTx() *types.Transaction {
	to := common.HexToAddress("0xdead")
	return types.NewTx(&types.LegacyTx{Nonce: 99, To: &to, Value: big.NewInt(1), Gas: 21000, GasPrice: big.NewInt(1)})
}
