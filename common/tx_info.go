package common

import (
	"github.com/ethereum/go-ethereum/core/types"
)

type TxStatus string

const (
	TxStatusError    TxStatus = "error"
	TxStatusNotFound TxStatus = "notfound"
	TxStatusPending  TxStatus = "pending"
	TxStatusDone     TxStatus = "done"
	TxStatusReverted TxStatus = "reverted"
	TxStatusLost     TxStatus = "lost"
)

// TxInfo is what we know about a broadcasted tx at a point in time.
// Receipt is only set once the tx is mined.
type TxInfo struct {
	Status  TxStatus
	Tx      *types.Transaction
	Receipt *types.Receipt
}

// Mined reports whether the tx reached a block, successfully or not.
func (ti TxInfo) Mined() bool {
	return ti.Status == TxStatusDone || ti.Status == TxStatusReverted
}
