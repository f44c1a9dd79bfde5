package monitor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	sccommon "github.com/scprotocol/scctl/common"
)

// TxInfoReader is what the monitor polls.
type TxInfoReader interface {
	TxInfoFromHash(ctx context.Context, hash common.Hash) (sccommon.TxInfo, error)
}

type TxMonitor struct {
	reader   TxInfoReader
	interval time.Duration
	// a tx no node has ever seen for this long is considered lost
	lostAfter time.Duration
}

func NewGenericTxMonitor(r TxInfoReader, interval time.Duration) *TxMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &TxMonitor{
		reader:    r,
		interval:  interval,
		lostAfter: 3 * time.Minute,
	}
}

func (tm *TxMonitor) periodicCheck(ctx context.Context, tx common.Hash, info chan<- sccommon.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(tm.interval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			txinfo, _ := tm.reader.TxInfoFromHash(ctx, tx)
			switch txinfo.Status {
			case sccommon.TxStatusNotFound:
				if t.Sub(startTime) > tm.lostAfter && !isOnNode {
					info <- sccommon.TxInfo{Status: sccommon.TxStatusLost}
					return
				}
			case sccommon.TxStatusPending:
				isOnNode = true
			case sccommon.TxStatusDone, sccommon.TxStatusReverted:
				info <- txinfo
				return
			}
		}
	}
}

// MakeWaitChannel returns a channel receiving the final state of tx. The
// channel is closed without a value when ctx is done first.
func (tm *TxMonitor) MakeWaitChannel(ctx context.Context, tx common.Hash) <-chan sccommon.TxInfo {
	result := make(chan sccommon.TxInfo, 1)
	go tm.periodicCheck(ctx, tx, result)
	return result
}

// BlockingWait waits until tx is mined, reverted or lost.
func (tm *TxMonitor) BlockingWait(ctx context.Context, tx common.Hash) (sccommon.TxInfo, error) {
	info, ok := <-tm.MakeWaitChannel(ctx, tx)
	if !ok {
		return sccommon.TxInfo{Status: sccommon.TxStatusPending}, ctx.Err()
	}
	return info, nil
}
