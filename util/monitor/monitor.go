package monitor

import (
	"context"
	"time"

	"github.com/tranvictor/shadowvote/common"
)

// TxInfoReader is satisfied by *reader.EthReader.
type TxInfoReader interface {
	TxInfoFromHash(ctx context.Context, tx string) (common.TxInfo, error)
}

type TxMonitor struct {
	reader   TxInfoReader
	interval time.Duration
	// a tx no node has seen after lostAfter is reported as lost
	lostAfter time.Duration
}

func NewGenericTxMonitor(r TxInfoReader) *TxMonitor {
	return NewTxMonitorWithInterval(r, 5*time.Second)
}

func NewTxMonitorWithInterval(r TxInfoReader, interval time.Duration) *TxMonitor {
	return &TxMonitor{
		reader:    r,
		interval:  interval,
		lostAfter: 3 * time.Minute,
	}
}

func (tm *TxMonitor) periodicCheck(ctx context.Context, tx string, info chan<- common.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(tm.interval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		var t time.Time
		select {
		case <-ctx.Done():
			return
		case t = <-ticker.C:
		}
		txinfo, _ := tm.reader.TxInfoFromHash(ctx, tx)
		switch txinfo.Status {
		case common.TxStatusError:
			continue
		case common.TxStatusNotFound:
			if t.Sub(startTime) > tm.lostAfter && !isOnNode {
				info <- common.TxInfo{Status: common.TxStatusLost}
				return
			}
		case common.TxStatusPending:
			isOnNode = true
		case common.TxStatusReverted, common.TxStatusDone:
			info <- txinfo
			return
		}
	}
}

// MakeWaitChannel returns a channel delivering the final TxInfo of tx.
// The channel is closed without a value when ctx ends first.
func (tm *TxMonitor) MakeWaitChannel(ctx context.Context, tx string) <-chan common.TxInfo {
	result := make(chan common.TxInfo, 1)
	go tm.periodicCheck(ctx, tx, result)
	return result
}

func (tm *TxMonitor) BlockingWait(ctx context.Context, tx string) (common.TxInfo, error) {
	info, ok := <-tm.MakeWaitChannel(ctx, tx)
	if !ok {
		return common.TxInfo{}, ctx.Err()
	}
	return info, nil
}
