package broadcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/tranvictor/shadowvote/common"
)

const TIMEOUT time.Duration = 4 * time.Second

// RawSender is the part of an rpc client the broadcaster needs.
type RawSender interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. The tx counts as
// broadcasted when at least 1 node accepted it.
type Broadcaster struct {
	clients map[string]RawSender
}

func NewBroadcasterWithClients(clients map[string]RawSender) *Broadcaster {
	return &Broadcaster{clients: clients}
}

func NewGenericBroadcaster(nodes map[string]string, l *zap.Logger) *Broadcaster {
	if l == nil {
		l = zap.NewNop()
	}
	clients := map[string]RawSender{}
	for name, c := range nodes {
		client, err := rpc.Dial(c)
		if err != nil {
			l.Warn("couldn't connect to node", zap.String("node", name), zap.String("url", c), zap.Error(err))
			continue
		}
		clients[name] = client
	}
	return &Broadcaster{clients: clients}
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return "", false, fmt.Errorf("tx is not valid, couldn't use rlp to encode it: %w", err)
	}
	return b.Broadcast(ctx, hexutil.Encode(data))
}

// Broadcast sends data, the hex encoded signed tx, to every node.
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (string, bool, error) {
	hash := common.RawTxToHash(data)
	if len(b.clients) == 0 {
		return hash, false, fmt.Errorf("no node to broadcast to")
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()

	parallelTasks := []func() error{}
	for name := range b.clients {
		name, cli := name, b.clients[name]
		parallelTasks = append(parallelTasks, func() error {
			if err := cli.CallContext(timeout, nil, "eth_sendRawTransaction", data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	err, numErrs := common.RunParallel(parallelTasks...)
	if numErrs == len(b.clients) {
		return hash, false, err
	}
	return hash, true, nil
}
