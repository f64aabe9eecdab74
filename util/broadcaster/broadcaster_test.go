package broadcaster

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []string
}

func (f *fakeSender) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, args[0].(string))
	return nil
}

func testTx() *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: 7, Gas: 21000, GasPrice: big.NewInt(1)})
}

func TestBroadcastSucceedsWhenOneNodeAccepts(t *testing.T) {
	ok := &fakeSender{}
	b := NewBroadcasterWithClients(map[string]RawSender{
		"ok":   ok,
		"down": &fakeSender{err: errors.New("already known")},
	})
	tx := testTx()
	hash, broadcasted, err := b.BroadcastTx(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, broadcasted)
	assert.Equal(t, tx.Hash().Hex(), hash)
	assert.Len(t, ok.sent, 1)
}

func TestBroadcastFailsWhenAllNodesReject(t *testing.T) {
	b := NewBroadcasterWithClients(map[string]RawSender{
		"a": &fakeSender{err: errors.New("nonce too low")},
	})
	_, broadcasted, err := b.BroadcastTx(context.Background(), testTx())
	assert.False(t, broadcasted)
	assert.ErrorContains(t, err, "a: nonce too low")
}

func TestBroadcastWithoutNodes(t *testing.T) {
	_, broadcasted, err := NewBroadcasterWithClients(nil).BroadcastTx(context.Background(), testTx())
	assert.False(t, broadcasted)
	assert.Error(t, err)
}
