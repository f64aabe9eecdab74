package reader

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	svcommon "github.com/tranvictor/shadowvote/common"
)

var DEFAULT_ADDRESS string = "0x0000000000000000000000000000000000000000"

// EthReader sends every read to all of its nodes at once and takes
// the first successful answer. It only fails when every node fails.
type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := map[string]EthereumNode{}
	for name, c := range nodes {
		ns[name] = NewOneNodeReader(name, c)
	}
	return NewEthReaderWithNodes(ns)
}

func NewEthReaderWithNodes(nodes map[string]EthereumNode) *EthReader {
	return &EthReader{nodes: nodes}
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type response[T any] struct {
	Value T
	Error error
}

func readFromAny[T any](ctx context.Context, er *EthReader, read func(context.Context, EthereumNode) (T, error)) (T, error) {
	var zero T
	if len(er.nodes) == 0 {
		return zero, fmt.Errorf("no nodes configured")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan response[T], len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			v, err := read(ctx, n)
			resCh <- response[T]{Value: v, Error: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.Error == nil {
			return result.Value, nil
		}
		errs = append(errs, result.Error)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) EstimateGas(ctx context.Context, from, to string, value *big.Int, data []byte) (uint64, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.EstimateGas(ctx, from, to, value, data)
	})
}

func (er *EthReader) GetCode(ctx context.Context, address string) ([]byte, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) ([]byte, error) {
		return n.GetCode(ctx, address)
	})
}

func (er *EthReader) GetPendingNonce(ctx context.Context, address string) (uint64, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.GetPendingNonce(ctx, address)
	})
}

func (er *EthReader) SuggestedGasPrice(ctx context.Context) (*big.Int, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasPrice(ctx)
	})
}

func (er *EthReader) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(ctx, txHash)
	})
}

type txByHash struct {
	Tx        *types.Transaction
	IsPending bool
}

func (er *EthReader) TransactionByHash(ctx context.Context, txHash string) (*types.Transaction, bool, error) {
	res, err := readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (txByHash, error) {
		tx, pending, err := n.TransactionByHash(ctx, txHash)
		return txByHash{tx, pending}, err
	})
	return res.Tx, res.IsPending, err
}

func (er *EthReader) CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) ([]byte, error) {
		return n.CallContract(ctx, from, to, data)
	})
}

func (er *EthReader) HeaderByNumber(ctx context.Context, number int64) (*types.Header, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(ctx, number)
	})
}

func (er *EthReader) CurrentBlock(ctx context.Context) (uint64, error) {
	return readFromAny(ctx, er, func(ctx context.Context, n EthereumNode) (uint64, error) {
		return n.CurrentBlock(ctx)
	})
}

// TxInfoFromHash classifies a tx as notfound, pending, done or reverted.
// Transport failures are reported as error status together with err.
func (er *EthReader) TxInfoFromHash(ctx context.Context, tx string) (svcommon.TxInfo, error) {
	txObj, isPending, err := er.TransactionByHash(ctx, tx)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return svcommon.TxInfo{Status: svcommon.TxStatusNotFound}, nil
		}
		return svcommon.TxInfo{Status: svcommon.TxStatusError}, err
	}
	if txObj == nil {
		return svcommon.TxInfo{Status: svcommon.TxStatusNotFound}, nil
	}
	if isPending {
		return svcommon.TxInfo{Status: svcommon.TxStatusPending, Tx: txObj}, nil
	}

	receipt, err := er.TransactionReceipt(ctx, tx)
	if err != nil && !errors.Is(err, ethereum.NotFound) {
		return svcommon.TxInfo{Status: svcommon.TxStatusPending, Tx: txObj}, err
	}
	if receipt == nil {
		return svcommon.TxInfo{Status: svcommon.TxStatusPending, Tx: txObj}, nil
	}

	// pre-byzantium receipts carry a post state root and no status,
	// they are considered done
	if len(receipt.PostState) == len(common.Hash{}) || receipt.Status == types.ReceiptStatusSuccessful {
		return svcommon.TxInfo{Status: svcommon.TxStatusDone, Tx: txObj, Receipt: receipt}, nil
	}
	return svcommon.TxInfo{Status: svcommon.TxStatusReverted, Tx: txObj, Receipt: receipt}, nil
}
