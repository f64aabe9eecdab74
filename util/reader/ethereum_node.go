package reader

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	EstimateGas(ctx context.Context, from, to string, value *big.Int, data []byte) (gas uint64, err error)
	GetCode(ctx context.Context, address string) (code []byte, err error)
	GetPendingNonce(ctx context.Context, address string) (nonce uint64, err error)
	SuggestedGasPrice(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash string) (receipt *types.Receipt, err error)
	TransactionByHash(ctx context.Context, txHash string) (tx *types.Transaction, isPending bool, err error)
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
	HeaderByNumber(ctx context.Context, number int64) (*types.Header, error)
	CurrentBlock(ctx context.Context) (uint64, error)
}
