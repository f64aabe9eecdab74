package common

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/shadowvote/util/account"
)

// Connection is the wallet integration the remote backend runs on. It
// owns signing, the core never touches key material.
type Connection interface {
	// Signer returns the account currently connected.
	Signer(ctx context.Context) (*account.Account, error)
	// Bind returns a write capable handle for signer. The handle also
	// implements FinalityWaiter when the connection can await finality.
	Bind(signer *account.Account) Transactor
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
}

type Transactor interface {
	Send(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error)
}

type FinalityWaiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}
