// Package wallet is the connection handle backing the remote poll backend:
// it knows the connected account, builds and signs transactions with it,
// broadcasts them and waits for them to be mined.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	svcommon "github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/networks"
	"github.com/tranvictor/shadowvote/util/account"
	"github.com/tranvictor/shadowvote/util/broadcaster"
	"github.com/tranvictor/shadowvote/util/monitor"
	"github.com/tranvictor/shadowvote/util/reader"
)

var ErrNoSigner = errors.New("no account connected")

// minMonitorInterval bounds receipt polling for networks that report no
// block time.
const minMonitorInterval = 500 * time.Millisecond

func monitorInterval(blockTime time.Duration) time.Duration {
	return max(blockTime/2, minMonitorInterval)
}

type Reader interface {
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
	GetCode(ctx context.Context, address string) ([]byte, error)
	GetPendingNonce(ctx context.Context, address string) (uint64, error)
	SuggestedGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to string, value *big.Int, data []byte) (uint64, error)
}

type Broadcaster interface {
	BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error)
}

type Monitor interface {
	BlockingWait(ctx context.Context, tx string) (svcommon.TxInfo, error)
}

type Wallet struct {
	chainID     *big.Int
	reader      Reader
	broadcaster Broadcaster
	// nil when the caller asked not to wait for txs to be mined
	monitor Monitor
	account *account.Account
	l       *zap.Logger
}

var _ svcommon.Connection = (*Wallet)(nil)

type Options struct {
	Account *account.Account
	NoWait  bool
	Logger  *zap.Logger
}

// New dials every node of network for reads and broadcasts.
func New(network networks.Network, opts Options) *Wallet {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}
	nodes := network.GetNodes()
	r := reader.NewEthReaderGeneric(nodes)
	var m Monitor
	if !opts.NoWait {
		m = monitor.NewTxMonitorWithInterval(r, monitorInterval(network.GetBlockTime()))
	}
	return NewWithBackends(
		new(big.Int).SetUint64(network.GetChainID()),
		r,
		broadcaster.NewGenericBroadcaster(nodes, l),
		m,
		opts.Account,
		l,
	)
}

func NewWithBackends(chainID *big.Int, r Reader, b Broadcaster, m Monitor, acc *account.Account, l *zap.Logger) *Wallet {
	if l == nil {
		l = zap.NewNop()
	}
	return &Wallet{
		chainID:     chainID,
		reader:      r,
		broadcaster: b,
		monitor:     m,
		account:     acc,
		l:           l,
	}
}

func (w *Wallet) Signer(ctx context.Context) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if w.account == nil {
		return nil, ErrNoSigner
	}
	return w.account, nil
}

func (w *Wallet) Bind(signer *account.Account) svcommon.Transactor {
	t := &Transactor{wallet: w, signer: signer}
	if w.monitor == nil {
		return t
	}
	return &WaitingTransactor{t}
}

func (w *Wallet) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	from := reader.DEFAULT_ADDRESS
	if w.account != nil {
		from = w.account.AddressHex()
	}
	return w.reader.CallContract(ctx, from, to.Hex(), data)
}

func (w *Wallet) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return w.reader.GetCode(ctx, addr.Hex())
}

// Transactor signs with one account and broadcasts.
type Transactor struct {
	wallet *Wallet
	signer *account.Account
}

func (t *Transactor) Send(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	w := t.wallet
	from := t.signer.AddressHex()
	nonce, err := w.reader.GetPendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("couldn't get nonce of %s: %w", from, err)
	}
	gasPrice, err := w.reader.SuggestedGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get gas price: %w", err)
	}
	gas, err := w.reader.EstimateGas(ctx, from, to.Hex(), big.NewInt(0), data)
	if err != nil {
		return nil, fmt.Errorf("couldn't estimate gas: %w", err)
	}
	// 20% headroom over the estimate
	gas += gas / 5

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    big.NewInt(0),
		Data:     data,
	})
	signed, err := t.signer.SignTx(tx, w.chainID)
	if err != nil {
		return nil, err
	}
	hash, broadcasted, err := w.broadcaster.BroadcastTx(ctx, signed)
	if !broadcasted {
		return nil, fmt.Errorf("couldn't broadcast tx %s: %w", hash, err)
	}
	w.l.Debug("tx broadcasted",
		zap.String("hash", hash),
		zap.String("from", from),
		zap.Uint64("nonce", nonce),
		zap.Float64("gas_price_gwei", svcommon.WeiToGwei(gasPrice)),
	)
	return signed, nil
}

// WaitingTransactor is a Transactor that can also await finality.
type WaitingTransactor struct {
	*Transactor
}

var _ svcommon.FinalityWaiter = (*WaitingTransactor)(nil)

func (t *WaitingTransactor) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	hash := tx.Hash().Hex()
	info, err := t.wallet.monitor.BlockingWait(ctx, hash)
	if err != nil {
		return nil, err
	}
	switch info.Status {
	case svcommon.TxStatusDone:
		return info.Receipt, nil
	case svcommon.TxStatusReverted:
		return nil, fmt.Errorf("tx %s reverted", hash)
	default:
		return nil, fmt.Errorf("tx %s is %s", hash, info.Status)
	}
}
