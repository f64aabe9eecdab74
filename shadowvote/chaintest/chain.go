// Package chaintest provides an in-process ShadowVote deployment for
// tests. It decodes calldata with the real ABI, keeps polls in memory and
// emits encoded logs, so code above it runs unchanged.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	svcommon "github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/util/account"
)

// DevKey is the first anvil / hardhat development key.
const DevKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var ContractAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// Poll is the contract's poll tuple.
type Poll struct {
	Id       uint64
	Question string
	Options  []string
	Counts   []uint64
	Creator  common.Address
	IsActive bool
}

type Chain struct {
	Account *account.Account
	// NoWait removes the finality primitive from bound transactors.
	NoWait bool
	// DropLogs mines receipts without logs.
	DropLogs bool
	CallErr  error
	SendErr  error
	// NoCode makes the contract address look undeployed.
	NoCode bool

	abi *abi.ABI

	mu       sync.Mutex
	polls    []Poll
	receipts map[common.Hash]*types.Receipt
	nonce    uint64
	sent     int
}

var _ svcommon.Connection = (*Chain)(nil)

func New() *Chain {
	acc, err := account.NewHexKeyAccount(DevKey)
	if err != nil {
		panic(err)
	}
	return &Chain{
		Account:  acc,
		abi:      svcommon.GetShadowVoteABI(),
		receipts: map[common.Hash]*types.Receipt{},
	}
}

// Topic encodes a poll id the way the contract indexes it.
func Topic(id uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(id))
}

// SetPolls replaces the deployed state.
func (c *Chain) SetPolls(polls ...Poll) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls = polls
}

func (c *Chain) Polls() []Poll {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]Poll, len(c.polls))
	for i, p := range c.polls {
		p.Options = append([]string(nil), p.Options...)
		p.Counts = append([]uint64(nil), p.Counts...)
		res[i] = p
	}
	return res
}

// Sent counts the transactions that were mined.
func (c *Chain) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

func (c *Chain) Signer(ctx context.Context) (*account.Account, error) {
	if c.Account == nil {
		return nil, errors.New("no account connected")
	}
	return c.Account, nil
}

func (c *Chain) Bind(signer *account.Account) svcommon.Transactor {
	t := &Transactor{chain: c, from: signer.Address()}
	if c.NoWait {
		return t
	}
	return &WaitingTransactor{t}
}

func (c *Chain) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	if c.CallErr != nil {
		return nil, c.CallErr
	}
	if addr != ContractAddress || c.NoCode {
		return nil, nil
	}
	return []byte{0x60, 0x80}, nil
}

func (c *Chain) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if c.CallErr != nil {
		return nil, c.CallErr
	}
	if to != ContractAddress {
		return nil, nil
	}
	method, args, err := c.decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch method.Name {
	case "getPolls":
		return method.Outputs.Pack(c.polls)
	case "getPoll":
		id := args[0].(uint64)
		if id == 0 || id > uint64(len(c.polls)) {
			return method.Outputs.Pack(Poll{})
		}
		return method.Outputs.Pack(c.polls[id-1])
	}
	return nil, fmt.Errorf("%s is not a view", method.Name)
}

func (c *Chain) decode(data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("execution reverted")
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}

func (c *Chain) execute(from common.Address, data []byte) ([]*types.Log, error) {
	method, args, err := c.decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch method.Name {
	case "createPoll":
		question := args[0].(string)
		options := args[1].([]string)
		id := uint64(len(c.polls) + 1)
		c.polls = append(c.polls, Poll{
			Id:       id,
			Question: question,
			Options:  options,
			Counts:   make([]uint64, len(options)),
			Creator:  from,
			IsActive: true,
		})
		event := c.abi.Events[svcommon.PollCreatedEvent]
		logData, err := event.Inputs.NonIndexed().Pack(question)
		if err != nil {
			return nil, err
		}
		return []*types.Log{{
			Address: ContractAddress,
			Topics:  []common.Hash{event.ID, Topic(id), common.BytesToHash(from.Bytes())},
			Data:    logData,
		}}, nil
	case "vote":
		id := args[0].(uint64)
		choice := args[1].(uint32)
		if id == 0 || id > uint64(len(c.polls)) {
			return nil, errors.New("execution reverted: poll does not exist")
		}
		p := &c.polls[id-1]
		if !p.IsActive {
			return nil, errors.New("execution reverted: poll is closed")
		}
		if int(choice) >= len(p.Options) {
			return nil, errors.New("execution reverted: invalid choice")
		}
		p.Counts[choice]++
		event := c.abi.Events[svcommon.VoteCastEvent]
		return []*types.Log{{
			Address: ContractAddress,
			Topics:  []common.Hash{event.ID, Topic(id), common.BytesToHash(from.Bytes())},
		}}, nil
	}
	return nil, fmt.Errorf("%s is a view", method.Name)
}

type Transactor struct {
	chain *Chain
	from  common.Address
}

// Send executes data right away and keeps the receipt for WaitMined.
func (t *Transactor) Send(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	c := t.chain
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	logs, err := c.execute(t.from, data)
	if err != nil {
		return nil, err
	}
	if c.DropLogs {
		logs = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	tx := types.NewTx(&types.LegacyTx{Nonce: c.nonce, To: &to, Data: data, Gas: 100_000})
	c.nonce++
	c.sent++
	c.receipts[tx.Hash()] = &types.Receipt{Status: types.ReceiptStatusSuccessful, Logs: logs}
	return tx, nil
}

type WaitingTransactor struct {
	*Transactor
}

func (t *WaitingTransactor) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c := t.chain
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[tx.Hash()]
	if !ok {
		return nil, fmt.Errorf("tx %s is notfound", tx.Hash().Hex())
	}
	return receipt, nil
}
