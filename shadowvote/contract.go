// Package shadowvote is the poll backend served by the ShadowVote contract.
// Writes are signed through the connection handle, reads go through
// eth_call and every failure comes back as a *common.Error.
package shadowvote

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	svcommon "github.com/tranvictor/shadowvote/common"
)

// rawPoll mirrors the contract's poll tuple, field order included.
type rawPoll struct {
	Id       uint64
	Question string
	Options  []string
	Counts   []uint64
	Creator  common.Address
	IsActive bool
}

func (r rawPoll) toPoll() (svcommon.Poll, error) {
	counts, err := svcommon.CountsToInts(r.Counts)
	if err != nil {
		return svcommon.Poll{}, err
	}
	return svcommon.Poll{
		ID:       strconv.FormatUint(r.Id, 10),
		Question: r.Question,
		Options:  r.Options,
		Counts:   counts,
		Creator:  r.Creator.Hex(),
		IsActive: r.IsActive,
	}, nil
}

type Contract struct {
	conn    svcommon.Connection
	address common.Address
	abi     *abi.ABI
	l       *zap.Logger
}

func New(conn svcommon.Connection, address common.Address, l *zap.Logger) *Contract {
	if l == nil {
		l = zap.NewNop()
	}
	return &Contract{
		conn:    conn,
		address: address,
		abi:     svcommon.GetShadowVoteABI(),
		l:       l.With(zap.String("contract", address.Hex())),
	}
}

func (c *Contract) Address() common.Address {
	return c.address
}

// send submits a write and returns the logs it emitted. Without a
// finality primitive the submission is taken as final and no logs are
// returned.
func (c *Contract) send(ctx context.Context, method string, args ...any) ([]*types.Log, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", method, err)
	}
	signer, err := c.conn.Signer(ctx)
	if err != nil {
		return nil, fmt.Errorf("couldn't get signer: %w", err)
	}
	t := c.conn.Bind(signer)
	tx, err := t.Send(ctx, c.address, data)
	if err != nil {
		return nil, err
	}
	waiter, ok := t.(svcommon.FinalityWaiter)
	if !ok {
		c.l.Warn("connection can't wait for finality, treating submission as final",
			zap.String("method", method),
			zap.String("tx", tx.Hash().Hex()),
		)
		return nil, nil
	}
	receipt, err := waiter.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	return receipt.Logs, nil
}

// CreatePoll submits a new poll. The returned id is unknown when the
// emitted logs don't carry one.
func (c *Contract) CreatePoll(ctx context.Context, question string, options []string) (svcommon.PollID, error) {
	logs, err := c.send(ctx, "createPoll", question, options)
	if err != nil {
		return svcommon.UnknownPollID, svcommon.Wrap(svcommon.OpCreatePoll, err)
	}
	id := CreatedPollID(DecodeLogs(c.abi, c.address, logs, c.l))
	if !id.Known() {
		c.l.Warn("couldn't recover the created poll id",
			zap.Stringer("kind", svcommon.KindUnknownEventShape),
			zap.Int("logs", len(logs)),
		)
	}
	return id, nil
}

// Vote submits choice for poll id. Choice bounds are left to the contract.
func (c *Contract) Vote(ctx context.Context, id string, choice int) error {
	pollID, err := svcommon.ParsePollID(id)
	if err != nil {
		return svcommon.Wrap(svcommon.OpVote, err)
	}
	if choice < 0 || uint64(choice) > math.MaxUint32 {
		return svcommon.Wrap(svcommon.OpVote, svcommon.NewError(
			svcommon.KindInvalidChoice, "Invalid choice index %d", choice,
		))
	}
	if _, err := c.send(ctx, "vote", pollID, uint32(choice)); err != nil {
		return svcommon.Wrap(svcommon.OpVote, err)
	}
	return nil
}

func (c *Contract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't pack %s: %w", method, err)
	}
	out, err := c.conn.Call(ctx, c.address, data)
	if err != nil {
		return nil, err
	}
	res, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode %s result: %w", method, err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%s returned %d values, want 1", method, len(res))
	}
	return res, nil
}

func (c *Contract) GetAllPolls(ctx context.Context) ([]svcommon.Poll, error) {
	res, err := c.call(ctx, "getPolls")
	if err != nil {
		return nil, svcommon.Wrap(svcommon.OpGetAllPolls, err)
	}
	raws := *abi.ConvertType(res[0], new([]rawPoll)).(*[]rawPoll)
	polls := make([]svcommon.Poll, 0, len(raws))
	for _, raw := range raws {
		p, err := raw.toPoll()
		if err != nil {
			return nil, svcommon.Wrap(svcommon.OpGetAllPolls, err)
		}
		polls = append(polls, p)
	}
	return polls, nil
}

func (c *Contract) GetPoll(ctx context.Context, id string) (svcommon.Poll, error) {
	pollID, err := svcommon.ParsePollID(id)
	if err != nil {
		return svcommon.Poll{}, svcommon.Wrap(svcommon.OpGetPoll, err)
	}
	res, err := c.call(ctx, "getPoll", pollID)
	if err != nil {
		return svcommon.Poll{}, svcommon.Wrap(svcommon.OpGetPoll, err)
	}
	raw := *abi.ConvertType(res[0], new(rawPoll)).(*rawPoll)
	// a missing poll reads back as the zero tuple
	if len(raw.Options) == 0 {
		return svcommon.Poll{}, svcommon.Wrap(svcommon.OpGetPoll, svcommon.NewError(
			svcommon.KindNotFound, "Poll with ID %s not found", id,
		))
	}
	p, err := raw.toPoll()
	if err != nil {
		return svcommon.Poll{}, svcommon.Wrap(svcommon.OpGetPoll, err)
	}
	return p, nil
}
