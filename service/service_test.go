package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcommon "github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/metrics"
	"github.com/tranvictor/shadowvote/shadowvote/chaintest"
	"github.com/tranvictor/shadowvote/store"
)

var contract = chaintest.ContractAddress.Hex()

func newFallback(t *testing.T) *Service {
	t.Helper()
	s := New(context.Background(), Options{Latency: &store.Latency{}})
	require.Equal(t, ModeFallback, s.Mode())
	return s
}

func newRemote(t *testing.T, chain *chaintest.Chain) *Service {
	t.Helper()
	s := New(context.Background(), Options{Connection: chain, Contract: contract})
	require.Equal(t, ModeRemote, s.Mode())
	return s
}

func TestBackendSelection(t *testing.T) {
	undeployed := chaintest.New()
	undeployed.NoCode = true
	unreachable := chaintest.New()
	unreachable.CallErr = errors.New("connection refused")

	tests := []struct {
		name     string
		conn     svcommon.Connection
		contract string
		want     Mode
	}{
		{"deployed contract", chaintest.New(), contract, ModeRemote},
		{"surrounding spaces", chaintest.New(), "  " + contract + " ", ModeRemote},
		{"no descriptor", chaintest.New(), "", ModeFallback},
		{"missing 0x prefix", chaintest.New(), contract[2:], ModeFallback},
		{"not hex", chaintest.New(), "0xnotanaddress", ModeFallback},
		{"too short", chaintest.New(), "0x5FbDB2315678", ModeFallback},
		{"no connection", nil, contract, ModeFallback},
		{"no code", undeployed, contract, ModeFallback},
		{"unreachable node", unreachable, contract, ModeFallback},
		{"other address", chaintest.New(), "0x000000000000000000000000000000000000dEaD", ModeFallback},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(context.Background(), Options{
				Connection: tc.conn,
				Contract:   tc.contract,
				Latency:    &store.Latency{},
			})
			assert.Equal(t, tc.want, s.Mode())
		})
	}
}

func TestProbeReasonsAreBackendUnavailable(t *testing.T) {
	_, err := probeContract(context.Background(), nil, contract)
	assert.True(t, errors.Is(err, svcommon.ErrBackendUnavailable))

	_, err = probeContract(context.Background(), chaintest.New(), "nope")
	assert.True(t, errors.Is(err, svcommon.ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "is not a contract address")

	addr, err := probeContract(context.Background(), chaintest.New(), contract)
	require.NoError(t, err)
	assert.Equal(t, chaintest.ContractAddress, addr)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "remote", ModeRemote.String())
	assert.Equal(t, "fallback", ModeFallback.String())
}

func TestFallbackFixtures(t *testing.T) {
	s := newFallback(t)
	ctx := context.Background()

	polls, err := s.GetAllPolls(ctx)
	require.NoError(t, err)
	require.Len(t, polls, 3)
	assert.False(t, polls[2].IsActive)

	err = s.Vote(ctx, polls[2].ID, 0)
	assert.True(t, errors.Is(err, svcommon.ErrInactive))
	assert.Equal(t, "Failed to vote: This poll is no longer active", err.Error())
}

func TestPickOneOnBothBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) *Service{
		"fallback": newFallback,
		"remote": func(t *testing.T) *Service {
			return newRemote(t, chaintest.New())
		},
	}
	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			s := build(t)
			ctx := context.Background()

			id, err := s.CreatePoll(ctx, "Pick one", []string{"A", "B"})
			require.NoError(t, err)
			pollID, known := id.Get()
			require.True(t, known)

			p, err := s.GetPoll(ctx, pollID)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 0}, p.Counts)
			assert.True(t, p.IsActive)

			require.NoError(t, s.Vote(ctx, pollID, 1))
			p, _ = s.GetPoll(ctx, pollID)
			assert.Equal(t, []int{0, 1}, p.Counts)

			require.NoError(t, s.Vote(ctx, pollID, 1))
			p, _ = s.GetPoll(ctx, pollID)
			assert.Equal(t, []int{0, 2}, p.Counts)

			err = s.Vote(ctx, pollID, 5)
			assert.True(t, errors.Is(err, svcommon.ErrInvalidChoice))
			p, _ = s.GetPoll(ctx, pollID)
			assert.Equal(t, []int{0, 2}, p.Counts)

			polls, err := s.GetAllPolls(ctx)
			require.NoError(t, err)
			assert.Contains(t, polls, p)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	s := newFallback(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		question string
		options  []string
	}{
		{"blank question", "   ", []string{"A", "B"}},
		{"one option", "Q", []string{"A"}},
		{"six options", "Q", []string{"A", "B", "C", "D", "E", "F"}},
		{"blank option", "Q", []string{"A", " "}},
		{"no options", "Q", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := s.CreatePoll(ctx, tc.question, tc.options)
			assert.True(t, errors.Is(err, svcommon.ErrValidation))
			assert.False(t, id.Known())
		})
	}

	polls, _ := s.GetAllPolls(ctx)
	assert.Len(t, polls, 3)
}

func TestCreateTrimsInput(t *testing.T) {
	s := newFallback(t)
	ctx := context.Background()

	id, err := s.CreatePoll(ctx, "  Lunch? ", []string{" Pizza", "Sushi  "})
	require.NoError(t, err)
	p, err := s.GetPoll(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, "Lunch?", p.Question)
	assert.Equal(t, []string{"Pizza", "Sushi"}, p.Options)
}

func TestRemoteVoteIsCheckedBeforeSubmitting(t *testing.T) {
	chain := chaintest.New()
	chain.SetPolls(
		chaintest.Poll{Id: 1, Question: "Open", Options: []string{"A", "B"}, Counts: []uint64{0, 0}, IsActive: true},
		chaintest.Poll{Id: 2, Question: "Closed", Options: []string{"A", "B"}, Counts: []uint64{3, 1}},
	)
	s := newRemote(t, chain)
	ctx := context.Background()

	err := s.Vote(ctx, "1", 2)
	assert.True(t, errors.Is(err, svcommon.ErrInvalidChoice))
	err = s.Vote(ctx, "1", -1)
	assert.True(t, errors.Is(err, svcommon.ErrInvalidChoice))
	err = s.Vote(ctx, "2", 0)
	assert.True(t, errors.Is(err, svcommon.ErrInactive))
	err = s.Vote(ctx, "9", 0)
	assert.True(t, errors.Is(err, svcommon.ErrNotFound))
	assert.Equal(t, 0, chain.Sent())

	require.NoError(t, s.Vote(ctx, "1", 0))
	assert.Equal(t, 1, chain.Sent())
}

func TestRemoteVoteClosedAfterCheckReverts(t *testing.T) {
	chain := chaintest.New()
	chain.SetPolls(chaintest.Poll{Id: 1, Question: "Open", Options: []string{"A", "B"}, Counts: []uint64{0, 0}, IsActive: true})
	chain.SendErr = errors.New("execution reverted: poll is closed")
	s := newRemote(t, chain)

	err := s.Vote(context.Background(), "1", 0)
	assert.Equal(t, svcommon.KindRemoteFailure, svcommon.KindOf(err))
	assert.Equal(t, "Failed to vote: execution reverted: poll is closed", err.Error())
}

func TestRemoteFailuresAreUnified(t *testing.T) {
	chain := chaintest.New()
	s := newRemote(t, chain)
	ctx := context.Background()

	chain.CallErr = errors.New("connection reset by peer")
	_, err := s.GetAllPolls(ctx)
	assert.Equal(t, "Failed to get polls: connection reset by peer", err.Error())
	assert.Equal(t, svcommon.KindRemoteFailure, svcommon.KindOf(err))

	err = s.Vote(ctx, "1", 0)
	assert.Equal(t, "Failed to vote: connection reset by peer", err.Error())

	chain.CallErr = nil
	chain.SendErr = errors.New("nonce too low")
	_, err = s.CreatePoll(ctx, "Q", []string{"A", "B"})
	assert.Equal(t, "Failed to create poll: nonce too low", err.Error())
}

func TestFallbackCancellationIsNotRemote(t *testing.T) {
	s := New(context.Background(), Options{Latency: &store.Latency{Write: time.Minute}})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.CreatePoll(ctx, "Q", []string{"A", "B"})
	assert.Equal(t, svcommon.KindCanceled, svcommon.KindOf(err))
	assert.Equal(t, "Failed to create poll: context deadline exceeded", err.Error())
}

func TestRemoteCreateWithoutFinality(t *testing.T) {
	chain := chaintest.New()
	chain.NoWait = true
	s := newRemote(t, chain)
	ctx := context.Background()

	id, err := s.CreatePoll(ctx, "Q", []string{"A", "B"})
	require.NoError(t, err)
	assert.False(t, id.Known())

	polls, err := s.GetAllPolls(ctx)
	require.NoError(t, err)
	require.Len(t, polls, 1)
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()

	remote := newRemote(t, chaintest.New())
	addr, err := remote.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr)
	assert.False(t, remote.IdentityIsPlaceholder())

	fallback := newFallback(t)
	addr, err = fallback.Identity(ctx)
	require.NoError(t, err)
	assert.True(t, common.IsHexAddress(addr))
	assert.True(t, fallback.IdentityIsPlaceholder())
	now, ok := fallback.CurrentIdentity()
	assert.True(t, ok)
	assert.Equal(t, addr, now)

	// fallback polls are created by the resolved identity
	id, err := fallback.CreatePoll(ctx, "Q", []string{"A", "B"})
	require.NoError(t, err)
	p, err := fallback.GetPoll(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, addr, p.Creator)
}

func TestIdentityFromAccountWithoutContract(t *testing.T) {
	chain := chaintest.New()
	chain.NoCode = true
	s := New(context.Background(), Options{Connection: chain, Contract: contract, Latency: &store.Latency{}})
	require.Equal(t, ModeFallback, s.Mode())

	addr, err := s.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chain.Account.AddressHex(), addr)
}

func TestMetricsAreRecorded(t *testing.T) {
	m := metrics.New()
	s := New(context.Background(), Options{Latency: &store.Latency{}, Metrics: m})
	ctx := context.Background()

	_, err := s.GetAllPolls(ctx)
	require.NoError(t, err)
	_ = s.Vote(ctx, "404", 0)

	ops := m.Operations()
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues(svcommon.OpGetAllPolls, "fallback", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.WithLabelValues(svcommon.OpVote, "fallback", metrics.OutcomeError)))
}
