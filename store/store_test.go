package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/identity"
)

func newTestStore() *Store {
	return New(Fixtures(), identity.Static("0x90F79bf6EB2c4f870365E785982E1f101E93b906"), Latency{})
}

func TestFreshStoreExposesFixtures(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	polls, err := s.GetAllPolls(ctx)
	require.NoError(t, err)
	require.Len(t, polls, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{polls[0].ID, polls[1].ID, polls[2].ID})
	assert.True(t, polls[0].IsActive)
	assert.True(t, polls[1].IsActive)
	assert.False(t, polls[2].IsActive)

	err = s.Vote(ctx, "3", 0)
	assert.True(t, errors.Is(err, common.ErrInactive))
}

func TestPickOneScenario(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	id, err := s.CreatePoll(ctx, "Pick one", []string{"A", "B"})
	require.NoError(t, err)
	pollID, known := id.Get()
	require.True(t, known)
	assert.Equal(t, "4", pollID)

	p, err := s.GetPoll(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, p.Counts)
	assert.True(t, p.IsActive)
	assert.Equal(t, "0x90F79bf6EB2c4f870365E785982E1f101E93b906", p.Creator)

	require.NoError(t, s.Vote(ctx, pollID, 1))
	p, _ = s.GetPoll(ctx, pollID)
	assert.Equal(t, []int{0, 1}, p.Counts)

	require.NoError(t, s.Vote(ctx, pollID, 1))
	p, _ = s.GetPoll(ctx, pollID)
	assert.Equal(t, []int{0, 2}, p.Counts)

	err = s.Vote(ctx, pollID, 5)
	assert.True(t, errors.Is(err, common.ErrInvalidChoice))
	p, _ = s.GetPoll(ctx, pollID)
	assert.Equal(t, []int{0, 2}, p.Counts)
}

func TestVoteUnknownPollDoesNotMutate(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	before, _ := s.GetAllPolls(ctx)

	err := s.Vote(ctx, "42", 0)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	after, _ := s.GetAllPolls(ctx)
	assert.Equal(t, before, after)

	_, err = s.GetPoll(ctx, "42")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestReadsAreDefensiveCopies(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	polls, _ := s.GetAllPolls(ctx)
	polls[0].Counts[0] = 9999
	polls[0].Options[0] = "COBOL"
	polls = append(polls, common.Poll{ID: "x"})

	p, _ := s.GetPoll(ctx, "1")
	p.Counts[1] = 9999

	fresh, _ := s.GetPoll(ctx, "1")
	assert.Equal(t, []int{12, 8, 5, 20}, fresh.Counts)
	assert.Equal(t, "JavaScript", fresh.Options[0])
	all, _ := s.GetAllPolls(ctx)
	assert.Len(t, all, 3)
}

func TestCreatePollCopiesOptions(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	opts := []string{"A", "B", "C"}
	id, err := s.CreatePoll(ctx, "Q", opts)
	require.NoError(t, err)
	opts[0] = "mutated"

	p, _ := s.GetPoll(ctx, id.String())
	assert.Equal(t, []string{"A", "B", "C"}, p.Options)
	assert.Equal(t, []int{0, 0, 0}, p.Counts)
}

func TestStoresDoNotShareState(t *testing.T) {
	ctx := context.Background()
	a, b := newTestStore(), newTestStore()
	require.NoError(t, a.Vote(ctx, "1", 0))
	pa, _ := a.GetPoll(ctx, "1")
	pb, _ := b.GetPoll(ctx, "1")
	assert.Equal(t, 13, pa.Counts[0])
	assert.Equal(t, 12, pb.Counts[0])
}

func TestDefaultCreatorWithoutIdentity(t *testing.T) {
	s := New(nil, nil, Latency{})
	ctx := context.Background()
	id, err := s.CreatePoll(ctx, "Q", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, "1", id.String())
	p, _ := s.GetPoll(ctx, "1")
	assert.Equal(t, DefaultCreator, p.Creator)
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	s := New(nil, nil, Latency{})
	ctx := context.Background()
	id, err := s.CreatePoll(ctx, "Q", []string{"A", "B"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Vote(ctx, id.String(), 0))
		}()
		go func() {
			defer wg.Done()
			_, err := s.CreatePoll(ctx, "Q", []string{"A", "B"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, _ := s.GetPoll(ctx, id.String())
	assert.Equal(t, []int{50, 0}, p.Counts)

	polls, _ := s.GetAllPolls(ctx)
	require.Len(t, polls, 51)
	seen := map[string]bool{}
	for _, p := range polls {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	s := New(Fixtures(), nil, Latency{Write: time.Minute, Read: time.Minute, Lookup: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.Vote(ctx, "1", 0)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	s.latency = Latency{}
	p, err := s.GetPoll(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 12, p.Counts[0])
}

// pendingIdentity never resolves.
type pendingIdentity struct{}

func (pendingIdentity) Wait(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestFailedCreateAppendsNothing(t *testing.T) {
	tests := []struct {
		name  string
		store *Store
	}{
		{
			name:  "cancelled during latency",
			store: New(Fixtures(), nil, Latency{Write: time.Minute}),
		},
		{
			name:  "cancelled waiting for identity",
			store: New(Fixtures(), pendingIdentity{}, Latency{}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			id, err := tc.store.CreatePoll(ctx, "Q", []string{"A", "B"})
			assert.True(t, errors.Is(err, context.DeadlineExceeded))
			assert.False(t, id.Known())

			tc.store.latency = Latency{}
			polls, err := tc.store.GetAllPolls(context.Background())
			require.NoError(t, err)
			assert.Len(t, polls, 3)
		})
	}
}
