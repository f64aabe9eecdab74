// Package store is the in-memory poll backend used when no contract is
// reachable. It lives as long as the process and fakes network latency.
package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/tranvictor/shadowvote/common"
)

const DefaultCreator = "0xYourAddressHere"

type Latency struct {
	Write  time.Duration
	Read   time.Duration
	Lookup time.Duration
}

var DefaultLatency = Latency{
	Write:  time.Second,
	Read:   time.Second,
	Lookup: 500 * time.Millisecond,
}

// Identity provides the creator recorded on new polls.
type Identity interface {
	Wait(ctx context.Context) (string, error)
}

type Store struct {
	latency  Latency
	identity Identity

	mu    sync.Mutex
	polls []common.Poll
}

// New returns a store seeded with copies of seed.
func New(seed []common.Poll, identity Identity, latency Latency) *Store {
	return &Store{
		latency:  latency,
		identity: identity,
		polls:    common.CopyPolls(seed),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) creator(ctx context.Context) (string, error) {
	if s.identity == nil {
		return DefaultCreator, nil
	}
	addr, err := s.identity.Wait(ctx)
	if err != nil {
		return "", err
	}
	if addr == "" {
		return DefaultCreator, nil
	}
	return addr, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.polls {
		if s.polls[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return common.NewError(common.KindNotFound, "Poll with ID %s not found", id)
}

func (s *Store) CreatePoll(ctx context.Context, question string, options []string) (common.PollID, error) {
	if err := sleep(ctx, s.latency.Write); err != nil {
		return common.UnknownPollID, err
	}
	creator, err := s.creator(ctx)
	if err != nil {
		return common.UnknownPollID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := strconv.Itoa(len(s.polls) + 1)
	s.polls = append(s.polls, common.Poll{
		ID:       id,
		Question: question,
		Options:  append([]string(nil), options...),
		Counts:   make([]int, len(options)),
		Creator:  creator,
		IsActive: true,
	})
	return common.NewPollID(id), nil
}

func (s *Store) Vote(ctx context.Context, id string, choice int) error {
	if err := sleep(ctx, s.latency.Write); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	if err := s.polls[i].CheckVote(choice); err != nil {
		return err
	}
	s.polls[i].Counts[choice]++
	return nil
}

func (s *Store) GetAllPolls(ctx context.Context) ([]common.Poll, error) {
	if err := sleep(ctx, s.latency.Read); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.CopyPolls(s.polls), nil
}

func (s *Store) GetPoll(ctx context.Context, id string) (common.Poll, error) {
	if err := sleep(ctx, s.latency.Lookup); err != nil {
		return common.Poll{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return common.Poll{}, notFound(id)
	}
	return s.polls[i].Copy(), nil
}
