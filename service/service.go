// Package service is the poll API the CLI and the HTTP server use. It
// picks the remote contract or the in-memory store once, when it's built,
// and every failure it returns is a *common.Error safe to show to users.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/shadowvote/common"
	"github.com/tranvictor/shadowvote/identity"
	"github.com/tranvictor/shadowvote/metrics"
	"github.com/tranvictor/shadowvote/shadowvote"
	"github.com/tranvictor/shadowvote/store"
)

type Options struct {
	// Connection is the wallet handle. Nil means fallback mode.
	Connection common.Connection
	// Contract is the deployed contract address, 0x prefixed.
	Contract string
	// Identity defaults to Connection.
	Identity identity.SignerSource
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	// Latency of the fallback store, store.DefaultLatency when nil.
	Latency *store.Latency
	// Fixtures seed the fallback store, store.Fixtures() when nil.
	Fixtures []common.Poll
}

type Service struct {
	mode     Mode
	backend  Backend
	identity *identity.Resolver
	metrics  *metrics.Metrics
	l        *zap.Logger
}

// New never fails: anything that prevents the remote backend from being
// used selects the fallback store instead.
func New(ctx context.Context, opts Options) *Service {
	l := opts.Logger
	if l == nil {
		l = zap.NewNop()
	}

	source := opts.Identity
	if source == nil && opts.Connection != nil {
		source = opts.Connection
	}
	s := &Service{
		identity: identity.Resolve(ctx, source, l),
		metrics:  opts.Metrics,
	}

	addr, err := probeContract(ctx, opts.Connection, opts.Contract)
	if err == nil {
		s.mode = ModeRemote
		s.backend = shadowvote.New(opts.Connection, addr, l)
		s.l = l.With(zap.Stringer("backend", s.mode))
		s.l.Info("using the poll contract", zap.String("contract", addr.Hex()))
		return s
	}

	latency := store.DefaultLatency
	if opts.Latency != nil {
		latency = *opts.Latency
	}
	fixtures := opts.Fixtures
	if fixtures == nil {
		fixtures = store.Fixtures()
	}
	s.mode = ModeFallback
	s.backend = store.New(fixtures, s.identity, latency)
	s.l = l.With(zap.Stringer("backend", s.mode))
	s.l.Warn("poll contract unavailable, serving in-memory polls",
		zap.Stringer("kind", common.KindOf(err)),
		zap.Error(err),
	)
	return s
}

func (s *Service) Mode() Mode {
	return s.mode
}

// Identity waits for the caller's identity. It is the connected account or
// a random placeholder when there is none.
func (s *Service) Identity(ctx context.Context) (string, error) {
	return s.identity.Wait(ctx)
}

// CurrentIdentity returns the identity without waiting, ok is false while
// it is still being resolved.
func (s *Service) CurrentIdentity() (address string, ok bool) {
	return s.identity.Address()
}

func (s *Service) IdentityIsPlaceholder() bool {
	return s.identity.IsPlaceholder()
}

func (s *Service) fail(op string, err error) error {
	err = common.Wrap(op, err)
	s.l.Warn("poll operation failed",
		zap.String("op", op),
		zap.Stringer("kind", common.KindOf(err)),
		zap.Error(err),
	)
	return err
}

// observe is deferred with a pointer to the named error result so it sees
// the final value.
func (s *Service) observe(op string, started time.Time, err *error) {
	s.metrics.Observe(op, s.mode.String(), started, *err)
}

// CreatePoll trims the question and option labels before storing them.
// The returned id can be unknown on the remote backend, GetAllPolls is the
// source of truth then.
func (s *Service) CreatePoll(ctx context.Context, question string, options []string) (id common.PollID, err error) {
	defer s.observe(common.OpCreatePoll, time.Now(), &err)
	question, options, err = common.NormalizePollInput(question, options)
	if err != nil {
		return common.UnknownPollID, s.fail(common.OpCreatePoll, err)
	}
	id, err = s.backend.CreatePoll(ctx, question, options)
	if err != nil {
		return common.UnknownPollID, s.fail(common.OpCreatePoll, err)
	}
	s.l.Debug("poll created", zap.Stringer("id", id))
	return id, nil
}

// Vote counts one vote for the option at index choice.
func (s *Service) Vote(ctx context.Context, id string, choice int) (err error) {
	defer s.observe(common.OpVote, time.Now(), &err)
	if s.mode == ModeRemote {
		// Best effort: report bad votes before signing a tx. A poll closed
		// after this read still comes back as a reverted tx.
		p, err := s.backend.GetPoll(ctx, id)
		if err != nil {
			return s.fail(common.OpVote, err)
		}
		if err := p.CheckVote(choice); err != nil {
			return s.fail(common.OpVote, err)
		}
	}
	if err = s.backend.Vote(ctx, id, choice); err != nil {
		return s.fail(common.OpVote, err)
	}
	s.l.Debug("vote cast", zap.String("id", id), zap.Int("choice", choice))
	return nil
}

func (s *Service) GetAllPolls(ctx context.Context) (polls []common.Poll, err error) {
	defer s.observe(common.OpGetAllPolls, time.Now(), &err)
	polls, err = s.backend.GetAllPolls(ctx)
	if err != nil {
		return nil, s.fail(common.OpGetAllPolls, err)
	}
	return polls, nil
}

func (s *Service) GetPoll(ctx context.Context, id string) (p common.Poll, err error) {
	defer s.observe(common.OpGetPoll, time.Now(), &err)
	p, err = s.backend.GetPoll(ctx, id)
	if err != nil {
		return common.Poll{}, s.fail(common.OpGetPoll, err)
	}
	return p, nil
}
