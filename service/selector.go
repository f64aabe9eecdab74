package service

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	svcommon "github.com/tranvictor/shadowvote/common"
)

type Mode int

const (
	ModeFallback Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "fallback"
}

const probeTimeout = 10 * time.Second

// Backend is a source of polls. The remote contract and the in-memory
// store both implement it with the same signatures.
type Backend interface {
	CreatePoll(ctx context.Context, question string, options []string) (svcommon.PollID, error)
	Vote(ctx context.Context, id string, choice int) error
	GetAllPolls(ctx context.Context) ([]svcommon.Poll, error)
	GetPoll(ctx context.Context, id string) (svcommon.Poll, error)
}

func unavailable(format string, args ...any) error {
	return svcommon.NewError(svcommon.KindBackendUnavailable, format, args...)
}

// probeContract returns the contract address when descriptor points at
// deployed code reachable through conn.
func probeContract(ctx context.Context, conn svcommon.Connection, descriptor string) (common.Address, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return common.Address{}, unavailable("no contract address configured")
	}
	if !strings.HasPrefix(descriptor, "0x") || !common.IsHexAddress(descriptor) {
		return common.Address{}, unavailable("%q is not a contract address", descriptor)
	}
	if conn == nil {
		return common.Address{}, unavailable("no wallet connection")
	}
	addr := common.HexToAddress(descriptor)

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	code, err := conn.CodeAt(ctx, addr)
	if err != nil {
		return common.Address{}, &svcommon.Error{
			Kind: svcommon.KindBackendUnavailable,
			Msg:  "couldn't reach the contract",
			Err:  err,
		}
	}
	if len(code) == 0 {
		return common.Address{}, unavailable("no contract deployed at %s", addr.Hex())
	}
	return addr, nil
}
