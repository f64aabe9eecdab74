package shadowvote

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	svcommon "github.com/tranvictor/shadowvote/common"
)

// Event is a decoded contract event. It is either a PollCreated or a
// VoteCast.
type Event interface {
	EventName() string
}

type PollCreated struct {
	PollID   uint64
	Creator  common.Address
	Question string
}

func (PollCreated) EventName() string { return svcommon.PollCreatedEvent }

type VoteCast struct {
	PollID uint64
	Voter  common.Address
}

func (VoteCast) EventName() string { return svcommon.VoteCastEvent }

func findEventByID(a *abi.ABI, topic common.Hash) (*abi.Event, error) {
	for _, event := range a.Events {
		if bytes.Equal(event.ID.Bytes(), topic.Bytes()) {
			return &event, nil
		}
	}
	return nil, fmt.Errorf("no event with id: %s", topic.Hex())
}

func splitEventArguments(args abi.Arguments) (indexed abi.Arguments, nonIndexed abi.Arguments) {
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		} else {
			nonIndexed = append(nonIndexed, arg)
		}
	}
	return indexed, nonIndexed
}

// decodeFields returns the named fields of l, indexed topics and data
// together.
func decodeFields(a *abi.ABI, event *abi.Event, l *types.Log) (map[string]any, error) {
	fields := map[string]any{}
	indexed, _ := splitEventArguments(event.Inputs)
	if len(l.Topics)-1 < len(indexed) {
		return nil, fmt.Errorf("%s log has %d topics, want %d", event.Name, len(l.Topics)-1, len(indexed))
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, err
	}
	if len(l.Data) > 0 {
		if err := a.UnpackIntoMap(fields, event.Name, l.Data); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// pollIDOf prefers the named pollId field, falling back to the first
// indexed topic.
func pollIDOf(fields map[string]any, l *types.Log) (uint64, error) {
	if v, ok := fields["pollId"]; ok {
		switch id := v.(type) {
		case uint64:
			return id, nil
		case *big.Int:
			if id.IsUint64() {
				return id.Uint64(), nil
			}
		}
	}
	if len(l.Topics) < 2 {
		return 0, fmt.Errorf("log has no indexed poll id")
	}
	id := new(big.Int).SetBytes(l.Topics[1].Bytes())
	if !id.IsUint64() {
		return 0, fmt.Errorf("indexed poll id %s overflows uint64", id)
	}
	return id.Uint64(), nil
}

func addressOf(fields map[string]any, name string) common.Address {
	addr, _ := fields[name].(common.Address)
	return addr
}

func decodeLog(a *abi.ABI, l *types.Log) (Event, error) {
	if len(l.Topics) == 0 {
		return nil, fmt.Errorf("anonymous log")
	}
	event, err := findEventByID(a, l.Topics[0])
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(a, event, l)
	if err != nil {
		return nil, err
	}
	id, err := pollIDOf(fields, l)
	if err != nil {
		return nil, err
	}
	switch event.Name {
	case svcommon.PollCreatedEvent:
		question, _ := fields["question"].(string)
		return PollCreated{
			PollID:   id,
			Creator:  addressOf(fields, "creator"),
			Question: question,
		}, nil
	case svcommon.VoteCastEvent:
		return VoteCast{
			PollID: id,
			Voter:  addressOf(fields, "voter"),
		}, nil
	}
	return nil, fmt.Errorf("unexpected event %s", event.Name)
}

// DecodeLogs decodes the logs emitted by contract. Logs from other
// addresses and logs that don't decode are skipped.
func DecodeLogs(a *abi.ABI, contract common.Address, logs []*types.Log, l *zap.Logger) []Event {
	if l == nil {
		l = zap.NewNop()
	}
	res := []Event{}
	for _, log := range logs {
		if log == nil || log.Address != contract {
			continue
		}
		event, err := decodeLog(a, log)
		if err != nil {
			l.Debug("skipping undecodable log",
				zap.Uint("index", log.Index),
				zap.Error(err),
			)
			continue
		}
		res = append(res, event)
	}
	return res
}

// CreatedPollID returns the id carried by the first PollCreated event,
// UnknownPollID when there is none.
func CreatedPollID(events []Event) svcommon.PollID {
	for _, e := range events {
		if created, ok := e.(PollCreated); ok {
			return svcommon.NewPollID(strconv.FormatUint(created.PollID, 10))
		}
	}
	return svcommon.UnknownPollID
}
