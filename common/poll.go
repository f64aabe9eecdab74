package common

import (
	"fmt"
	"strings"
)

const (
	MinOptions = 2
	MaxOptions = 5
)

// Poll is the backend independent shape of a poll. Counts is index
// aligned with Options.
type Poll struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Counts   []int    `json:"counts"`
	Creator  string   `json:"creator"`
	IsActive bool     `json:"isActive"`
}

// Copy returns a deep copy so callers can't reach into the owner's slices.
func (p Poll) Copy() Poll {
	res := p
	res.Options = append([]string(nil), p.Options...)
	res.Counts = append([]int(nil), p.Counts...)
	return res
}

func (p Poll) TotalVotes() int {
	total := 0
	for _, c := range p.Counts {
		total += c
	}
	return total
}

// CheckVote reports whether choice can be counted on p.
func (p Poll) CheckVote(choice int) error {
	if !p.IsActive {
		return NewError(KindInactive, "This poll is no longer active")
	}
	if choice < 0 || choice >= len(p.Options) {
		return NewError(KindInvalidChoice, "Invalid choice index %d, poll %s has %d options", choice, p.ID, len(p.Options))
	}
	return nil
}

func CopyPolls(polls []Poll) []Poll {
	res := make([]Poll, 0, len(polls))
	for _, p := range polls {
		res = append(res, p.Copy())
	}
	return res
}

// NormalizePollInput trims the question and every option label and checks
// the option cardinality.
func NormalizePollInput(question string, options []string) (string, []string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", nil, NewError(KindValidation, "question must not be empty")
	}
	if len(options) < MinOptions || len(options) > MaxOptions {
		return "", nil, NewError(
			KindValidation,
			"a poll needs between %d and %d options, got %d",
			MinOptions, MaxOptions, len(options),
		)
	}
	opts := make([]string, len(options))
	for i, o := range options {
		opts[i] = strings.TrimSpace(o)
		if opts[i] == "" {
			return "", nil, NewError(KindValidation, "option %d must not be empty", i+1)
		}
	}
	return q, opts, nil
}

// PollID is an identifier returned by poll creation. The remote backend
// can fail to report the identifier it assigned, in that case the id is
// unknown and the poll list is the source of truth.
type PollID struct {
	value string
	known bool
}

var UnknownPollID = PollID{}

func NewPollID(id string) PollID {
	return PollID{value: id, known: true}
}

// Get returns the identifier and whether it is known.
func (id PollID) Get() (string, bool) {
	return id.value, id.known
}

func (id PollID) Known() bool {
	return id.known
}

func (id PollID) String() string {
	if !id.known {
		return "unknown"
	}
	return id.value
}

func (id PollID) MarshalJSON() ([]byte, error) {
	if !id.known {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", id.value)), nil
}
