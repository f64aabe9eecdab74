package common

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	PollCreatedEvent = "PollCreated"
	VoteCastEvent    = "VoteCast"
)

const shadowvoteabi = `[
{"type":"event","name":"PollCreated","anonymous":false,"inputs":[
	{"name":"pollId","type":"uint64","indexed":true},
	{"name":"creator","type":"address","indexed":true},
	{"name":"question","type":"string","indexed":false}]},
{"type":"event","name":"VoteCast","anonymous":false,"inputs":[
	{"name":"pollId","type":"uint64","indexed":true},
	{"name":"voter","type":"address","indexed":true}]},
{"type":"function","name":"createPoll","stateMutability":"nonpayable",
	"inputs":[{"name":"question","type":"string"},{"name":"options","type":"string[]"}],
	"outputs":[{"name":"","type":"uint64"}]},
{"type":"function","name":"vote","stateMutability":"nonpayable",
	"inputs":[{"name":"pollId","type":"uint64"},{"name":"choice","type":"uint32"}],
	"outputs":[]},
{"type":"function","name":"getPolls","stateMutability":"view","inputs":[],
	"outputs":[{"name":"","type":"tuple[]","components":[
		{"name":"id","type":"uint64"},
		{"name":"question","type":"string"},
		{"name":"options","type":"string[]"},
		{"name":"counts","type":"uint64[]"},
		{"name":"creator","type":"address"},
		{"name":"isActive","type":"bool"}]}]},
{"type":"function","name":"getPoll","stateMutability":"view",
	"inputs":[{"name":"pollId","type":"uint64"}],
	"outputs":[{"name":"","type":"tuple","components":[
		{"name":"id","type":"uint64"},
		{"name":"question","type":"string"},
		{"name":"options","type":"string[]"},
		{"name":"counts","type":"uint64[]"},
		{"name":"creator","type":"address"},
		{"name":"isActive","type":"bool"}]}]}
]`

func GetShadowVoteABI() *abi.ABI {
	result, _ := abi.JSON(strings.NewReader(shadowvoteabi))
	return &result
}
