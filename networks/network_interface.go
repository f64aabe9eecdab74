package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetBlockTime() time.Duration

	// GetNodeVariableName is the env var that adds a custom node
	GetNodeVariableName() string
	GetDefaultNodes() map[string]string
	// GetNodes returns the default nodes plus the custom node from env, if any
	GetNodes() map[string]string

	MarshalJSON() ([]byte, error)
}
