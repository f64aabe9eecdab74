package config

import "time"

const (
	DefaultNetwork       = "localhost"
	DefaultPrivateKeyEnv = "SHADOWVOTE_PRIVATE_KEY"
	DefaultLatency       = time.Second

	ContractEnv         = "SHADOWVOTE_CONTRACT"
	NetworkEnv          = "SHADOWVOTE_NETWORK"
	NodeEnv             = "SHADOWVOTE_NODE"
	KeystoreEnv         = "SHADOWVOTE_KEYSTORE"
	NoWaitEnv           = "SHADOWVOTE_NO_WAIT"
	KeystorePasswordEnv = "SHADOWVOTE_KEYSTORE_PASSWORD"
)

// Bound to the root command's persistent flags.
var (
	Network       string
	Node          string
	Contract      string
	Keystore      string
	PrivateKeyEnv string
	NoWait        bool
	Latency       time.Duration
	Verbose       bool
	ConfigFile    string
)

// Settings is a snapshot of the globals that a config file and the
// environment may fill.
type Settings struct {
	Network  string
	Node     string
	Contract string
	Keystore string
	NoWait   bool
	Latency  time.Duration
}

func Current() Settings {
	return Settings{
		Network:  Network,
		Node:     Node,
		Contract: Contract,
		Keystore: Keystore,
		NoWait:   NoWait,
		Latency:  Latency,
	}
}

func set(s Settings) {
	Network = s.Network
	Node = s.Node
	Contract = s.Contract
	Keystore = s.Keystore
	NoWait = s.NoWait
	Latency = s.Latency
}
