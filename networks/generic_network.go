package networks

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

type GenericNetworkConfig struct {
	Name             string            `json:"name"`
	AlternativeNames []string          `json:"alternative_names"`
	ChainID          uint64            `json:"chain_id"`
	BlockTime        uint64            `json:"block_time"`
	NodeVariableName string            `json:"node_variable_name"`
	DefaultNodes     map[string]string `json:"default_nodes"`
}

type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetNodes() map[string]string {
	nodes := map[string]string{}
	for name, url := range gn.config.DefaultNodes {
		nodes[name] = url
	}
	if gn.config.NodeVariableName == "" {
		return nodes
	}
	customNode := strings.Trim(os.Getenv(gn.config.NodeVariableName), " ")
	if customNode != "" {
		nodes["custom-node"] = customNode
	}
	return nodes
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.Marshal(gn.config)
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	config := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &config); err != nil {
		return nil, err
	}
	return NewGenericNetwork(config), nil
}

// WithNode returns a copy of network that talks to url only.
func WithNode(network Network, url string) Network {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:             network.GetName(),
		AlternativeNames: network.GetAlternativeNames(),
		ChainID:          network.GetChainID(),
		BlockTime:        uint64(network.GetBlockTime() / time.Second),
		DefaultNodes:     map[string]string{"custom-node": url},
	})
}
