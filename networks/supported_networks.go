package networks

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	EthereumMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "mainnet",
		AlternativeNames: []string{"ethereum"},
		ChainID:          1,
		BlockTime:        12,
		NodeVariableName: "ETHEREUM_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"publicnode": "https://ethereum-rpc.publicnode.com",
			"llamarpc":   "https://eth.llamarpc.com",
		},
	})
	Sepolia Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "sepolia",
		AlternativeNames: []string{},
		ChainID:          11155111,
		BlockTime:        12,
		NodeVariableName: "SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"publicnode": "https://ethereum-sepolia-rpc.publicnode.com",
		},
	})
	BaseMainnet Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "base",
		AlternativeNames: []string{},
		ChainID:          8453,
		BlockTime:        2,
		NodeVariableName: "BASE_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"public-base": "https://mainnet.base.org",
		},
	})
	BaseSepolia Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "base-sepolia",
		AlternativeNames: []string{},
		ChainID:          84532,
		BlockTime:        2,
		NodeVariableName: "BASE_SEPOLIA_NODE",
		DefaultNodes: map[string]string{
			"public-base-sepolia": "https://sepolia.base.org",
		},
	})
	// Localhost is a hardhat / anvil dev chain
	Localhost Network = NewGenericNetwork(GenericNetworkConfig{
		Name:             "localhost",
		AlternativeNames: []string{"anvil", "hardhat"},
		ChainID:          31337,
		BlockTime:        1,
		NodeVariableName: "LOCALHOST_NODE",
		DefaultNodes: map[string]string{
			"local": "http://127.0.0.1:8545",
		},
	})
)

// Insert more Network implementation here to support more chains
var supportedNetworks = []Network{
	EthereumMainnet,
	Sepolia,
	BaseMainnet,
	BaseSepolia,
	Localhost,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

var globalSupportedNetworks = newSupportedNetworks(supportedNetworks, customNetworksDir())

type networks struct {
	networks     map[string]Network
	networksByID map[uint64]Network
	customDir    string
}

func (n *networks) add(network Network) {
	n.networks[network.GetName()] = network
	n.networksByID[network.GetChainID()] = network
	for _, an := range network.GetAlternativeNames() {
		n.networks[an] = network
	}
}

func (n *networks) names() []string {
	res := []string{}
	for name := range n.networks {
		res = append(res, name)
	}
	return res
}

func (n *networks) getNetwork(name string) (Network, error) {
	res, found := n.networks[strings.ToLower(strings.TrimSpace(name))]
	if found {
		return res, nil
	}
	matches := fuzzy.Find(name, n.names())
	if len(matches) > 0 {
		return nil, fmt.Errorf("network name '%s': %w, did you mean '%s'?", name, ErrNetworkNotFound, matches[0].Str)
	}
	return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
}

// all returns every network once, sorted by chain id.
func (n *networks) all() []Network {
	res := make([]Network, 0, len(n.networksByID))
	for _, network := range n.networksByID {
		res = append(res, network)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].GetChainID() < res[j].GetChainID()
	})
	return res
}

// save writes network to the custom networks dir and registers it.
func (n *networks) save(network Network) error {
	if n.customDir == "" {
		return fmt.Errorf("no custom networks directory")
	}
	if err := os.MkdirAll(n.customDir, 0o755); err != nil {
		return fmt.Errorf("couldn't create %s: %w", n.customDir, err)
	}
	content, err := json.MarshalIndent(network, "", "  ")
	if err != nil {
		return err
	}
	file := filepath.Join(n.customDir, network.GetName()+".json")
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return fmt.Errorf("couldn't write %s: %w", file, err)
	}
	n.add(network)
	return nil
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func newSupportedNetworks(builtin []Network, customDir string) *networks {
	result := &networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
		customDir:    customDir,
	}
	for _, n := range builtin {
		if _, found := result.networks[n.GetName()]; found {
			panic(fmt.Errorf("network with name '%s' already exists", n.GetName()))
		}
		result.add(n)
	}

	if customDir == "" {
		return result
	}
	customNetworks, err := loadCustomNetworks(customDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to load custom networks: %s. Ignore and continue with built-in networks.\n", err)
		return result
	}
	for _, n := range customNetworks {
		result.add(n)
	}
	return result
}

func customNetworksDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".shadowvote", "networks")
}

func loadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}
	res := []Network{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse network from file %s: %s. Ignore and continue.\n", file, err)
			continue
		}
		res = append(res, network)
	}
	return res, nil
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}

func GetSupportedNetworkNames() []string {
	return globalSupportedNetworks.names()
}

func GetSupportedNetworks() []Network {
	return globalSupportedNetworks.all()
}

// AddNetwork saves network under ~/.shadowvote/networks so later runs
// load it too.
func AddNetwork(network Network) error {
	return globalSupportedNetworks.save(network)
}
