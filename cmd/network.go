package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/shadowvote/networks"
	"github.com/tranvictor/shadowvote/ui"
)

var (
	NetworkConfig string
	NetworkForce  bool
)

// readNetworkConfig takes either a json object or a path to a json file.
func readNetworkConfig(config string) (networks.Network, error) {
	config = strings.TrimSpace(config)
	if config == "" {
		return nil, fmt.Errorf("--json is required")
	}
	content := []byte(config)
	if !strings.HasPrefix(config, "{") || !strings.HasSuffix(config, "}") {
		var err error
		content, err = os.ReadFile(config)
		if err != nil {
			return nil, fmt.Errorf("couldn't read the provided json file: %w", err)
		}
	}
	network, err := networks.NewNetworkFromJSON(content)
	if err != nil {
		return nil, fmt.Errorf("the provided json is not a valid network config: %w", err)
	}
	if network.GetName() == "" || network.GetChainID() == 0 {
		return nil, fmt.Errorf("the network config needs a name and a chain_id")
	}
	if len(network.GetDefaultNodes()) == 0 && network.GetNodeVariableName() == "" {
		return nil, fmt.Errorf("the network config needs default_nodes or a node_variable_name")
	}
	return network, nil
}

// existingNames are the names of newNetwork that are already taken.
func existingNames(newNetwork networks.Network) []string {
	res := []string{}
	names := append([]string{newNetwork.GetName()}, newNetwork.GetAlternativeNames()...)
	for _, name := range names {
		if _, err := networks.GetNetwork(name); err == nil {
			res = append(res, name)
		}
	}
	return res
}

func renderNetworks(u ui.UI, all []networks.Network) {
	rows := [][]string{}
	for _, n := range all {
		nodes := n.GetNodes()
		keys := make([]string, 0, len(nodes))
		for k := range nodes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		names := strings.Join(append([]string{n.GetName()}, n.GetAlternativeNames()...), ", ")
		for i, k := range keys {
			if i == 0 {
				rows = append(rows, []string{names, fmt.Sprintf("%d", n.GetChainID()), n.GetNodeVariableName(), k + ": " + nodes[k]})
				continue
			}
			rows = append(rows, []string{"", "", "", k + ": " + nodes[k]})
		}
	}
	u.Table([]string{"Network", "Chain ID", "Node env var", "RPC nodes"}, rows)
}

var addNetworkCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new network to the supported networks list locally",
	Long: `--json takes a network config json filepath OR a json string in the following format:
	{
		"name": "network_name",
		"alternative_names": ["alternative_name_1", "alternative_name_2"],
		"chain_id": 1,
		"block_time": 12,
		"node_variable_name": "MY_NETWORK_NODE",
		"default_nodes": {
			"node_name_1": "node_url_1",
			"node_name_2": "node_url_2"
		}
	}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		newNetwork, err := readNetworkConfig(NetworkConfig)
		if err != nil {
			return err
		}
		if taken := existingNames(newNetwork); len(taken) > 0 {
			if !NetworkForce {
				return fmt.Errorf("network with name %s already exists. Abort. If you want to update the network, use flag --force", strings.Join(taken, ", "))
			}
			appUI.Warn("Network with name %s already exists. It will be replaced with the new network.", strings.Join(taken, ", "))
		}
		if err := networks.AddNetwork(newNetwork); err != nil {
			return fmt.Errorf("couldn't add the new network: %w", err)
		}
		appUI.Success("Network %s with chain ID %d added and saved to ~/.shadowvote/networks/.", newNetwork.GetName(), newNetwork.GetChainID())
		return nil
	},
}

var listNetworkCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all of supported networks",
	Long:  ``,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		renderNetworks(appUI, networks.GetSupportedNetworks())
		appUI.Info("\nIf you want to add more networks to the list, use following command:\n> shadowvote network add --json <file or json>")
		appUI.Info("If you want to delete a network, just delete the corresponding json file in ~/.shadowvote/networks/.")
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage all networks that shadowvote supports",
	Long:  ``,
}

func init() {
	addNetworkCmd.Flags().StringVar(&NetworkConfig, "json", "", "network config json, or the path to a file holding it")
	addNetworkCmd.Flags().BoolVarP(&NetworkForce, "force", "f", false, "Force adding the network even if it already exists")

	networkCmd.AddCommand(listNetworkCmd)
	networkCmd.AddCommand(addNetworkCmd)
	rootCmd.AddCommand(networkCmd)
}
