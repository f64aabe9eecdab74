package store

import (
	"github.com/tranvictor/shadowvote/common"
)

// Fixtures returns the polls a fresh fallback store is seeded with. Each
// call builds new values so stores never share state.
func Fixtures() []common.Poll {
	return []common.Poll{
		{
			ID:       "1",
			Question: "What is your favorite programming language?",
			Options:  []string{"JavaScript", "Python", "Rust", "Solidity"},
			Counts:   []int{12, 8, 5, 20},
			Creator:  "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			IsActive: true,
		},
		{
			ID:       "2",
			Question: "Which blockchain do you prefer?",
			Options:  []string{"Ethereum", "Solana", "Polkadot", "Cardano"},
			Counts:   []int{25, 14, 9, 7},
			Creator:  "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			IsActive: true,
		},
		{
			ID:       "3",
			Question: "Best crypto wallet?",
			Options:  []string{"MetaMask", "WalletConnect", "Coinbase Wallet", "Trust Wallet"},
			Counts:   []int{18, 11, 9, 12},
			Creator:  "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
			IsActive: false,
		},
	}
}
