package account

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

func SeedToPrivateKey(seed string) (string, *ecdsa.PrivateKey) {
	result, _ := crypto.ToECDSA(crypto.Keccak256([]byte(seed)))
	pubhex := crypto.PubkeyToAddress(result.PublicKey).Hex()
	return pubhex, result
}

// RandomAddress returns a well formed address nobody holds the key of.
func RandomAddress() string {
	ran := make([]byte, 32)
	if _, err := rand.Read(ran); err != nil {
		panic(err)
	}
	addr, _ := SeedToPrivateKey(string(ran))
	return addr
}

func AddressFromPrivateKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func PrivateKeyFromKeystore(file string, password string) (string, *ecdsa.PrivateKey, error) {
	json, err := os.ReadFile(file)
	if err != nil {
		return "", nil, err
	}
	key, err := keystore.DecryptKey(json, password)
	if err != nil {
		return "", nil, err
	}
	return AddressFromPrivateKey(key.PrivateKey), key.PrivateKey, nil
}

// works with both 0x prefix form and naked form
func PrivateKeyFromHex(hex string) (string, *ecdsa.PrivateKey, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	privkey, err := crypto.HexToECDSA(hex)
	if err != nil {
		return "", nil, fmt.Errorf("invalid private key: %w", err)
	}
	return AddressFromPrivateKey(privkey), privkey, nil
}
