// Package accounts keeps a local book of signing accounts: encrypted
// keystores under ~/.shadowvote/keystores and a json record per account
// under ~/.shadowvote/accounts so they can be looked up by address or
// description.
package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// scrypt cost of new keystores
var (
	scryptN = gethkeystore.StandardScryptN
	scryptP = gethkeystore.StandardScryptP
)

type AccDesc struct {
	Address string `json:"address"`
	Keypath string `json:"keypath"`
	Desc    string `json:"desc"`
}

type Registry struct {
	dir string
}

func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// DefaultRegistry lives in ~/.shadowvote.
func DefaultRegistry() (*Registry, error) {
	usr, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("couldn't find the home dir: %w", err)
	}
	return NewRegistry(filepath.Join(usr.HomeDir, ".shadowvote")), nil
}

func (r *Registry) keystoreDir() string { return filepath.Join(r.dir, "keystores") }
func (r *Registry) recordDir() string   { return filepath.Join(r.dir, "accounts") }

type keystore struct {
	Address string `json:"address"`
}

// StorePrivateKeyWithKeystore encrypts the hex key with passphrase and
// returns the path of the new keystore and its address.
func (r *Registry) StorePrivateKeyWithKeystore(privateKey string, passphrase string) (string, string, error) {
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return "", "", fmt.Errorf("invalid private key: %w", err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", "", err
	}
	key := &gethkeystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	keystoreJSON, err := gethkeystore.EncryptKey(key, passphrase, scryptN, scryptP)
	if err != nil {
		return "", "", fmt.Errorf("couldn't encrypt the key: %w", err)
	}

	if err := os.MkdirAll(r.keystoreDir(), 0o700); err != nil {
		return "", "", err
	}
	path := filepath.Join(r.keystoreDir(), fmt.Sprintf("%s.json", key.Address.Hex()))
	if err := os.WriteFile(path, keystoreJSON, 0o600); err != nil {
		return "", "", err
	}
	return path, key.Address.Hex(), nil
}

// VerifyKeystore returns the checksummed address the keystore at path is for.
func VerifyKeystore(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	k := &keystore{}
	if err := json.Unmarshal(content, k); err != nil {
		return "", fmt.Errorf("%s is not a keystore: %w", path, err)
	}
	if !common.IsHexAddress(k.Address) {
		return "", fmt.Errorf("%s doesn't hold a valid address", path)
	}
	return common.HexToAddress(k.Address).Hex(), nil
}

func (r *Registry) StoreAccountRecord(accDesc AccDesc) error {
	if err := os.MkdirAll(r.recordDir(), 0o700); err != nil {
		return err
	}
	content, err := json.MarshalIndent(accDesc, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(r.recordDir(), fmt.Sprintf("%s.json", accDesc.Address))
	return os.WriteFile(path, content, 0o600)
}

// GetAccounts returns every stored record sorted by address. Unreadable
// records are skipped.
func (r *Registry) GetAccounts() ([]AccDesc, error) {
	paths, err := filepath.Glob(filepath.Join(r.recordDir(), "*.json"))
	if err != nil {
		return nil, fmt.Errorf("getting accounts failed: %w", err)
	}
	result := []AccDesc{}
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		desc := AccDesc{}
		if err := json.Unmarshal(content, &desc); err != nil || !common.IsHexAddress(desc.Address) {
			continue
		}
		result = append(result, desc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })
	return result, nil
}

// GetAccount finds the record best matching input, an address or words
// from its description.
func (r *Registry) GetAccount(input string) (AccDesc, error) {
	accs, err := r.GetAccounts()
	if err != nil {
		return AccDesc{}, err
	}
	if common.IsHexAddress(input) {
		for _, acc := range accs {
			if strings.EqualFold(acc.Address, input) {
				return acc, nil
			}
		}
	}
	source := FuzzySource(accs)
	matches := fuzzy.FindFrom(strings.ReplaceAll(input, " ", "_"), source)
	if len(matches) == 0 {
		return AccDesc{}, fmt.Errorf("no account is found with '%s'", input)
	}
	return source[matches[0].Index], nil
}

// ResolveKeystore takes a keystore path, or a hint for a stored account,
// and returns the keystore path.
func (r *Registry) ResolveKeystore(hint string) (string, error) {
	if info, err := os.Stat(hint); err == nil && !info.IsDir() {
		return hint, nil
	}
	acc, err := r.GetAccount(hint)
	if err != nil {
		return "", fmt.Errorf("%s is neither a keystore file nor a known account: %w", hint, err)
	}
	return acc.Keypath, nil
}
