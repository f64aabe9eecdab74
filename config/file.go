package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File is ~/.shadowvote/config.yaml. Pointers tell an unset key from a
// zero value.
type File struct {
	Network  string         `yaml:"network"`
	Node     string         `yaml:"node"`
	Contract string         `yaml:"contract"`
	Keystore string         `yaml:"keystore"`
	NoWait   *bool          `yaml:"no_wait"`
	Latency  *time.Duration `yaml:"latency"`
}

func DefaultConfigFile() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".shadowvote", "config.yaml")
}

// LoadFile reads path. A missing file is only an error when required.
func LoadFile(path string, required bool) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return f, nil
		}
		return f, fmt.Errorf("couldn't read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}
	return f, nil
}

// Merge fills every setting whose flag was not given on the command line,
// from the environment first and then from the file. Anything left keeps
// the flag default.
func Merge(s Settings, changed func(flag string) bool, f File, getenv func(string) string) (Settings, error) {
	pick := func(flag, env, fromFile string, dst *string) {
		if changed(flag) {
			return
		}
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*dst = v
			return
		}
		if v := strings.TrimSpace(fromFile); v != "" {
			*dst = v
		}
	}
	pick("network", NetworkEnv, f.Network, &s.Network)
	pick("node", NodeEnv, f.Node, &s.Node)
	pick("contract", ContractEnv, f.Contract, &s.Contract)
	pick("keystore", KeystoreEnv, f.Keystore, &s.Keystore)

	if !changed("no-wait") {
		if v, ok := parseBool(getenv(NoWaitEnv)); ok {
			s.NoWait = v
		} else if f.NoWait != nil {
			s.NoWait = *f.NoWait
		}
	}
	if !changed("latency") && f.Latency != nil {
		if *f.Latency < 0 {
			return s, fmt.Errorf("latency can't be negative, got %s", *f.Latency)
		}
		s.Latency = *f.Latency
	}
	return s, nil
}

// Apply merges the environment and the config file into the globals.
func Apply(changed func(flag string) bool) error {
	path, required := ConfigFile, true
	if path == "" {
		path, required = DefaultConfigFile(), false
	}
	f, err := LoadFile(path, required)
	if err != nil {
		return err
	}
	s, err := Merge(Current(), changed, f, os.Getenv)
	if err != nil {
		return err
	}
	if s.Latency < 0 {
		return fmt.Errorf("latency can't be negative, got %s", s.Latency)
	}
	set(s)
	return nil
}

// KeystorePassword is the password from the environment, if any.
func KeystorePassword() (string, bool) {
	v, ok := os.LookupEnv(KeystorePasswordEnv)
	return v, ok
}

// PrivateKey is the hex key held in the env var named by --private-key-env.
func PrivateKey() string {
	name := PrivateKeyEnv
	if name == "" {
		name = DefaultPrivateKeyEnv
	}
	return strings.TrimPrefix(strings.TrimSpace(os.Getenv(name)), "0x")
}

func parseBool(s string) (bool, bool) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return b, err == nil
}
