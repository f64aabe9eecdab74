package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tranvictor/shadowvote/accounts"
	"github.com/tranvictor/shadowvote/config"
	"github.com/tranvictor/shadowvote/metrics"
	"github.com/tranvictor/shadowvote/networks"
	"github.com/tranvictor/shadowvote/service"
	"github.com/tranvictor/shadowvote/store"
	"github.com/tranvictor/shadowvote/ui"
	"github.com/tranvictor/shadowvote/util/account"
	"github.com/tranvictor/shadowvote/wallet"
)

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadAccount returns the signing account, nil when none is configured.
// A hex key from the environment wins over a keystore. --keystore is a
// path or a hint for an account added with "shadowvote account import".
func loadAccount(u ui.UI) (*account.Account, error) {
	if key := config.PrivateKey(); key != "" {
		acc, err := account.NewHexKeyAccount(key)
		if err != nil {
			return nil, fmt.Errorf("couldn't load the private key: %w", err)
		}
		return acc, nil
	}
	if config.Keystore == "" {
		return nil, nil
	}
	path := config.Keystore
	if registry, err := accounts.DefaultRegistry(); err == nil {
		if resolved, err := registry.ResolveKeystore(path); err == nil {
			path = resolved
		}
	}
	password, ok := config.KeystorePassword()
	if !ok {
		var err error
		password, err = u.AskSecret(fmt.Sprintf("Please enter the password of keystore %s:", path))
		if err != nil {
			return nil, fmt.Errorf("couldn't read the keystore password: %w", err)
		}
	}
	acc, err := account.NewKeystoreAccount(path, password)
	if err != nil {
		return nil, fmt.Errorf("couldn't unlock keystore %s: %w", path, err)
	}
	return acc, nil
}

func selectedNetwork() (networks.Network, error) {
	network, err := networks.GetNetwork(config.Network)
	if err != nil {
		return nil, err
	}
	if config.Node != "" {
		network = networks.WithNode(network, config.Node)
	}
	return network, nil
}

func storeLatency() *store.Latency {
	return &store.Latency{
		Write:  config.Latency,
		Read:   config.Latency,
		Lookup: config.Latency / 2,
	}
}

// newService connects to the selected network and picks the backend.
func newService(ctx context.Context, m *metrics.Metrics) (*service.Service, error) {
	network, err := selectedNetwork()
	if err != nil {
		return nil, err
	}
	acc, err := loadAccount(appUI)
	if err != nil {
		return nil, err
	}
	w := wallet.New(network, wallet.Options{
		Account: acc,
		NoWait:  config.NoWait,
		Logger:  logger,
	})
	logger.Debug("connecting",
		zap.String("network", network.GetName()),
		zap.String("contract", config.Contract),
		zap.Bool("signer", acc != nil),
	)
	return service.New(ctx, service.Options{
		Connection: w,
		Contract:   config.Contract,
		Logger:     logger,
		Metrics:    m,
		Latency:    storeLatency(),
	}), nil
}

// withSpinner runs f while a spinner shows msg.
func withSpinner[T any](u ui.UI, msg string, f func() (T, error)) (T, error) {
	stop := u.Spinner(msg)
	defer stop()
	return f()
}

func modeNotice(u ui.UI, svc *service.Service) {
	if svc.Mode() == service.ModeFallback {
		u.Warn("No voting contract available, polls are kept in memory and are lost on exit.")
	}
}
