package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"sealink/internal/crypto"
	"sealink/internal/domain"
	"sealink/internal/store"
	"sealink/internal/transport"
)

// Wire bundles the keystore, logger, and transport plumbing for the CLI.
type Wire struct {
	Identity domain.IdentityStore
	Keystore *store.IdentityFileStore
	Exchange crypto.Exchange
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *transport.Metrics
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	keystore := store.NewIdentityFileStore(cfg.Home)

	exchange, err := crypto.SuiteByName(cfg.Suite)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := transport.NewMetrics(registry)

	return &Wire{
		Identity: keystore,
		Keystore: keystore,
		Exchange: exchange,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// TransportConfig assembles a transport.Config around the given identity
// and expected peer key.
func (w *Wire) TransportConfig(id domain.Identity, peer domain.Ed25519Public) transport.Config {
	return transport.Config{
		Identity: id,
		Peer:     peer,
		Exchange: w.Exchange,
		Logger:   w.Logger,
		Metrics:  w.Metrics,
	}
}

// newLogger builds a console logger writing to stderr so application
// output on stdout stays clean.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
