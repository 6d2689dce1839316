// Package app wires adapters, providers and the engine behind a small
// facade used by the CLI commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/devbox/internal/adapters/command"
	"github.com/felixgeelhaar/devbox/internal/adapters/download"
	"github.com/felixgeelhaar/devbox/internal/adapters/ledgerfile"
	"github.com/felixgeelhaar/devbox/internal/adapters/logging"
	"github.com/felixgeelhaar/devbox/internal/adapters/tmux"
	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/domain/engine"
	"github.com/felixgeelhaar/devbox/internal/domain/ledger"
	"github.com/felixgeelhaar/devbox/internal/domain/session"
	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/provider/apt"
	"github.com/felixgeelhaar/devbox/internal/provider/binary"
	"github.com/felixgeelhaar/devbox/internal/provider/gitconfig"
	"github.com/felixgeelhaar/devbox/internal/provider/script"
	"github.com/felixgeelhaar/devbox/internal/provider/shellrc"
	"github.com/felixgeelhaar/devbox/internal/provider/sshkey"
	"github.com/felixgeelhaar/devbox/internal/provider/starship"
	"github.com/felixgeelhaar/devbox/internal/provider/workspace"
)

// Devbox is the application facade.
type Devbox struct {
	out        io.Writer
	logger     ports.Logger
	runner     ports.CommandRunner
	elevator   ports.Elevator
	fetcher    ports.Downloader
	mux        ports.Multiplexer
	repo       ledger.Repository
	ledgerPath string
}

// Option configures the facade, mainly for tests.
type Option func(*Devbox)

// WithLogger overrides the logger.
func WithLogger(logger ports.Logger) Option {
	return func(d *Devbox) { d.logger = logger }
}

// WithRunner overrides the command runner.
func WithRunner(runner ports.CommandRunner) Option {
	return func(d *Devbox) { d.runner = runner }
}

// WithElevator overrides the elevation boundary.
func WithElevator(elevator ports.Elevator) Option {
	return func(d *Devbox) { d.elevator = elevator }
}

// WithDownloader overrides the artifact fetcher.
func WithDownloader(fetcher ports.Downloader) Option {
	return func(d *Devbox) { d.fetcher = fetcher }
}

// WithMultiplexer overrides the terminal multiplexer client.
func WithMultiplexer(mux ports.Multiplexer) Option {
	return func(d *Devbox) { d.mux = mux }
}

// WithLedgerPath overrides the ledger location.
func WithLedgerPath(path string) Option {
	return func(d *Devbox) { d.ledgerPath = path }
}

// New creates the facade with production adapters.
func New(out io.Writer, opts ...Option) *Devbox {
	runner := command.NewRealRunner()
	d := &Devbox{
		out:        out,
		logger:     logging.NewConsoleLogger(os.Stderr, ports.LevelInfo),
		runner:     runner,
		elevator:   command.NewSudoElevator(runner),
		fetcher:    download.NewHTTPFetcher(),
		mux:        tmux.NewClient(runner),
		repo:       ledgerfile.NewJSONRepository(),
		ledgerPath: DefaultLedgerPath(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultCatalogPath is where the catalog lives unless overridden.
func DefaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devbox.yaml"
	}
	return filepath.Join(home, ".config", "devbox", "catalog.yaml")
}

// DefaultLedgerPath is where run outcomes are persisted.
func DefaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "devbox-ledger.json"
	}
	return filepath.Join(home, ".local", "state", "devbox", "ledger.json")
}

// providers returns the full provider set in no particular order; the
// catalog decides which kinds are used.
func (d *Devbox) providers() []catalog.Provider {
	return []catalog.Provider{
		apt.NewProvider(d.runner, d.elevator),
		script.NewProvider(d.runner, d.fetcher, d.elevator),
		binary.NewProvider(d.fetcher, d.elevator),
		shellrc.NewProvider(),
		gitconfig.NewProvider(),
		starship.NewProvider(),
		sshkey.NewProvider(),
		workspace.NewProvider(d.mux),
	}
}

// LoadRegistry loads and compiles the catalog into a closed registry.
func (d *Devbox) LoadRegistry(catalogPath string) (*catalog.Registry, error) {
	file, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return catalog.Compile(file.Steps, d.providers())
}

// Environment builds the immutable session context for this invocation.
func (d *Devbox) Environment(ctx context.Context) (session.Context, error) {
	return session.FromEnvironment(ctx, d.elevator)
}

// Run loads the catalog and executes it. With dryRun the presence checks
// run but nothing is applied and the ledger is untouched.
func (d *Devbox) Run(ctx context.Context, catalogPath string, dryRun bool) (*engine.Report, error) {
	registry, err := d.LoadRegistry(catalogPath)
	if err != nil {
		return nil, err
	}

	env, err := d.Environment(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect environment: %w", err)
	}

	runner := engine.NewRunner(d.repo, d.ledgerPath, d.logger)
	return runner.Run(ctx, registry, env, dryRun)
}
