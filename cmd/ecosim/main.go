// Command ecosim runs the ecosystem simulator: an interactive menu by
// default, or one-shot subcommands for scripting.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/ecosim/internal/config"
	"github.com/talgya/ecosim/internal/ecosystem"
	"github.com/talgya/ecosim/internal/engine"
	"github.com/talgya/ecosim/internal/menu"
	"github.com/talgya/ecosim/internal/persistence"
)

// app holds what every command needs once flags are parsed.
type app struct {
	// Global flags
	configPath string
	envPath    string
	dataDir    string
	backend    string
	logLevel   string

	cfg   *config.Config
	store ecosystem.Store
	sim   *engine.Simulation
}

func newRootCmd(in io.Reader) (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ecosim",
		Short: "Ecosystem simulator",
		Long: `ecosim manages named ecosystems of plants and animals, resolves
predator/prey interactions and forecasts population trends from the
ecosystem's temperature, humidity and available water.

Run without arguments to start the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bootstrap(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return menu.NewSession(a.sim, in, cmd.OutOrStdout()).Run()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (default: embedded defaults)")
	flags.StringVar(&a.envPath, "env-file", ".env", "Environment file loaded before config")
	flags.StringVar(&a.dataDir, "data-dir", "", "Data directory (overrides config and "+config.EnvDataDir+")")
	flags.StringVar(&a.backend, "backend", "", "Storage backend: text, sqlite or memory")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newAddPlantCmd(a),
		newAddAnimalCmd(a),
		newRemoveCmd(a),
		newDietCmd(a),
		newInteractCmd(a),
		newPredictCmd(a),
		newConditionsCmd(a),
		newHistoryCmd(a),
		newExportCmd(a),
	)
	return rootCmd, a
}

func main() {
	if err := run(newRootCmd(os.Stdin)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, sets up logging and opens the store.
func (a *app) bootstrap(cmd *cobra.Command) error {
	// ── Configuration ─────────────────────────────────────────────────
	if err := config.LoadDotEnv(a.envPath); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath, config.Overrides{
		DataDir:  a.dataDir,
		Backend:  a.backend,
		LogLevel: a.logLevel,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	// ── Logging ───────────────────────────────────────────────────────
	// Stderr keeps menu and command output on stdout clean.
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	// ── Storage ───────────────────────────────────────────────────────
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	a.store = store
	slog.Debug("store opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)

	// ── Simulation ────────────────────────────────────────────────────
	a.sim = engine.NewSimulation(ecosystem.NewRegistry(store))
	return nil
}

// run executes cmd and closes the store whether or not the command failed.
func run(cmd *cobra.Command, a *app) error {
	err := cmd.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close store: %w", cerr)
	}
	return err
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (ecosystem.Store, error) {
	switch cfg.Backend {
	case config.BackendText:
		return persistence.NewTextStore(cfg.DataDir, cfg.FileNames()), nil
	case config.BackendSQLite:
		path := cfg.DatabasePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := persistence.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return db, nil
	case config.BackendMemory:
		return persistence.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
