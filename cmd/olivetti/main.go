package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"olivetti/internal/config"
	"olivetti/internal/logging"
	"olivetti/internal/store"
	"olivetti/internal/vault"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "olivetti",
	Short: "Olivetti - Creative Editing Partner",
	Long: `Olivetti is a creative editing partner for fiction writers.

It trains on your own writing samples (voice vaults and style banks),
retrieves the most relevant exemplars for the passage you are working on,
and assembles them with your story bible into a single weighted brief
that conditions the generative model.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workspace == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve workspace: %w", err)
			}
			workspace = cwd
		}

		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Shutdown()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles the wired subsystems a command needs.
type app struct {
	cfg    *config.Config
	db     *store.LocalStore
	voices *vault.Store
	banks  *vault.Store
}

// openApp loads config, opens the database, and hydrates both exemplar
// stores from it.
func openApp() (*app, error) {
	cfg, err := config.Load(filepath.Join(workspace, ".olivetti", "config.yaml"))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(workspace, dbPath)
	}
	db, err := store.NewLocalStore(dbPath)
	if err != nil {
		return nil, err
	}

	voices := vault.NewStore("voice_vault")
	banks := vault.NewStore("style_bank")
	if err := db.LoadVault(voices); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.LoadVault(banks); err != nil {
		db.Close()
		return nil, err
	}

	return &app{cfg: cfg, db: db, voices: voices, banks: banks}, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// storeFor maps a namespace flag to the matching exemplar store.
func (a *app) storeFor(namespace string) *vault.Store {
	if namespace == "style_bank" {
		return a.banks
	}
	return a.voices
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")

	rootCmd.AddCommand(newCollectionCmd("vault", "voice_vault", "voice"))
	rootCmd.AddCommand(newCollectionCmd("bank", "style_bank", "style bank"))
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
