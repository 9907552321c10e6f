package cli

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/backup"
	"github.com/tsakani-green/envkeep/internal/config"
	"github.com/tsakani-green/envkeep/internal/keeper"
	"github.com/tsakani-green/envkeep/internal/store"
	"github.com/tsakani-green/envkeep/internal/template"
	"github.com/tsakani-green/envkeep/migrations"
)

// Version is set by main from the build.
var Version = "dev"

var (
	envFile     string
	overlayPath string
	backupDir   string
)

var rootCmd = &cobra.Command{
	Use:   "envkeep",
	Short: "envkeep — manage a deployment's .env file",
	Long: `envkeep regenerates, backs up, validates, and audits the .env file a
deployed backend reads at startup. Secrets never leave the machine; the
template ships placeholders only.`,
}

func init() {
	cfg := config.Load()
	rootCmd.PersistentFlags().StringVar(&envFile, "file", cfg.EnvFile, "Path of the managed env file")
	rootCmd.PersistentFlags().StringVar(&overlayPath, "overlay", cfg.TemplateOverlay, "Optional envkeep.yaml template overlay")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", cfg.BackupDir, "Directory for backups (default: beside the env file)")
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

// loadRegistry builds the key surface, applying the overlay when set.
func loadRegistry() (*template.Registry, error) {
	reg := template.Default()
	overlay, err := template.LoadOverlay(overlayPath)
	if err != nil {
		return nil, err
	}
	return overlay.Apply(reg)
}

// newKeeper wires a keeper for the configured env file. With history set,
// operations are recorded in the revision store; the caller must Close it.
func newKeeper(history bool) (*keeper.Keeper, store.Store, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}

	backups := backup.NewManager(envFile, backupDir, clockwork.NewRealClock())

	var opts []keeper.Option
	var st store.Store
	if history {
		cfg := config.Load()
		db, err := store.NewSQLiteStore(cfg.DBPath, migrations.FS)
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		st = db
		opts = append(opts, keeper.WithStore(db))
	}

	return keeper.New(envFile, reg, backups, opts...), st, nil
}
