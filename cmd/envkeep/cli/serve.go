package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/tsakani-green/envkeep/internal/api"
	"github.com/tsakani-green/envkeep/internal/backup"
	"github.com/tsakani-green/envkeep/internal/config"
	"github.com/tsakani-green/envkeep/internal/keeper"
	"github.com/tsakani-green/envkeep/internal/sse"
	"github.com/tsakani-green/envkeep/internal/store"
	"github.com/tsakani-green/envkeep/internal/watch"
	"github.com/tsakani-green/envkeep/migrations"
)

var (
	serveDockerfile string
	serveContext    string
)

func init() {
	serveCmd.Flags().StringVar(&serveDockerfile, "dockerfile", "Dockerfile", "Dockerfile for the preflight endpoint")
	serveCmd.Flags().StringVar(&serveContext, "context", "", "Build context for the preflight endpoint")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the envkeep daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		slog.Info("starting envkeep", "version", Version, "port", cfg.Port, "file", envFile, "db", cfg.DBPath)

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		db, err := store.NewSQLiteStore(cfg.DBPath, migrations.FS)
		if err != nil {
			slog.Error("failed to open history store", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		broadcaster := sse.NewBroadcaster()
		defer broadcaster.Close()

		if cfg.MasterKey == "" {
			slog.Warn("ENVKEEP_MASTER_KEY not set — mutations unauthenticated (dev mode)")
		}

		backups := backup.NewManager(envFile, backupDir, clockwork.NewRealClock())
		k := keeper.New(envFile, reg, backups,
			keeper.WithStore(db), keeper.WithBroadcaster(broadcaster))

		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		if watcher, err := watch.New(envFile, broadcaster); err != nil {
			slog.Warn("env file watcher disabled", "error", err)
		} else {
			go watcher.Run(watchCtx)
		}

		router := api.NewRouter(k, db, broadcaster, api.Options{
			MasterKey:  cfg.MasterKey,
			Dockerfile: serveDockerfile,
			ContextDir: serveContext,
		})

		srv := &http.Server{
			Addr:        cfg.Port,
			Handler:     router,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 120 * time.Second,
			// No WriteTimeout — SSE streams are long-lived connections
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		go func() {
			slog.Info("server listening", "addr", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		<-done
		slog.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		slog.Info("server stopped")
		return nil
	},
}
