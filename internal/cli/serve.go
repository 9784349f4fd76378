package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FMSoblaci/oblat-project-flow/internal/api"
	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
	"github.com/FMSoblaci/oblat-project-flow/internal/blob"
	"github.com/FMSoblaci/oblat-project-flow/internal/config"
	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	"github.com/FMSoblaci/oblat-project-flow/internal/db/driver"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

// newServeCmd creates the serve command for the API server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the project flow API server for the web client.

The server provides REST endpoints and a WebSocket event stream for:
  • Tasks, subtasks, bugs, comments and milestones
  • Dashboard statistics and the activity feed
  • Authentication and session handling

Example:
  oblat serve              # Start on the configured address
  oblat serve --port 3000  # Start on a custom port`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				cfg.Server.Addr = fmt.Sprintf(":%d", port)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger()

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			blobs, err := blob.NewStore(cfg.Uploads.Dir)
			if err != nil {
				return fmt.Errorf("open upload store: %w", err)
			}

			server := api.New(&api.Config{
				Addr:           cfg.Server.Addr,
				AllowedOrigin:  cfg.Server.AllowedOrigin,
				Logger:         logger,
				Store:          store,
				Auth:           auth.NewService(store, logger, cfg.Auth.SessionTTL),
				Blobs:          blobs,
				Publisher:      events.NewMemoryPublisher(),
				StatsTTL:       cfg.Stats.CacheTTL,
				MaxUploadBytes: cfg.Uploads.MaxBytes,
			})

			if !quiet {
				fmt.Printf("Starting API server on %s...\n", cfg.Server.Addr)
				fmt.Println("Press Ctrl+C to stop")
			}

			// Handle graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				if !quiet {
					fmt.Println("\nShutting down...")
				}
				cancel()
			}()

			return server.StartContext(ctx)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "port to listen on")

	return cmd
}

// loadConfig loads the effective config, honoring --config.
func loadConfig() (*config.Config, error) {
	if path := configPath(); path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// openStore opens the configured database and runs migrations.
func openStore(cfg *config.Config) (*db.Store, error) {
	switch cfg.Database.Dialect {
	case "postgres":
		return db.OpenStoreWithDialect(cfg.Database.DSN, driver.DialectPostgres)
	default:
		return db.OpenStore(cfg.Database.DSN)
	}
}

// newLogger builds the process logger honoring --verbose and --quiet.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
