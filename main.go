package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danevairena/Bookstore/cache"
	"github.com/danevairena/Bookstore/config"
	"github.com/danevairena/Bookstore/database"
	"github.com/danevairena/Bookstore/handlers"
	"github.com/danevairena/Bookstore/logger"
	"github.com/danevairena/Bookstore/mail"
	"github.com/danevairena/Bookstore/routes"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookstore",
		Short: "Bookstore listings service",
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

// setup loads the configuration, the logger and a migrated database.
func setup() (*config.Config, *logrus.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(cfg)

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema and exit",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("Database migrated")
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if port != "" {
				cfg.Port = port
				if os.Getenv("BASE_URL") == "" {
					cfg.BaseURL = "http://localhost:" + port
				}
			}

			redis := cache.New(cfg, log)
			defer redis.Close()

			mailQueue := mail.NewQueue(mail.New(cfg, log), cfg.MailWorkers, cfg.MailQueueSize, log)
			defer mailQueue.Close()

			app := handlers.NewApp(cfg, log, db, redis, mailQueue)
			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           routes.SetupRoutes(app),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Infof("Server running on port %s", cfg.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	return cmd
}
