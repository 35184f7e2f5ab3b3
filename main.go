// VaultFeed aggregates articles from configured RSS/Atom feeds into a
// single filterable reading view, served over a JSON API. Read and saved
// state lives in a local sqlite database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	_ "golang.org/x/crypto/x509roots/fallback"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/jdholdren/vaultfeed/internal/catalog"
	"github.com/jdholdren/vaultfeed/internal/extract"
	"github.com/jdholdren/vaultfeed/internal/fetch"
	"github.com/jdholdren/vaultfeed/internal/server"
	"github.com/jdholdren/vaultfeed/internal/sqlite"
	"github.com/jdholdren/vaultfeed/internal/summary"
	"github.com/jdholdren/vaultfeed/logger"
	"github.com/jdholdren/vaultfeed/migrations"
)

type config struct {
	Port     int    `env:"PORT, default=8080"`
	Database string `env:"DATABASE, required"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	CorsOrigin      string `env:"CORS_ORIGIN, default=*"`

	// Whether to run a full refresh immediately on boot.
	RefreshOnStart bool `env:"REFRESH_ON_START, default=true"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	slog.SetDefault(logger.New(cfg.LoggerFormat))

	// Start the application
	if err := run(ctx, cfg); err != nil {
		slog.Error("error running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	slog.Info("running", "port", cfg.Port, "database", cfg.Database)

	// Connect to the db
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_journal_mode=WAL", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error migrating: %s", err)
	}

	repo := sqlite.New(dbx)
	cat, err := catalog.Load(ctx, repo, fetch.New(), extract.New())
	if err != nil {
		return fmt.Errorf("error loading catalog: %s", err)
	}

	s := server.New(server.Config{
		Port:       cfg.Port,
		CorsOrigin: cfg.CorsOrigin,
	}, cat, summary.New(cfg.AnthropicAPIKey))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Start the server
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error listening: %s", err)
		}

		return nil
	})
	g.Go(func() error {
		// Block from shutting down until the group is canceled
		<-gCtx.Done()

		downCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(downCtx); err != nil {
			slog.Error("error shutting down server", "error", err)
		}

		return nil
	})
	g.Go(func() error {
		// Start the auto-refresh scheduler
		if err := catalog.NewScheduler(cat).Run(gCtx); err != nil {
			return fmt.Errorf("error running scheduler: %s", err)
		}

		return nil
	})

	if cfg.RefreshOnStart {
		g.Go(func() error {
			cat.Refresh(gCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error running: %s", err)
	}

	return nil
}
