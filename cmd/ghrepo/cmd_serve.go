package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/ghrepo/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/ghrepo/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/ghrepo/internal/adapter/driving/http"
	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/config"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll tracked repositories and serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_url", cfg.APIURL,
		"poll_interval", cfg.PollInterval,
		"repos", len(cfg.Repos),
		"authenticated", cfg.HasGitHubToken(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode) and migrate it.
	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready", "path", db.Path())

	// 4. Wire adapters.
	snapshotStore := sqliteadapter.NewSnapshotRepo(db)

	ghClient, err := githubadapter.NewClient(cfg.GitHubToken, cfg.APIURL)
	if err != nil {
		return err
	}
	if !cfg.HasGitHubToken() {
		slog.Warn("no github token configured, requests are anonymous and rate limited")
	}

	// 5. Create and start poll service.
	repoSvc := application.NewRepositoryService(ghClient, snapshotStore)
	pollSvc := application.NewPollService(repoSvc, cfg.Repos, cfg.PollInterval)
	go pollSvc.Start(ctx)

	// 6. Create HTTP handler.
	apiHandler := httphandler.NewHandler(repoSvc, pollSvc, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 7. Log startup complete.
	slog.Info("ghrepo started",
		"listen_addr", cfg.ListenAddr,
		"poll_interval", cfg.PollInterval,
	)

	// 8. Serve until a shutdown signal, draining in-flight requests for up to
	// 10s. A listen failure such as a port in use ends serve with an error.
	if err := runServer(ctx, srv, 10*time.Second); err != nil {
		return err
	}

	// 9. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}

// runServer serves srv until ctx is canceled and then shuts it down,
// allowing drain for in-flight requests. Listen and serve failures are
// returned.
func runServer(ctx context.Context, srv *http.Server, drain time.Duration) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	slog.Info("http server listening", "addr", ln.Addr().String())

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
