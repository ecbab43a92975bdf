package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/ericfisherdev/ghrepo/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/ghrepo/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/config"
	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

var (
	showOverview bool
	showSnapshot bool
)

func init() {
	showCmd.Flags().BoolVar(&showOverview, "overview", false, "include languages, branches, labels and milestones")
	showCmd.Flags().BoolVar(&showSnapshot, "snapshot", false, "print the stored snapshot instead of fetching")
	showCmd.MarkFlagsMutuallyExclusive("overview", "snapshot")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <owner/repo | id>",
	Short: "Print a repository as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseRef(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if showSnapshot {
			return printSnapshot(cmd.Context(), cmd.OutOrStdout(), cfg, ref)
		}

		svc, err := newRepositoryService(cfg)
		if err != nil {
			return err
		}
		return show(cmd.Context(), cmd.OutOrStdout(), svc, ref, showOverview)
	},
}

func show(ctx context.Context, out io.Writer, svc *application.RepositoryService, ref model.RepoRef, overview bool) error {
	if overview {
		ov, err := svc.Overview(ctx, ref)
		if err != nil {
			return err
		}
		return writeJSON(out, ov)
	}

	repo, err := svc.Repository(ctx, ref)
	if err != nil {
		return err
	}
	return writeJSON(out, repo)
}

func printSnapshot(ctx context.Context, out io.Writer, cfg *config.Config, ref model.RepoRef) error {
	if !ref.HasName() {
		return fmt.Errorf("snapshots are stored by name, not id: %s", ref)
	}

	db, err := sqliteadapter.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	snap, err := sqliteadapter.NewSnapshotRepo(db).Get(ctx, ref.FullName())
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("no snapshot of %s in %s", ref, cfg.DBPath)
	}

	return writeJSON(out, struct {
		Repository model.Repository `json:"repository"`
		Languages  model.Languages  `json:"languages"`
		FetchedAt  string           `json:"fetched_at"`
	}{snap.Repository, snap.Languages, snap.FetchedAt.Format(time.RFC3339)})
}

// newRepositoryService builds a read-only service for one-shot commands.
// Snapshots are not touched, so no store is attached.
func newRepositoryService(cfg *config.Config) (*application.RepositoryService, error) {
	client, err := githubadapter.NewClient(cfg.GitHubToken, cfg.APIURL)
	if err != nil {
		return nil, err
	}
	return application.NewRepositoryService(client, nil), nil
}

// parseRef accepts "owner/repo" or a numeric repository id, optionally
// prefixed with '#'.
func parseRef(arg string) (model.RepoRef, error) {
	if id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64); err == nil {
		if id <= 0 {
			return model.RepoRef{}, fmt.Errorf("invalid repository id %d", id)
		}
		return model.RepoRefByID(id), nil
	}
	return model.ParseRepoRef(arg)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
