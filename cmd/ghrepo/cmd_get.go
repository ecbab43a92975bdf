package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/ghrepo/internal/application"
	"github.com/ericfisherdev/ghrepo/internal/config"
	"github.com/ericfisherdev/ghrepo/internal/domain/model"
)

// getOptions narrows what get prints.
type getOptions struct {
	issue      int
	permission string
}

var getOpts getOptions

func init() {
	getCmd.Flags().IntVar(&getOpts.issue, "issue", 0, "with the comments resource, list only this issue's comments")
	getCmd.Flags().StringVar(&getOpts.permission, "permission", "", "with the collaborators resource, keep only those granted at least this permission (admin, push, pull)")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:       "get <owner/repo | id> <resource>",
	Short:     "Print a repository sub-resource as JSON",
	Long:      "Print a repository sub-resource as JSON. Resources: " + strings.Join(application.Resources, ", ") + ".",
	Args:      cobra.ExactArgs(2),
	ValidArgs: application.Resources,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseRef(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		svc, err := newRepositoryService(cfg)
		if err != nil {
			return err
		}
		return get(cmd.Context(), cmd.OutOrStdout(), svc, ref, args[1], getOpts)
	},
}

func get(ctx context.Context, out io.Writer, svc *application.RepositoryService, ref model.RepoRef, resource string, opts getOptions) error {
	if opts.permission != "" {
		if resource != "collaborators" {
			return fmt.Errorf("--permission only applies to the collaborators resource")
		}
		want, err := model.ParsePermission(opts.permission)
		if err != nil {
			return err
		}
		users, err := svc.CollaboratorsAtLeast(ctx, ref, want)
		if err != nil {
			return err
		}
		return writeJSON(out, users)
	}

	if opts.issue != 0 {
		if resource != "comments" {
			return fmt.Errorf("--issue only applies to the comments resource")
		}
		if opts.issue < 0 {
			return fmt.Errorf("invalid issue number %d", opts.issue)
		}
		comments, err := svc.CommentsOn(ctx, ref, opts.issue)
		if err != nil {
			return err
		}
		return writeJSON(out, comments)
	}

	v, err := svc.Resource(ctx, ref, resource)
	if err != nil {
		return err
	}
	return writeJSON(out, v)
}
