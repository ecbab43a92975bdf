package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:           "ghrepo",
	Short:         "Inspect GitHub repositories and keep snapshots of them",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		switch {
		case verbosity >= 2:
			level = slog.LevelDebug - 4
		case verbosity == 1:
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v debug, -vv trace)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
