// Package cmd is eureka's CLI, replacing the teacher's flat
// cmd/main.go flag.Bool/flag.String dispatch with cobra subcommands
// (grounded on zfogg-sidechain's cli/internal/cmd, the pack's cobra
// user), since the teacher's own CLI already modeled two
// mutually-exclusive verbs (-file to ingest, -recognize to identify)
// that map naturally onto `ingest`/`identify` subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/media-luna/eureka/internal/logx"
)

var (
	configPath string
	verbosity  string
)

var rootCmd = &cobra.Command{
	Use:   "eureka",
	Short: "Acoustic fingerprinting and recognition engine",
	Long: `eureka extracts landmark hashes from reference audio, stores them
in a catalog, and identifies unknown excerpts by hash-based alignment.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logx.SetLevel(verbosity)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&verbosity, "log-level", "info", "debug, info, warn, or error")
}

// Execute runs the root command; it is the sole entry point called
// from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
