package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/eureka"
)

var (
	ingestExtensions []string
	ingestWorkers    int
	ingestLimitSecs  float64
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <directory>",
	Short: "Fingerprint every matching audio file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		app, err := eureka.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		stats, err := app.IngestDirectory(cmd.Context(), args[0], ingestExtensions, ingestWorkers, ingestLimitSecs)
		if err != nil {
			return err
		}

		fmt.Printf("discovered=%d ingested=%d skipped=%d failed=%d\n",
			stats.Discovered, stats.Ingested, stats.Skipped, stats.Failed)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestExtensions, "ext", []string{"wav"}, "file extensions to ingest")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "worker count (0 = number of CPUs)")
	ingestCmd.Flags().Float64Var(&ingestLimitSecs, "limit-secs", 0, "truncate decoded audio to this many seconds (0 = no limit)")
	rootCmd.AddCommand(ingestCmd)
}
