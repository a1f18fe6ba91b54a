package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/eureka"
	"github.com/media-luna/eureka/internal/ferrors"
)

var identifyLimitSecs float64

var identifyCmd = &cobra.Command{
	Use:   "identify <file>",
	Short: "Decode, fingerprint, and identify an audio excerpt",
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

		rec, err := app.Identify(cmd.Context(), args[0], identifyLimitSecs)
		if errors.Is(err, ferrors.NoMatch) {
			fmt.Println("no match")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("RECORD_ID: %d\n", rec.RecordID)
		fmt.Printf("RECORD_NAME: %s\n", rec.RecordName)
		fmt.Printf("CONFIDENCE: %d\n", rec.Confidence)
		fmt.Printf("OFFSET: %d\n", rec.Offset)
		fmt.Printf("OFFSET_SECS: %.5f\n", rec.OffsetSeconds)
		fmt.Printf("FIELD_FILE_SHA1: %s\n", rec.FileSHA1)
		return nil
	},
}

func init() {
	identifyCmd.Flags().Float64Var(&identifyLimitSecs, "limit-secs", 0, "truncate decoded audio to this many seconds (0 = no limit)")
	rootCmd.AddCommand(identifyCmd)
}
