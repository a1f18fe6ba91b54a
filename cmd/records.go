package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/media-luna/eureka/internal/config"
	"github.com/media-luna/eureka/internal/eureka"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect catalog contents",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every fingerprinted record",
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

		records, err := app.Catalog().ListFingerprintedRecords(cmd.Context())
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no fingerprinted records")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%d\t%s\t%s\n", r.ID, r.Name, r.FileSHA1)
		}
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	rootCmd.AddCommand(recordsCmd)
}
