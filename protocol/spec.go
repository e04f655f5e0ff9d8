package protocol

import (
	"github.com/datazip-inc/bqsink/constants"
	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/destination/bigquery"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// specCmd prints an example destination config, and drops it next to the
// user's config folder when one is known.
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "bqsink spec command",
	RunE: func(cmd *cobra.Command, args []string) error {
		example := bigquery.Config{
			TableID:       "project.dataset.table",
			Mode:          destination.Pending,
			SchemaFile:    "",
			MaxBatchBytes: 0,
		}
		logger.Info(example)

		if folder := viper.GetString(constants.ConfigFolder); folder != "" {
			return logger.FileLogger(example, folder, "spec", ".json")
		}
		return nil
	},
}
