package protocol

import (
	"errors"
	"fmt"

	"github.com/datazip-inc/bqsink/destination/bigquery"
	"github.com/datazip-inc/bqsink/utils"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/spf13/cobra"
	"google.golang.org/api/googleapi"
)

// checkCmd validates the config and proves the target table is reachable.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "bqsink check command",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		return utils.CheckIfFilesExists(configPath)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		err := func() error {
			config := &bigquery.Config{}
			if err := utils.UnmarshalFile(configPath, config); err != nil {
				return err
			}
			if schemaPath != "" {
				config.SchemaFile = schemaPath
			}

			client, err := bigquery.NewClient(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer client.Close()

			schema, err := client.Schema(cmd.Context())
			if err != nil {
				var apiErr *googleapi.Error
				if errors.As(err, &apiErr) {
					return fmt.Errorf("table [%s] not reachable (HTTP %d): %s", config.TableID, apiErr.Code, apiErr.Message)
				}
				return err
			}

			logger.Infof("table [%s] reachable with %d fields", config.TableID, len(schema))
			return nil
		}()

		// status goes to stdout regardless of outcome
		logger.LogConnectionStatus(err)
		return nil
	},
}
