package protocol

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/destination/bigquery"
	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/utils"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// loadCmd reads newline-delimited JSON rows and writes them to the target
// table through a writer pool. Pending streams by default, so a failed run
// leaves the table untouched; --stream switches to immediate visibility.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "bqsink load command",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "not-set" {
			return fmt.Errorf("--config not passed")
		}
		if rowsPath == "" {
			return fmt.Errorf("--rows not passed")
		}
		return utils.CheckIfFilesExists(configPath, rowsPath)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &bigquery.Config{}
		if err := utils.UnmarshalFile(configPath, config); err != nil {
			return err
		}
		if schemaPath != "" {
			config.SchemaFile = schemaPath
		}
		if streamMode {
			config.Mode = destination.Default
		}

		client, err := bigquery.NewClient(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer client.Close()

		pool := destination.NewWriterPool(destination.PoolOptions{
			Writers:   writers,
			BatchSize: batchSize,
		}, func(ctx context.Context) (*destination.Writer, error) {
			return destination.NewWriter(ctx, client, destination.WithMode(config.Mode))
		})

		records := make(chan types.Record)
		group, ctx := errgroup.WithContext(cmd.Context())
		group.Go(func() error {
			defer close(records)
			return readRows(ctx, rowsPath, records)
		})
		group.Go(func() error {
			return pool.Sink(ctx, records)
		})

		if err := group.Wait(); err != nil {
			return err
		}

		logger.Infof("loaded %d rows into [%s]", pool.TotalRecords(), config.TableID)
		return nil
	},
}

func readRows(ctx context.Context, path string, records chan<- types.Record) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open rows file [%s]: %s", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		record := types.Record{}
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("invalid JSON on line %d: %s", line, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case records <- record:
		}
	}
	return scanner.Err()
}

func init() {
	loadCmd.Flags().StringVarP(&rowsPath, "rows", "", "", "(Required) Newline-delimited JSON rows file")
	loadCmd.Flags().BoolVarP(&streamMode, "stream", "", false, "Write through the default stream for immediate visibility")
	loadCmd.Flags().IntVarP(&writers, "writers", "", 1, "Number of parallel write streams")
	loadCmd.Flags().IntVarP(&batchSize, "batch-size", "", 1000, "Rows per append call")
}
