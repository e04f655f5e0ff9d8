package bigquery

import (
	"context"
	"time"

	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/hashicorp/go-multierror"
)

// WriteBatch uploads rows through a pending stream and commits them in one
// scope: either every row becomes visible or none do.
func WriteBatch(ctx context.Context, config *Config, rows []types.Record) error {
	return singleBatch(ctx, config, destination.Pending, rows)
}

// StreamBatch uploads rows through the table's default stream; rows are
// visible as soon as each append is acknowledged.
func StreamBatch(ctx context.Context, config *Config, rows []types.Record) error {
	return singleBatch(ctx, config, destination.Default, rows)
}

func singleBatch(ctx context.Context, config *Config, mode destination.Mode, rows []types.Record) error {
	start := time.Now()

	client, err := NewClient(ctx, config)
	if err != nil {
		return err
	}

	writeErr := destination.WithWriter(ctx, client, func(writer *destination.Writer) error {
		return writer.Append(ctx, rows...)
	}, destination.WithMode(mode))

	closeErr := client.Close()
	if writeErr != nil && closeErr != nil {
		return multierror.Append(writeErr, closeErr)
	}
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return closeErr
	}

	logger.Infof("submitted %d rows to [%s] in %s", len(rows), config.TableID, time.Since(start))
	return nil
}
