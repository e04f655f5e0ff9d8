package destination

import (
	"context"
	"sync/atomic"

	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

type (
	// NewWriterFunc opens a dedicated writer for one pool worker. Each call
	// must yield an independent stream; single writers are not safe to share.
	NewWriterFunc func(ctx context.Context) (*Writer, error)

	PoolOptions struct {
		Writers   int
		BatchSize int
	}

	// WriterPool fans records out over independent write streams. Each worker
	// owns its writer end to end and finalizes it on exit.
	WriterPool struct {
		options      PoolOptions
		init         NewWriterFunc
		totalRecords atomic.Int64
	}
)

const (
	defaultPoolWriters   = 1
	defaultPoolBatchSize = 1000
)

func NewWriterPool(options PoolOptions, init NewWriterFunc) *WriterPool {
	if options.Writers <= 0 {
		options.Writers = defaultPoolWriters
	}
	if options.BatchSize <= 0 {
		options.BatchSize = defaultPoolBatchSize
	}
	return &WriterPool{options: options, init: init}
}

// Sink drains the records channel through the pool's writers and blocks
// until the channel closes or a worker fails. Writers are closed on every
// exit path; a sink failure and a close failure are reported together.
func (p *WriterPool) Sink(ctx context.Context, records <-chan types.Record) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < p.options.Writers; i++ {
		worker := i
		group.Go(func() error {
			writer, err := p.init(groupCtx)
			if err != nil {
				return err
			}

			sinkErr := p.drain(groupCtx, writer, records)
			closeErr := writer.Close(groupCtx)
			if sinkErr != nil && closeErr != nil {
				return multierror.Append(sinkErr, closeErr)
			}
			if sinkErr != nil {
				return sinkErr
			}
			if closeErr != nil {
				return closeErr
			}

			logger.Debugf("pool worker %d wrote %d records", worker, writer.Appended())
			return nil
		})
	}

	return group.Wait()
}

func (p *WriterPool) drain(ctx context.Context, writer *Writer, records <-chan types.Record) error {
	batch := make([]types.Record, 0, p.options.BatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := writer.Append(ctx, batch...); err != nil {
			return err
		}
		p.totalRecords.Add(int64(len(batch)))
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-records:
			if !ok {
				return flush()
			}
			batch = append(batch, record)
			if len(batch) >= p.options.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}

// TotalRecords reports rows successfully handed to the transport.
func (p *WriterPool) TotalRecords() int64 {
	return p.totalRecords.Load()
}
