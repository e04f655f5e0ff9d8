package destination

import (
	"context"
	"sync/atomic"

	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/typeutils"
	"github.com/datazip-inc/bqsink/utils"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/hashicorp/go-multierror"
)

// Writer is a scoped resource bound to one target table: creating it opens a
// write stream, Close finalizes the stream (and commits it in pending mode).
// It is a single-goroutine resource; open one writer per concurrent stream.
type Writer struct {
	client    StreamClient
	stream    Stream
	schema    types.Schema
	converter *typeutils.RecordConverter
	mode      Mode
	closed    atomic.Bool
	appended  atomic.Int64
}

type WriterOption func(*writerOptions)

type writerOptions struct {
	mode      Mode
	schema    types.Schema
	converter *typeutils.RecordConverter
}

// WithMode selects pending (buffered, commit on close) or default
// (immediate) stream semantics. Pending is the default.
func WithMode(mode Mode) WriterOption {
	return func(o *writerOptions) {
		o.mode = mode
	}
}

// WithSchema overrides the schema instead of fetching table metadata.
func WithSchema(schema types.Schema) WriterOption {
	return func(o *writerOptions) {
		o.schema = schema
	}
}

// WithConverter replaces the default record converter, e.g. to carry custom
// type mappings or strict missing/extra field policies.
func WithConverter(converter *typeutils.RecordConverter) WriterOption {
	return func(o *writerOptions) {
		o.converter = converter
	}
}

// NewWriter opens a write stream against the client's table. The returned
// writer must be finalized with Close, error path included.
func NewWriter(ctx context.Context, client StreamClient, opts ...WriterOption) (*Writer, error) {
	options := &writerOptions{mode: Pending}
	for _, opt := range opts {
		opt(options)
	}

	schema := options.schema
	if schema == nil {
		fetched, err := client.Schema(ctx)
		if err != nil {
			return nil, err
		}
		schema = fetched
	}
	if err := schema.Normalize(); err != nil {
		return nil, err
	}

	converter := options.converter
	if converter == nil {
		converter = typeutils.NewRecordConverter(nil)
	}

	stream, err := client.OpenStream(ctx, options.mode, schema)
	if err != nil {
		return nil, err
	}
	logger.Debugf("opened %s stream against table [%s]", options.mode, client.Table())

	return &Writer{
		client:    client,
		stream:    stream,
		schema:    schema,
		converter: converter,
		mode:      options.mode,
	}, nil
}

// Schema returns the schema the writer converts rows against.
func (w *Writer) Schema() types.Schema {
	return w.schema
}

// Append converts each row against the table schema and forwards the batch
// to the write stream. A conversion failure on any row aborts the whole call
// before anything reaches the transport; the writer stays open and reusable.
func (w *Writer) Append(ctx context.Context, rows ...types.Record) error {
	if w.closed.Load() {
		return &UseAfterCloseError{Table: w.client.Table()}
	}

	converted := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		out, err := w.converter.Convert(row, w.schema)
		if err != nil {
			return err
		}
		converted = append(converted, out)
	}

	if err := w.stream.AppendRows(ctx, converted); err != nil {
		return err
	}
	w.appended.Add(int64(len(converted)))
	return nil
}

// Appended reports the number of rows acknowledged by the transport.
func (w *Writer) Appended() int64 {
	return w.appended.Load()
}

// Close finalizes the stream: pending streams are finalized and committed so
// their rows become visible, default streams are just closed. Close is
// idempotent; the writer moves to its final state even when finalization
// fails, so a failed commit never leaks the stream.
func (w *Writer) Close(ctx context.Context) error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}

	if w.mode == Pending {
		return utils.ErrExecSequential(
			utils.ErrExecFormat("failed to finalize stream: %s", func() error { return w.stream.Finalize(ctx) }),
			utils.ErrExecFormat("failed to commit stream: %s", func() error { return w.stream.Commit(ctx) }),
			w.stream.Close,
		)
	}
	return w.stream.Close()
}

// WithWriter runs fn inside a writer scope: the stream is opened on entry and
// finalized on every exit path. When both fn and finalization fail, the two
// errors are reported together.
func WithWriter(ctx context.Context, client StreamClient, fn func(*Writer) error, opts ...WriterOption) error {
	writer, err := NewWriter(ctx, client, opts...)
	if err != nil {
		return err
	}

	fnErr := fn(writer)
	closeErr := writer.Close(ctx)
	if fnErr != nil && closeErr != nil {
		return multierror.Append(fnErr, closeErr)
	}
	if fnErr != nil {
		return fnErr
	}
	return closeErr
}
