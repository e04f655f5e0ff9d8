package bigquery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/bigquery/storage/apiv1/storagepb"
	"cloud.google.com/go/bigquery/storage/managedwriter"
	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/utils/logger"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// sendFunc ships one serialized request at the given stream offset and
// blocks until the server acknowledges it.
type sendFunc func(ctx context.Context, serialized [][]byte, offset int64) error

// stream is one open managed write stream. Converted rows are serialized
// into dynamic proto messages and flushed in requests kept under the
// append-size limit; every flush blocks until the server acknowledges it.
type stream struct {
	client   *managedwriter.Client
	managed  *managedwriter.ManagedStream
	msgType  protoreflect.MessageType
	parent   string
	mode     destination.Mode
	maxBytes int64
	offset   int64
	send     sendFunc
}

func newStream(client *managedwriter.Client, managed *managedwriter.ManagedStream,
	msgType protoreflect.MessageType, parent string, mode destination.Mode, maxBytes int64) *stream {
	s := &stream{
		client:   client,
		managed:  managed,
		msgType:  msgType,
		parent:   parent,
		mode:     mode,
		maxBytes: maxBytes,
	}
	s.send = s.sendManaged
	return s
}

func (s *stream) AppendRows(ctx context.Context, rows []types.Record) error {
	serialized := make([][]byte, 0, len(rows))
	for _, row := range rows {
		msg := s.msgType.New()
		if err := fillMessage(msg, row); err != nil {
			return err
		}
		raw, err := proto.Marshal(msg.Interface())
		if err != nil {
			return fmt.Errorf("failed to serialize row: %s", err)
		}
		serialized = append(serialized, raw)
	}

	for _, chunk := range chunkBySize(serialized, s.maxBytes) {
		if err := s.send(ctx, chunk, s.offset); err != nil {
			return err
		}
		s.offset += int64(len(chunk))
	}
	return nil
}

// chunkBySize splits serialized rows into consecutive groups whose combined
// size stays within max. A single row larger than max still travels alone;
// the server enforces its own hard limit.
func chunkBySize(serialized [][]byte, max int64) [][][]byte {
	var chunks [][][]byte
	var current [][]byte
	var size int64

	for _, raw := range serialized {
		if size+int64(len(raw)) > max && len(current) > 0 {
			chunks = append(chunks, current)
			current, size = nil, 0
		}
		current = append(current, raw)
		size += int64(len(raw))
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

func (s *stream) sendManaged(ctx context.Context, serialized [][]byte, offset int64) error {
	var opts []managedwriter.AppendOption
	if s.mode == destination.Pending {
		// explicit offsets let the server dedupe replayed requests
		opts = append(opts, managedwriter.WithOffset(offset))
	}

	result, err := s.managed.AppendRows(ctx, serialized, opts...)
	if err != nil {
		return &destination.TransportError{Op: "append rows", Err: err}
	}
	if _, err := result.GetResult(ctx); err != nil {
		return &destination.TransportError{Op: "append rows", Err: err}
	}

	logger.Debugf("sent %d rows to stream [%s]", len(serialized), s.managed.StreamName())
	return nil
}

func (s *stream) Finalize(ctx context.Context) error {
	if s.mode != destination.Pending {
		return nil
	}
	if _, err := s.managed.Finalize(ctx); err != nil {
		return &destination.TransportError{Op: "finalize stream", Err: err}
	}
	return nil
}

func (s *stream) Commit(ctx context.Context) error {
	if s.mode != destination.Pending {
		return nil
	}

	resp, err := s.client.BatchCommitWriteStreams(ctx, &storagepb.BatchCommitWriteStreamsRequest{
		Parent:       s.parent,
		WriteStreams: []string{s.managed.StreamName()},
	})
	if err != nil {
		return &destination.TransportError{Op: "commit stream", Err: err}
	}
	if len(resp.GetStreamErrors()) > 0 {
		messages := make([]string, 0, len(resp.GetStreamErrors()))
		for _, streamErr := range resp.GetStreamErrors() {
			messages = append(messages, streamErr.GetErrorMessage())
		}
		return &destination.TransportError{Op: "commit stream",
			Err: fmt.Errorf("commit rejected: %s", strings.Join(messages, "; "))}
	}
	return nil
}

func (s *stream) Close() error {
	if err := s.managed.Close(); err != nil && err != io.EOF {
		return &destination.TransportError{Op: "close stream", Err: err}
	}
	return nil
}
