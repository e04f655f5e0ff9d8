package destination

import (
	"context"
	"fmt"
	"testing"

	"github.com/datazip-inc/bqsink/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	appended  [][]types.Record
	calls     []string
	appendErr error
	finalErr  error
	commitErr error
}

func (s *fakeStream) AppendRows(_ context.Context, rows []types.Record) error {
	s.calls = append(s.calls, "append")
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, rows)
	return nil
}

func (s *fakeStream) Finalize(context.Context) error {
	s.calls = append(s.calls, "finalize")
	return s.finalErr
}

func (s *fakeStream) Commit(context.Context) error {
	s.calls = append(s.calls, "commit")
	return s.commitErr
}

func (s *fakeStream) Close() error {
	s.calls = append(s.calls, "close")
	return nil
}

type fakeClient struct {
	stream     *fakeStream
	openStream Stream
	schema     types.Schema
	schemaErr  error
	openMode   Mode
	openErr    error
}

func (c *fakeClient) Table() string { return "p.d.t" }

func (c *fakeClient) Schema(context.Context) (types.Schema, error) {
	return c.schema, c.schemaErr
}

func (c *fakeClient) OpenStream(_ context.Context, mode Mode, _ types.Schema) (Stream, error) {
	c.openMode = mode
	if c.openErr != nil {
		return nil, c.openErr
	}
	if c.openStream != nil {
		return c.openStream, nil
	}
	return c.stream, nil
}

func (c *fakeClient) Close() error { return nil }

func testClient() *fakeClient {
	return &fakeClient{
		stream: &fakeStream{},
		schema: types.Schema{
			{Name: "name", Type: types.String},
			{Name: "joined", Type: types.Date},
		},
	}
}

func TestWriter_AppendConvertsRows(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, Pending, client.openMode)

	require.NoError(t, writer.Append(ctx, types.Record{"name": "A", "joined": "1970-01-10"}))
	require.Len(t, client.stream.appended, 1)
	assert.Equal(t, types.Record{"name": "A", "joined": int32(9)}, client.stream.appended[0][0])
	assert.Equal(t, int64(1), writer.Appended())

	require.NoError(t, writer.Close(ctx))
}

func TestWriter_ConversionFailureAbortsBatch(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)

	err = writer.Append(ctx,
		types.Record{"name": "ok", "joined": "1970-01-02"},
		types.Record{"name": "bad", "joined": "not a date"},
	)
	require.Error(t, err)

	// nothing reaches the transport and the writer stays usable
	assert.Empty(t, client.stream.appended)
	assert.Equal(t, int64(0), writer.Appended())
	require.NoError(t, writer.Append(ctx, types.Record{"name": "ok", "joined": "1970-01-02"}))
	require.Len(t, client.stream.appended, 1)

	require.NoError(t, writer.Close(ctx))
}

func TestWriter_UseAfterClose(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)
	require.NoError(t, writer.Close(ctx))

	err = writer.Append(ctx, types.Record{"name": "late"})
	var closedErr *UseAfterCloseError
	require.ErrorAs(t, err, &closedErr)
	assert.Equal(t, "p.d.t", closedErr.Table)
}

func TestWriter_CloseIdempotent(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)

	require.NoError(t, writer.Close(ctx))
	firstCalls := len(client.stream.calls)
	require.NoError(t, writer.Close(ctx))
	assert.Len(t, client.stream.calls, firstCalls)
}

func TestWriter_PendingCloseSequence(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)
	require.NoError(t, writer.Close(ctx))
	assert.Equal(t, []string{"finalize", "commit", "close"}, client.stream.calls)
}

func TestWriter_DefaultCloseSkipsCommit(t *testing.T) {
	ctx := context.Background()
	client := testClient()

	writer, err := NewWriter(ctx, client, WithMode(Default))
	require.NoError(t, err)
	assert.Equal(t, Default, client.openMode)

	require.NoError(t, writer.Close(ctx))
	assert.Equal(t, []string{"close"}, client.stream.calls)
}

func TestWriter_FinalizeFailureStillCloses(t *testing.T) {
	ctx := context.Background()
	client := testClient()
	client.stream.finalErr = fmt.Errorf("stream gone")

	writer, err := NewWriter(ctx, client)
	require.NoError(t, err)

	err = writer.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to finalize stream")
	// commit and close still run, and the writer is terminally closed
	assert.Equal(t, []string{"finalize", "commit", "close"}, client.stream.calls)

	var closedErr *UseAfterCloseError
	require.ErrorAs(t, writer.Append(ctx, types.Record{"name": "x"}), &closedErr)
}

func TestWriter_SchemaOverrideSkipsFetch(t *testing.T) {
	ctx := context.Background()
	client := testClient()
	client.schemaErr = fmt.Errorf("metadata should not be fetched")

	override := types.Schema{{Name: "name", Type: "STRING"}}
	writer, err := NewWriter(ctx, client, WithSchema(override))
	require.NoError(t, err)
	assert.Equal(t, types.Nullable, writer.Schema()[0].Mode)
	require.NoError(t, writer.Close(ctx))
}

func TestWithWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("closes on success", func(t *testing.T) {
		client := testClient()
		err := WithWriter(ctx, client, func(w *Writer) error {
			return w.Append(ctx, types.Record{"name": "A", "joined": "1970-01-02"})
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"append", "finalize", "commit", "close"}, client.stream.calls)
	})

	t.Run("closes on failure", func(t *testing.T) {
		client := testClient()
		fnErr := fmt.Errorf("boom")
		err := WithWriter(ctx, client, func(*Writer) error { return fnErr })
		require.ErrorIs(t, err, fnErr)
		assert.Contains(t, client.stream.calls, "finalize")
	})

	t.Run("reports both fn and close errors", func(t *testing.T) {
		client := testClient()
		client.stream.commitErr = fmt.Errorf("commit refused")
		err := WithWriter(ctx, client, func(*Writer) error { return fmt.Errorf("boom") })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "commit refused")
	})
}
