package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/bigquery/storage/managedwriter"
	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/types"
	"github.com/datazip-inc/bqsink/utils"
)

// Client binds the BigQuery metadata and Storage Write API clients to one
// target table. It implements destination.StreamClient.
type Client struct {
	config  *Config
	meta    *bigquery.Client
	write   *managedwriter.Client
	project string
	dataset string
	table   string
}

func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	project, dataset, table := config.parts()

	meta, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %s", err)
	}
	write, err := managedwriter.NewClient(ctx, project)
	if err != nil {
		// release the sibling client, both or neither
		meta.Close()
		return nil, fmt.Errorf("failed to create write client: %s", err)
	}

	return &Client{
		config:  config,
		meta:    meta,
		write:   write,
		project: project,
		dataset: dataset,
		table:   table,
	}, nil
}

func (c *Client) Table() string {
	return c.config.TableID
}

// Schema returns the schema override when configured, otherwise the target
// table's metadata schema.
func (c *Client) Schema(ctx context.Context) (types.Schema, error) {
	if c.config.SchemaFile != "" {
		return types.SchemaFromFile(c.config.SchemaFile)
	}

	metadata, err := c.meta.DatasetInProject(c.project, c.dataset).Table(c.table).Metadata(ctx)
	if err != nil {
		return nil, &destination.TransportError{Op: "fetch table metadata", Err: err}
	}
	return types.SchemaFromBigQuery(metadata.Schema), nil
}

func (c *Client) OpenStream(ctx context.Context, mode destination.Mode, schema types.Schema) (destination.Stream, error) {
	descriptor, err := DescriptorProto(schema, "Row")
	if err != nil {
		return nil, err
	}
	msgType, err := rowMessageType(descriptor)
	if err != nil {
		return nil, err
	}

	parent := managedwriter.TableParentFromParts(c.project, c.dataset, c.table)
	streamType := managedwriter.DefaultStream
	if mode == destination.Pending {
		streamType = managedwriter.PendingStream
	}

	managed, err := c.write.NewManagedStream(ctx,
		managedwriter.WithDestinationTable(parent),
		managedwriter.WithType(streamType),
		managedwriter.WithSchemaDescriptor(descriptor),
	)
	if err != nil {
		return nil, &destination.TransportError{Op: "open stream", Err: err}
	}

	return newStream(c.write, managed, msgType, parent, mode, c.config.MaxBatchBytes), nil
}

func (c *Client) Close() error {
	return utils.ErrExecSequential(
		utils.ErrExecFormat("failed to close metadata client: %s", c.meta.Close),
		utils.ErrExecFormat("failed to close write client: %s", c.write.Close),
	)
}
