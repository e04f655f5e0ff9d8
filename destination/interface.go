/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"context"

	"github.com/datazip-inc/bqsink/types"
)

// Mode selects the visibility semantics of a write stream.
type Mode string

const (
	// Pending buffers appended rows server side; they become visible in the
	// table only after Commit.
	Pending Mode = "PENDING"
	// Default appends to the table's default stream; rows are visible as
	// soon as the transport acknowledges them.
	Default Mode = "DEFAULT"
)

// StreamClient is the seam to the warehouse's write-API SDK. Implementations
// own transport, authentication and retries; this layer never interprets or
// retries their errors.
type StreamClient interface {
	// Table returns the fully qualified identifier the client is bound to.
	Table() string
	// Schema fetches the target table's schema; called once per writer.
	Schema(ctx context.Context) (types.Schema, error)
	// OpenStream opens a write stream against the target table. The schema
	// has been normalized and describes the rows that will be appended.
	OpenStream(ctx context.Context, mode Mode, schema types.Schema) (Stream, error)
	Close() error
}

// Stream is one open append-only write stream. Not safe for concurrent use;
// callers needing parallel throughput open independent streams.
type Stream interface {
	// AppendRows forwards converted rows and blocks until the client
	// acknowledges receipt.
	AppendRows(ctx context.Context, rows []types.Record) error
	// Finalize marks the stream complete; only meaningful for pending mode.
	Finalize(ctx context.Context) error
	// Commit makes a finalized pending stream's rows visible in the table.
	Commit(ctx context.Context) error
	Close() error
}
