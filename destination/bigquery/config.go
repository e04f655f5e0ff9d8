package bigquery

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/bqsink/constants"
	"github.com/datazip-inc/bqsink/destination"
	"github.com/datazip-inc/bqsink/utils"
)

type Config struct {
	// TableID is the fully-qualified target table in standard SQL format,
	// e.g. "project.dataset.table".
	TableID string `json:"table_id" validate:"required"`
	// Mode selects pending (default) or immediate stream semantics.
	Mode destination.Mode `json:"mode,omitempty" validate:"omitempty,oneof=PENDING DEFAULT"`
	// SchemaFile optionally overrides table metadata with a JSON/YAML schema.
	SchemaFile string `json:"schema_file,omitempty"`
	// MaxBatchBytes caps the serialized size of one append request.
	MaxBatchBytes int64 `json:"max_batch_bytes,omitempty" validate:"omitempty,gt=0"`
}

func (c *Config) Validate() error {
	if err := utils.Validate(c); err != nil {
		return err
	}
	if len(strings.Split(c.TableID, ".")) != 3 {
		return fmt.Errorf("table_id must be a fully-qualified ID in standard SQL format, e.g. \"project.dataset.table_id\", got %s", c.TableID)
	}
	if c.Mode == "" {
		c.Mode = destination.Pending
	}
	if c.MaxBatchBytes == 0 || c.MaxBatchBytes > constants.MaxAppendBytes {
		c.MaxBatchBytes = constants.MaxAppendBytes
	}
	return nil
}

func (c *Config) parts() (project, dataset, table string) {
	split := strings.SplitN(c.TableID, ".", 3)
	return split[0], split[1], split[2]
}
