package types

// DataType is a BigQuery column type tag as it appears in table schemas.
type DataType string

const (
	String     DataType = "STRING"
	Bytes      DataType = "BYTES"
	Bool       DataType = "BOOL"
	Integer    DataType = "INTEGER"
	Float      DataType = "FLOAT"
	Time       DataType = "TIME"
	DateTime   DataType = "DATETIME"
	Date       DataType = "DATE"
	Timestamp  DataType = "TIMESTAMP"
	JSON       DataType = "JSON"
	Geography  DataType = "GEOGRAPHY"
	Numeric    DataType = "NUMERIC"
	BigNumeric DataType = "BIGNUMERIC"
	RecordType DataType = "RECORD"
	// Array is accepted on schema input only; Schema.Normalize rewrites it
	// into a REPEATED field the way BigQuery represents arrays.
	Array   DataType = "ARRAY"
	Unknown DataType = "UNKNOWN"
)

// aliases BigQuery uses interchangeably in standard SQL DDL
var aliases = map[DataType]DataType{
	"BOOLEAN": Bool,
	"INT64":   Integer,
	"INT":     Integer,
	"FLOAT64": Float,
	"DOUBLE":  Float,
	"STRUCT":  RecordType,
	"DECIMAL": Numeric,
}

// Canonical collapses SQL aliases (BOOLEAN, INT64, STRUCT, ...) onto the
// tags the registry is keyed by.
func (d DataType) Canonical() DataType {
	if c, found := aliases[d]; found {
		return c
	}
	return d
}

// FieldMode mirrors the BigQuery field mode.
type FieldMode string

const (
	Nullable FieldMode = "NULLABLE"
	Required FieldMode = "REQUIRED"
	Repeated FieldMode = "REPEATED"
)
