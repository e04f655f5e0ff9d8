package types

import (
	"cloud.google.com/go/bigquery"
)

var bigqueryTypes = map[bigquery.FieldType]DataType{
	bigquery.StringFieldType:     String,
	bigquery.BytesFieldType:      Bytes,
	bigquery.BooleanFieldType:    Bool,
	bigquery.IntegerFieldType:    Integer,
	bigquery.FloatFieldType:      Float,
	bigquery.TimeFieldType:       Time,
	bigquery.DateTimeFieldType:   DateTime,
	bigquery.DateFieldType:       Date,
	bigquery.TimestampFieldType:  Timestamp,
	bigquery.JSONFieldType:       JSON,
	bigquery.GeographyFieldType:  Geography,
	bigquery.NumericFieldType:    Numeric,
	bigquery.BigNumericFieldType: BigNumeric,
	bigquery.RecordFieldType:     RecordType,
}

// SchemaFromBigQuery maps table metadata returned by the BigQuery client
// into the schema model used by converters and writers.
func SchemaFromBigQuery(schema bigquery.Schema) Schema {
	result := make(Schema, 0, len(schema))
	for _, field := range schema {
		result = append(result, fieldFromBigQuery(field))
	}
	return result
}

func fieldFromBigQuery(field *bigquery.FieldSchema) *Field {
	datatype, found := bigqueryTypes[field.Type]
	if !found {
		datatype = Unknown
	}

	mode := Nullable
	if field.Required {
		mode = Required
	}
	if field.Repeated {
		mode = Repeated
	}

	converted := &Field{
		Name: field.Name,
		Type: datatype,
		Mode: mode,
	}
	if field.Type == bigquery.RecordFieldType {
		converted.Fields = SchemaFromBigQuery(field.Schema)
	}
	return converted
}
