package typeutils

import (
	"fmt"

	"github.com/datazip-inc/bqsink/types"
)

// RecordConverter converts rows against a table schema using a registry of
// per-type converters. It holds no mutable state; Convert is a pure function
// of (record, schema, registry) and is safe for concurrent use.
type RecordConverter struct {
	registry      *Registry
	failOnMissing bool
	failOnExtra   bool
}

type ConverterOption func(*RecordConverter)

// WithFailOnMissing makes Convert error on schema fields absent from the
// record instead of omitting them from the output.
func WithFailOnMissing() ConverterOption {
	return func(c *RecordConverter) {
		c.failOnMissing = true
	}
}

// WithFailOnExtra makes Convert error on record fields the schema does not
// declare instead of ignoring them.
func WithFailOnExtra() ConverterOption {
	return func(c *RecordConverter) {
		c.failOnExtra = true
	}
}

func NewRecordConverter(registry *Registry, opts ...ConverterOption) *RecordConverter {
	if registry == nil {
		registry = NewRegistry(nil)
	}
	converter := &RecordConverter{registry: registry}
	for _, opt := range opts {
		opt(converter)
	}
	return converter
}

// Convert produces a record with every leaf value replaced by its
// target-type representation, recursing into RECORD fields and REPEATED
// values. A failure on any field aborts the whole row.
func (c *RecordConverter) Convert(record types.Record, schema types.Schema) (types.Record, error) {
	return c.convertRecord("", record, schema)
}

func (c *RecordConverter) convertRecord(path string, record types.Record, schema types.Schema) (types.Record, error) {
	converted := make(types.Record, len(schema))
	for _, field := range schema {
		fieldPath := joinPath(path, field.Name)

		value, found := record[field.Name]
		if !found {
			if c.failOnMissing {
				return nil, &ConversionError{Path: fieldPath, Err: fmt.Errorf("field missing from record")}
			}
			continue
		}
		if value == nil {
			if field.Mode == types.Required {
				return nil, &ConversionError{Path: fieldPath, Err: fmt.Errorf("required field is null")}
			}
			continue
		}

		if field.Mode == types.Repeated {
			elements, err := c.convertRepeated(fieldPath, value, field)
			if err != nil {
				return nil, err
			}
			converted[field.Name] = elements
			continue
		}

		element, err := c.convertValue(fieldPath, value, field)
		if err != nil {
			return nil, err
		}
		converted[field.Name] = element
	}

	if c.failOnExtra {
		for name := range record {
			if !fieldDeclared(schema, name) {
				return nil, &ConversionError{Path: joinPath(path, name), Value: record[name],
					Err: fmt.Errorf("field not declared in schema")}
			}
		}
	}

	return converted, nil
}

func (c *RecordConverter) convertRepeated(path string, value any, field *types.Field) ([]any, error) {
	elements, ok := value.([]any)
	if !ok {
		return nil, conversionError(path, value, fmt.Errorf("expected array, got %T", value))
	}

	converted := make([]any, 0, len(elements))
	for i, element := range elements {
		out, err := c.convertValue(fmt.Sprintf("%s[%d]", path, i), element, field)
		if err != nil {
			return nil, err
		}
		converted = append(converted, out)
	}
	return converted, nil
}

func (c *RecordConverter) convertValue(path string, value any, field *types.Field) (any, error) {
	if field.Type == types.RecordType {
		sub, ok := toRecord(value)
		if !ok {
			return nil, conversionError(path, value, fmt.Errorf("expected record, got %T", value))
		}
		return c.convertRecord(path, sub, field.Fields)
	}

	converter, err := c.registry.Lookup(field.Type)
	if err != nil {
		return nil, err
	}
	out, err := converter.Fn(value)
	if err != nil {
		return nil, conversionError(path, value, err)
	}
	return out, nil
}

func toRecord(value any) (types.Record, bool) {
	switch sub := value.(type) {
	case types.Record:
		return sub, true
	case map[string]any:
		return sub, true
	default:
		return nil, false
	}
}

func fieldDeclared(schema types.Schema, name string) bool {
	for _, field := range schema {
		if field.Name == name {
			return true
		}
	}
	return false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
