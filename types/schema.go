package types

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"sigs.k8s.io/yaml"
)

// Field describes one column of the target table. RECORD fields carry their
// sub-fields; schema files may instead use type ARRAY with an Items
// descriptor, which Normalize rewrites into a REPEATED field.
type Field struct {
	Name   string    `json:"name"`
	Type   DataType  `json:"type"`
	Mode   FieldMode `json:"mode,omitempty"`
	Fields Schema    `json:"fields,omitempty"`
	Items  *Field    `json:"items,omitempty"`
}

// Schema is the ordered, typed field definition of a target table. It is
// fetched (or loaded) once per table and immutable for a writer's lifetime.
type Schema []*Field

// Normalize canonicalizes type tags, defaults missing modes to NULLABLE and
// flattens ARRAY descriptors into REPEATED fields. It must run once after a
// schema is loaded and before it is handed to a converter or writer.
func (s Schema) Normalize() error {
	for _, field := range s {
		if err := field.normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Field) normalize() error {
	if f.Name == "" {
		return fmt.Errorf("schema field with empty name")
	}
	f.Type = f.Type.Canonical()
	if f.Mode == "" {
		f.Mode = Nullable
	}

	if f.Type == Array {
		if f.Items == nil {
			return fmt.Errorf("array field [%s] missing items descriptor", f.Name)
		}
		f.Type = f.Items.Type.Canonical()
		f.Fields = f.Items.Fields
		f.Mode = Repeated
		f.Items = nil
	}

	if f.Type == RecordType && len(f.Fields) == 0 {
		return fmt.Errorf("record field [%s] has no sub-fields", f.Name)
	}
	if f.Type != RecordType && len(f.Fields) > 0 {
		return fmt.Errorf("field [%s] of type [%s] cannot carry sub-fields", f.Name, f.Type)
	}

	return f.Fields.Normalize()
}

// SchemaFromFile loads a schema override from a JSON or YAML file.
func SchemaFromFile(path string) (Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %s", err)
	}

	// YAMLToJSON is a no-op on JSON input, so one path covers both formats
	jsonRaw, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file [%s]: %s", path, err)
	}

	var wrapper struct {
		Fields Schema `json:"fields"`
	}
	if err := json.Unmarshal(jsonRaw, &wrapper); err != nil || len(wrapper.Fields) == 0 {
		// also accept a bare field array
		if err := json.Unmarshal(jsonRaw, &wrapper.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema file [%s]: %s", path, err)
		}
	}

	if err := wrapper.Fields.Normalize(); err != nil {
		return nil, err
	}
	return wrapper.Fields, nil
}
