package typeutils

import (
	"github.com/datazip-inc/bqsink/types"
)

// ConvertFunc maps one source-typed value to its serializable target
// representation. It must be pure.
type ConvertFunc func(value any) (any, error)

// Converter couples a conversion function with the source type callers are
// recommended to supply for the column.
type Converter struct {
	Recommended string
	Fn          ConvertFunc
}

// Registry maps type tags to converters. It is read-mostly: populated at
// construction, optionally overridden, then only looked up.
type Registry struct {
	converters map[types.DataType]Converter
}

func wrap[T any](fn func(any) (T, error)) ConvertFunc {
	return func(v any) (any, error) {
		return fn(v)
	}
}

// NewRegistry returns a registry with the default conversion table, extended
// or overridden by custom entries. RECORD carries no leaf converter; it
// triggers recursive conversion in RecordConverter instead.
func NewRegistry(custom map[types.DataType]Converter) *Registry {
	defaults := map[types.DataType]Converter{
		types.String:     {Recommended: "string", Fn: wrap(ReformatString)},
		types.Bytes:      {Recommended: "[]byte", Fn: wrap(ReformatBytes)},
		types.Bool:       {Recommended: "bool", Fn: wrap(ReformatBool)},
		types.Integer:    {Recommended: "int64", Fn: wrap(ReformatInt64)},
		types.Float:      {Recommended: "float64", Fn: wrap(ReformatFloat64)},
		types.Time:       {Recommended: "civil.Time", Fn: wrap(ReformatTime)},
		types.DateTime:   {Recommended: "time.Time", Fn: wrap(ReformatDateTime)},
		types.Date:       {Recommended: "civil.Date", Fn: wrap(ReformatDate)},
		types.Timestamp:  {Recommended: "time.Time", Fn: wrap(ReformatTimestamp)},
		types.JSON:       {Recommended: "string", Fn: wrap(ReformatJSON)},
		types.Geography:  {Recommended: "string", Fn: wrap(ReformatString)},
		types.Numeric:    {Recommended: "*big.Rat", Fn: wrap(ReformatNumeric)},
		types.BigNumeric: {Recommended: "*big.Rat", Fn: wrap(ReformatBigNumeric)},
	}
	for tag, converter := range custom {
		defaults[tag.Canonical()] = converter
	}
	return &Registry{converters: defaults}
}

// Register overrides or adds the converter for a type tag.
func (r *Registry) Register(tag types.DataType, converter Converter) {
	r.converters[tag.Canonical()] = converter
}

// Lookup returns the converter for a type tag, or an UnknownTypeError when
// the tag has no registered converter.
func (r *Registry) Lookup(tag types.DataType) (Converter, error) {
	converter, found := r.converters[tag.Canonical()]
	if !found {
		return Converter{}, &UnknownTypeError{Type: tag}
	}
	return converter, nil
}
