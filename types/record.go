package types

// Record is an application-level row: field name → value. Ownership stays
// with the caller until the row is appended to a writer.
type Record map[string]any
