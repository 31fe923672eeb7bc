package types

import "fmt"

// UnknownCollectionError indicates a collection name outside the closed set.
type UnknownCollectionError struct {
	Name string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection: %q", e.Name)
}

// UnknownFieldError indicates a field name that the document or the
// collection does not define. Collection is empty for scalar fields.
type UnknownFieldError struct {
	Collection string
	Field      string
}

func (e *UnknownFieldError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("unknown field: %q", e.Field)
	}
	return fmt.Sprintf("unknown field %q in collection %q", e.Field, e.Collection)
}
