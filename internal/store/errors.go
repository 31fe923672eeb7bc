package store

import (
	"fmt"

	"github.com/jonathan/cv-builder/internal/types"
)

// OutOfRangeError indicates an edit addressed to an entry that does not exist.
// The UI only ever sends valid indices, so this is a contract violation by
// the caller; the document is left unchanged.
type OutOfRangeError struct {
	Collection types.Collection
	Index      int
	Len        int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for %s (len %d)", e.Index, e.Collection, e.Len)
}
