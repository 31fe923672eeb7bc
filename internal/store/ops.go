package store

import "github.com/jonathan/cv-builder/internal/types"

// Transform maps the current document to its successor. A Transform must not
// modify its argument; on error the store keeps the old document.
type Transform func(types.Document) (types.Document, error)

// Op labels a transform for logging and metrics.
type Op string

// Operations understood by the store.
const (
	OpAppend       Op = "append"
	OpRemove       Op = "remove"
	OpUpdateEntry  Op = "update"
	OpUpdateScalar Op = "update_scalar"
	OpReplace      Op = "replace"
)

// Append adds an entry with every field set to "" at the end of c.
func Append(c types.Collection) Transform {
	return func(doc types.Document) (types.Document, error) {
		if !c.Valid() {
			return doc, &types.UnknownCollectionError{Name: string(c)}
		}
		next := doc.Clone()
		next.AppendEntry(c)
		return next, nil
	}
}

// Remove deletes entry index of c, shifting later entries down by one.
func Remove(c types.Collection, index int) Transform {
	return func(doc types.Document) (types.Document, error) {
		if err := checkIndex(&doc, c, index); err != nil {
			return doc, err
		}
		next := doc.Clone()
		next.RemoveEntry(c, index)
		return next, nil
	}
}

// UpdateEntry replaces field f of entry index of c. Every other field and
// entry is unchanged.
func UpdateEntry(c types.Collection, index int, f types.EntryField, value string) Transform {
	return func(doc types.Document) (types.Document, error) {
		if !c.HasField(f) {
			return doc, &types.UnknownFieldError{Collection: string(c), Field: string(f)}
		}
		if err := checkIndex(&doc, c, index); err != nil {
			return doc, err
		}
		next := doc.Clone()
		next.SetEntryValue(c, index, f, value)
		return next, nil
	}
}

// UpdateScalar replaces a top-level field. Collections are untouched.
func UpdateScalar(f types.ScalarField, value string) Transform {
	return func(doc types.Document) (types.Document, error) {
		next := doc.Clone()
		next.SetScalar(f, value)
		return next, nil
	}
}

// Replace swaps in a whole document, e.g. on import.
func Replace(doc types.Document) Transform {
	replacement := doc.Normalize().Clone()
	return func(types.Document) (types.Document, error) {
		return replacement.Clone(), nil
	}
}

func checkIndex(doc *types.Document, c types.Collection, index int) error {
	if !c.Valid() {
		return &types.UnknownCollectionError{Name: string(c)}
	}
	n := doc.Len(c)
	if index < 0 || index >= n {
		return &OutOfRangeError{Collection: c, Index: index, Len: n}
	}
	return nil
}
