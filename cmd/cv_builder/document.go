package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// readDocument loads a saved CV, checks it against the document schema and
// returns it through a store, exactly as an import over HTTP would.
func readDocument(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.Document{}, fmt.Errorf("document file not found: %s", path)
		}
		return types.Document{}, fmt.Errorf("failed to read document file: %w", err)
	}
	if err := schemas.ValidateDocument(data); err != nil {
		return types.Document{}, err
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Document{}, fmt.Errorf("failed to unmarshal document JSON: %w", err)
	}

	s := store.New()
	if _, err := s.Update(store.OpReplace, store.Replace(doc)); err != nil {
		return types.Document{}, err
	}
	return s.Document(), nil
}

// resolveStyle applies --color/--font on top of the configured default.
func resolveStyle(base types.Style, color, font string) (types.Style, error) {
	if color != "" && !types.IsColor(color) {
		return types.Style{}, fmt.Errorf("unknown color %q, expected one of %v", color, types.Colors())
	}
	if font != "" && !types.IsFont(font) {
		return types.Style{}, fmt.Errorf("unknown font %q, expected one of %v", font, types.Fonts())
	}
	return base.Merge(types.Style{Color: color, Font: font}), nil
}
