// Package schemas embeds the JSON Schemas for documents exchanged with the CV builder.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	DocumentFile = "document.schema.json"
	StyleFile    = "style.schema.json"
)

// Document returns the document schema.
func Document() []byte {
	data, _ := FS.ReadFile(DocumentFile)
	return data
}

// Style returns the style schema.
func Style() []byte {
	data, _ := FS.ReadFile(StyleFile)
	return data
}
