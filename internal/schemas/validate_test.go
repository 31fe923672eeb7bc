package schemas

import (
	"os"
	"path/filepath"
	"testing"

	schemafiles "github.com/jonathan/cv-builder/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `{
	"name": "Ada",
	"surname": "Lovelace",
	"email": "ada@example.com",
	"education": [{"school": "MIT", "degree": "BSc", "dates": "1830", "additionalInfo": ""}],
	"workExperience": [{"company": "Engines", "role": "Programmer", "dates": "1842", "description": "Notes"}],
	"skills": [{"value": "Go"}],
	"languages": [{"name": "English", "proficiencyLevel": "Native"}],
	"projects": []
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateDocument_Valid(t *testing.T) {
	assert.NoError(t, ValidateDocument([]byte(validDocument)))
	assert.NoError(t, ValidateDocument([]byte(`{}`)), "every field is optional")
}

func TestValidateDocument_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"scalar wrong type", `{"name": 42}`, "name"},
		{"collection not array", `{"skills": "Go"}`, "skills"},
		{"entry field wrong type", `{"skills": [{"value": 1}]}`, "skills.0.value"},
		{"unknown top-level field", `{"nickname": "Ada"}`, "(root)"},
		{"unknown entry field", `{"education": [{"university": "MIT"}]}`, "education.0"},
		{"root not object", `[]`, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument([]byte(tt.json))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.field, validationErr.Errors[0].Field)
		})
	}
}

func TestValidateDocument_MalformedJSON(t *testing.T) {
	err := ValidateDocument([]byte(`{ invalid json }`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors[0].Message, "invalid JSON")
}

func TestValidateStyle(t *testing.T) {
	assert.NoError(t, ValidateStyle([]byte(`{"color": "pink", "font": "serif"}`)))
	assert.NoError(t, ValidateStyle([]byte(`{"font": "cursive"}`)))

	err := ValidateStyle([]byte(`{"color": "orange"}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "color", validationErr.Errors[0].Field)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "Invalid type"},
		{Field: "skills", Message: "Invalid type"},
	}}
	assert.Equal(t, "validation failed:\n  1. name: Invalid type\n  2. skills: Invalid type\n", err.Error())
}

func TestSchemaLoadError(t *testing.T) {
	err := &SchemaLoadError{Path: "x.json", Message: "broken", Cause: assert.AnError}
	assert.Contains(t, err.Error(), "failed to load schema x.json: broken")
	assert.ErrorIs(t, err, assert.AnError)

	bare := &SchemaLoadError{Path: "x.json", Message: "broken"}
	assert.Equal(t, "failed to load schema x.json: broken", bare.Error())
}

func TestValidateJSON_Files(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "document.schema.json", string(schemafiles.Document()))
	validPath := writeFile(t, dir, "valid.json", validDocument)
	invalidPath := writeFile(t, dir, "invalid.json", `{"skills": [{"value": true}]}`)

	assert.NoError(t, ValidateJSON(schemaPath, validPath))

	err := ValidateJSON(schemaPath, invalidPath)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "s.json", string(schemafiles.Style()))
	jsonPath := writeFile(t, dir, "d.json", `{}`)

	err := ValidateJSON(filepath.Join(dir, "missing.json"), jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
