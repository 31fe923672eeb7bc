package types

import "github.com/go-playground/validator/v10"

// ValueRequest carries the new value for a scalar or entry field.
// Value is a pointer so that an explicit empty string is accepted while a
// missing key is rejected.
type ValueRequest struct {
	Value *string `json:"value" validate:"required"`
}

// StyleRequest updates the preview style. Empty fields keep their current value.
type StyleRequest struct {
	Color string `json:"color,omitempty" validate:"omitempty,oneof=blue green gray purple pink"`
	Font  string `json:"font,omitempty" validate:"omitempty,oneof=sans-serif serif monospace cursive fantasy"`
}

// DocumentResponse is the JSON view of a document at a store version.
type DocumentResponse struct {
	Version  uint64   `json:"version"`
	Document Document `json:"document"`
}

// Validate validates the ValueRequest using the validator.
func (r *ValueRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the StyleRequest using the validator.
func (r *StyleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Style converts the request into a partial Style for Merge.
func (r *StyleRequest) Style() Style {
	return Style{Color: r.Color, Font: r.Font}
}
