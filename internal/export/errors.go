package export

import (
	"errors"
	"fmt"
)

// ErrEnvironmentUnavailable is returned when export is invoked where no
// browser can run. The caller reports it; the rest of the application keeps
// working.
var ErrEnvironmentUnavailable = errors.New("export unavailable: no browser environment")

// LoadError indicates that the rasterizer could not be started.
type LoadError struct {
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load rasterizer: %v", e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// RasterizeError indicates that a loaded rasterizer failed to produce a PDF.
type RasterizeError struct {
	Cause error
}

func (e *RasterizeError) Error() string {
	return fmt.Sprintf("failed to render PDF: %v", e.Cause)
}

func (e *RasterizeError) Unwrap() error {
	return e.Cause
}
