// Package export turns the rendered CV preview into a paginated PDF through
// an injected rasterizer.
package export

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Orientation of the printed page.
type Orientation string

// Page orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// PageSize is a paper format in millimeters, portrait.
type PageSize struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

// A4 is the only paper format the CV is laid out for.
var A4 = PageSize{Name: "A4", WidthMM: 210, HeightMM: 297}

const mmPerInch = 25.4

// Options controls the produced document.
type Options struct {
	Filename    string
	PageSize    PageSize
	Orientation Orientation
	MarginMM    float64
	Scale       float64 // device scale factor used while rendering
}

// DefaultOptions returns A4 portrait, 10mm margins, scale 2, cv.pdf. Chrome prints
// vector output, so there is no image quality knob.
func DefaultOptions() Options {
	return Options{
		Filename:    "cv.pdf",
		PageSize:    A4,
		Orientation: Portrait,
		MarginMM:    10,
		Scale:       2,
	}
}

// PaperInches returns width and height in inches, honoring the orientation.
func (o Options) PaperInches() (width, height float64) {
	width, height = o.PageSize.WidthMM/mmPerInch, o.PageSize.HeightMM/mmPerInch
	if o.Orientation == Landscape {
		width, height = height, width
	}
	return width, height
}

// MarginInches returns the margin in inches.
func (o Options) MarginInches() float64 {
	return o.MarginMM / mmPerInch
}

// Rasterizer converts rendered markup into a PDF document.
type Rasterizer interface {
	RenderPDF(ctx context.Context, markup string, opts Options) ([]byte, error)
}

// HealthChecker is implemented by rasterizers that can tell whether they
// survived a failed render. A rasterizer without it is replaced after any
// failure not caused by the caller's context.
type HealthChecker interface {
	Alive() bool
}

// Loader starts a Rasterizer. It returns ErrEnvironmentUnavailable (possibly
// wrapped) when the environment cannot host one.
type Loader func(ctx context.Context) (Rasterizer, error)

// Recorder observes export outcomes.
type Recorder interface {
	ObserveExport(outcome string, d time.Duration)
}

// Export outcomes reported to the Recorder.
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeLoadFailed  = "load_failed"
	OutcomeFailed      = "failed"
)

// Result is an exported file.
type Result struct {
	Filename string
	Data     []byte
}

// Exporter loads the rasterizer on first use and renders exports with it.
type Exporter struct {
	load     Loader
	opts     Options
	timeout  time.Duration
	recorder Recorder

	group      singleflight.Group
	mu         sync.Mutex
	rasterizer Rasterizer
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithOptions overrides DefaultOptions.
func WithOptions(opts Options) Option {
	return func(e *Exporter) { e.opts = opts }
}

// WithTimeout bounds each render. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) { e.timeout = d }
}

// WithRecorder reports every export outcome to r.
func WithRecorder(r Recorder) Option {
	return func(e *Exporter) { e.recorder = r }
}

// New creates an Exporter. A nil loader means no rasterizer can ever be
// loaded, and every export reports ErrEnvironmentUnavailable.
func New(load Loader, opts ...Option) *Exporter {
	e := &Exporter{load: load, opts: DefaultOptions()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options returns the options used for every export.
func (e *Exporter) Options() Options {
	return e.opts
}

// Export renders markup to a PDF. The markup is whatever was rendered when
// the caller took it; edits racing the export are not locked out.
func (e *Exporter) Export(ctx context.Context, markup string) (*Result, error) {
	start := time.Now()

	r, err := e.rasterizerFor(ctx)
	if err != nil {
		if errors.Is(err, ErrEnvironmentUnavailable) {
			log.Printf("[EXPORT] Export unavailable: %v", err)
			e.record(OutcomeUnavailable, start)
		} else {
			log.Printf("[EXPORT] Failed to load rasterizer: %v", err)
			e.record(OutcomeLoadFailed, start)
		}
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	data, err := r.RenderPDF(ctx, markup, e.opts)
	if err != nil {
		log.Printf("[EXPORT] Render failed: %v", err)
		if ctx.Err() == nil && !alive(r) {
			e.discard(r)
		}
		e.record(OutcomeFailed, start)
		return nil, &RasterizeError{Cause: err}
	}

	e.record(OutcomeSuccess, start)
	log.Printf("[EXPORT] Rendered %s: %d bytes in %v", e.opts.Filename, len(data), time.Since(start))
	return &Result{Filename: e.opts.Filename, Data: data}, nil
}

// rasterizerFor returns the loaded rasterizer, loading it once. Concurrent
// first exports share one load; a failed load is retried by the next export.
func (e *Exporter) rasterizerFor(ctx context.Context) (Rasterizer, error) {
	e.mu.Lock()
	r := e.rasterizer
	e.mu.Unlock()
	if r != nil {
		return r, nil
	}
	if e.load == nil {
		return nil, ErrEnvironmentUnavailable
	}

	v, err, _ := e.group.Do("load", func() (any, error) {
		loaded, err := e.load(ctx)
		if err != nil {
			if errors.Is(err, ErrEnvironmentUnavailable) {
				return nil, err
			}
			return nil, &LoadError{Cause: err}
		}
		if loaded == nil {
			return nil, &LoadError{Cause: errors.New("loader returned no rasterizer")}
		}
		e.mu.Lock()
		e.rasterizer = loaded
		e.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Rasterizer), nil
}

func alive(r Rasterizer) bool {
	if hc, ok := r.(HealthChecker); ok {
		return hc.Alive()
	}
	return false
}

// discard drops r so the next export loads a fresh rasterizer.
func (e *Exporter) discard(r Rasterizer) {
	e.mu.Lock()
	if e.rasterizer != r {
		// Already replaced by a concurrent export.
		e.mu.Unlock()
		return
	}
	e.rasterizer = nil
	e.mu.Unlock()

	log.Printf("[EXPORT] Rasterizer is unusable, reloading on next export")
	if c, ok := r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("[EXPORT] Failed to close rasterizer: %v", err)
		}
	}
}

// Close releases the loaded rasterizer, if it holds resources.
func (e *Exporter) Close() error {
	e.mu.Lock()
	r := e.rasterizer
	e.rasterizer = nil
	e.mu.Unlock()

	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *Exporter) record(outcome string, start time.Time) {
	if e.recorder != nil {
		e.recorder.ObserveExport(outcome, time.Since(start))
	}
}
