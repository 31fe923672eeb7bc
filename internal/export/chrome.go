package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// browserCandidates are the executable names searched on PATH when no
// explicit browser path is configured.
var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// CSS pixels per millimeter at 96 DPI.
const pxPerMM = 96 / mmPerInch

// FindBrowser locates a Chrome or Chromium executable. An explicit path must
// exist; otherwise PATH is searched. It returns ErrEnvironmentUnavailable
// when nothing is found.
func FindBrowser(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: browser executable %q not found", ErrEnvironmentUnavailable, path)
		}
		return path, nil
	}
	for _, name := range browserCandidates {
		if found, err := exec.LookPath(name); err == nil {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome or Chromium executable on PATH", ErrEnvironmentUnavailable)
}

// ChromeConfig configures the headless browser.
type ChromeConfig struct {
	ExecPath string
	Verbose  bool
}

// ChromeLoader returns a Loader that starts one headless browser. Each
// export then runs in its own tab.
func ChromeLoader(cfg ChromeConfig) Loader {
	return func(ctx context.Context) (Rasterizer, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := FindBrowser(cfg.ExecPath)
		if err != nil {
			return nil, err
		}
		if cfg.Verbose {
			log.Printf("[BROWSER] Starting headless browser: %s", path)
		}

		// The browser outlives the request that triggered the load.
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.ExecPath(path),
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Run with no actions starts the browser.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			return nil, fmt.Errorf("browser start failed: %w", err)
		}

		return &ChromeRasterizer{
			browserCtx: browserCtx,
			cancel: func() {
				browserCancel()
				allocCancel()
			},
			verbose: cfg.Verbose,
		}, nil
	}
}

// ChromeRasterizer prints markup to PDF with a headless Chrome.
type ChromeRasterizer struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	verbose    bool
	closeOnce  sync.Once
}

// RenderPDF loads markup into a fresh tab and prints it.
func (c *ChromeRasterizer) RenderPDF(ctx context.Context, markup string, opts Options) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	width, height := opts.PaperInches()
	margin := opts.MarginInches()
	viewportW := int64(opts.PageSize.WidthMM * pxPerMM)
	viewportH := int64(opts.PageSize.HeightMM * pxPerMM)
	if opts.Orientation == Landscape {
		viewportW, viewportH = viewportH, viewportW
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		emulation.SetDeviceMetricsOverride(viewportW, viewportH, scale, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithLandscape(false).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("browser rendering canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	if c.verbose {
		log.Printf("[BROWSER] Printed PDF: %d bytes", len(pdf))
	}
	return pdf, nil
}

// Alive reports whether the browser is still running.
func (c *ChromeRasterizer) Alive() bool {
	return c.browserCtx.Err() == nil
}

// Close shuts the browser down.
func (c *ChromeRasterizer) Close() error {
	c.closeOnce.Do(c.cancel)
	return nil
}
