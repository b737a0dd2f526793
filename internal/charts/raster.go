package charts

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "housingcli/internal/errors"
)

// Rasterizer turns a rendered HTML chart into a PNG image.
type Rasterizer interface {
	Rasterize(ctx context.Context, htmlPath, pngPath string) error
}

// ChromeRasterizer screenshots chart pages with headless Chrome.
type ChromeRasterizer struct {
	// Timeout bounds a single page load and screenshot.
	Timeout time.Duration
	// ExecPath overrides the browser binary; empty lets chromedp find one.
	ExecPath string
	Width    int
	Height   int
}

// NewChromeRasterizer creates a rasterizer with a 1200x800 viewport.
func NewChromeRasterizer(timeout time.Duration) *ChromeRasterizer {
	return &ChromeRasterizer{Timeout: timeout, Width: 1200, Height: 800}
}

// Rasterize loads htmlPath from disk, waits for plotly to draw and saves a
// full page screenshot to pngPath.
func (c *ChromeRasterizer) Rasterize(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return apperrors.NewRenderError("failed to resolve chart path", err)
	}
	pageURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(c.Width, c.Height),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("#chart .main-svg", chromedp.ByQuery),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to rasterize %s", filepath.Base(htmlPath)), err)
	}

	if err := os.WriteFile(pngPath, buf, 0644); err != nil {
		return apperrors.NewRenderError(fmt.Sprintf("failed to write %s", pngPath), err)
	}
	return nil
}

// PNGPath returns the PNG file name used for an HTML chart.
func PNGPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
}
