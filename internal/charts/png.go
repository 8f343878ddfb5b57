package charts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "github.com/jgtann/gdp-dashboard/internal/errors"
	"github.com/jgtann/gdp-dashboard/pkg/contracts/domain"
)

const (
	pagePaddingPx  = 40
	defaultTimeout = 20 * time.Second
	settleDelay    = 800 * time.Millisecond
)

// Screenshotter turns an HTML document into a PNG of the given viewport
type Screenshotter interface {
	Screenshot(ctx context.Context, html []byte, width, height int) ([]byte, error)
}

// ChromeScreenshotter drives a headless Chrome through chromedp
type ChromeScreenshotter struct {
	Timeout time.Duration
}

// Screenshot loads html as a data URI, waits for the charts to draw and
// captures the full page
func (c ChromeScreenshotter) Screenshot(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var shot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.FullScreenshot(&shot, 90),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, fmt.Errorf("headless screenshot: %w", err)
	}
	return shot, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable starts a browser once and reports whether that
// worked. The result is cached for the process lifetime.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		browserCtx, cancel := chromedp.NewContext(ctx)
		defer cancel()
		headlessErr = chromedp.Run(browserCtx)
	})
	return headlessErr
}

// Renderer produces chart pages and PNGs with fixed options
type Renderer struct {
	options Options
	shooter Screenshotter
	logger  *slog.Logger
}

// NewRenderer creates a Renderer. A nil shooter uses headless Chrome.
func NewRenderer(o Options, shooter Screenshotter, logger *slog.Logger) *Renderer {
	if shooter == nil {
		shooter = ChromeScreenshotter{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		options: o.normalized(),
		shooter: shooter,
		logger:  logger.With(slog.String("component", "chart_renderer")),
	}
}

// Options returns the normalized chart options
func (r *Renderer) Options() Options { return r.options }

// HTML renders the chart page for series
func (r *Renderer) HTML(series []domain.Series) ([]byte, error) {
	return HTML(series, r.options)
}

// PNG renders the chart page for series and screenshots it. Charts are
// stacked vertically so the viewport is one chart wide; no series gives
// an image of the empty page.
func (r *Renderer) PNG(ctx context.Context, series []domain.Series) ([]byte, error) {
	html, err := r.HTML(series)
	if err != nil {
		return nil, err
	}

	width := r.options.Width + pagePaddingPx
	height := len(series)*(r.options.Height+pagePaddingPx) + pagePaddingPx
	if len(series) == 0 {
		height = emptyHeight(r.options) + pagePaddingPx
	}

	start := time.Now()
	png, err := r.shooter.Screenshot(ctx, html, width, height)
	if err != nil {
		r.logger.ErrorContext(ctx, "chart screenshot failed",
			slog.Int("charts", len(series)),
			slog.String("error", err.Error()))
		return nil, apperrors.NewRenderError("chart screenshot", err).WithContext("charts", len(series))
	}
	r.logger.InfoContext(ctx, "chart screenshot rendered",
		slog.Int("charts", len(series)),
		slog.Int("bytes", len(png)),
		slog.Duration("duration", time.Since(start)))
	return png, nil
}
