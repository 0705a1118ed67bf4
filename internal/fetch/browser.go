package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest static text accepted in BrowserAuto mode
// before the page is rendered in a headless browser instead.
const MinContentLength = 500

// BrowserMode selects when a job posting is rendered in a headless browser.
type BrowserMode string

const (
	// BrowserOff only fetches the static HTML
	BrowserOff BrowserMode = "off"
	// BrowserAuto renders the page when the static text is too short
	BrowserAuto BrowserMode = "auto"
	// BrowserAlways renders every page
	BrowserAlways BrowserMode = "always"
)

// ParseBrowserMode parses a mode name; the empty string is BrowserOff.
func ParseBrowserMode(s string) (BrowserMode, error) {
	switch mode := BrowserMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", BrowserOff:
		return BrowserOff, nil
	case BrowserAuto, BrowserAlways:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown browser mode %q (want off, auto or always)", s)
	}
}

// Renderer returns the HTML of a page after its scripts have run.
type Renderer func(ctx context.Context, url string, timeout time.Duration) (string, error)

// ShouldUseBrowser reports whether extracted text is short enough that the page
// is probably rendered client-side.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in headless Chrome and returns the resulting HTML.
// Chrome or Chromium must be installed.
func WithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	slog.Debug("rendering page in headless browser", slog.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Job boards often fill the posting in after load
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners are optional
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	slog.Debug("rendered page", slog.String("url", url), slog.Int("bytes", len(html)))
	return html, nil
}
