package fetch

import (
	"context"
	"strings"
)

// JobDescription fetches a job posting and returns its description as plain text.
// opts.Browser decides whether the page is also rendered in a headless browser.
func JobDescription(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if opts.Browser == BrowserAlways {
		if err := checkURL(urlStr); err != nil {
			return "", err
		}
		text, err := renderedText(ctx, urlStr, opts)
		if err != nil {
			return "", &Error{URL: urlStr, Message: "failed to render page", Cause: err}
		}
		if strings.TrimSpace(text) == "" {
			return "", &Error{URL: urlStr, Message: "page has no readable text"}
		}
		return text, nil
	}

	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return "", err
	}
	text, err := postingText(urlStr, result.HTML)
	if err != nil {
		return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}

	var renderErr error
	if opts.Browser == BrowserAuto && ShouldUseBrowser(text) {
		var rendered string
		rendered, renderErr = renderedText(ctx, urlStr, opts)
		if renderErr == nil && len(strings.TrimSpace(rendered)) > len(strings.TrimSpace(text)) {
			text = rendered
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", &Error{URL: urlStr, Message: "page has no readable text", Cause: renderErr}
	}
	return text, nil
}

func renderedText(ctx context.Context, urlStr string, opts *Options) (string, error) {
	render := opts.Render
	if render == nil {
		render = WithBrowser
	}
	html, err := render(ctx, urlStr, opts.Timeout)
	if err != nil {
		return "", err
	}
	return postingText(urlStr, html)
}

func postingText(urlStr, html string) (string, error) {
	platform := DetectPlatform(urlStr)
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}
