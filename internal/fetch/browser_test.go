package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellPage = `<html><body><div id="root"></div><script>app()</script></body></html>`

func renderedPage(body string) string {
	return `<html><body><main><h1>Platform Engineer</h1><p>` + body + `</p></main></body></html>`
}

type fakeRenderer struct {
	html  string
	err   error
	calls int
	url   string
}

func (f *fakeRenderer) render(_ context.Context, url string, _ time.Duration) (string, error) {
	f.calls++
	f.url = url
	return f.html, f.err
}

func staticServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseBrowserMode(t *testing.T) {
	tests := []struct {
		input   string
		want    BrowserMode
		wantErr bool
	}{
		{"", BrowserOff, false},
		{"off", BrowserOff, false},
		{"AUTO", BrowserAuto, false},
		{" always ", BrowserAlways, false},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBrowserMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("Loading..."))
	assert.False(t, ShouldUseBrowser(strings.Repeat("a", MinContentLength)))
}

func TestJobDescription_BrowserOffNeverRenders(t *testing.T) {
	server := staticServer(t, shellPage)
	renderer := &fakeRenderer{html: renderedPage("Run our clusters.")}

	_, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserOff, Render: renderer.render})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no readable text")
	assert.Zero(t, renderer.calls)
}

func TestJobDescription_BrowserAutoRendersShortPages(t *testing.T) {
	server := staticServer(t, shellPage)
	renderer := &fakeRenderer{html: renderedPage("Run our clusters.")}

	text, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserAuto, Render: renderer.render})

	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer\nRun our clusters.", text)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, server.URL, renderer.url)
}

func TestJobDescription_BrowserAutoKeepsLongStaticText(t *testing.T) {
	long := strings.Repeat("Design and operate distributed systems. ", 20)
	server := staticServer(t, `<html><body><main>`+long+`</main></body></html>`)
	renderer := &fakeRenderer{html: renderedPage("unused")}

	text, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserAuto, Render: renderer.render})

	require.NoError(t, err)
	assert.Contains(t, text, "distributed systems")
	assert.Zero(t, renderer.calls)
}

func TestJobDescription_BrowserAutoFallsBackToStaticText(t *testing.T) {
	server := staticServer(t, `<html><body><main>Go engineer, remote.</main></body></html>`)
	renderer := &fakeRenderer{err: errors.New("chrome not found")}

	text, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserAuto, Render: renderer.render})

	require.NoError(t, err)
	assert.Equal(t, "Go engineer, remote.", text)
	assert.Equal(t, 1, renderer.calls)
}

func TestJobDescription_BrowserAutoReportsRenderFailure(t *testing.T) {
	server := staticServer(t, shellPage)
	renderErr := errors.New("chrome not found")
	renderer := &fakeRenderer{err: renderErr}

	_, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserAuto, Render: renderer.render})

	require.Error(t, err)
	assert.ErrorIs(t, err, renderErr)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestJobDescription_BrowserAlwaysSkipsStaticFetch(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write([]byte(shellPage))
	}))
	defer server.Close()
	renderer := &fakeRenderer{html: renderedPage("Own the CI fleet.")}

	text, err := JobDescription(context.Background(), server.URL, &Options{Browser: BrowserAlways, Render: renderer.render})

	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer\nOwn the CI fleet.", text)
	assert.Zero(t, requests)
}

func TestJobDescription_BrowserAlwaysRejectsInvalidURL(t *testing.T) {
	renderer := &fakeRenderer{html: renderedPage("unused")}

	_, err := JobDescription(context.Background(), "file:///etc/passwd", &Options{Browser: BrowserAlways, Render: renderer.render})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL")
	assert.Zero(t, renderer.calls)
}

func TestJobDescription_BrowserAlwaysRenderError(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("timeout")}

	_, err := JobDescription(context.Background(), "https://jobs.example.com/1", &Options{Browser: BrowserAlways, Render: renderer.render})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to render page")
}
