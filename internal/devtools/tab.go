package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/target"
)

// Tab is an immutable snapshot of one debuggable browser tab as reported by
// the discovery endpoint. Snapshots are produced fresh on every directory
// query and never cached.
type Tab struct {
	ID                   target.ID `json:"id"`
	Type                 string    `json:"type"`
	Title                string    `json:"title"`
	URL                  string    `json:"url"`
	WebSocketDebuggerURL string    `json:"webSocketDebuggerUrl"`
}

// Directory queries the browser's HTTP control endpoint for debuggable tabs.
type Directory struct {
	httpBase string // e.g. "http://localhost:9222"
	client   *http.Client
}

// NewDirectory creates a Directory for the given debugger host and port.
func NewDirectory(host string, port int) *Directory {
	return &Directory{
		httpBase: fmt.Sprintf("http://%s:%d", host, port),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ListTabs fetches all open tabs via GET /json and returns only entries of
// type "page". DevTools, extension and background targets are excluded.
func (d *Directory) ListTabs(ctx context.Context) ([]Tab, error) {
	body, err := d.get(ctx, "/json")
	if err != nil {
		return nil, err
	}

	var entries []Tab
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, newError(CodeProtocol, "malformed tab listing", err)
	}

	pages := make([]Tab, 0, len(entries))
	for _, t := range entries {
		if t.Type != "page" {
			continue
		}
		pages = append(pages, t)
	}
	return pages, nil
}

// CreateTab opens a new tab via GET /json/new and returns its descriptor.
func (d *Directory) CreateTab(ctx context.Context) (Tab, error) {
	body, err := d.get(ctx, "/json/new")
	if err != nil {
		return Tab{}, err
	}

	var t Tab
	if err := json.Unmarshal(body, &t); err != nil {
		return Tab{}, newError(CodeProtocol, "malformed new-tab descriptor", err)
	}
	return t, nil
}

func (d *Directory) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.httpBase+path, nil)
	if err != nil {
		return nil, newError(CodeConnection, "build request for "+path, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, newError(CodeConnection, "debugger endpoint unreachable at "+d.httpBase, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(CodeProtocol, fmt.Sprintf("%s: HTTP %d", path, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(CodeConnection, "read response for "+path, err)
	}
	return body, nil
}
