package devtools

import (
	"context"
	"log/slog"

	"github.com/chromedp/cdproto/target"
)

// ExtractFunc is the per-tab collaborator invoked with the Session already
// bound to the tab. The returned string is opaque to this package.
type ExtractFunc func(ctx context.Context, s *Session, tab Tab) (string, error)

// TabResult is one tab's outcome from a batch run. Err non-empty means the
// tab failed; Body renders the text slot either way.
type TabResult struct {
	TabID target.ID `json:"tab_id"`
	URL   string    `json:"url"`
	Title string    `json:"title"`
	Text  string    `json:"text,omitempty"`
	Err   string    `json:"error,omitempty"`
}

// Body returns the extracted text, or the error description when the tab
// failed.
func (r TabResult) Body() string {
	if r.Err != "" {
		return "Error extracting text: " + r.Err
	}
	return r.Text
}

// Orchestrator iterates a Session across every open tab, invoking an
// extraction collaborator per tab and aggregating results.
type Orchestrator struct {
	dir     *Directory
	session *Session
}

// NewOrchestrator creates an Orchestrator sharing the caller's Session.
func NewOrchestrator(dir *Directory, s *Session) *Orchestrator {
	return &Orchestrator{dir: dir, session: s}
}

// RunOverAllTabs enumerates the current tab set and rebinds the Session to
// each tab in turn, calling extract against the bound Session. A failure on
// one tab is recorded in that tab's result and never aborts the batch. When
// done it attempts to rebind the tab that was bound before the run started;
// failure to restore is swallowed. An empty tab set yields an empty slice.
func (o *Orchestrator) RunOverAllTabs(ctx context.Context, extract ExtractFunc) ([]TabResult, error) {
	tabs, err := o.dir.ListTabs(ctx)
	if err != nil {
		return nil, err
	}

	homeTab := o.session.TabID()
	results := make([]TabResult, 0, len(tabs))

	for _, tab := range tabs {
		res := TabResult{TabID: tab.ID, URL: tab.URL, Title: tab.Title}

		if err := o.session.Bind(ctx, tab); err != nil {
			slog.Warn("batch tab bind failed", "tab_id", tab.ID, "error", err)
			res.Err = err.Error()
			results = append(results, res)
			continue
		}

		text, err := extract(ctx, o.session, tab)
		if err != nil {
			slog.Warn("batch tab extraction failed", "tab_id", tab.ID, "error", err)
			res.Err = err.Error()
		} else {
			res.Text = text
		}
		results = append(results, res)
	}

	o.restoreHome(ctx, homeTab)
	return results, nil
}

// restoreHome rebinds the originally bound tab if a fresh directory query
// still lists it. Best-effort: every failure path just logs.
func (o *Orchestrator) restoreHome(ctx context.Context, homeTab target.ID) {
	if homeTab == "" {
		return
	}
	tabs, err := o.dir.ListTabs(ctx)
	if err != nil {
		slog.Debug("home tab restore listing failed", "tab_id", homeTab, "error", err)
		return
	}
	for _, tab := range tabs {
		if tab.ID != homeTab {
			continue
		}
		if err := o.session.Bind(ctx, tab); err != nil {
			slog.Debug("home tab rebind failed", "tab_id", homeTab, "error", err)
		}
		return
	}
	slog.Debug("home tab no longer present", "tab_id", homeTab)
}
