package devtools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTabsFiltersPageTargets(t *testing.T) {
	srv := directoryServer(t, []Tab{
		{ID: "a", Type: "page", Title: "A", URL: "http://a.test/", WebSocketDebuggerURL: "ws://x/a"},
		{ID: "b", Type: "background_page", Title: "ext"},
		{ID: "c", Type: "page", Title: "C", URL: "http://c.test/", WebSocketDebuggerURL: "ws://x/c"},
		{ID: "d", Type: "service_worker"},
	}, Tab{})

	tabs, err := directoryFor(t, srv).ListTabs(context.Background())
	if err != nil {
		t.Fatalf("ListTabs() = %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("len(tabs) = %d; want 2", len(tabs))
	}
	if tabs[0].ID != "a" || tabs[1].ID != "c" {
		t.Errorf("tab ids = %s, %s; want a, c", tabs[0].ID, tabs[1].ID)
	}
}

func TestListTabsNoPages(t *testing.T) {
	srv := directoryServer(t, []Tab{
		{ID: "b", Type: "background_page"},
	}, Tab{})

	tabs, err := directoryFor(t, srv).ListTabs(context.Background())
	if err != nil {
		t.Fatalf("ListTabs() = %v", err)
	}
	if len(tabs) != 0 {
		t.Errorf("len(tabs) = %d; want 0", len(tabs))
	}
}

func TestListTabsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	_, err := directoryFor(t, srv).ListTabs(context.Background())
	assertCode(t, err, CodeProtocol)
}

func TestListTabsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	dir := directoryFor(t, srv)
	srv.Close()

	_, err := dir.ListTabs(context.Background())
	assertCode(t, err, CodeConnection)
}

func TestListTabsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := directoryFor(t, srv).ListTabs(context.Background())
	assertCode(t, err, CodeProtocol)
}

func TestCreateTab(t *testing.T) {
	created := Tab{
		ID: "new1", Type: "page", URL: "about:blank",
		WebSocketDebuggerURL: "ws://localhost:9222/devtools/page/new1",
	}
	srv := directoryServer(t, nil, created)

	tab, err := directoryFor(t, srv).CreateTab(context.Background())
	if err != nil {
		t.Fatalf("CreateTab() = %v", err)
	}
	if tab.ID != created.ID {
		t.Errorf("tab.ID = %s; want %s", tab.ID, created.ID)
	}
	if tab.WebSocketDebuggerURL != created.WebSocketDebuggerURL {
		t.Errorf("tab.WebSocketDebuggerURL = %q; want %q",
			tab.WebSocketDebuggerURL, created.WebSocketDebuggerURL)
	}
}
