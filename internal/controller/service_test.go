package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/maverock24/webToText/internal/config"
	"github.com/maverock24/webToText/internal/devtools"
)

// newTestService wires a Service against a fake discovery endpoint.
func newTestService(t *testing.T, tabs []devtools.Tab) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(tabs)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse(%q) = %v", srv.URL, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("port of %q: %v", srv.URL, err)
	}

	cfg := &config.Config{
		DebugHost:         u.Hostname(),
		DebugPort:         port,
		OutputDir:         t.TempDir(),
		NavigateTimeoutMS: 1000,
		EvalTimeoutMS:     1000,
	}
	s := NewService(cfg)
	t.Cleanup(s.Close)
	return s
}

func TestExtractURLRequiresURL(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.ExtractURL(context.Background(), "", false)
	if err == nil {
		t.Fatal("ExtractURL() = nil; want validation error")
	}
	var coded *devtools.CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("ExtractURL() error type = %T; want *devtools.CodedError", err)
	}
	if coded.Code != devtools.CodeValidation {
		t.Fatalf("ExtractURL() code = %q; want %q", coded.Code, devtools.CodeValidation)
	}
}

func TestStatusUnbound(t *testing.T) {
	s := newTestService(t, []devtools.Tab{
		{ID: "a", Type: "page"},
		{ID: "bg", Type: "background_page"},
	})

	st, err := s.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() = %v", err)
	}
	if st.Connected {
		t.Error("Connected = true; want false before Connect")
	}
	if st.TabCount != 1 {
		t.Errorf("TabCount = %d; want 1 (page targets only)", st.TabCount)
	}
}

func TestRequestsAfterClose(t *testing.T) {
	s := newTestService(t, nil)
	s.Close()

	if _, err := s.Status(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Status() after Close = %v; want ErrClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestService(t, nil)
	s.Close()
	s.Close()
}
