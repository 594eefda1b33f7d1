package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// wireCommand is the shape of commands as a fake tab sees them.
type wireCommand struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// newTabServer starts an httptest server that upgrades each request to a
// websocket and hands the connection to handle.
func newTabServer(t *testing.T, handle func(conn net.Conn)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			t.Errorf("ws.UpgradeHTTP() = %v", err)
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func tabSocketURL(srv *httptest.Server) string {
	return "ws://" + strings.TrimPrefix(srv.URL, "http://")
}

func readCommand(conn net.Conn) (wireCommand, error) {
	data, err := wsutil.ReadClientText(conn)
	if err != nil {
		return wireCommand{}, err
	}
	var cmd wireCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return wireCommand{}, err
	}
	return cmd, nil
}

func writeServerJSON(t *testing.T, conn net.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Errorf("json.Marshal() = %v", err)
		return
	}
	if err := wsutil.WriteServerText(conn, data); err != nil {
		t.Errorf("wsutil.WriteServerText() = %v", err)
	}
}

// directoryFor builds a Directory pointed at an httptest server.
func directoryFor(t *testing.T, srv *httptest.Server) *Directory {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("url.Parse(%q) = %v", srv.URL, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("port of %q: %v", srv.URL, err)
	}
	return NewDirectory(u.Hostname(), port)
}

// bindSession binds a fresh Session to a fake tab server and registers
// cleanup.
func bindSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	s := NewSession()
	tab := Tab{ID: "test-tab", Type: "page", WebSocketDebuggerURL: tabSocketURL(srv)}
	if err := s.Bind(context.Background(), tab); err != nil {
		t.Fatalf("Bind() = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// directoryServer serves a fixed tab listing at /json and a fixed descriptor
// at /json/new.
func directoryServer(t *testing.T, tabs []Tab, created Tab) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			_ = json.NewEncoder(w).Encode(tabs)
		case "/json/new":
			_ = json.NewEncoder(w).Encode(created)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil; want code %s", code)
	}
	var ce *CodedError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v; want *CodedError with code %s", err, code)
	}
	if ce.Code != code {
		t.Fatalf("err code = %s; want %s (err: %v)", ce.Code, code, err)
	}
}

type replyEnvelope struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

type errorEnvelope struct {
	ID    int64        `json:"id"`
	Error CommandError `json:"error"`
}

type eventEnvelope struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}
