package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/target"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Session owns at most one websocket connection to one browser tab. The
// protocol it speaks is strictly synchronous: every Send is followed by a
// blocking ReceiveMatching for the same id, so there is never more than one
// command in flight. A Session must not be used from more than one goroutine;
// callers that need responsiveness run the whole sequence on a dedicated
// worker (see internal/controller).
type Session struct {
	conn  net.Conn
	tabID target.ID
	seq   atomic.Int64 // monotonic for the Session's lifetime, never reset on rebind
}

// NewSession returns an unbound Session.
func NewSession() *Session {
	return &Session{}
}

// Bound reports whether the Session currently holds a connection.
func (s *Session) Bound() bool { return s.conn != nil }

// TabID returns the id of the currently bound tab, or "" when unbound.
func (s *Session) TabID() target.ID { return s.tabID }

// Bind opens a connection to the tab's advertised socket address. Any prior
// connection is released first; close errors during that release are
// swallowed. The id counter is deliberately left untouched so ids stay
// globally monotonic across rebinds.
func (s *Session) Bind(ctx context.Context, tab Tab) error {
	if tab.WebSocketDebuggerURL == "" {
		return newError(CodeValidation, "tab "+string(tab.ID)+" has no webSocketDebuggerUrl", nil)
	}

	s.Close()

	conn, _, _, err := ws.Dial(ctx, tab.WebSocketDebuggerURL)
	if err != nil {
		return newError(CodeConnection, "dial tab socket "+tab.WebSocketDebuggerURL, err)
	}

	s.conn = conn
	s.tabID = tab.ID
	slog.Debug("session bound", "tab_id", tab.ID, "url", tab.URL)
	return nil
}

// Close releases the connection. Idempotent and best-effort; it never fails
// observably.
func (s *Session) Close() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		slog.Debug("session close failed", "tab_id", s.tabID, "error", err)
	}
	s.conn = nil
	s.tabID = ""
}

// Send allocates the next correlation id, serializes the command and writes
// it to the connection. It returns the allocated id so the caller can wait
// for the matching reply.
func (s *Session) Send(method string, params any) (int64, error) {
	if s.conn == nil {
		return 0, newError(CodeNotBound, "no tab connection bound", nil)
	}

	id := s.seq.Add(1)
	cmd := struct {
		ID     int64  `json:"id"`
		Method string `json:"method"`
		Params any    `json:"params,omitempty"`
	}{ID: id, Method: method, Params: params}

	data, err := json.Marshal(cmd)
	if err != nil {
		return 0, newError(CodeProtocol, "marshal command "+method, err)
	}
	if err := wsutil.WriteClientText(s.conn, data); err != nil {
		return 0, newError(CodeConnection, "write command "+method, err)
	}
	slog.Debug("command sent", "id", id, "method", method)
	return id, nil
}

// ReceiveMatching blocks reading messages until the reply with the given id
// arrives. Events and replies to stale ids are discarded and the read loop
// continues. The context deadline, if any, bounds the wait.
func (s *Session) ReceiveMatching(ctx context.Context, id int64) (Message, error) {
	for {
		msg, err := s.readMessage(ctx)
		if err != nil {
			return Message{}, err
		}
		if msg.IsReplyTo(id) {
			return msg, nil
		}
		if msg.Kind == KindEvent {
			slog.Debug("event discarded while waiting", "want_id", id, "method", msg.Method)
		} else {
			slog.Debug("stale reply discarded", "want_id", id, "got_id", msg.ID)
		}
	}
}

// RoundTrip sends a command and blocks until its reply arrives, returning the
// result payload. A reply carrying an error payload is surfaced as a
// protocol error.
func (s *Session) RoundTrip(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id, err := s.Send(method, params)
	if err != nil {
		return nil, err
	}
	msg, err := s.ReceiveMatching(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Kind == KindReplyError {
		return nil, newError(CodeProtocol, method+": "+msg.Err.Message, nil)
	}
	return msg.Result, nil
}

// Document round-trips DOM.getDocument and returns the raw root node.
func (s *Session) Document(ctx context.Context) (json.RawMessage, error) {
	result, err := s.RoundTrip(ctx, string(cdproto.CommandDOMGetDocument), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, newError(CodeProtocol, "malformed DOM.getDocument result", err)
	}
	return out.Root, nil
}

// readMessage reads and decodes one frame, honouring the context deadline via
// the connection's read deadline.
func (s *Session) readMessage(ctx context.Context) (Message, error) {
	if s.conn == nil {
		return Message{}, newError(CodeNotBound, "no tab connection bound", nil)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
		defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()
	}

	data, err := wsutil.ReadServerText(s.conn)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Message{}, newError(CodeConnection, "read deadline exceeded", context.DeadlineExceeded)
		}
		return Message{}, newError(CodeConnection, "read from tab socket", err)
	}
	return decodeMessage(data)
}
