package devtools

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestNavigateReplyFirst(t *testing.T) {
	srv := newTabServer(t, func(conn net.Conn) {
		cmd, err := readCommand(conn)
		if err != nil {
			return
		}
		if cmd.Method != "Page.navigate" {
			t.Errorf("method = %q; want Page.navigate", cmd.Method)
		}
		writeServerJSON(t, conn, replyEnvelope{ID: cmd.ID, Result: map[string]any{"frameId": "f1"}})
	})
	s := bindSession(t, srv)

	n := NewNavigator(s, 2*time.Second)
	if err := n.Navigate(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("Navigate() = %v", err)
	}
}

func TestNavigateLoadEventFirst(t *testing.T) {
	srv := newTabServer(t, func(conn net.Conn) {
		if _, err := readCommand(conn); err != nil {
			return
		}
		// An unrelated event must be discarded, then the load event settles it.
		writeServerJSON(t, conn, eventEnvelope{Method: "Page.frameStartedLoading"})
		writeServerJSON(t, conn, eventEnvelope{Method: "Page.loadEventFired"})
	})
	s := bindSession(t, srv)

	n := NewNavigator(s, 2*time.Second)
	if err := n.Navigate(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("Navigate() = %v", err)
	}
}

func TestNavigateErrorReply(t *testing.T) {
	srv := newTabServer(t, func(conn net.Conn) {
		cmd, err := readCommand(conn)
		if err != nil {
			return
		}
		writeServerJSON(t, conn, errorEnvelope{
			ID:    cmd.ID,
			Error: CommandError{Code: -32000, Message: "Cannot navigate to invalid URL"},
		})
	})
	s := bindSession(t, srv)

	n := NewNavigator(s, 2*time.Second)
	err := n.Navigate(context.Background(), "notaurl")
	assertCode(t, err, CodeProtocol)
}

func TestNavigateTimesOut(t *testing.T) {
	srv := newTabServer(t, func(conn net.Conn) {
		// Swallow the command and stay silent.
		_, _ = readCommand(conn)
		_, _ = readCommand(conn)
	})
	s := bindSession(t, srv)

	n := NewNavigator(s, 100*time.Millisecond)
	start := time.Now()
	err := n.Navigate(context.Background(), "https://example.com/")
	assertCode(t, err, CodeNavigationTimeout)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Navigate() took %v; want bounded near 100ms", elapsed)
	}
}

func TestNavigateUnbound(t *testing.T) {
	n := NewNavigator(NewSession(), time.Second)
	err := n.Navigate(context.Background(), "https://example.com/")
	assertCode(t, err, CodeNotBound)
}

func TestNewNavigatorDefaultTimeout(t *testing.T) {
	n := NewNavigator(NewSession(), 0)
	if n.timeout != DefaultNavigateTimeout {
		t.Errorf("timeout = %v; want %v", n.timeout, DefaultNavigateTimeout)
	}
}
