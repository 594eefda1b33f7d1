package devtools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto"
)

// Navigator sequences navigation commands against a bound Session.
type Navigator struct {
	session *Session
	timeout time.Duration
}

// DefaultNavigateTimeout bounds the wait for a navigation outcome when the
// caller does not configure one.
const DefaultNavigateTimeout = 30 * time.Second

// NewNavigator creates a Navigator. A non-positive timeout selects the
// default.
func NewNavigator(s *Session, timeout time.Duration) *Navigator {
	if timeout <= 0 {
		timeout = DefaultNavigateTimeout
	}
	return &Navigator{session: s, timeout: timeout}
}

// Navigate sends Page.navigate and blocks until either the command's reply
// or a Page.loadEventFired event is observed, whichever is read first. The
// first qualifying message in read order is authoritative; unrelated events
// and stale replies are discarded. A crashed or silent tab cannot hang the
// caller: the wait is bounded and expires as a navigation timeout.
func (n *Navigator) Navigate(ctx context.Context, url string) error {
	params := struct {
		URL string `json:"url"`
	}{URL: url}

	id, err := n.session.Send(string(cdproto.CommandPageNavigate), params)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	for {
		msg, err := n.session.readMessage(waitCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
				return newError(CodeNavigationTimeout,
					"no navigate reply or load event within "+n.timeout.String(), err)
			}
			return err
		}

		switch {
		case msg.Kind == KindReplyError && msg.ID == id:
			return newError(CodeProtocol, "Page.navigate: "+msg.Err.Message, nil)
		case msg.Kind == KindReply && msg.ID == id:
			slog.Debug("navigation acknowledged", "url", url, "id", id)
			return nil
		case msg.Kind == KindEvent && msg.Method == string(cdproto.EventPageLoadEventFired):
			slog.Debug("navigation load event observed", "url", url)
			return nil
		default:
			slog.Debug("navigation wait discarding message", "kind", int(msg.Kind), "method", msg.Method)
		}
	}
}
