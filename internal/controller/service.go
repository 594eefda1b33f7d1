// Package controller runs all protocol work on one dedicated worker
// goroutine that owns the Session exclusively. Callers from any goroutine
// enqueue requests over a channel and wait on per-request reply channels,
// so the Session is never touched concurrently.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/google/uuid"
	"github.com/maverock24/webToText/internal/config"
	"github.com/maverock24/webToText/internal/devtools"
	"github.com/maverock24/webToText/internal/extract"
	"github.com/maverock24/webToText/internal/storage"
)

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("controller: service closed")

// Status describes the worker's current binding.
type Status struct {
	Connected bool      `json:"connected"`
	TabID     target.ID `json:"tab_id,omitempty"`
	TabCount  int       `json:"tab_count"`
}

// Job identifies one extraction run.
type Job struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// URLExtraction is the outcome of a single-URL run.
type URLExtraction struct {
	Job       Job    `json:"job"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	SavedPath string `json:"saved_path,omitempty"`
}

// BatchExtraction is the outcome of an all-tabs run.
type BatchExtraction struct {
	Job       Job                  `json:"job"`
	Results   []devtools.TabResult `json:"results"`
	SavedPath string               `json:"saved_path,omitempty"`
}

type response struct {
	val any
	err error
}

type request struct {
	ctx   context.Context
	fn    func(ctx context.Context) (any, error)
	reply chan response
}

// Service owns the Session on a single worker goroutine.
type Service struct {
	cfg       *config.Config
	dir       *devtools.Directory
	session   *devtools.Session // worker-owned; only the worker goroutine touches it
	extractor *extract.PageExtractor
	writer    *storage.Writer

	requests chan request
	done     chan struct{}
	stopped  chan struct{}
}

// NewService creates the service and starts its worker.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:       cfg,
		dir:       devtools.NewDirectory(cfg.DebugHost, cfg.DebugPort),
		session:   devtools.NewSession(),
		extractor: extract.NewPageExtractor(),
		writer:    storage.NewWriter(cfg.OutputDir),
		requests:  make(chan request),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go s.worker()
	return s
}

// Close stops the worker and releases the session.
func (s *Service) Close() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	<-s.stopped
}

func (s *Service) worker() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			s.session.Close()
			return
		case req := <-s.requests:
			val, err := req.fn(req.ctx)
			req.reply <- response{val: val, err: err}
		}
	}
}

// do runs fn on the worker goroutine and waits for its outcome.
func (s *Service) do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	req := request{ctx: ctx, fn: fn, reply: make(chan response, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.val, r.err
	case <-s.done:
		return nil, ErrClosed
	}
}

// ListTabs queries the tab directory. The directory is stateless HTTP and
// does not need the worker.
func (s *Service) ListTabs(ctx context.Context) ([]devtools.Tab, error) {
	return s.dir.ListTabs(ctx)
}

// CreateTab opens a new browser tab.
func (s *Service) CreateTab(ctx context.Context) (devtools.Tab, error) {
	return s.dir.CreateTab(ctx)
}

// Status reports the worker's binding alongside a fresh tab count.
func (s *Service) Status(ctx context.Context) (Status, error) {
	tabs, err := s.dir.ListTabs(ctx)
	if err != nil {
		return Status{}, err
	}
	val, err := s.do(ctx, func(context.Context) (any, error) {
		return Status{
			Connected: s.session.Bound(),
			TabID:     s.session.TabID(),
			TabCount:  len(tabs),
		}, nil
	})
	if err != nil {
		return Status{}, err
	}
	return val.(Status), nil
}

// Connect binds the session to the first debuggable page tab, creating a
// fresh tab when none qualifies.
func (s *Service) Connect(ctx context.Context) (Status, error) {
	val, err := s.do(ctx, func(ctx context.Context) (any, error) {
		tabs, err := s.connectLocked(ctx)
		if err != nil {
			return nil, err
		}
		return Status{Connected: true, TabID: s.session.TabID(), TabCount: tabs}, nil
	})
	if err != nil {
		return Status{}, err
	}
	return val.(Status), nil
}

// connectLocked runs on the worker. It returns the tab count observed.
func (s *Service) connectLocked(ctx context.Context) (int, error) {
	tabs, err := s.dir.ListTabs(ctx)
	if err != nil {
		return 0, err
	}

	for _, tab := range tabs {
		if tab.WebSocketDebuggerURL == "" {
			continue
		}
		if err := s.session.Bind(ctx, tab); err != nil {
			slog.Warn("bind candidate tab failed", "tab_id", tab.ID, "error", err)
			continue
		}
		slog.Info("session connected", "tab_id", tab.ID, "url", tab.URL)
		return len(tabs), nil
	}

	tab, err := s.dir.CreateTab(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.session.Bind(ctx, tab); err != nil {
		return 0, err
	}
	slog.Info("session connected to new tab", "tab_id", tab.ID)
	return len(tabs) + 1, nil
}

// ExtractURL navigates the bound tab to the URL, runs the extraction payload
// and optionally saves the result.
func (s *Service) ExtractURL(ctx context.Context, url string, save bool) (URLExtraction, error) {
	if url == "" {
		return URLExtraction{}, &devtools.CodedError{Code: devtools.CodeValidation, Message: "url is required"}
	}

	val, err := s.do(ctx, func(ctx context.Context) (any, error) {
		job := Job{ID: uuid.NewString(), Kind: "url", StartedAt: time.Now()}

		if !s.session.Bound() {
			if _, err := s.connectLocked(ctx); err != nil {
				return nil, err
			}
		}

		nav := devtools.NewNavigator(s.session, time.Duration(s.cfg.NavigateTimeoutMS)*time.Millisecond)
		if err := nav.Navigate(ctx, url); err != nil {
			return nil, err
		}

		// Navigation acknowledgment can precede rendering; give the page a
		// moment to settle before extracting.
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		evalCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.EvalTimeoutMS)*time.Millisecond)
		defer cancel()
		text, err := s.extractor.Extract(evalCtx, s.session, devtools.Tab{})
		if err != nil {
			return nil, err
		}

		out := URLExtraction{Job: job, URL: url, Text: text}
		if save {
			path, err := s.writer.SavePage(url, text)
			if err != nil {
				slog.Warn("save page failed", "url", url, "error", err)
			} else {
				out.SavedPath = path
			}
		}
		out.Job.FinishedAt = time.Now()
		slog.Info("url extraction finished", "job_id", job.ID, "url", url, "chars", len(text))
		return out, nil
	})
	if err != nil {
		return URLExtraction{}, err
	}
	return val.(URLExtraction), nil
}

// ExtractAllTabs runs the batch orchestrator across every open tab and
// optionally saves the aggregate file.
func (s *Service) ExtractAllTabs(ctx context.Context, save bool) (BatchExtraction, error) {
	val, err := s.do(ctx, func(ctx context.Context) (any, error) {
		job := Job{ID: uuid.NewString(), Kind: "all_tabs", StartedAt: time.Now()}

		orch := devtools.NewOrchestrator(s.dir, s.session)
		results, err := orch.RunOverAllTabs(ctx, func(ctx context.Context, sess *devtools.Session, tab devtools.Tab) (string, error) {
			evalCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.EvalTimeoutMS)*time.Millisecond)
			defer cancel()
			return s.extractor.Extract(evalCtx, sess, tab)
		})
		if err != nil {
			return nil, err
		}

		out := BatchExtraction{Job: job, Results: results}
		if save && len(results) > 0 {
			path, err := s.writer.SaveBatch(results)
			if err != nil {
				slog.Warn("save batch failed", "error", err)
			} else {
				out.SavedPath = path
			}
		}
		out.Job.FinishedAt = time.Now()
		slog.Info("batch extraction finished", "job_id", job.ID, "tabs", len(results))
		return out, nil
	})
	if err != nil {
		return BatchExtraction{}, err
	}
	return val.(BatchExtraction), nil
}
