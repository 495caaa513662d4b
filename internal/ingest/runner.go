package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/seomate/seomate/internal/logging"
)

// State is the lifecycle position of the ingestion control.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "idle"
	}
}

// ErrActive is returned by Start while a previous stream is still running.
var ErrActive = errors.New("ingestion already running")

// Opener starts the server-side ingestion and returns its chunked body.
type Opener interface {
	OpenIngest(ctx context.Context, count int) (io.ReadCloser, error)
}

// Event is published for every progress message and once at termination.
type Event struct {
	Message string
	Done    bool
	Err     error // set on a failed termination
}

// Status describes the control as last observed.
type Status struct {
	State   State
	Count   int
	Message string
	Err     error
	Started time.Time
}

// Runner drives one ingestion stream at a time. On a clean end of stream it
// calls Refresh exactly once; on failure it does not.
type Runner struct {
	open    Opener
	refresh func(context.Context) error
	log     *logging.Logger

	mu     sync.Mutex
	status Status
}

// NewRunner wires a runner. refresh may be nil.
func NewRunner(open Opener, refresh func(context.Context) error, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{open: open, refresh: refresh, log: log.With("component", "ingest")}
}

const chunkSize = 4096

// Start begins ingesting count items. Events arrive on the returned channel,
// which is closed after the terminal event. A second Start while one stream
// is running fails with ErrActive and leaves the first untouched.
func (r *Runner) Start(ctx context.Context, count int) (<-chan Event, error) {
	r.mu.Lock()
	if r.status.State == StateRunning {
		r.mu.Unlock()
		return nil, ErrActive
	}
	r.status = Status{State: StateRunning, Count: count, Started: time.Now()}
	r.mu.Unlock()

	events := make(chan Event, 16)
	go r.run(ctx, count, events)
	return events, nil
}

// Status returns a copy of the current status.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Running reports whether a stream is active.
func (r *Runner) Running() bool {
	return r.Status().State == StateRunning
}

func (r *Runner) run(ctx context.Context, count int, events chan<- Event) {
	defer close(events)
	start := time.Now()
	r.log.Info("ingest started", "count", count)

	err := r.consume(ctx, count, events)
	if err != nil {
		r.finish("", err)
		r.log.Warn("ingest failed", "count", count, "duration", time.Since(start), "error", err)
		events <- Event{Message: err.Error(), Done: true, Err: err}
		return
	}

	if r.refresh != nil {
		if rerr := r.refresh(ctx); rerr != nil {
			r.log.Warn("catalog refresh after ingest failed", "error", rerr)
		}
	}
	msg := r.Status().Message
	r.finish(msg, nil)
	r.log.Info("ingest finished", "count", count, "duration", time.Since(start))
	events <- Event{Message: msg, Done: true}
}

func (r *Runner) consume(ctx context.Context, count int, events chan<- Event) error {
	body, err := r.open.OpenIngest(ctx, count)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	parser := NewParser()
	buf := make([]byte, chunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			r.publish(parser.Feed(buf[:n]), events)
		}
		if errors.Is(readErr, io.EOF) {
			r.publish(parser.Flush(), events)
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func (r *Runner) publish(messages []string, events chan<- Event) {
	for _, msg := range messages {
		r.mu.Lock()
		r.status.Message = msg
		r.mu.Unlock()
		events <- Event{Message: msg}
	}
}

func (r *Runner) finish(msg string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.State = StateTerminated
	r.status.Err = err
	if err != nil {
		r.status.Message = err.Error()
	} else {
		r.status.Message = msg
	}
}
