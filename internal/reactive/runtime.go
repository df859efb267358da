package reactive

import (
	"context"
	"errors"
	"log/slog"
)

// ErrRenderLoop is logged when writes issued during rendering keep
// scheduling new passes beyond the configured limit.
var ErrRenderLoop = errors.New("render loop exceeded max passes")

const (
	defaultMaxPasses = 16
	inboxSize        = 64
)

type listener struct {
	id uint64
	fn func()
}

// Runtime is the render driver. Every state write runs a render pass that
// calls each subscribed listener in registration order before the write
// returns. Writes issued while a pass is running are queued and applied
// once the pass completes, followed by another pass.
type Runtime struct {
	logger    *slog.Logger
	maxPasses int
	onPass    func(pass int)

	listeners []listener
	nextID    uint64

	rendering bool
	pending   []func()
	passes    uint64

	inbox chan func()
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for render loop diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxPasses bounds the number of consecutive passes a single write may
// trigger through writes made during rendering.
func WithMaxPasses(n int) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// WithRenderHook registers fn to be called after every completed pass with
// the pass number within the current render (starting at 1).
func WithRenderHook(fn func(pass int)) Option {
	return func(r *Runtime) {
		r.onPass = fn
	}
}

// NewRuntime creates a render driver with no listeners.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		logger:    slog.Default(),
		maxPasses: defaultMaxPasses,
		inbox:     make(chan func(), inboxSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn to run on every render pass and returns a
// function that removes it.
func (r *Runtime) Subscribe(fn func()) (unsubscribe func()) {
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Rendering reports whether a render pass is in progress.
func (r *Runtime) Rendering() bool {
	return r.rendering
}

// Passes returns the number of render passes run so far.
func (r *Runtime) Passes() uint64 {
	return r.passes
}

// Render runs a render pass without any state change.
func (r *Runtime) Render() {
	if r.rendering {
		return
	}
	r.render()
}

// write applies a state mutation and renders, or queues it when called
// from inside a pass.
func (r *Runtime) write(apply func()) {
	if r.rendering {
		r.pending = append(r.pending, apply)
		return
	}
	apply()
	r.render()
}

func (r *Runtime) render() {
	r.rendering = true
	defer func() { r.rendering = false }()

	for pass := 1; ; pass++ {
		r.runPass(pass)
		if len(r.pending) == 0 {
			return
		}
		if pass >= r.maxPasses {
			r.logger.Error("Render aborted",
				"error", ErrRenderLoop,
				"passes", pass,
				"dropped_writes", len(r.pending))
			r.pending = nil
			return
		}
		queued := r.pending
		r.pending = nil
		for _, apply := range queued {
			apply()
		}
	}
}

func (r *Runtime) runPass(pass int) {
	// Listeners may unsubscribe during the pass.
	ls := make([]listener, len(r.listeners))
	copy(ls, r.listeners)
	for _, l := range ls {
		l.fn()
	}
	r.passes++
	if r.onPass != nil {
		r.onPass(pass)
	}
}

// Post hands fn to the loop goroutine. It is the only Runtime method that
// may be called from other goroutines.
func (r *Runtime) Post(fn func()) {
	r.inbox <- fn
}

// PostContext is Post for goroutines that may outlive the loop. It queues
// fn whenever the inbox has room and only gives up, returning false, when
// ctx is done while the inbox is full.
func (r *Runtime) PostContext(ctx context.Context, fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	default:
	}
	select {
	case r.inbox <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run executes posted work until ctx is cancelled.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.inbox:
			fn()
		}
	}
}

// Step waits for one posted function and executes it.
func (r *Runtime) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fn := <-r.inbox:
		fn()
		return nil
	}
}
