package daemon

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietWindow is the debounce window of source change bursts.
const DefaultQuietWindow = 300 * time.Millisecond

// Rebuilder runs at most one build at a time. Requests arriving while a build
// runs are coalesced into exactly one follow-up build.
type Rebuilder struct {
	run   func(context.Context)
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
	req   chan struct{}
}

// NewRebuilder returns a rebuilder calling run. A non-positive quiet window
// uses DefaultQuietWindow.
func NewRebuilder(run func(context.Context), quiet time.Duration) *Rebuilder {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Rebuilder{run: run, quiet: quiet, req: make(chan struct{}, 1)}
}

// Trigger requests a build after the quiet window.
func (r *Rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.quiet, r.Request)
}

// Request requests a build without debouncing.
func (r *Rebuilder) Request() {
	select {
	case r.req <- struct{}{}:
	default:
	}
}

// Run processes requests until ctx is done. Requests made while a build runs
// stay buffered in a single slot.
func (r *Rebuilder) Run(ctx context.Context) {
	defer r.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.req:
			r.run(ctx)
		}
	}
}

func (r *Rebuilder) stopTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}
