package splash

import (
	"sync"
	"time"
)

// Redirector navigates away from the splash view once its delay elapses.
// The timer exists only between Mount and expiry or Unmount.
type Redirector struct {
	delay    time.Duration
	navigate func()

	mu      sync.Mutex
	timer   *time.Timer
	mounted bool
	fired   bool
	done    chan struct{}
}

// NewRedirector returns a redirector that calls navigate after delay.
// navigate runs on the timer goroutine and at most once.
func NewRedirector(delay time.Duration, navigate func()) *Redirector {
	if navigate == nil {
		navigate = func() {}
	}
	return &Redirector{
		delay:    delay,
		navigate: navigate,
		done:     make(chan struct{}),
	}
}

// Mount starts the timer. Calling it again, or after Unmount, does nothing.
func (r *Redirector) Mount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted {
		return
	}
	r.mounted = true
	r.timer = time.AfterFunc(r.delay, r.fire)
}

func (r *Redirector) fire() {
	r.mu.Lock()
	if r.fired || r.timer == nil {
		r.mu.Unlock()
		return
	}
	r.fired = true
	r.timer = nil
	r.mu.Unlock()

	r.navigate()
	close(r.done)
}

// Done is closed after navigate has run.
func (r *Redirector) Done() <-chan struct{} {
	return r.done
}

// Unmount stops a pending timer. It reports whether navigation was cancelled;
// false means the timer already fired or was never started.
func (r *Redirector) Unmount() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounted = true
	if r.timer == nil {
		return false
	}
	// A fire already waiting on mu sees the nil timer and returns.
	r.timer.Stop()
	r.timer = nil
	return true
}
