package flow

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrLoopStopped = errors.New("loop is stopped")

// Loop executes posted callbacks one at a time on a single goroutine in the
// order they were posted. Callback posting from inside of another callback
// runs on the next tick, after everything already queued.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start runs loop goroutine until Stop is called or context is done.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return
		}
		var fn func()
		if len(l.queue) > 0 {
			fn = l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
		}
		l.mu.Unlock()

		if fn != nil {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.queue = nil
			l.mu.Unlock()
			return
		case <-l.wake:
		}
	}
}

// Post queues callback. It returns false when loop is stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts callback and waits for it to complete. It must not be called from
// the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drops queued callbacks and waits for the one running to finish. It
// must not be called from the loop goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	started := l.started
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	if started {
		<-l.done
	}
}

// Debouncer runs callback once after calls stopped coming for delay.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	gen      uint64
	callback func()
}

func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{delay: delay, callback: callback}
}

// Call restarts the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	gen := d.reset()
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush runs pending callback now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	d.reset()
	fn := d.take()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel drops pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reset()
	d.pending = false
}

func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// reset stops the timer and invalidates already fired ones. Caller holds mu.
func (d *Debouncer) reset() uint64 {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return d.gen
}

// take clears pending state and returns callback to run. Caller holds mu.
func (d *Debouncer) take() func() {
	if !d.pending {
		return nil
	}
	d.pending = false
	return d.callback
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	var fn func()
	if gen == d.gen {
		fn = d.take()
	}
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
