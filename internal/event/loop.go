// Package event provides the owner loop: a single goroutine that serializes
// every mutation of editor state. Background work (language-server requests,
// filesystem scans) runs off-loop and posts its completion back with Post;
// the posted function then runs with exclusive access to whatever the loop
// owns. Nothing in this package is concurrent with itself: two posted
// functions never run at the same time.
package event

import (
	"errors"
	"log"
	"runtime/debug"
	"sync"
)

// ErrLoopClosed is returned by Post after Close.
var ErrLoopClosed = errors.New("event loop closed")

// Scheduler posts work onto an owner goroutine. Callbacks run serially.
type Scheduler interface {
	Post(fn func()) error
}

// Loop is a serial callback executor. Functions posted from any goroutine
// run one at a time on the goroutine that calls Run.
type Loop struct {
	queue chan func()

	mu     sync.Mutex
	closed bool
}

// NewLoop creates a loop with a bounded queue.
func NewLoop() *Loop {
	return &Loop{queue: make(chan func(), 256)}
}

// Post enqueues fn for execution on the owner goroutine.
// It blocks when the queue is full and fails after Close.
func (l *Loop) Post(fn func()) error {
	// The send must happen under the same lock that Close closes the
	// channel under, or a Post racing Close panics on the closed channel.
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLoopClosed
	}
	l.queue <- fn
	return nil
}

// Run executes posted functions until Close. It is the owner goroutine.
func (l *Loop) Run() {
	for fn := range l.queue {
		l.invoke(fn)
	}
}

// Drain runs every function already queued and returns. Useful for tests
// and for single-threaded hosts that pump the loop between input events.
func (l *Loop) Drain() {
	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		default:
			return
		}
	}
}

// invoke runs fn, recovering panics so one bad callback cannot take the
// owner goroutine down.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: callback panic: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}

// Close stops the loop. Pending functions still queued are executed by Run
// before it returns; Post fails afterwards.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.queue)
}
