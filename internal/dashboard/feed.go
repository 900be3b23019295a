package dashboard

import (
	"sync"

	"github.com/ngipak/infodesa/internal/event"
)

// Feed is a fixed-size ring of the most recent events.
type Feed struct {
	mu    sync.Mutex
	buf   []event.Event
	next  int
	count int
}

// NewFeed returns a feed holding at most size events.
func NewFeed(size int) *Feed {
	if size < 1 {
		size = 1
	}
	return &Feed{buf: make([]event.Event, size)}
}

// Add appends e, evicting the oldest event when full.
func (f *Feed) Add(e event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf[f.next] = e
	f.next = (f.next + 1) % len(f.buf)
	if f.count < len(f.buf) {
		f.count++
	}
}

// Recent returns the stored events, newest first.
func (f *Feed) Recent() []event.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.Event, 0, f.count)
	for i := 1; i <= f.count; i++ {
		out = append(out, f.buf[(f.next-i+len(f.buf))%len(f.buf)])
	}
	return out
}
