// Package progress tracks transfer progress and drives a terminal display.
//
// A Reporter is the provider.ProgressSink handed to the storage client. The
// SDK transfer manager may call it from several goroutines; the Reporter
// serializes those calls and closes its display exactly once.
package progress

import (
	"fmt"
	"os"
	"sync"
)

// Display renders transfer progress. Reporter serializes all calls.
type Display interface {
	// Add advances the display by delta bytes.
	Add(delta int64)

	// Close finishes the display. Reporter calls it at most once.
	Close() error
}

// DisplayFunc builds a display for a transfer of total bytes.
type DisplayFunc func(label string, total int64) Display

// Reporter counts transferred bytes against a known total.
type Reporter struct {
	mu      sync.Mutex
	label   string
	total   int64
	seen    int64
	closed  bool
	display Display
}

// New returns a reporter for a transfer of total bytes.
// A nil newDisplay uses Discard.
func New(label string, total int64, newDisplay DisplayFunc) *Reporter {
	if newDisplay == nil {
		newDisplay = Discard
	}
	return &Reporter{
		label:   label,
		total:   total,
		display: newDisplay(label, total),
	}
}

// NewForFile returns a reporter sized from the local file at path.
func NewForFile(path string, newDisplay DisplayFunc) (*Reporter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", path)
	}
	return New(path, info.Size(), newDisplay), nil
}

// Add records delta transferred bytes. It closes the display once the
// running count reaches the total. Safe for concurrent use.
func (r *Reporter) Add(delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen += delta
	if r.closed {
		return
	}
	r.display.Add(delta)
	if r.seen >= r.total {
		_ = r.closeLocked()
	}
}

// Close closes the display if Add has not already done so.
// Calling Close more than once is a no-op.
func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	return r.closeLocked()
}

func (r *Reporter) closeLocked() error {
	r.closed = true
	return r.display.Close()
}

// Seen returns the running byte count.
func (r *Reporter) Seen() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen
}

// Discard is a DisplayFunc whose displays render nothing.
func Discard(string, int64) Display {
	return discard{}
}

type discard struct{}

func (discard) Add(int64)    {}
func (discard) Close() error { return nil }
