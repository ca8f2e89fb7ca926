package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
)

const (
	barWidth       = 40
	redrawInterval = 100 * time.Millisecond
)

// Bar is a single-line terminal progress bar.
//
// Bar is not safe for concurrent use on its own; wrap it in a Reporter.
type Bar struct {
	w        io.Writer
	label    string
	total    int64
	current  int64
	model    progress.Model
	lastDraw time.Time
	now      func() time.Time
}

// NewBar returns a bar that redraws itself on w.
func NewBar(w io.Writer, label string, total int64) *Bar {
	b := &Bar{
		w:     w,
		label: label,
		total: total,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		now:   time.Now,
	}
	b.draw()
	return b
}

// BarTo returns a DisplayFunc that draws bars on w.
func BarTo(w io.Writer) DisplayFunc {
	return func(label string, total int64) Display {
		return NewBar(w, label, total)
	}
}

// Add advances the bar. Redraws are throttled except for the final one.
func (b *Bar) Add(delta int64) {
	b.current += delta
	if b.current < b.total && b.now().Sub(b.lastDraw) < redrawInterval {
		return
	}
	b.draw()
}

// Close draws the final state and ends the line.
func (b *Bar) Close() error {
	b.draw()
	_, err := io.WriteString(b.w, "\n")
	return err
}

func (b *Bar) draw() {
	b.lastDraw = b.now()
	_, _ = io.WriteString(b.w, "\r"+b.line())
}

func (b *Bar) line() string {
	var sb strings.Builder
	sb.WriteString(b.label)
	sb.WriteByte(' ')
	sb.WriteString(b.model.ViewAs(b.percent()))
	fmt.Fprintf(&sb, " %s/%s", humanize.Bytes(uint64(max(b.current, 0))), humanize.Bytes(uint64(max(b.total, 0))))
	return sb.String()
}

func (b *Bar) percent() float64 {
	if b.total <= 0 {
		return 1
	}
	return min(max(float64(b.current)/float64(b.total), 0), 1)
}
