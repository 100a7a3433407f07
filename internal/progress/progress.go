// Package progress draws a spinner with a document counter while corpus runs
// train or tag many documents.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Counter is a spinning progress line of the form "◜ training 12/40".
// Done is safe to call from many goroutines.
type Counter struct {
	frames []string
	delay  time.Duration
	writer io.Writer
	label  string

	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64

	mu     sync.Mutex
	active bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Counter for total documents. ctx cancels the drawing goroutine.
func New(ctx context.Context, writer io.Writer, label string, total int) *Counter {
	counterCtx, cancel := context.WithCancel(ctx)
	c := &Counter{
		frames: []string{"◜", "◠", "◝", "◞", "◡", "◟"},
		delay:  100 * time.Millisecond,
		writer: writer,
		label:  label,
		ctx:    counterCtx,
		cancel: cancel,
	}
	c.total.Store(int64(total))
	return c
}

// SetTotal changes the number of documents the counter expects.
func (c *Counter) SetTotal(total int) {
	c.total.Store(int64(total))
}

// Total returns the number of documents the counter expects.
func (c *Counter) Total() int {
	return int(c.total.Load())
}

// Start begins drawing. Starting twice is a no-op.
func (c *Counter) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return
	}
	c.active = true

	c.wg.Add(1)
	go c.run()
}

// Stop halts drawing and clears the line.
func (c *Counter) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()

	if IsTerminal(c.writer) {
		fmt.Fprint(c.writer, "\r\033[2K")
	} else {
		fmt.Fprint(c.writer, "\r")
	}
}

// IsActive reports whether the counter is drawing.
func (c *Counter) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Done records one finished document; ok is false for a skipped one.
func (c *Counter) Done(ok bool) {
	c.done.Add(1)
	if !ok {
		c.failed.Add(1)
	}
}

// Completed returns the finished and failed document counts.
func (c *Counter) Completed() (done, failed int) {
	return int(c.done.Load()), int(c.failed.Load())
}

func (c *Counter) line(frame string) string {
	done, failed := c.Completed()
	s := fmt.Sprintf("\r%s %s %d/%d", frame, c.label, done, c.Total())
	if failed > 0 {
		s += fmt.Sprintf(" (%d skipped)", failed)
	}
	return s
}

func (c *Counter) run() {
	defer c.wg.Done()

	frameIndex := 0
	ticker := time.NewTicker(c.delay)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(c.writer, c.line(c.frames[frameIndex%len(c.frames)]))
			frameIndex++
		}
	}
}

// IsTerminal reports whether w is a terminal. Anything that is not an
// *os.File is treated as redirected output.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
