// Package serialio owns the serial links to the barrier controller, the
// distance sensor and the payment terminal.  It exposes a line/byte
// channel with single-writer discipline and bounded waits, so no caller
// ever busy-polls a port or races another writer on the same handle.
package serialio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when a bounded read expires with no data.
	ErrTimeout = errors.New("serialio: timeout waiting for data")

	// ErrClosed is returned once the underlying port has been closed or
	// its read side has ended.
	ErrClosed = errors.New("serialio: channel closed")
)

// Channel wraps one serial port.  A background goroutine drains inbound
// lines into a buffered queue; writes are serialized by a mutex because
// the gate-open and alarm paths share a single physical handle.
type Channel struct {
	mu    sync.Mutex
	rw    io.ReadWriteCloser
	lines chan string
}

// NewChannel starts draining rw and returns the channel.  The caller
// keeps ownership of rw's lifecycle via Close.
func NewChannel(rw io.ReadWriteCloser) *Channel {
	c := &Channel{
		rw:    rw,
		lines: make(chan string, 64),
	}
	go c.readLoop()
	return c
}

func (c *Channel) readLoop() {
	defer close(c.lines)

	sc := bufio.NewScanner(c.rw)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case c.lines <- line:
		default:
			// Queue full: drop the oldest line so fresh sensor data
			// is never stuck behind stale backlog.
			select {
			case <-c.lines:
			default:
			}
			c.lines <- line
		}
	}
}

// WriteByte sends a single command byte.
func (c *Channel) WriteByte(b byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.rw.Write([]byte{b}); err != nil {
		return fmt.Errorf("serialio: write byte %q: %w", b, err)
	}
	return nil
}

// WriteLine sends s followed by a newline.
func (c *Channel) WriteLine(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.rw.Write([]byte(s + "\n")); err != nil {
		return fmt.Errorf("serialio: write line: %w", err)
	}
	return nil
}

// TryReadLine returns the next buffered line without blocking.  Absence
// of data is not an error: it simply means no reading this cycle.
func (c *Channel) TryReadLine() (string, bool) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", false
		}
		return line, true
	default:
		return "", false
	}
}

// ReadLine blocks for the next line, bounded by timeout and ctx.
func (c *Channel) ReadLine(ctx context.Context, timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", ErrClosed
		}
		return line, nil
	case <-t.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// AwaitToken reads lines until one contains token, the timeout expires,
// or ctx is cancelled.  This is the bounded replacement for polling a
// port in a tight loop while waiting for a device acknowledgment.
func (c *Channel) AwaitToken(ctx context.Context, token string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		line, err := c.ReadLine(ctx, remaining)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

// Close closes the underlying port; the read loop drains out shortly
// after.
func (c *Channel) Close() error {
	return c.rw.Close()
}
