// Package recognize defines the boundary to the external plate
// recognition pipeline.  Camera capture, detection and OCR live outside
// this process; the core only ever sees the per-frame text guesses.
package recognize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSourceClosed is returned once the recognition source has ended.
var ErrSourceClosed = errors.New("recognize: source closed")

// Recognizer yields the OCR text of every region detected in the next
// frame.  An empty slice means a frame with no detections; an error
// means the source itself failed and the lane must stop.
type Recognizer interface {
	ReadPlates(ctx context.Context) ([]string, error)
}

// LineReader adapts a newline-delimited stream from an external
// recognition process: one line per frame, region texts separated by
// commas, a bare line meaning no detections.  It is the production
// bridge for a pipeline that prints its OCR output.
type LineReader struct {
	sc *bufio.Scanner
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{sc: bufio.NewScanner(r)}
}

func (l *LineReader) ReadPlates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return nil, fmt.Errorf("recognize: read frame: %w", err)
		}
		return nil, ErrSourceClosed
	}

	line := strings.TrimSpace(l.sc.Text())
	if line == "" {
		return nil, nil
	}

	var texts []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			texts = append(texts, part)
		}
	}
	return texts, nil
}
