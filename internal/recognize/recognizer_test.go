package recognize_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagabo-labs/parkgate/internal/recognize"
)

func TestLineReader_OneFramePerLine(t *testing.T) {
	r := recognize.NewLineReader(strings.NewReader("RAB123A\nRAB123A, RAB128A\n\n  RAC456B ,, \n"))
	ctx := context.Background()

	texts, err := r.ReadPlates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RAB123A"}, texts)

	texts, err = r.ReadPlates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RAB123A", "RAB128A"}, texts)

	// Bare line: a frame with no detections.
	texts, err = r.ReadPlates(ctx)
	require.NoError(t, err)
	assert.Nil(t, texts)

	// Whitespace and empty fields are stripped.
	texts, err = r.ReadPlates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"RAC456B"}, texts)

	_, err = r.ReadPlates(ctx)
	assert.ErrorIs(t, err, recognize.ErrSourceClosed)
}

func TestLineReader_CancelledContext(t *testing.T) {
	r := recognize.NewLineReader(strings.NewReader("RAB123A\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadPlates(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
