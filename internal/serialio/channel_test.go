package serialio_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagabo-labs/parkgate/internal/serialio"
)

// pipePort adapts an in-process pipe to the ReadWriteCloser a channel
// expects, capturing everything written to the device side.
type pipePort struct {
	r io.ReadCloser

	mu      sync.Mutex
	written []byte
}

func newPipePort(inbound string) *pipePort {
	return &pipePort{r: io.NopCloser(strings.NewReader(inbound))}
}

func (p *pipePort) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *pipePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *pipePort) Close() error { return p.r.Close() }

func (p *pipePort) sent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.written)
}

func TestChannel_ReadLineDeliversInOrder(t *testing.T) {
	ch := serialio.NewChannel(newPipePort("DIST:12.5\n\n  READY  \nDONE\n"))
	defer ch.Close()

	ctx := context.Background()
	for _, want := range []string{"DIST:12.5", "READY", "DONE"} {
		line, err := ch.ReadLine(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	// Reader has drained: the channel reports closed, not timeout.
	_, err := ch.ReadLine(ctx, time.Second)
	assert.ErrorIs(t, err, serialio.ErrClosed)
}

func TestChannel_ReadLineTimesOutOnSilence(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ch := serialio.NewChannel(struct {
		io.Reader
		io.Writer
		io.Closer
	}{r, io.Discard, r})
	defer ch.Close()

	start := time.Now()
	_, err := ch.ReadLine(context.Background(), 20*time.Millisecond)
	assert.ErrorIs(t, err, serialio.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestChannel_ReadLineHonorsContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ch := serialio.NewChannel(struct {
		io.Reader
		io.Writer
		io.Closer
	}{r, io.Discard, r})
	defer ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ch.ReadLine(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChannel_TryReadLineNeverBlocks(t *testing.T) {
	r, w := io.Pipe()
	ch := serialio.NewChannel(struct {
		io.Reader
		io.Writer
		io.Closer
	}{r, io.Discard, r})
	defer ch.Close()

	_, ok := ch.TryReadLine()
	assert.False(t, ok)

	go func() {
		w.Write([]byte("DIST:7.0\n"))
		w.Close()
	}()

	require.Eventually(t, func() bool {
		line, ok := ch.TryReadLine()
		return ok && line == "DIST:7.0"
	}, time.Second, 5*time.Millisecond)
}

func TestChannel_AwaitTokenSkipsUnrelatedLines(t *testing.T) {
	ch := serialio.NewChannel(newPipePort("DIST:30.1\nnoise\nREADY\n"))
	defer ch.Close()

	err := ch.AwaitToken(context.Background(), "READY", time.Second)
	assert.NoError(t, err)
}

func TestChannel_AwaitTokenTimesOut(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ch := serialio.NewChannel(struct {
		io.Reader
		io.Writer
		io.Closer
	}{r, io.Discard, r})
	defer ch.Close()

	err := ch.AwaitToken(context.Background(), "DONE", 20*time.Millisecond)
	assert.ErrorIs(t, err, serialio.ErrTimeout)
}

func TestChannel_Writes(t *testing.T) {
	port := newPipePort("")
	ch := serialio.NewChannel(port)
	defer ch.Close()

	require.NoError(t, ch.WriteByte('1'))
	require.NoError(t, ch.WriteLine("850"))
	assert.Equal(t, "1850\n", port.sent())
}

func TestSensorGate_ParsesDistanceLines(t *testing.T) {
	port := newPipePort("DIST:42.5\n17\nbogus\n")
	gate := serialio.NewSensorGate(serialio.NewChannel(port))
	require.True(t, gate.Available())

	// ReadDistance never blocks, so poll until the read loop has
	// buffered each line.
	require.Eventually(t, func() bool {
		d, ok := gate.ReadDistance()
		return ok && d == 42.5
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		d, ok := gate.ReadDistance()
		return ok && d == 17.0
	}, time.Second, 5*time.Millisecond)

	// Unparseable line reports no reading.
	_, ok := gate.ReadDistance()
	assert.False(t, ok)
}

func TestSensorGate_CommandBytes(t *testing.T) {
	port := newPipePort("")
	gate := serialio.NewSensorGate(serialio.NewChannel(port))

	require.NoError(t, gate.Open())
	require.NoError(t, gate.Close())
	require.NoError(t, gate.AlarmOn())
	require.NoError(t, gate.AlarmSilence())
	assert.Equal(t, "102S", port.sent())
}

func TestSensorGate_NoHardwareMode(t *testing.T) {
	gate := serialio.NewSensorGate(nil)
	assert.False(t, gate.Available())

	_, ok := gate.ReadDistance()
	assert.False(t, ok)
	assert.ErrorIs(t, gate.Open(), serialio.ErrNoDevice)
	assert.ErrorIs(t, gate.AlarmOn(), serialio.ErrNoDevice)
}
