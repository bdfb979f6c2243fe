package modbusrtu

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
)

func TestSerialTransportServeDeliversBytes(t *testing.T) {
	port := newFakePort()
	st, err := NewSerialTransport("fake", port, 2*time.Millisecond)
	require.NoError(t, err)

	r := &recordingReceiver{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- st.Serve(ctx, r) }()

	port.send([]byte{0x01, 0x03})
	port.send([]byte{0x00, 0x00, 0x00, 0x0A})
	assert.Eventually(t, func() bool {
		b, _ := r.snapshot()
		return len(b) == 6
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	b, faults := r.snapshot()
	assert.Equal(t, []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x0A}, b)
	assert.Zero(t, faults)
}

func TestSerialTransportReadErrorSignalsFault(t *testing.T) {
	port := newFakePort()
	st, err := NewSerialTransport("fake", port, time.Millisecond)
	require.NoError(t, err)

	readErr := errors.New("framing error")
	port.failReads(readErr)
	r := &recordingReceiver{}
	err = st.Serve(context.Background(), r)
	assert.ErrorIs(t, err, readErr)
	_, faults := r.snapshot()
	assert.Equal(t, 1, faults)
}

func TestSerialTransportClose(t *testing.T) {
	port := newFakePort()
	st, err := NewSerialTransport("fake", port, time.Millisecond)
	require.NoError(t, err)

	r := &recordingReceiver{}
	done := make(chan error, 1)
	go func() { done <- st.Serve(context.Background(), r) }()

	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, modbusrturuntime.ErrSerialPortClosed)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after close")
	}
	_, faults := r.snapshot()
	assert.Zero(t, faults)
	assert.ErrorIs(t, st.Transmit([]byte{0x01}), modbusrturuntime.ErrSerialPortClosed)
}

type shortWriter struct {
	*fakePort
	chunk int
	zero  bool
}

func (w *shortWriter) Write(b []byte) (int, error) {
	if w.zero {
		return 0, nil
	}
	if len(b) > w.chunk {
		b = b[:w.chunk]
	}
	return w.fakePort.Write(b)
}

func TestSerialTransportTransmit(t *testing.T) {
	t.Run("whole frame", func(t *testing.T) {
		port := newFakePort()
		st, err := NewSerialTransport("fake", port, 0)
		require.NoError(t, err)
		require.NoError(t, st.Transmit(referenceResponse))
		assert.Equal(t, referenceResponse, port.output())
	})

	t.Run("partial writes", func(t *testing.T) {
		w := &shortWriter{fakePort: newFakePort(), chunk: 3}
		st, err := NewSerialTransport("fake", w, 0)
		require.NoError(t, err)
		require.NoError(t, st.Transmit(referenceResponse))
		assert.Equal(t, referenceResponse, w.output())
	})

	t.Run("zero write", func(t *testing.T) {
		w := &shortWriter{fakePort: newFakePort(), zero: true}
		st, err := NewSerialTransport("fake", w, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, st.Transmit(referenceResponse), io.ErrShortWrite)
	})

	t.Run("write error", func(t *testing.T) {
		port := newFakePort()
		port.writeErr = errors.New("device gone")
		st, err := NewSerialTransport("fake", port, 0)
		require.NoError(t, err)
		assert.ErrorIs(t, st.Transmit(referenceResponse), port.writeErr)
	})
}
