package modbusrtu

import (
	"go.uber.org/atomic"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
)

// Receiver is the only surface the transport gets: it delivers bytes and line faults.
type Receiver interface {
	OnByteReceived(b byte)
	SignalFault()
}

// IntakeBuffer is a bounded append-only buffer with one producer (the transport) and
// one consumer (the scanner). Memory is allocated once in NewIntakeBuffer.
//
// The producer writes data[n] and then publishes n+1 with a compare-and-swap on length,
// so a reset issued by the consumer between those two steps makes the producer retry at
// index 0 instead of committing at a stale index. The consumer must only read indexes
// below a length it loaded.
type IntakeBuffer struct {
	data    []byte
	length  atomic.Uint32
	faulted atomic.Bool
}

func NewIntakeBuffer(capacity int) *IntakeBuffer {
	return &IntakeBuffer{data: make([]byte, capacity)}
}

// Append commits b or, when the buffer is full, raises the error flag and returns
// ErrBufferOverflow leaving the committed bytes untouched. It never blocks.
func (ib *IntakeBuffer) Append(b byte) error {
	for {
		n := ib.length.Load()
		if int(n) >= len(ib.data) {
			ib.faulted.Store(true)
			return modbusrturuntime.ErrBufferOverflow
		}
		ib.data[n] = b
		if ib.length.CAS(n, n+1) {
			return nil
		}
	}
}

// Len number of committed bytes.
func (ib *IntakeBuffer) Len() int {
	return int(ib.length.Load())
}

func (ib *IntakeBuffer) Cap() int {
	return len(ib.data)
}

// Bytes returns the committed bytes at the time of the call. The slice aliases the
// internal memory and is only valid until the next reset.
func (ib *IntakeBuffer) Bytes() []byte {
	n := ib.Len()
	return ib.data[:n:n]
}

// Reset logically empties the buffer and clears the error flag. Consumer only.
func (ib *IntakeBuffer) Reset() {
	ib.length.Store(0)
	ib.faulted.Store(false)
}

// ResetIfUnchanged empties the buffer only if no byte was committed since the consumer
// observed n bytes.
func (ib *IntakeBuffer) ResetIfUnchanged(n int) bool {
	if !ib.length.CAS(uint32(n), 0) {
		return false
	}
	ib.faulted.Store(false)
	return true
}

// SignalFault raises the error flag for a line level fault (parity, overrun).
func (ib *IntakeBuffer) SignalFault() {
	ib.faulted.Store(true)
}

func (ib *IntakeBuffer) Faulted() bool {
	return ib.faulted.Load()
}
