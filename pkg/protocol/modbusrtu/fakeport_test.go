package modbusrtu

import (
	"errors"
	"sync"
	"time"
)

var errFakePortClosed = errors.New("fake port closed")

// fakePort behaves like a serial port with a read timeout: Read returns 0, nil when
// nothing arrives in time.
type fakePort struct {
	rx      chan []byte
	timeout time.Duration

	mux      sync.Mutex
	written  []byte
	writeErr error
	readErr  error
	closed   bool
	done     chan struct{}
	once     sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		rx:      make(chan []byte, 16),
		timeout: 5 * time.Millisecond,
		done:    make(chan struct{}),
	}
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.timeout = t
	return nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mux.Lock()
	timeout, readErr := p.timeout, p.readErr
	p.mux.Unlock()
	if readErr != nil {
		return 0, readErr
	}
	select {
	case <-p.done:
		return 0, errFakePortClosed
	case data := <-p.rx:
		return copy(b, data), nil
	case <-time.After(timeout):
		return 0, nil
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.once.Do(func() {
		p.mux.Lock()
		p.closed = true
		p.mux.Unlock()
		close(p.done)
	})
	return nil
}

func (p *fakePort) send(b []byte) {
	p.rx <- append([]byte(nil), b...)
}

func (p *fakePort) failReads(err error) {
	p.mux.Lock()
	p.readErr = err
	p.mux.Unlock()
}

func (p *fakePort) output() []byte {
	p.mux.Lock()
	defer p.mux.Unlock()
	return append([]byte(nil), p.written...)
}

type recordingReceiver struct {
	mux    sync.Mutex
	bytes  []byte
	faults int
}

func (r *recordingReceiver) OnByteReceived(b byte) {
	r.mux.Lock()
	r.bytes = append(r.bytes, b)
	r.mux.Unlock()
}

func (r *recordingReceiver) SignalFault() {
	r.mux.Lock()
	r.faults++
	r.mux.Unlock()
}

func (r *recordingReceiver) snapshot() ([]byte, int) {
	r.mux.Lock()
	defer r.mux.Unlock()
	return append([]byte(nil), r.bytes...), r.faults
}
