package app

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/goburrow/modbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rtuslave/cmd/slave/config"
	"rtuslave/cmd/slave/options"
	"rtuslave/pkg/protocol/modbusrtu"
)

var errPortClosed = errors.New("port closed")

// linePort stands in for a serial line: Read returns 0, nil after the read timeout
// when nothing arrives.
type linePort struct {
	rx   chan []byte
	done chan struct{}
	once sync.Once

	mux     sync.Mutex
	timeout time.Duration
	readErr error
	written []byte
	closed  bool
}

func newLinePort() *linePort {
	return &linePort{
		rx:      make(chan []byte, 8),
		done:    make(chan struct{}),
		timeout: time.Millisecond,
	}
}

func (p *linePort) SetReadTimeout(t time.Duration) error {
	p.mux.Lock()
	p.timeout = t
	p.mux.Unlock()
	return nil
}

func (p *linePort) Read(b []byte) (int, error) {
	p.mux.Lock()
	timeout, readErr := p.timeout, p.readErr
	p.mux.Unlock()
	if readErr != nil {
		return 0, readErr
	}
	select {
	case <-p.done:
		return 0, errPortClosed
	case data := <-p.rx:
		return copy(b, data), nil
	case <-time.After(timeout):
		return 0, nil
	}
}

func (p *linePort) Write(b []byte) (int, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *linePort) Close() error {
	p.once.Do(func() {
		p.mux.Lock()
		p.closed = true
		p.mux.Unlock()
		close(p.done)
	})
	return nil
}

func (p *linePort) output() []byte {
	p.mux.Lock()
	defer p.mux.Unlock()
	return append([]byte(nil), p.written...)
}

func (p *linePort) isClosed() bool {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.closed
}

func newTestConfig(t *testing.T, o *options.Options, port *linePort) *config.Config {
	slave, err := modbusrtu.NewSlave(o.SlaveConfig(), modbusrtu.NewRegisterTable(o.Slave.Registers))
	require.NoError(t, err)
	transport, err := modbusrtu.NewSerialTransport("line", port, o.Serial.ReadTimeout.Duration)
	require.NoError(t, err)
	return &config.Config{Slave: slave, Transport: transport}
}

func readRequest(t *testing.T, deviceID byte, data []byte) []byte {
	handler := modbus.NewRTUClientHandler("")
	handler.SlaveId = deviceID
	request, err := handler.Encode(&modbus.ProtocolDataUnit{
		FunctionCode: modbus.FuncCodeReadHoldingRegisters,
		Data:         data,
	})
	require.NoError(t, err)
	return request
}

func freePort(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return fmt.Sprintf("%d", ln.Addr().(*net.TCPAddr).Port)
}

func testOptions() *options.Options {
	o := options.NewDefaultOptions()
	o.Serial.ReadTimeout.Duration = time.Millisecond
	o.Wait.Duration = time.Second
	return o
}

func TestServeStopsOnSignal(t *testing.T) {
	o := testOptions()
	o.Port = freePort(t)
	port := newLinePort()
	c := newTestConfig(t, o, port)

	exitCh := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- serve(o, c, exitCh) }()

	port.rx <- readRequest(t, o.Slave.DeviceID, []byte{0x00, 0x02, 0x00, 0x03})
	require.Eventually(t, func() bool {
		return len(port.output()) == 11
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, []byte{0x01, 0x03, 0x06, 0x55, 0x66, 0x77, 0x88, 0x99, 0x00, 0xD4, 0xB6}, port.output())

	statsURL := fmt.Sprintf("http://127.0.0.1:%s/api/v1/stats", o.Port)
	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(statsURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, string(body), `"framesResolved":1`)

	exitCh <- syscall.SIGTERM
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after signal")
	}
	assert.True(t, port.isClosed())
	_, err := http.Get(statsURL)
	assert.Error(t, err)
}

func TestServeStopsOnTransportError(t *testing.T) {
	o := testOptions()
	port := newLinePort()
	c := newTestConfig(t, o, port)

	readErr := errors.New("line broken")
	port.mux.Lock()
	port.readErr = readErr
	port.mux.Unlock()

	done := make(chan error, 1)
	go func() { done <- serve(o, c, make(chan os.Signal)) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, readErr)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after transport error")
	}
	assert.True(t, port.isClosed())
}

func TestServeRejectsBusyStatusPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	o := testOptions()
	o.Port = fmt.Sprintf("%d", ln.Addr().(*net.TCPAddr).Port)
	port := newLinePort()
	c := newTestConfig(t, o, port)

	assert.Error(t, serve(o, c, make(chan os.Signal)))
	assert.True(t, port.isClosed())
}
