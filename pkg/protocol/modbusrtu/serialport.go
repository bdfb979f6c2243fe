package modbusrtu

import (
	"context"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.uber.org/atomic"
	"io"
	"k8s.io/klog/v2"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"rtuslave/pkg/runtime/constant"
	"sync"
	"time"
)

// Port is the part of serial.Port the transport needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type SerialConfig struct {
	Name        string
	BaudRate    int
	DataBits    int
	Parity      constant.Parity
	StopBits    constant.StopBits
	ReadTimeout time.Duration
}

// SerialTransport feeds received bytes into a Receiver and writes responses back out.
type SerialTransport struct {
	Name        string
	Port        Port
	ReadTimeout time.Duration

	mux    sync.Mutex
	closed atomic.Bool
}

var _ Transmitter = (*SerialTransport)(nil)

func OpenSerialTransport(cfg SerialConfig) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   modbusrturuntime.ParityToParity[cfg.Parity],
		StopBits: modbusrturuntime.StopBitsToStopBits[cfg.StopBits],
	}
	port, err := serial.Open(cfg.Name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", cfg.Name)
	}
	klog.V(1).InfoS("Serial port opened", "port", cfg.Name, "baudRate", cfg.BaudRate,
		"dataBits", cfg.DataBits, "parity", cfg.Parity.String(), "stopBits", cfg.StopBits.String())
	return NewSerialTransport(cfg.Name, port, cfg.ReadTimeout)
}

// NewSerialTransport wraps an already opened port. A positive readTimeout lets Serve
// notice context cancellation without closing the port.
func NewSerialTransport(name string, port Port, readTimeout time.Duration) (*SerialTransport, error) {
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			_ = port.Close()
			return nil, errors.Wrapf(err, "set read timeout on serial port %s", name)
		}
	}
	return &SerialTransport{
		Name:        name,
		Port:        port,
		ReadTimeout: readTimeout,
	}, nil
}

// Serve reads until ctx is done or the port fails. A read failure is reported to r as a
// line fault before Serve returns.
func (st *SerialTransport) Serve(ctx context.Context, r Receiver) error {
	buf := make([]byte, modbusrturuntime.DefaultBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := st.Port.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if st.closed.Load() {
				return modbusrturuntime.ErrSerialPortClosed
			}
			r.SignalFault()
			klog.V(2).InfoS("Failed to read byte from serial port", "port", st.Name, "error", err)
			return errors.Wrapf(err, "read serial port %s", st.Name)
		}
		// n == 0 is a read timeout
		for i := 0; i < n; i++ {
			r.OnByteReceived(buf[i])
		}
		if n > 0 {
			klog.V(5).InfoS("Received bytes from serial port", "bytes", buf[:n], "length", n)
		}
	}
}

// Transmit writes the whole frame before returning.
func (st *SerialTransport) Transmit(frame []byte) error {
	st.mux.Lock()
	defer st.mux.Unlock()
	if st.closed.Load() {
		return modbusrturuntime.ErrSerialPortClosed
	}
	written := 0
	for written < len(frame) {
		n, err := st.Port.Write(frame[written:])
		if err != nil {
			return errors.Wrapf(err, "write serial port %s", st.Name)
		}
		if n == 0 {
			return errors.Wrapf(io.ErrShortWrite, "write serial port %s", st.Name)
		}
		written += n
	}
	klog.V(5).InfoS("Succeed to write bytes to serial port", "bytes", frame, "length", written)
	return nil
}

func (st *SerialTransport) Close() error {
	if st.closed.Swap(true) {
		return nil
	}
	return st.Port.Close()
}
