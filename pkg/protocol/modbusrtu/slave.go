package modbusrtu

import (
	"context"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"time"
)

type SlaveConfig struct {
	DeviceID     byte
	BufferSize   int
	MaxWait      int
	PollInterval time.Duration
}

func (c *SlaveConfig) Validate() error {
	if c.DeviceID == 0 || c.DeviceID > 247 {
		return errors.Wrapf(modbusrturuntime.ErrInvalidConfig, "device id %d not in 1..247", c.DeviceID)
	}
	if c.BufferSize < modbusrturuntime.MinBufferSize || c.BufferSize > modbusrturuntime.MaxBufferSize {
		return errors.Wrapf(modbusrturuntime.ErrInvalidConfig, "buffer size %d not in %d..%d",
			c.BufferSize, modbusrturuntime.MinBufferSize, modbusrturuntime.MaxBufferSize)
	}
	if c.MaxWait < 1 {
		return errors.Wrapf(modbusrturuntime.ErrInvalidConfig, "max wait %d must be positive", c.MaxWait)
	}
	if c.PollInterval <= 0 {
		return errors.Wrapf(modbusrturuntime.ErrInvalidConfig, "poll interval %s must be positive", c.PollInterval)
	}
	return nil
}

// Slave owns the one session in flight: the intake buffer filled by the transport and
// the scanner draining it. Poll and Run must be driven from a single goroutine.
type Slave struct {
	cfg     SlaveConfig
	table   *RegisterTable
	intake  *IntakeBuffer
	scanner *Scanner
	stats   *modbusrturuntime.Stats
}

func NewSlave(cfg SlaveConfig, table *RegisterTable) (*Slave, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil || table.Len() == 0 {
		return nil, errors.Wrap(modbusrturuntime.ErrInvalidConfig, "register table is empty")
	}
	stats := &modbusrturuntime.Stats{}
	intake := NewIntakeBuffer(cfg.BufferSize)
	return &Slave{
		cfg:    cfg,
		table:  table,
		intake: intake,
		stats:  stats,
		scanner: NewScanner(ScannerConfig{
			DeviceID: cfg.DeviceID,
			MaxWait:  cfg.MaxWait,
			TxSize:   cfg.BufferSize,
		}, intake, table, stats),
	}, nil
}

type receiver struct {
	intake *IntakeBuffer
	stats  *modbusrturuntime.Stats
}

func (r *receiver) OnByteReceived(b byte) {
	r.stats.BytesReceived.Inc()
	if err := r.intake.Append(b); err != nil {
		r.stats.Overflows.Inc()
	}
}

func (r *receiver) SignalFault() {
	r.intake.SignalFault()
}

// Receiver returns the handle the transport feeds. It is safe to use from another
// goroutine than the one polling.
func (s *Slave) Receiver() Receiver {
	return &receiver{intake: s.intake, stats: s.stats}
}

// Poll runs one scanner pass and logs what it decided.
func (s *Slave) Poll(t Transmitter) modbusrturuntime.Outcome {
	outcome, err := s.scanner.Poll(t)
	switch outcome {
	case modbusrturuntime.OutcomeResolved:
		klog.V(4).InfoS("Answered read request", "deviceId", s.cfg.DeviceID)
	case modbusrturuntime.OutcomeException:
		klog.V(2).InfoS("Answered read request with exception", "deviceId", s.cfg.DeviceID)
	case modbusrturuntime.OutcomeStalled:
		klog.V(2).InfoS("Partial frame timed out, session reset", "maxWait", s.cfg.MaxWait)
	case modbusrturuntime.OutcomeFault:
		klog.V(2).InfoS("Intake fault, session reset", "overflows", s.stats.Overflows.Load())
	case modbusrturuntime.OutcomeWaiting:
		klog.V(5).InfoS("Waiting for frame", "state", s.scanner.State().String(),
			"cursor", s.scanner.Cursor(), "wait", s.scanner.WaitCount())
	case modbusrturuntime.OutcomeDiscarded:
		klog.V(4).InfoS("No frame start in buffer, session reset")
	}
	if err != nil {
		klog.V(2).InfoS("Failed to transmit response", "error", err)
	}
	if outcome.Reset() {
		klog.V(5).InfoS("Session reset", "outcome", outcome.String(), "bytesReceived", s.stats.BytesReceived.Load())
	}
	return outcome
}

// Run polls every PollInterval until ctx is done.
func (s *Slave) Run(ctx context.Context, t Transmitter) {
	klog.V(1).InfoS("Slave started", "deviceId", s.cfg.DeviceID, "registers", s.table.Len(),
		"bufferSize", s.intake.Cap(), "maxWait", s.cfg.MaxWait, "pollInterval", s.cfg.PollInterval)
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		s.Poll(t)
	}, s.cfg.PollInterval)
	klog.V(1).InfoS("Slave stopped", "deviceId", s.cfg.DeviceID)
}

func (s *Slave) Stats() modbusrturuntime.StatsSnapshot {
	return s.stats.Snapshot()
}

func (s *Slave) Table() *RegisterTable {
	return s.table
}

func (s *Slave) DeviceID() byte {
	return s.cfg.DeviceID
}
