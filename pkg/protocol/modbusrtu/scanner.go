package modbusrtu

import (
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
)

// Transmitter hands a finished response to the transport. It is called synchronously,
// at most once per resolved frame, with a slice of the scanner's transmit buffer.
type Transmitter interface {
	Transmit(frame []byte) error
}

// TransmitFunc is func type of Transmitter.
type TransmitFunc func(frame []byte) error

// Transmit implements Transmitter.
func (f TransmitFunc) Transmit(frame []byte) error {
	return f(frame)
}

type ScannerConfig struct {
	DeviceID byte
	// MaxWait consecutive incomplete observations tolerated before a forced reset
	MaxWait int
	// TxSize capacity of the transmit buffer
	TxSize int
}

// Scanner finds request frames addressed to DeviceID inside the intake buffer. There
// are no frame delimiters, so every device id match is only a candidate: a candidate
// with a bad checksum or an unknown command is skipped by one byte, keeping every
// byte received after it.
//
// Poll never blocks except for the synchronous Transmit call and never allocates.
type Scanner struct {
	cfg    ScannerConfig
	intake *IntakeBuffer
	table  *RegisterTable
	stats  *modbusrturuntime.Stats
	tx     []byte

	state  modbusrturuntime.ScanState
	cursor int
	wait   int
}

func NewScanner(cfg ScannerConfig, intake *IntakeBuffer, table *RegisterTable, stats *modbusrturuntime.Stats) *Scanner {
	if stats == nil {
		stats = &modbusrturuntime.Stats{}
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = modbusrturuntime.DefaultMaxWait
	}
	if cfg.TxSize <= 0 {
		cfg.TxSize = modbusrturuntime.DefaultBufferSize
	}
	return &Scanner{
		cfg:    cfg,
		intake: intake,
		table:  table,
		stats:  stats,
		tx:     make([]byte, cfg.TxSize),
	}
}

func (s *Scanner) State() modbusrturuntime.ScanState {
	return s.state
}

func (s *Scanner) Cursor() int {
	return s.cursor
}

func (s *Scanner) WaitCount() int {
	return s.wait
}

// Poll runs one pass over the bytes committed so far. The returned error is the
// transmit error, if any; the session is reset regardless.
func (s *Scanner) Poll(t Transmitter) (modbusrturuntime.Outcome, error) {
	if s.intake.Faulted() {
		s.stats.Faults.Inc()
		s.reset()
		return modbusrturuntime.OutcomeFault, nil
	}

	buf := s.intake.Bytes()
	n := len(buf)
	if n == 0 {
		return modbusrturuntime.OutcomeIdle, nil
	}
	if n < modbusrturuntime.FrameSize {
		return s.await(), nil
	}

	for s.cursor < n {
		if buf[s.cursor] != s.cfg.DeviceID {
			s.advance()
			continue
		}
		if s.cursor+modbusrturuntime.FrameSize > n {
			s.state = modbusrturuntime.StateHaveCandidate
			return s.await(), nil
		}

		candidate := buf[s.cursor : s.cursor+modbusrturuntime.FrameSize]
		switch candidate[1] {
		case modbusrturuntime.ReadCommand:
			if !modbusrturuntime.VerifyChecksum(candidate) {
				s.stats.ChecksumMismatches.Inc()
				s.advance()
				continue
			}
			return s.respond(candidate, t)
		default:
			s.advance()
		}
	}

	// every position was rejected, drop them unless more bytes arrived meanwhile
	if s.intake.ResetIfUnchanged(n) {
		s.stats.Discards.Inc()
		s.resetSession()
		return modbusrturuntime.OutcomeDiscarded, nil
	}
	return modbusrturuntime.OutcomeWaiting, nil
}

func (s *Scanner) respond(candidate []byte, t Transmitter) (modbusrturuntime.Outcome, error) {
	outcome := modbusrturuntime.OutcomeResolved
	size, err := BuildResponse(candidate, s.table, s.tx)
	if err != nil {
		outcome = modbusrturuntime.OutcomeException
		size, err = BuildException(candidate[0], candidate[1], modbusrturuntime.ExceptionCode(err), s.tx)
	}
	if err == nil {
		err = t.Transmit(s.tx[:size])
	}
	if err != nil {
		s.stats.TransmitErrors.Inc()
	}
	if outcome == modbusrturuntime.OutcomeException {
		s.stats.Exceptions.Inc()
	} else {
		s.stats.FramesResolved.Inc()
	}
	s.reset()
	return outcome, err
}

// await counts one incomplete observation and forces a reset once MaxWait is reached.
func (s *Scanner) await() modbusrturuntime.Outcome {
	s.wait++
	if s.wait >= s.cfg.MaxWait {
		s.stats.Stalls.Inc()
		s.reset()
		return modbusrturuntime.OutcomeStalled
	}
	return modbusrturuntime.OutcomeWaiting
}

func (s *Scanner) advance() {
	s.cursor++
	s.wait = 0
	s.state = modbusrturuntime.StateIdleScan
}

// reset empties the intake buffer, clears the error flag and the session counters.
func (s *Scanner) reset() {
	s.intake.Reset()
	s.resetSession()
}

func (s *Scanner) resetSession() {
	s.cursor = 0
	s.wait = 0
	s.state = modbusrturuntime.StateIdleScan
}
