package runtime

import (
	"go.uber.org/atomic"
	"rtuslave/pkg/utils/binutil"
	"rtuslave/pkg/utils/crcutil"
)

// RequestFrame is a value view over one 8 byte candidate. It never outlives a scan decision.
type RequestFrame struct {
	DeviceID     byte
	CommandID    byte
	StartAddress uint16
	Count        uint16
	Checksum     uint16
}

// ParseRequestFrame decodes the first FrameSize bytes of b.
func ParseRequestFrame(b []byte) (RequestFrame, error) {
	if len(b) < FrameSize {
		return RequestFrame{}, ErrShortFrame
	}
	return RequestFrame{
		DeviceID:     b[0],
		CommandID:    b[1],
		StartAddress: binutil.ParseUint16BigEndian(b[2:4]),
		Count:        binutil.ParseUint16BigEndian(b[4:6]),
		Checksum:     binutil.ParseUint16LittleEndian(b[6:8]),
	}, nil
}

// VerifyChecksum checks the trailing two bytes of a candidate against the crc of its first six.
func VerifyChecksum(candidate []byte) bool {
	if len(candidate) < FrameSize {
		return false
	}
	return crcutil.VerifyCrc16(candidate[:ChecksumOffset], candidate[ChecksumOffset:FrameSize])
}

// ScanState scanner position in the frame synchronization cycle. Resolution is not a
// resting state: it is reported as an Outcome and immediately followed by a reset.
type ScanState int

const (
	StateIdleScan ScanState = iota
	StateHaveCandidate
)

var ScanStateToString = map[ScanState]string{
	StateIdleScan:      "idleScan",
	StateHaveCandidate: "haveCandidate",
}

func (s ScanState) String() string {
	return ScanStateToString[s]
}

// Outcome is what one scanner pass decided.
type Outcome int

const (
	// OutcomeIdle nothing buffered
	OutcomeIdle Outcome = iota
	// OutcomeWaiting buffer holds an incomplete candidate or fewer than FrameSize bytes
	OutcomeWaiting
	// OutcomeResolved a read was answered
	OutcomeResolved
	// OutcomeException a read with a bad range was answered with an exception
	OutcomeException
	// OutcomeDiscarded no frame start in the whole buffer
	OutcomeDiscarded
	// OutcomeStalled wait counter exhausted on a partial frame
	OutcomeStalled
	// OutcomeFault error flag raised by the transport
	OutcomeFault
)

var OutcomeToString = map[Outcome]string{
	OutcomeIdle:      "idle",
	OutcomeWaiting:   "waiting",
	OutcomeResolved:  "resolved",
	OutcomeException: "exception",
	OutcomeDiscarded: "discarded",
	OutcomeStalled:   "stalled",
	OutcomeFault:     "fault",
}

func (o Outcome) String() string {
	return OutcomeToString[o]
}

// Reset reports whether the outcome ended the session with a full reset.
func (o Outcome) Reset() bool {
	return o >= OutcomeResolved
}

// Stats counters shared between the receive side, the scanner loop and readers.
type Stats struct {
	BytesReceived      atomic.Uint64
	Overflows          atomic.Uint64
	Faults             atomic.Uint64
	FramesResolved     atomic.Uint64
	Exceptions         atomic.Uint64
	ChecksumMismatches atomic.Uint64
	Stalls             atomic.Uint64
	Discards           atomic.Uint64
	TransmitErrors     atomic.Uint64
}

type StatsSnapshot struct {
	BytesReceived      uint64 `json:"bytesReceived"`
	Overflows          uint64 `json:"overflows"`
	Faults             uint64 `json:"faults"`
	FramesResolved     uint64 `json:"framesResolved"`
	Exceptions         uint64 `json:"exceptions"`
	ChecksumMismatches uint64 `json:"checksumMismatches"`
	Stalls             uint64 `json:"stalls"`
	Discards           uint64 `json:"discards"`
	TransmitErrors     uint64 `json:"transmitErrors"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		BytesReceived:      s.BytesReceived.Load(),
		Overflows:          s.Overflows.Load(),
		Faults:             s.Faults.Load(),
		FramesResolved:     s.FramesResolved.Load(),
		Exceptions:         s.Exceptions.Load(),
		ChecksumMismatches: s.ChecksumMismatches.Load(),
		Stalls:             s.Stalls.Load(),
		Discards:           s.Discards.Load(),
		TransmitErrors:     s.TransmitErrors.Load(),
	}
}
