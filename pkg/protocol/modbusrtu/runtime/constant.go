package runtime

import (
	"errors"

	"go.bug.st/serial"
	"rtuslave/pkg/runtime/constant"
)

/**
请求报文 (固定8字节)
01     设备地址
03     功能码
00 02  起始地址 big endian
00 03  寄存器数量 big endian
xx xx  crc16检验码 low byte first

响应报文
01       设备地址
03       功能码
06       字节数 = 寄存器数量 * 2
.. ..    寄存器数据, 每个寄存器 big endian
xx xx    crc16检验码 low byte first
*/

const (
	DefaultDeviceID byte = 0x01

	ReadCommand  byte = 0x03
	WriteCommand byte = 0x04 // reserved, never answered

	// FrameSize deviceId(1) + commandId(1) + startAddress(2) + count(2) + checksum(2)
	FrameSize = 8
	// ChecksumOffset the checksum covers bytes [0, ChecksumOffset)
	ChecksumOffset = 6

	// ResponseOverhead deviceId(1) + commandId(1) + byteCount(1) + checksum(2)
	ResponseOverhead = 5
	ExceptionSize    = 5
	ExceptionFlag    = 0x80

	// MaxReadCount largest register count one read may ask for
	MaxReadCount = 125

	DefaultBufferSize = 100
	MinBufferSize     = FrameSize
	MaxBufferSize     = 256
	DefaultMaxWait    = 1000
)

const (
	ExceptionIllegalFunction    byte = 0x01
	ExceptionIllegalDataAddress byte = 0x02
	ExceptionIllegalDataValue   byte = 0x03
)

var ErrBufferOverflow = errors.New("rtu intake buffer overflow")
var ErrShortFrame = errors.New("rtu frame shorter than 8 bytes")
var ErrIllegalDataAddress = errors.New("rtu register range out of table bounds")
var ErrIllegalDataValue = errors.New("rtu register count out of range")
var ErrResponseTooLarge = errors.New("rtu response exceeds transmit buffer")
var ErrSerialPortClosed = errors.New("serial port closed")
var ErrInvalidConfig = errors.New("rtu slave invalid config")

// ExceptionCode maps a response builder error to its modbus exception code.
func ExceptionCode(err error) byte {
	switch {
	case errors.Is(err, ErrIllegalDataAddress):
		return ExceptionIllegalDataAddress
	case errors.Is(err, ErrIllegalDataValue), errors.Is(err, ErrResponseTooLarge):
		return ExceptionIllegalDataValue
	default:
		return ExceptionIllegalFunction
	}
}

// DefaultRegisters reference register table
var DefaultRegisters = []uint16{
	0x1122, 0x3344, 0x5566, 0x7788, 0x9900,
	0xAABB, 0x1234, 0x4565, 0x5548, 0x9969,
}

var StopBitsToStopBits = map[constant.StopBits]serial.StopBits{
	constant.OneStopBit:           serial.OneStopBit,
	constant.OnePointFiveStopBits: serial.OnePointFiveStopBits,
	constant.TwoStopBits:          serial.TwoStopBits,
}

var ParityToParity = map[constant.Parity]serial.Parity{
	constant.NoParity:    serial.NoParity,
	constant.OddParity:   serial.OddParity,
	constant.EvenParity:  serial.EvenParity,
	constant.MarkParity:  serial.MarkParity,
	constant.SpaceParity: serial.SpaceParity,
}
