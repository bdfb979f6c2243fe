package crcutil

import (
	"github.com/sigurn/crc16"
	"rtuslave/pkg/utils/binutil"
)

// reflected polynomial 0xA001, initial register 0xFFFF, no final xor
var modbusTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// CheckCrc16sum returns the CRC-16/MODBUS checksum of buf. An empty buf yields 0xFFFF.
func CheckCrc16sum(buf []byte) uint16 {
	return crc16.Checksum(buf, modbusTable)
}

// PutCrc16 writes sum into dst low byte first, the order it travels on the wire.
func PutCrc16(dst []byte, sum uint16) {
	binutil.WriteUint16LittleEndian(dst, sum)
}

// VerifyCrc16 reports whether checksum holds the wire encoded checksum of data.
func VerifyCrc16(data []byte, checksum []byte) bool {
	if len(checksum) < 2 {
		return false
	}
	return binutil.ParseUint16LittleEndian(checksum) == CheckCrc16sum(data)
}
