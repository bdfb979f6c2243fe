package binutil

// ParseUint16BigEndian 解析 AB
func ParseUint16BigEndian(buf []byte) uint16 {
	return uint16(buf[0])<<8 | uint16(buf[1])
}

// ParseUint16LittleEndian 解析 BA
func ParseUint16LittleEndian(buf []byte) uint16 {
	return uint16(buf[1])<<8 | uint16(buf[0])
}

// WriteUint16 编码, high byte first
func WriteUint16(buf []byte, value uint16) {
	buf[0] = byte(value >> 8)
	buf[1] = byte(value)
}

// WriteUint16LittleEndian 编码, low byte first
func WriteUint16LittleEndian(buf []byte, value uint16) {
	buf[1] = byte(value >> 8)
	buf[0] = byte(value)
}
