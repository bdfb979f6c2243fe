package modbusrtu

import (
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"rtuslave/pkg/utils/binutil"
)

// RegisterTable is the fixed, read-only set of 16-bit values exposed by the slave,
// indexed by absolute register address.
type RegisterTable struct {
	values []uint16
}

func NewRegisterTable(values []uint16) *RegisterTable {
	rt := &RegisterTable{values: make([]uint16, len(values))}
	copy(rt.values, values)
	return rt
}

func (rt *RegisterTable) Len() int {
	return len(rt.values)
}

func (rt *RegisterTable) Value(address uint16) (uint16, error) {
	if int(address) >= len(rt.values) {
		return 0, modbusrturuntime.ErrIllegalDataAddress
	}
	return rt.values[address], nil
}

// Values returns a copy of the table.
func (rt *RegisterTable) Values() []uint16 {
	out := make([]uint16, len(rt.values))
	copy(out, rt.values)
	return out
}

// ReadInto writes registers [start, start+count) into dst high byte first and returns
// the number of bytes written.
func (rt *RegisterTable) ReadInto(start, count uint16, dst []byte) (int, error) {
	end := int(start) + int(count)
	if end > len(rt.values) {
		return 0, modbusrturuntime.ErrIllegalDataAddress
	}
	if len(dst) < int(count)*2 {
		return 0, modbusrturuntime.ErrResponseTooLarge
	}
	n := 0
	for address := int(start); address < end; address++ {
		binutil.WriteUint16(dst[n:], rt.values[address])
		n += 2
	}
	return n, nil
}
