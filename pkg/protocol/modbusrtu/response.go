package modbusrtu

import (
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"rtuslave/pkg/utils/crcutil"
)

// BuildResponse writes the answer to a validated read candidate into dst and returns
// its length:
//
//	[deviceId][commandId][count*2][registers, high byte first][crc lo][crc hi]
//
// The register range must lie inside table, count must be 1..MaxReadCount and the
// whole response must fit into dst; otherwise nothing usable is written.
func BuildResponse(candidate []byte, table *RegisterTable, dst []byte) (int, error) {
	req, err := modbusrturuntime.ParseRequestFrame(candidate)
	if err != nil {
		return 0, err
	}
	if req.Count == 0 || req.Count > modbusrturuntime.MaxReadCount {
		return 0, modbusrturuntime.ErrIllegalDataValue
	}
	if int(req.StartAddress)+int(req.Count) > table.Len() {
		return 0, modbusrturuntime.ErrIllegalDataAddress
	}
	byteCount := int(req.Count) * 2
	if modbusrturuntime.ResponseOverhead+byteCount > len(dst) {
		return 0, modbusrturuntime.ErrResponseTooLarge
	}

	dst[0] = req.DeviceID
	dst[1] = req.CommandID
	dst[2] = byte(byteCount)
	n, err := table.ReadInto(req.StartAddress, req.Count, dst[3:])
	if err != nil {
		return 0, err
	}
	n += 3
	crcutil.PutCrc16(dst[n:], crcutil.CheckCrc16sum(dst[:n]))
	return n + 2, nil
}

// BuildException writes a modbus exception response for command into dst and returns
// its length.
func BuildException(deviceID, command, code byte, dst []byte) (int, error) {
	if len(dst) < modbusrturuntime.ExceptionSize {
		return 0, modbusrturuntime.ErrResponseTooLarge
	}
	dst[0] = deviceID
	dst[1] = command | modbusrturuntime.ExceptionFlag
	dst[2] = code
	crcutil.PutCrc16(dst[3:], crcutil.CheckCrc16sum(dst[:3]))
	return modbusrturuntime.ExceptionSize, nil
}
