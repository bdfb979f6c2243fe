package config

import (
	"rtuslave/pkg/protocol/modbusrtu"
)

type Config struct {
	Slave     *modbusrtu.Slave
	Transport *modbusrtu.SerialTransport
	CertFile  string
	KeyFile   string
}
