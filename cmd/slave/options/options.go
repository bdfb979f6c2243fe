package options

import (
	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"rtuslave/cmd/slave/config"
	baseoptions "rtuslave/pkg/generic/options"
	"rtuslave/pkg/protocol/modbusrtu"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"rtuslave/pkg/runtime/constant"
	"time"
)

type SerialOptions struct {
	Name        string          `json:"name"`
	BaudRate    int             `json:"baudRate"`
	DataBits    int             `json:"dataBits"`
	Parity      string          `json:"parity"`
	StopBits    string          `json:"stopBits"`
	ReadTimeout metav1.Duration `json:"readTimeout"`
}

// SlaveOptions has no flag for Registers, the table is only read from the config file.
type SlaveOptions struct {
	DeviceID     uint8           `json:"deviceId"`
	BufferSize   int             `json:"bufferSize"`
	MaxWait      int             `json:"maxWait"`
	PollInterval metav1.Duration `json:"pollInterval"`
	Registers    []uint16        `json:"registers"`
}

type Options struct {
	Serial   SerialOptions   `json:"serial"`
	Slave    SlaveOptions    `json:"slave"`
	Port     string          `json:"port"`
	Wait     metav1.Duration `json:"graceful-timeout"`
	CertFile string          `json:"tls-cert-file"`
	KeyFile  string          `json:"tls-private-key-file"`
	baseoptions.BaseOptions
}

const (
	_defaultSerialName   = "/dev/ttyUSB0"
	_defaultBaudRate     = 9600
	_defaultDataBits     = 8
	_defaultReadTimeout  = 100 * time.Millisecond
	_defaultPollInterval = time.Millisecond
	_defaultWait         = 15 * time.Second
)

func NewDefaultOptions() *Options {
	return &Options{
		Serial: SerialOptions{
			Name:        _defaultSerialName,
			BaudRate:    _defaultBaudRate,
			DataBits:    _defaultDataBits,
			Parity:      constant.NoParity.String(),
			StopBits:    constant.OneStopBit.String(),
			ReadTimeout: metav1.Duration{Duration: _defaultReadTimeout},
		},
		Slave: SlaveOptions{
			DeviceID:     modbusrturuntime.DefaultDeviceID,
			BufferSize:   modbusrturuntime.DefaultBufferSize,
			MaxWait:      modbusrturuntime.DefaultMaxWait,
			PollInterval: metav1.Duration{Duration: _defaultPollInterval},
			Registers:    append([]uint16(nil), modbusrturuntime.DefaultRegisters...),
		},
		Wait:        metav1.Duration{Duration: _defaultWait},
		BaseOptions: baseoptions.NewDefaultBaseOptions(),
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Serial.Name, "serial-name", o.Serial.Name, "Serial device the slave listens on, e.g. /dev/ttyUSB0 or COM3")
	fs.IntVar(&o.Serial.BaudRate, "baud-rate", o.Serial.BaudRate, "Serial line baud rate")
	fs.IntVar(&o.Serial.DataBits, "data-bits", o.Serial.DataBits, "Serial line data bits, 5 to 8")
	fs.StringVar(&o.Serial.Parity, "parity", o.Serial.Parity, "Serial line parity: noParity, oddParity, evenParity, markParity or spaceParity")
	fs.StringVar(&o.Serial.StopBits, "stop-bits", o.Serial.StopBits, "Serial line stop bits: 1, 1.5 or 2")
	fs.DurationVar(&o.Serial.ReadTimeout.Duration, "read-timeout", o.Serial.ReadTimeout.Duration, "Serial read timeout, bounds how long shutdown waits for the reader")
	fs.Uint8Var(&o.Slave.DeviceID, "device-id", o.Slave.DeviceID, "Modbus device id answered by this slave, 1 to 247")
	fs.IntVar(&o.Slave.BufferSize, "buffer-size", o.Slave.BufferSize, "Capacity in bytes of the receive and transmit buffers")
	fs.IntVar(&o.Slave.MaxWait, "max-wait", o.Slave.MaxWait, "Polls a partial frame may stay incomplete before the session is reset")
	fs.DurationVar(&o.Slave.PollInterval.Duration, "poll-interval", o.Slave.PollInterval.Duration, "Interval between scans of the receive buffer")
	fs.StringVarP(&o.Port, "port", "P", o.Port, "Port exposed by the status server, empty disables it")
	fs.StringVar(&o.CertFile, "tls-cert-file", o.CertFile, "File containing the x509 certificate for the status server, plain HTTP when empty")
	fs.StringVar(&o.KeyFile, "tls-private-key-file", o.KeyFile, "File containing the x509 private key matching --tls-cert-file")
	fs.DurationVar(&o.Wait.Duration, "graceful-timeout", o.Wait.Duration, "The duration for which the server gracefully wait for existing connections to finish - e.g. 15s or 1m")
}

func (o *Options) SerialConfig() (modbusrtu.SerialConfig, error) {
	parity, err := constant.ParseParity(o.Serial.Parity)
	if err != nil {
		return modbusrtu.SerialConfig{}, err
	}
	stopBits, err := constant.ParseStopBits(o.Serial.StopBits)
	if err != nil {
		return modbusrtu.SerialConfig{}, err
	}
	return modbusrtu.SerialConfig{
		Name:        o.Serial.Name,
		BaudRate:    o.Serial.BaudRate,
		DataBits:    o.Serial.DataBits,
		Parity:      parity,
		StopBits:    stopBits,
		ReadTimeout: o.Serial.ReadTimeout.Duration,
	}, nil
}

func (o *Options) SlaveConfig() modbusrtu.SlaveConfig {
	return modbusrtu.SlaveConfig{
		DeviceID:     o.Slave.DeviceID,
		BufferSize:   o.Slave.BufferSize,
		MaxWait:      o.Slave.MaxWait,
		PollInterval: o.Slave.PollInterval.Duration,
	}
}

// Config opens the serial line and builds the slave. The caller owns the returned
// transport and must close it.
func (o *Options) Config() (*config.Config, error) {
	serialConfig, err := o.SerialConfig()
	if err != nil {
		return nil, err
	}
	slave, err := modbusrtu.NewSlave(o.SlaveConfig(), modbusrtu.NewRegisterTable(o.Slave.Registers))
	if err != nil {
		return nil, err
	}
	transport, err := modbusrtu.OpenSerialTransport(serialConfig)
	if err != nil {
		return nil, err
	}
	return &config.Config{
		Slave:     slave,
		Transport: transport,
		CertFile:  o.CertFile,
		KeyFile:   o.KeyFile,
	}, nil
}
