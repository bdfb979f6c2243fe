package options

import (
	"fmt"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	modbusrturuntime "rtuslave/pkg/protocol/modbusrtu/runtime"
	"rtuslave/pkg/runtime/constant"
)

const (
	_maxDeviceID  = 247
	_maxRegisters = 65535
	_minDataBits  = 5
	_maxDataBits  = 8
)

func Validate(o *Options) []error {
	var errs []error
	if err := o.BaseOptions.ValidateAndApply(); err != nil {
		errs = append(errs, err)
	}
	for _, err := range ValidateSerial(&o.Serial, field.NewPath("serial")) {
		errs = append(errs, err)
	}
	for _, err := range ValidateSlave(&o.Slave, field.NewPath("slave")) {
		errs = append(errs, err)
	}
	return errs
}

func ValidateSerial(s *SerialOptions, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList
	if len(s.Name) == 0 {
		allErrs = append(allErrs, field.Required(fldPath.Child("name"), "serial device is required"))
	}
	if s.BaudRate <= 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("baudRate"), s.BaudRate, "must be positive"))
	}
	if s.DataBits < _minDataBits || s.DataBits > _maxDataBits {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("dataBits"), s.DataBits,
			fmt.Sprintf("must be in %d..%d", _minDataBits, _maxDataBits)))
	}
	parities := sets.StringKeySet(constant.StringToParity)
	if !parities.Has(s.Parity) {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("parity"), s.Parity, parities.List()))
	}
	stopBits := sets.StringKeySet(constant.StringToStopBits)
	if !stopBits.Has(s.StopBits) {
		allErrs = append(allErrs, field.NotSupported(fldPath.Child("stopBits"), s.StopBits, stopBits.List()))
	}
	if s.ReadTimeout.Duration < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("readTimeout"), s.ReadTimeout.String(), "must not be negative"))
	}
	return allErrs
}

func ValidateSlave(s *SlaveOptions, fldPath *field.Path) field.ErrorList {
	var allErrs field.ErrorList
	if s.DeviceID == 0 || s.DeviceID > _maxDeviceID {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("deviceId"), s.DeviceID,
			fmt.Sprintf("must be in 1..%d", _maxDeviceID)))
	}
	if s.BufferSize < modbusrturuntime.MinBufferSize || s.BufferSize > modbusrturuntime.MaxBufferSize {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("bufferSize"), s.BufferSize,
			fmt.Sprintf("must be in %d..%d", modbusrturuntime.MinBufferSize, modbusrturuntime.MaxBufferSize)))
	}
	if s.MaxWait < 1 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("maxWait"), s.MaxWait, "must be at least 1"))
	}
	if s.PollInterval.Duration <= 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("pollInterval"), s.PollInterval.String(), "must be positive"))
	}
	if len(s.Registers) == 0 {
		allErrs = append(allErrs, field.Required(fldPath.Child("registers"), "at least one register"))
	} else if len(s.Registers) > _maxRegisters {
		allErrs = append(allErrs, field.TooMany(fldPath.Child("registers"), len(s.Registers), _maxRegisters))
	}
	return allErrs
}
