package options

import (
	"encoding/json"
	"fmt"
	"github.com/spf13/pflag"
	"k8s.io/component-base/config"
	"k8s.io/component-base/logs"
	"k8s.io/component-base/logs/registry"
	"strings"
)

const (
	_defaultLogFormat = "text"
	_defaultVerbosity = 1
)

// exposedLoggingFlags are left visible in --help, the rest of component-base's
// logging flags are hidden.
var exposedLoggingFlags = map[string]bool{
	"v":              true,
	"vmodule":        true,
	"logging-format": true,
}

type LoggingConfiguration struct {
	// Refer [Logs Options](https://github.com/kubernetes/component-base/blob/master/logs/options.go) for more information.
	config.LoggingConfiguration
}

func NewDefaultLoggingConfiguration() LoggingConfiguration {
	return LoggingConfiguration{
		config.LoggingConfiguration{
			Format:    _defaultLogFormat,
			Verbosity: _defaultVerbosity,
		},
	}
}

func (l *LoggingConfiguration) ValidateAndApply() error {
	o := logs.NewOptions()
	o.Config.Format = l.Format
	o.Config.Verbosity = l.Verbosity
	o.Config.VModule = l.VModule
	return o.ValidateAndApply()
}

// loggingFile is the config file shape, limited to the exposed flags.
type loggingFile struct {
	Format    string                      `json:"format"`
	Verbosity config.VerbosityLevel       `json:"verbosity"`
	VModule   config.VModuleConfiguration `json:"vmodule,omitempty"`
}

func (l LoggingConfiguration) MarshalJSON() ([]byte, error) {
	return json.Marshal(&loggingFile{
		Format:    l.Format,
		Verbosity: l.Verbosity,
		VModule:   l.VModule,
	})
}

func (l *LoggingConfiguration) UnmarshalJSON(bytes []byte) error {
	in := &loggingFile{
		Format:    l.Format,
		Verbosity: l.Verbosity,
		VModule:   l.VModule,
	}
	if err := json.Unmarshal(bytes, in); err != nil {
		return err
	}
	l.Format = in.Format
	l.Verbosity = in.Verbosity
	l.VModule = in.VModule
	return nil
}

func (l *LoggingConfiguration) BindLoggingFlags(fs *pflag.FlagSet) {
	logsFs := pflag.NewFlagSet("", pflag.ContinueOnError)
	logs.BindLoggingFlags(&l.LoggingConfiguration, logsFs)
	logsFs.VisitAll(func(f *pflag.Flag) {
		if !exposedLoggingFlags[f.Name] {
			f.Hidden = true
			return
		}
		if f.Name == "logging-format" {
			formats := fmt.Sprintf(`"%s"`, strings.Join(registry.LogRegistry.List(), `", "`))
			f.Usage = fmt.Sprintf("Sets the log format. Permitted formats: %s.", formats)
		}
	})
	fs.AddFlagSet(logsFs)
}
