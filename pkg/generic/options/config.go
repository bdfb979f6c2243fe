package options

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"k8s.io/component-base/version/verflag"
	"k8s.io/klog/v2"
	"os"
	"path/filepath"
	"sigs.k8s.io/yaml"
)

// ParseAndApplyConfigFile loads the --config file into o and then re-applies the
// command-line flags in args, so flags win over the file.
func ParseAndApplyConfigFile(o Optioner, args []string) error {
	if len(o.GetBaseOptions().ConfigFile) == 0 {
		return nil
	}
	if err := parseConfigFile(o); err != nil {
		return err
	}
	return flagPrecedence(o, args)
}

func flagPrecedence(o Optioner, args []string) error {
	fs := pflag.NewFlagSet("", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.ParseErrorsWhitelist.UnknownFlags = true
	// help, version and default-config were handled before the file was read,
	// they are registered again only to be accepted
	addHelp(fs)
	addDefaultConfig(fs)
	verflag.AddFlags(fs)
	o.AddFlags(fs)
	o.GetBaseOptions().addConfigFile(fs)
	o.GetBaseOptions().addLogging(fs)
	return errors.Wrap(fs.Parse(args), "re-parse flags over config file")
}

func parseConfigFile(o Optioner) error {
	configFile := o.GetBaseOptions().ConfigFile
	configFilePath, err := filepath.Abs(configFile)
	if err != nil {
		return errors.Wrapf(err, "resolve config file %s", configFile)
	}

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", configFilePath)
	}

	if err := yaml.UnmarshalStrict(data, o); err != nil {
		return errors.Wrapf(err, "unmarshal config file %s", configFilePath)
	}
	klog.V(1).InfoS("Loaded config file", "file", configFilePath)
	return nil
}
