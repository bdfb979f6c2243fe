package options

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"io"
	"k8s.io/klog/v2"
	"os"
	"sigs.k8s.io/yaml"
)

const (
	_helpFlag          = "help"
	_defaultConfigFlag = "default-config"
)

func addHelp(fs *pflag.FlagSet) *pflag.Flag {
	fs.BoolP(_helpFlag, "h", false, "help")
	return fs.Lookup(_helpFlag)
}

func addHelpAndUsage(cmd *cobra.Command, fs *pflag.FlagSet) {
	addHelp(fs).Usage = fmt.Sprintf("help for %s", cmd.Name())

	// cobra's default UsageFunc and HelpFunc would print its global flags instead of fs
	const usageFmt = "Usage:\n  %s\n\nFlags:\n%s"
	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		_, _ = fmt.Fprintf(cmd.OutOrStderr(), usageFmt, cmd.UseLine(), fs.FlagUsagesWrapped(2))
		return nil
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n"+usageFmt, cmd.Long, cmd.UseLine(), fs.FlagUsagesWrapped(2))
	})
}

func addDefaultConfig(fs *pflag.FlagSet) {
	fs.Bool(_defaultConfigFlag, false, "print default configuration for reference, users can refer to it to create their own configuration files")
}

func PrintHelpAndExitIfRequested(cmd *cobra.Command, fs *pflag.FlagSet) {
	help, err := fs.GetBool(_helpFlag)
	if err != nil {
		klog.InfoS(`"help" flag is non-bool, programmer error, please correct`)
		os.Exit(1)
	}
	if help {
		_ = cmd.Help()
		os.Exit(0)
	}
}

func PrintDefaultConfigAndExitIfRequested(config interface{}, fs *pflag.FlagSet) {
	defaultConfig, err := fs.GetBool(_defaultConfigFlag)
	if err != nil {
		klog.InfoS(`"default-config" flag is non-bool, programmer error, please correct`)
		os.Exit(1)
	}
	if !defaultConfig {
		return
	}
	if err := WriteDefaultConfig(os.Stdout, config); err != nil {
		klog.ErrorS(err, "Failed to marshal default config to yaml")
		os.Exit(1)
	}
	os.Exit(0)
}

// WriteDefaultConfig writes config as a commented YAML document.
func WriteDefaultConfig(w io.Writer, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "# Default configuration with every field set, use it as a reference for your own config file.\n\n%s\n", data)
	return err
}
