package app

import (
	"context"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	utilserrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/component-base/version"
	"k8s.io/component-base/version/verflag"
	"k8s.io/klog/v2"
	"os"
	"os/signal"
	"rtuslave/cmd/slave/config"
	"rtuslave/cmd/slave/options"
	"rtuslave/pkg/generic"
	baseoptions "rtuslave/pkg/generic/options"
	"rtuslave/pkg/web"
	"sync"
	"syscall"
)

const (
	ComponentSlave = "rtu-slave"
)

func NewSlaveCmd() *cobra.Command {
	cleanFlagSet := pflag.NewFlagSet(ComponentSlave, pflag.ContinueOnError)
	o := options.NewDefaultOptions()
	cmd := &cobra.Command{
		Use:                ComponentSlave,
		Long:               `The rtu slave answers Modbus RTU holding register reads addressed to its device id on a serial line.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// initial flag parse, since we disable cobra's flag parsing
			if err := cleanFlagSet.Parse(args); err != nil {
				klog.ErrorS(err, "Failed to parse flag")
				_ = cmd.Usage()
				os.Exit(1)
			}

			// check if there are non-flag arguments in the command line
			cmds := cleanFlagSet.Args()
			if len(cmds) > 0 {
				klog.ErrorS(nil, "Unknown command", "command", cmds[0])
				_ = cmd.Usage()
				os.Exit(1)
			}

			// short-circuit on help
			baseoptions.PrintHelpAndExitIfRequested(cmd, cleanFlagSet)

			// short-circuit on defaultconfig
			baseoptions.PrintDefaultConfigAndExitIfRequested(options.NewDefaultOptions(), cleanFlagSet)

			// short-circuit on verflag
			verflag.PrintAndExitIfRequested()

			if err := baseoptions.ParseAndApplyConfigFile(o, args); err != nil {
				return err
			}

			if errs := options.Validate(o); len(errs) != 0 {
				return utilserrors.NewAggregate(errs)
			}

			// To help debugging, immediately log version
			klog.InfoS("Starting rtu slave", "version", version.Get().String())
			return run(o)
		},
	}

	verflag.AddFlags(cleanFlagSet)
	o.AddFlags(cleanFlagSet)
	o.AddBaseFlags(cmd, cleanFlagSet)

	return cmd
}

func run(o *options.Options) error {
	c, err := o.Config()
	if err != nil {
		return err
	}

	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be catch, so don't need add it
	exitCh := make(chan os.Signal, 1)
	signal.Notify(exitCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(exitCh)

	return serve(o, c, exitCh)
}

// serve runs the slave until a signal arrives on exitCh or the serial transport stops.
// The status server is shut down first, then the poll loop, then the port.
func serve(o *options.Options, c *config.Config, exitCh <-chan os.Signal) error {
	defer func() {
		if err := c.Transport.Close(); err != nil {
			klog.ErrorS(err, "Failed to close serial port", "port", c.Transport.Name)
		}
	}()

	var exit func(ctx context.Context)
	if len(o.Port) != 0 {
		server, err := web.NewServer(generic.Default(), o.Port, c)
		if err != nil {
			return err
		}
		if exit, err = server.Serve(); err != nil {
			return err
		}
		klog.V(1).InfoS("Status server started", "port", o.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- c.Transport.Serve(ctx, c.Slave.Receiver())
	}()
	go func() {
		defer wg.Done()
		c.Slave.Run(ctx, c.Transport)
	}()

	var runErr error
	select {
	case sig := <-exitCh:
		klog.V(1).InfoS("Received signal, shutting down", "signal", sig.String())
	case runErr = <-errCh:
		klog.ErrorS(runErr, "Serial transport stopped", "port", c.Transport.Name)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), o.Wait.Duration)
	defer cancelShutdown()
	if exit != nil {
		exit(shutdownCtx)
	}

	cancel()
	// unblocks a reader without read timeout
	_ = c.Transport.Close()
	wg.Wait()

	klog.V(1).InfoS("Slave exited", "stats", c.Slave.Stats())
	return runErr
}
