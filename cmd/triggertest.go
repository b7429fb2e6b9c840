package main

import (
	"os"
	"os/signal"
	"sort"
	"syscall"

	"triggertest/pkg/app"
	"triggertest/pkg/app/config"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Trigger pulse tester for parallel, gpio and usb serial trigger ports",
		Version: app.VERSION,
		Description: "Write trigger bytes to a trigger port to test the trigger wiring of a recording setup" +
			"\n a scripted bit-walk sequence, single triggers and periodic burst campaigns are" +
			"\n started by the web api, the status line is pushed to mqtt.",
		UsageText: "triggertest [--config <file>] [--log standard|debug|trace|full]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the trigger tester and use the configuration file triggertest.yaml" +
			"\n\t\ttriggertest --config /opt/womat/triggertest.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.Debug, Usage: "`LEVEL` overwrites the configured log level (standard|debug|trace|full)"},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.Debug.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for an os.Interrupt signal (CTRL C) or a stopped web server
			select {
			case sig := <-quit:
				debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			case <-a.Shutdown():
				debug.InfoLog.Print("web server stopped. Aborting...")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	if err := cliApp.Run(os.Args); err != nil {
		debug.FatalLog.Print(err)
		return
	}

	exitCode = 0
}
