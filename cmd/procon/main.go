// Command procon presents the local Bluetooth controller to a console as a
// Pro Controller.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/config"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()

	app.Name = "procon"
	app.Usage = "Pro Controller emulation over Bluetooth"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{flgConfig, flgLogLevel}

	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Advertise as a Pro Controller and serve console sessions",
			Action: run,
			Flags:  []cli.Flag{flgHCI, flgAdapter, flgName, flgFlash, flgSize, flgConnect, flgCache},
		},
		{
			Name:   "flash-info",
			Usage:  "Print the calibration blocks of a flash image as JSON",
			Action: flashInfo,
			Flags:  []cli.Flag{flgFlash, flgSize},
		},
		{
			Name:   "status",
			Usage:  "Print the controller address, scan state and links as JSON",
			Action: status,
			Flags:  []cli.Flag{flgHCI, flgUART, flgBaud, flgTCP},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "procon: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the command line over the configuration file over the
// defaults, then validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if c.GlobalIsSet("log-level") {
		cfg.LogLevel = c.GlobalString("log-level")
	}
	if c.IsSet("hci") {
		cfg.Transport.HCI = c.Int("hci")
	}
	if c.IsSet("adapter") {
		cfg.Transport.Adapter = c.String("adapter")
	}
	if c.IsSet("uart") {
		cfg.Transport.UART = c.String("uart")
	}
	if c.IsSet("baud") {
		cfg.Transport.Baud = c.Uint("baud")
	}
	if c.IsSet("tcp") {
		cfg.Transport.TCP = c.String("tcp")
	}
	if c.IsSet("name") {
		cfg.Identity.Name = c.String("name")
	}
	if c.IsSet("flash") {
		cfg.Flash.Dump = c.String("flash")
	}
	if c.IsSet("size") {
		cfg.Flash.Size = c.Int("size")
	}
	if c.IsSet("connect") {
		cfg.Connect = c.String("connect")
	}
	if c.IsSet("cache") {
		cfg.Cache = c.String("cache")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if err := procon.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}
