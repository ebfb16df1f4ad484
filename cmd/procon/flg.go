package main

import (
	"github.com/urfave/cli"
)

var (
	flgConfig   = cli.StringFlag{Name: "config, c", Usage: "JSON or YAML configuration file"}
	flgLogLevel = cli.StringFlag{Name: "log-level, l", Usage: "logrus level (overrides the configuration)"}

	flgHCI     = cli.IntFlag{Name: "hci", Value: -1, Usage: "HCI device index, -1 for the first one up"}
	flgAdapter = cli.StringFlag{Name: "adapter", Usage: "BlueZ adapter name"}
	flgName    = cli.StringFlag{Name: "name, n", Usage: "Device name presented to consoles"}
	flgFlash   = cli.StringFlag{Name: "flash, f", Usage: "SPI flash dump file"}
	flgSize    = cli.IntFlag{Name: "size", Usage: "SPI flash size in bytes"}
	flgConnect = cli.StringFlag{Name: "connect", Usage: "Console address to reconnect to"}
	flgCache   = cli.StringFlag{Name: "cache", Usage: "File remembering the last console"}

	flgUART = cli.StringFlag{Name: "uart", Usage: "H4 UART device path"}
	flgBaud = cli.UintFlag{Name: "baud", Usage: "H4 UART baud rate"}
	flgTCP  = cli.StringFlag{Name: "tcp", Usage: "H4 TCP server address"}
)
