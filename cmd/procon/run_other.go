//go:build !linux
// +build !linux

package main

import (
	"github.com/rigado/procon"
	"github.com/urfave/cli"
)

func run(c *cli.Context) error {
	return procon.ErrNotSupported
}
