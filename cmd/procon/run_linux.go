//go:build linux
// +build linux

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
	"github.com/rigado/procon/cache"
	"github.com/rigado/procon/config"
	"github.com/rigado/procon/engine"
	"github.com/rigado/procon/lifecycle"
	"github.com/rigado/procon/linux"
	"github.com/urfave/cli"
)

func deviceOptions(cfg *config.Config) []linux.Option {
	t := cfg.Transport
	opts := []linux.Option{
		linux.OptHCIIndex(t.HCI),
		linux.OptAdapter(t.Adapter),
		linux.OptProfilePath(t.ProfilePath),
	}
	if t.CommandTimeoutMs > 0 {
		opts = append(opts, linux.OptCommandTimeout(time.Duration(t.CommandTimeoutMs)*time.Millisecond))
	}
	if t.LinkTimeoutMs > 0 {
		opts = append(opts, linux.OptLinkTimeout(time.Duration(t.LinkTimeoutMs)*time.Millisecond))
	}
	return opts
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.Transport.Kernel() {
		return errors.New("run needs the kernel hci socket transport")
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	d, err := linux.NewDevice(deviceOptions(cfg)...)
	if err != nil {
		return errors.Wrap(err, "can't open device")
	}
	defer d.Close()

	m, err := lifecycle.New(d, d, append(opts, procon.OptEngineFactory(engine.PassiveFactory))...)
	if err != nil {
		return err
	}

	ctx := procon.WithSigHandler(context.WithCancel(context.Background()))

	var cc procon.ConsoleCache
	if cfg.Cache != "" {
		cc = cache.New(cfg.Cache)
	}
	go follow(ctx, m, d.Addr(), cc, consoleAddr(cfg, cc, d.Addr()))

	if err := d.WatchPower(ctx, m); err != nil {
		return err
	}

	err = m.Run(ctx)
	if errors.Cause(err) == context.Canceled {
		return nil
	}
	return err
}

// consoleAddr is the console to reconnect to: the configured one, else the
// cached one.
func consoleAddr(cfg *config.Config, cc procon.ConsoleCache, host procon.Addr) procon.Addr {
	if cfg.Connect != "" {
		return procon.NewAddr(cfg.Connect)
	}
	if cc == nil {
		return nil
	}
	console, err := cc.Load(host)
	if err != nil {
		procon.GetLogger().Debugf("no console to reconnect to: %v", err)
		return nil
	}
	return procon.NewAddr(console.Addr)
}

// follow logs status changes, remembers consoles that reach a session and
// reconnects to console the first time the manager advertises.
func follow(ctx context.Context, m *lifecycle.Manager, host procon.Addr, cc procon.ConsoleCache, console procon.Addr) {
	log := procon.GetLogger().ChildLogger(map[string]interface{}{"pkg": "main"})
	updates := m.Subscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-updates:
			log.Infof("state %s powered=%v record=%v peer=%q violations=%d",
				s.State, s.Powered, s.RecordPublished, s.DeviceAddress, s.Violations)

			if s.State == lifecycle.Active.String() && cc != nil {
				err := cc.Store(host, procon.Console{Addr: s.DeviceAddress, LastSeen: time.Now()}, true)
				if err != nil {
					log.Warnf("can't remember console: %v", err)
				}
			}

			if s.State == lifecycle.Advertising.String() && console != nil {
				a := console
				console = nil
				go func() {
					log.Infof("reconnecting to %v", a)
					if err := m.Connect(ctx, a); err != nil {
						log.Errorf("can't reconnect to %v: %v", a, err)
					}
				}()
			}
		}
	}
}
