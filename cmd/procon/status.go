package main

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/procon/config"
	"github.com/rigado/procon/linux/hci"
	"github.com/urfave/cli"
)

type radioReport struct {
	Transport   string   `json:"transport"`
	Address     string   `json:"address"`
	ScanEnabled bool     `json:"scanEnabled"`
	Links       []string `json:"links"`
}

// hciOptions selects the transport and timeouts cfg names.
func hciOptions(cfg *config.Config) []hci.Option {
	t := cfg.Transport
	var opts []hci.Option
	switch {
	case t.UART != "":
		opts = append(opts, hci.OptTransportH4Uart(t.UART, t.Baud))
	case t.TCP != "":
		opts = append(opts, hci.OptTransportH4Socket(t.TCP, time.Duration(t.TCPTimeoutMs)*time.Millisecond))
	default:
		opts = append(opts, hci.OptTransportHCISocket(t.HCI))
	}
	if t.CommandTimeoutMs > 0 {
		opts = append(opts, hci.OptCommandTimeout(time.Duration(t.CommandTimeoutMs)*time.Millisecond))
	}
	if t.LinkTimeoutMs > 0 {
		opts = append(opts, hci.OptLinkTimeout(time.Duration(t.LinkTimeoutMs)*time.Millisecond))
	}
	return opts
}

func transportName(cfg *config.Config) string {
	switch t := cfg.Transport; {
	case t.UART != "":
		return "uart:" + t.UART
	case t.TCP != "":
		return "tcp:" + t.TCP
	case t.HCI < 0:
		return "hci"
	default:
		return fmt.Sprintf("hci%d", t.HCI)
	}
}

func status(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	h, err := hci.NewHCI(hciOptions(cfg)...)
	if err != nil {
		return errors.Wrap(err, "can't create hci")
	}
	if err := h.Init(); err != nil {
		h.Close()
		return errors.Wrap(err, "can't init hci")
	}
	defer h.Close()

	r := radioReport{Transport: transportName(cfg), Links: []string{}}
	if a := h.Addr(); a != nil {
		r.Address = a.String()
	}
	if r.ScanEnabled, err = h.ScanEnabled(); err != nil {
		return err
	}
	for _, a := range h.Links() {
		r.Links = append(r.Links, a.String())
	}

	out, err := jsoniter.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
