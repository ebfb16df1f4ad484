package main

import (
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/rigado/procon/config"
	"github.com/rigado/procon/flash"
	"github.com/urfave/cli"
)

type flashReport struct {
	Size          int     `json:"size"`
	FactoryLStick string  `json:"factoryLStick"`
	FactoryRStick string  `json:"factoryRStick"`
	UserLStick    *string `json:"userLStick"`
	UserRStick    *string `json:"userRStick"`
}

func describeFlash(m *flash.Memory) flashReport {
	r := flashReport{
		Size:          m.Size(),
		FactoryLStick: hex.EncodeToString(m.FactoryLStickCalibration()),
		FactoryRStick: hex.EncodeToString(m.FactoryRStickCalibration()),
	}
	if b, ok := m.UserLStickCalibration(); ok {
		s := hex.EncodeToString(b)
		r.UserLStick = &s
	}
	if b, ok := m.UserRStickCalibration(); ok {
		s := hex.EncodeToString(b)
		r.UserRStick = &s
	}
	return r
}

func loadFlash(cfg *config.Config) (*flash.Memory, error) {
	if cfg.Flash.Dump == "" {
		return flash.New(nil, cfg.Flash.Size)
	}
	return flash.Load(cfg.Flash.Dump, cfg.Flash.Size)
}

func flashInfo(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	m, err := loadFlash(cfg)
	if err != nil {
		return err
	}

	out, err := jsoniter.MarshalIndent(describeFlash(m), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
