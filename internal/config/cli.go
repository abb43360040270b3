// Package config holds the command line root parsed by kong.
package config

import "github.com/Alia5/padlight/internal/cmd"

type Log struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PADLIGHT_LOG_LEVEL"`
	File    string `help:"Write logs to this file" env:"PADLIGHT_LOG_FILE"`
	RawFile string `help:"Dump every HID report to this file" env:"PADLIGHT_LOG_RAW_FILE"`
}

type CLI struct {
	ConfigPath string `name:"config" help:"Configuration file (json, yaml or toml)" env:"PADLIGHT_CONFIG" type:"path"`
	Log        Log    `embed:"" prefix:"log."`

	Run    cmd.Run           `cmd:"" help:"Run the keypad controller"`
	Config cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
	Layout cmd.LayoutCommand `cmd:"" help:"Inspect and export key layouts"`
}
