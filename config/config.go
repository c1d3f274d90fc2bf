// Package config loads octet runner settings from a TOML file.
//
// A file only needs the keys it changes:
//
//	max_steps = 1000
//	delay = "250ms"
//	log_level = "info"
//	verbose = false
//	output_limit = 0
//
//	[defines]
//	SCREEN = "F0"
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/octet/emulator"
	"github.com/ezrec/octet/translate"
)

var f = translate.From

var (
	ErrDelayInvalid    = errors.New(f("delay invalid"))
	ErrMaxStepsInvalid = errors.New(f("max_steps must not be negative"))
	ErrUnknownKey      = errors.New(f("unknown configuration key"))
)

// Duration is a time.Duration that decodes from a TOML string.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration such as "250ms".
func (d *Duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		err = errors.Join(ErrDelayInvalid, err)
	}
	return
}

// MarshalText renders the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds the runner settings.
type Config struct {
	MaxSteps    int               `toml:"max_steps"`    // Run-to-halt step limit, 0 for none.
	Delay       Duration          `toml:"delay"`        // Pause between steps.
	LogLevel    string            `toml:"log_level"`    // logrus level name.
	Verbose     bool              `toml:"verbose"`      // Trace assembler and CPU.
	OutputLimit int               `toml:"output_limit"` // Maximum OUT values, 0 for none.
	Defines     map[string]string `toml:"defines"`      // Extra assembler equates.
}

// Default returns the built-in settings.
func Default() (cfg *Config) {
	cfg = &Config{
		MaxSteps: emulator.DEFAULT_MAX_STEPS,
		LogLevel: "warn",
		Defines:  map[string]string{},
	}
	return
}

// Decode reads TOML text over the defaults.
func Decode(text string) (cfg *Config, err error) {
	cfg = Default()

	md, err := toml.Decode(text, cfg)
	if err != nil {
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		err = errors.Join(ErrUnknownKey, errors.New(undecoded[0].String()))
		return
	}

	err = cfg.Validate()
	return
}

// Load reads a TOML file over the defaults. A missing file is not an
// error when optional is set.
func Load(path string, optional bool) (cfg *Config, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			cfg = Default()
			err = nil
		}
		return
	}

	return Decode(string(contents))
}

// Validate checks the settings for consistency.
func (cfg *Config) Validate() (err error) {
	if cfg.MaxSteps < 0 {
		err = ErrMaxStepsInvalid
		return
	}
	if cfg.Delay.Duration < 0 {
		err = ErrDelayInvalid
		return
	}
	return
}

// Apply copies the settings into an emulator.
func (cfg *Config) Apply(emu *emulator.Emulator) {
	emu.MaxSteps = cfg.MaxSteps
	emu.Pace = cfg.Delay.Duration
	emu.Verbose = cfg.Verbose
	emu.Tape.Capacity = cfg.OutputLimit
	for equ, value := range cfg.Defines {
		emu.Predefine(equ, value)
	}
}
