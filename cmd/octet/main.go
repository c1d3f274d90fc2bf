// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command octet assembles and runs programs for the octet 8-bit machine.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/octet/config"
	"github.com/ezrec/octet/emulator"
)

const DEFAULT_CONFIG = "octet.toml"

var (
	configPath string
	logLevel   string
	verbose    bool
	defines    map[string]string

	settings *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "octet",
	Short:             "Assemble and run octet 8-bit machine programs",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRunE,
}

func init() {
	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&configPath, "config", DEFAULT_CONFIG, "TOML settings file")
	pflags.StringVar(&logLevel, "log-level", "", "Log messages above specified level (trace, debug, info, warn, error, fatal or panic)")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Trace the assembler and CPU")
	pflags.StringToStringVarP(&defines, "define", "D", nil, "Assembler equate NAME=VALUE")

	rootCmd.AddCommand(asmCmd, runCmd, dumpCmd)
}

func persistentPreRunE(cmd *cobra.Command, args []string) (err error) {
	optional := !cmd.Flags().Changed("config")
	settings, err = config.Load(configPath, optional)
	if err != nil {
		err = fmt.Errorf("%v: %w", configPath, err)
		return
	}

	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if verbose {
		settings.Verbose = true
		if !cmd.Flags().Changed("log-level") {
			settings.LogLevel = "info"
		}
	}
	for equ, value := range defines {
		settings.Defines[equ] = value
	}

	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		return
	}
	logrus.SetLevel(level)
	logrus.Debugf("Called %s.PersistentPreRunE(%v)", cmd.Name(), args)

	return
}

// newEmulator creates an emulator configured from the settings.
func newEmulator() (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	settings.Apply(emu)
	return
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
