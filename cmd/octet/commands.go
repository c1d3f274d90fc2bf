package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ezrec/octet/cpu"
	"github.com/ezrec/octet/emulator"
	"github.com/ezrec/octet/translate"
)

var f = translate.From

var ErrNotTerminal = errors.New(f("--step requires a terminal on stdin"))

var (
	asmOutput string

	runPatch    string
	runImage    bool
	runStep     bool
	runDelay    time.Duration
	runMaxSteps int
)

var asmCmd = &cobra.Command{
	Use:   "asm FILE",
	Short: "Assemble a program and print its listing",
	Args:  cobra.ExactArgs(1),
	RunE:  asmRunE,
}

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Assemble and run a program until it halts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunE,
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Assemble a program and print the memory grid",
	Args:  cobra.ExactArgs(1),
	RunE:  dumpRunE,
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "Write the 256 byte memory image to this file")

	addRunFlags(runCmd.Flags())
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.StringVar(&runPatch, "patch", "", "Apply '[HH]: HH' memory patches before running")
	flags.BoolVar(&runImage, "image", false, "FILE is a raw memory image, not source")
	flags.BoolVar(&runStep, "step", false, "Wait for a key before each instruction ('q' quits)")
	flags.DurationVar(&runDelay, "delay", 0, "Pause between instructions")
	flags.IntVar(&runMaxSteps, "max-steps", emulator.DEFAULT_MAX_STEPS, "Step limit, 0 for no limit")
}

// openInput opens a file, or stdin for "-".
func openInput(path string) (rc io.ReadCloser, err error) {
	if path == "-" {
		rc = io.NopCloser(os.Stdin)
		return
	}
	rc, err = os.Open(path)
	return
}

// loadSource assembles the source file into a new emulator.
func loadSource(path string) (emu *emulator.Emulator, err error) {
	inf, err := openInput(path)
	if err != nil {
		return
	}
	defer inf.Close()

	emu = newEmulator()
	err = emu.Load(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}
	return
}

func asmRunE(cmd *cobra.Command, args []string) (err error) {
	emu, err := loadSource(args[0])
	if err != nil {
		return
	}

	_, err = io.WriteString(cmd.OutOrStdout(), emu.Program.String())
	if err != nil {
		return
	}

	if len(asmOutput) != 0 {
		image := emu.Program.Image()
		err = os.WriteFile(asmOutput, image[:], 0o644)
	}

	return
}

func dumpRunE(cmd *cobra.Command, args []string) (err error) {
	emu, err := loadSource(args[0])
	if err != nil {
		return
	}

	return emu.Cpu.State.Dump(cmd.OutOrStdout())
}

func runRunE(cmd *cobra.Command, args []string) (err error) {
	var emu *emulator.Emulator
	if runImage {
		var inf io.ReadCloser
		inf, err = openInput(args[0])
		if err != nil {
			return
		}
		defer inf.Close()
		emu = newEmulator()
		err = emu.LoadImage(inf)
	} else {
		emu, err = loadSource(args[0])
	}
	if err != nil {
		return
	}

	if len(runPatch) != 0 {
		var patch io.ReadCloser
		patch, err = openInput(runPatch)
		if err != nil {
			return
		}
		defer patch.Close()
		err = emu.Patch(patch)
		if err != nil {
			err = fmt.Errorf("%v: %w", runPatch, err)
			return
		}
	}

	flags := cmd.Flags()
	if flags.Changed("delay") {
		emu.Pace = runDelay
	}
	if flags.Changed("max-steps") {
		emu.MaxSteps = runMaxSteps
	}

	out := cmd.OutOrStdout()

	if runStep {
		err = stepInteractive(emu, out)
	} else {
		emu.Tape.Output = out
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = emu.Run(ctx)
	}

	logrus.WithFields(logrus.Fields{
		"ticks": emu.Ticks(),
		"state": emu.Cpu.RunState,
	}).Info("run: finished")

	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), emu.Cpu.String())
	}

	return
}

// crlfWriter expands newlines for a terminal in raw mode.
type crlfWriter struct {
	io.Writer
}

func (w crlfWriter) Write(buff []byte) (n int, err error) {
	_, err = io.WriteString(w.Writer, strings.ReplaceAll(string(buff), "\n", "\r\n"))
	if err != nil {
		return
	}
	n = len(buff)
	return
}

// stepInteractive executes one instruction per keypress.
func stepInteractive(emu *emulator.Emulator, out io.Writer) (err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		err = ErrNotTerminal
		return
	}

	old_state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() {
		_ = term.Restore(fd, old_state)
	}()

	raw := crlfWriter{Writer: out}
	emu.Tape.Output = raw

	key := make([]byte, 1)
	for {
		pc := emu.Cpu.Pc
		fmt.Fprintf(raw, "%02X: %v  %v\n", pc, cpu.Opcode(emu.Cpu.Memory[pc]), emu.Cpu.Flags)

		_, err = os.Stdin.Read(key)
		if err != nil {
			return
		}
		// 'q', ^C and ^D stop stepping.
		if key[0] == 'q' || key[0] == 0x03 || key[0] == 0x04 {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
