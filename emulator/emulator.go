// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/octet/cpu"
	"github.com/ezrec/octet/internal"
	octetio "github.com/ezrec/octet/io"
)

const (
	DEFAULT_MAX_STEPS = 0x10000 // Default run-to-halt step limit.
)

var _emulator_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", cpu.REGISTER_COUNT),
}

// Emulator state. CPU + program listing + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape     octetio.Tape  // OUT channel.
	MaxSteps int           // Step limit for Run, 0 for no limit.
	Pace     time.Duration // Delay between steps in Run.

	predefine map[string]string
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:      cpu.NewCpu(),
		Program:  &cpu.Program{},
		MaxSteps: DEFAULT_MAX_STEPS,
	}

	emu.Cpu.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		maps.All(emu.predefine),
	)
}

// Predefine adds an assembler equate for subsequent loads.
func (emu *Emulator) Predefine(equ string, value string) {
	if emu.predefine == nil {
		emu.predefine = make(map[string]string)
	}
	emu.predefine[equ] = value
}

// Load assembles a program and commits it to memory, then resets the
// CPU. On error, memory and the current program are left untouched.
func (emu *Emulator) Load(source io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	prog.Commit(&emu.Cpu.State)
	emu.Program = prog
	emu.Reset()

	if emu.Verbose {
		logrus.WithField("statements", len(prog.Statements)).Info("emulator: program loaded")
	}

	return
}

// LoadImage reads a raw memory image of at most MEMORY_SIZE bytes into
// memory starting at address 0, then resets the CPU. The program
// listing is cleared.
func (emu *Emulator) LoadImage(image io.Reader) (err error) {
	var mem cpu.Memory

	n, err := io.ReadFull(image, mem[:])
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		err = nil
	case err != nil:
		return
	default:
		var extra [1]byte
		if m, _ := image.Read(extra[:]); m != 0 {
			err = ErrImageSize
			return
		}
	}

	copy(emu.Cpu.Memory[:n], mem[:n])
	emu.Program = &cpu.Program{}
	emu.Reset()

	return
}

// Patch applies '[HH]: HH' memory patch lines.
func (emu *Emulator) Patch(input io.Reader) (err error) {
	return emu.Cpu.State.Patch(input)
}

// Reset the CPU state and output. Memory is kept.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// LineNo returns the current line number for the executing statement.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Lines returns the lines written by OUT since the last reset.
func (emu *Emulator) Lines() []string {
	return emu.Tape.Lines()
}

// Step executes a single instruction. Errors are annotated with the
// source line of the instruction.
func (emu *Emulator) Step() (outcome cpu.Outcome, err error) {
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	outcome, err = emu.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{LineNo: lineno, Err: err}
	}

	return
}

// Tick performs a single step of the emulator, and reports when the
// program has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	outcome, err := emu.Step()
	done = outcome != cpu.OUTCOME_CONTINUED
	return
}

// Run steps until the CPU halts or faults, the context is cancelled,
// or MaxSteps is reached. Cancellation is observed between steps.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var pace *time.Ticker
	if emu.Pace > 0 {
		pace = time.NewTicker(emu.Pace)
		defer pace.Stop()
	}

	for steps := 0; ; steps++ {
		if emu.MaxSteps > 0 && steps >= emu.MaxSteps {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrStepLimit}
			return
		}

		if pace != nil && steps > 0 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				return
			case <-pace.C:
			}
		} else if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			if emu.Verbose {
				logrus.WithField("ticks", emu.Ticks()).Info("emulator: halted")
			}
			return
		}
	}
}

// Halted returns true if the CPU stopped on HLT.
func (emu *Emulator) Halted() bool {
	return emu.Cpu.RunState == cpu.RUN_HALTED
}

// Faulted returns the fault that stopped the CPU, if any.
func (emu *Emulator) Faulted() (err error) {
	err = emu.Cpu.Fault()
	var fault *cpu.ErrFault
	if errors.As(err, &fault) {
		dbg := emu.Program.Debug(fault.Address)
		if dbg.Statement != nil {
			err = &ErrRuntime{LineNo: dbg.LineNo, Err: err}
		}
	}
	return
}
