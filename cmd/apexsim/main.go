// Package main provides the entry point for apexsim.
// apexsim is a cycle-accurate simulator of the APEX 5-stage in-order pipeline.
//
// Usage:
//
//	apexsim [options] <program.asm>
//	apexsim [options] <program.asm> simulate <n>
//
// The second form is the classic driver syntax; <n> overrides the cycle
// budget. "display" and "single_step" may be used in place of "simulate" to
// turn on the stage trace or single-step mode.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/core"
)

type options struct {
	cycles     uint64
	configPath string
	verbose    bool
	step       bool
	functional bool
	dump       bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("apexsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Uint64Var(&opts.cycles, "cycles", 0, "Cycle budget (default: max_cycles from the configuration)")
	fs.StringVar(&opts.configPath, "config", "", "Path to machine configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Log every stage of every cycle")
	fs.BoolVar(&opts.step, "step", false, "Single-step mode: wait for a key after each cycle, q quits")
	fs.BoolVar(&opts.functional, "functional", false, "Run the functional emulator instead of the pipeline")
	fs.BoolVar(&opts.dump, "dump", false, "Pretty-print the final pipeline snapshot")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: apexsim [options] <program> OR apexsim [options] <program> simulate <n>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	programPath, err := parseCommand(fs.Args(), &opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "APEX_Help: %v\n", err)
		fs.Usage()
		return 1
	}

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "APEX_Error: %v\n", err)
			return 1
		}
	}
	if opts.verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "APEX_Error: invalid config: %v\n", err)
		return 1
	}
	if opts.cycles == 0 {
		opts.cycles = cfg.MaxCycles
	}

	logger := cfg.NewLogger()
	logger.SetOutput(stderr)

	_, _ = fmt.Fprintln(stderr, "APEX CPU Pipeline Simulator")

	if opts.functional {
		return runFunctional(programPath, cfg, opts, stdout, logger)
	}
	return runTiming(programPath, cfg, opts, stdin, stdout, logger)
}

// parseCommand validates the positional arguments and returns the program
// path.
func parseCommand(args []string, opts *options) (string, error) {
	switch len(args) {
	case 1:
		return args[0], nil
	case 3:
		switch args[1] {
		case "simulate":
		case "display":
			opts.verbose = true
		case "single_step":
			opts.step = true
		default:
			return "", fmt.Errorf("unknown command %q", args[1])
		}

		n, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil || n == 0 {
			return "", fmt.Errorf("invalid cycle count %q", args[2])
		}
		opts.cycles = n
		return args[0], nil
	default:
		return "", errors.New("expected a program file")
	}
}

// runTiming runs the program on the pipeline.
func runTiming(
	programPath string,
	cfg *config.Config,
	opts options,
	stdin io.Reader,
	stdout io.Writer,
	logger *logrus.Logger,
) int {
	c, err := core.Load(programPath, cfg, core.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Error("unable to initialize CPU")
		return 1
	}

	if opts.verbose {
		printCodeMemory(stdout, c)
	}

	var (
		result  core.RunResult
		runErr  error
		stopped bool
	)
	if opts.step {
		result, stopped, runErr = stepRun(c, opts.cycles, stdin, stdout)
	} else {
		result, runErr = c.Run(opts.cycles)
	}

	snap := c.Inspect()
	printState(stdout, snap.Registers, c.Memory(), snap.Flags)

	if runErr != nil {
		logger.WithError(runErr).Error("simulation failed")
		return 1
	}

	if result.Halted && !stopped {
		_, _ = fmt.Fprintf(stdout, "APEX_CPU: Simulation Complete, cycles = %d instructions = %d\n",
			result.CyclesExecuted, result.InstructionsCompleted)
	} else {
		_, _ = fmt.Fprintf(stdout, "APEX_CPU: Simulation Stopped, cycles = %d instructions = %d\n",
			result.CyclesExecuted, result.InstructionsCompleted)
	}

	if opts.verbose {
		stats := c.Stats()
		_, _ = fmt.Fprintf(stdout, "CPI: %.2f\n", stats.CPI())
		_, _ = fmt.Fprintf(stdout, "Stalls: %d\n", stats.Stalls)
		_, _ = fmt.Fprintf(stdout, "Flushes: %d\n", stats.Flushes)
		_, _ = fmt.Fprintf(stdout, "Data hazards: %d\n", stats.DataHazards)
		_, _ = fmt.Fprintf(stdout, "Simulated time: %v\n", c.SimulatedTime())
	}

	if opts.dump {
		_, _ = pp.Fprintln(stdout, snap)
	}

	return 0
}

// runFunctional runs the program on the functional emulator.
func runFunctional(
	programPath string,
	cfg *config.Config,
	opts options,
	stdout io.Writer,
	logger *logrus.Logger,
) int {
	prog, err := loader.Load(programPath)
	if err != nil {
		logger.WithError(err).Error("unable to load program")
		return 1
	}

	regFile := emu.NewRegFile(cfg.Registers)
	memory := emu.NewMemory(cfg.DataMemorySize)
	e := emu.NewEmulator(prog.Instructions,
		emu.WithRegFile(regFile),
		emu.WithMemory(memory),
		emu.WithBasePC(cfg.BasePC),
		emu.WithInstructionWidth(cfg.InstructionWidth),
		emu.WithMaxInstructions(opts.cycles),
	)

	result := e.Run()
	printState(stdout, regFile.R, memory, regFile.Flags)

	switch {
	case errors.Is(result.Err, emu.ErrMaxInstructions):
		_, _ = fmt.Fprintf(stdout, "APEX_CPU: Emulation Stopped, instructions = %d\n", e.InstructionCount())
	case result.Err != nil:
		logger.WithError(result.Err).Error("emulation failed")
		return 1
	default:
		_, _ = fmt.Fprintf(stdout, "APEX_CPU: Emulation Complete, instructions = %d\n", e.InstructionCount())
	}

	return 0
}
