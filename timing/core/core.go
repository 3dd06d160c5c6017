// Package core provides the cycle-accurate APEX CPU core model.
// It wraps the pipeline implementation to provide a run control interface.
package core

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of decode stall cycles.
	Stalls uint64
	// Flushes is the number of taken branches and jumps.
	Flushes uint64
	// FetchBubbles is the number of cycles fetch skipped after a redirect.
	FetchBubbles uint64
	// DataHazards is the number of forwarded operands.
	DataHazards uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Outcome tells how a run ended.
type Outcome int

const (
	// OutcomeHalted means HALT retired.
	OutcomeHalted Outcome = iota
	// OutcomeBudgetExhausted means the cycle budget ran out first.
	OutcomeBudgetExhausted
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == OutcomeHalted {
		return "halted"
	}
	return "budget exhausted"
}

// RunResult summarizes a call to Run.
type RunResult struct {
	// CyclesExecuted is the clock value at the end of the run.
	CyclesExecuted uint64
	// InstructionsCompleted is the number of instructions retired so far.
	InstructionsCompleted uint64
	// Halted is true if HALT has retired.
	Halted bool
}

// Outcome returns how the run ended.
func (r RunResult) Outcome() Outcome {
	if r.Halted {
		return OutcomeHalted
	}
	return OutcomeBudgetExhausted
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithLogger sets the logger passed to the pipeline. The default logger is
// built from the configured log level.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// Core represents a cycle-accurate APEX CPU.
// It wraps a 5-stage pipeline and provides a simple interface for simulation.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	// Shared resources
	regFile *emu.RegFile
	memory  *emu.Memory

	config *config.Config
	logger logrus.FieldLogger
}

// New creates a core that runs program. A nil cfg selects the default
// configuration.
func New(program []insts.Instruction, cfg *config.Config, opts ...Option) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Core{
		regFile: emu.NewRegFile(cfg.Registers),
		memory:  emu.NewMemory(cfg.DataMemorySize),
		config:  cfg.Clone(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = cfg.NewLogger()
	}

	c.Pipeline = pipeline.NewPipeline(program, c.regFile, c.memory,
		pipeline.WithLogger(c.logger),
		pipeline.WithBasePC(cfg.BasePC),
		pipeline.WithInstructionWidth(cfg.InstructionWidth),
	)

	return c, nil
}

// Load reads the program at path and creates a core for it. Parse failures
// are returned as *loader.LoadError.
func Load(path string, cfg *config.Config, opts ...Option) (*Core, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	return New(prog.Instructions, cfg, opts...)
}

// Config returns the core's configuration.
func (c *Core) Config() *config.Config {
	return c.config
}

// RegFile returns the register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory returns the data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() error {
	return c.Pipeline.Tick()
}

// Halted returns true once HALT has retired.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
		FetchBubbles: pipeStats.FetchBubbles,
		DataHazards:  pipeStats.DataHazards,
	}
}

// Run executes at most maxCycles cycles, stopping early when HALT retires.
// A maxCycles of 0 uses the configured budget. Running out of cycles is not
// an error; check the result's Outcome.
func (c *Core) Run(maxCycles uint64) (RunResult, error) {
	if maxCycles == 0 {
		maxCycles = c.config.MaxCycles
	}

	_, err := c.Pipeline.RunCycles(maxCycles)

	stats := c.Pipeline.Stats()
	result := RunResult{
		CyclesExecuted:        stats.Cycles,
		InstructionsCompleted: stats.Instructions,
		Halted:                c.Pipeline.Halted(),
	}

	return result, err
}

// Inspect returns a snapshot of the core's state.
func (c *Core) Inspect() pipeline.Snapshot {
	return c.Pipeline.Snapshot()
}

// SimulatedTime converts the cycles run so far to time at the configured
// clock frequency.
func (c *Core) SimulatedTime() time.Duration {
	freq := c.config.ClockFrequency()
	cycles := float64(c.Pipeline.Stats().Cycles)
	return time.Duration(cycles * float64(time.Second) / float64(freq))
}

// Reset clears all core state, including registers and data memory.
func (c *Core) Reset() {
	c.regFile.Reset()
	c.memory.Reset()
	c.Pipeline.Reset()
}
