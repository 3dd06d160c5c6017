// Package benchmarks provides timing benchmark infrastructure for the APEX
// pipeline simulator.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of decode stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of operands resolved via forwarding
	DataHazards uint64 `json:"data_hazards"`

	// PipelineFlushes is the number of taken branches and jumps
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// FetchBubbles is the number of cycles fetch skipped after a redirect
	FetchBubbles uint64 `json:"fetch_bubbles"`

	// Halted is true if HALT retired within the cycle budget
	Halted bool `json:"halted"`

	// Mismatches lists final-state differences from the expected values and
	// from the functional emulator
	Mismatches []string `json:"mismatches,omitempty"`

	// Error is set if the program failed to load or run
	Error string `json:"error,omitempty"`

	// SimulatedTime is the cycle count at the configured clock frequency
	SimulatedTime time.Duration `json:"simulated_time_ns"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Passed reports whether the benchmark halted with the expected state.
func (r BenchmarkResult) Passed() bool {
	return r.Error == "" && r.Halted && len(r.Mismatches) == 0
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the machine state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Source is the APEX program text
	Source string

	// Expected maps registers to their values after HALT (for validation)
	Expected map[uint8]int32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Machine is the simulated machine configuration
	Machine *config.Config

	// MaxCycles bounds each run; 0 uses the machine's budget
	MaxCycles uint64

	// CrossCheck compares every run against the functional emulator
	CrossCheck bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Machine:    config.DefaultConfig(),
		CrossCheck: true,
		Output:     os.Stdout,
		Verbose:    false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Machine == nil {
		config.Machine = DefaultConfig().Machine
	}
	if config.MaxCycles == 0 {
		config.MaxCycles = config.Machine.MaxCycles
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	program, err := loader.ParseString(bench.Source)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	c, err := core.New(program, h.config.Machine)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// Run setup if provided
	if bench.Setup != nil {
		bench.Setup(c.RegFile(), c.Memory())
	}

	// Run simulation and measure time
	start := time.Now()
	run, err := c.Run(h.config.MaxCycles)
	wallTime := time.Since(start)

	// Collect statistics
	stats := c.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.Stalls
	result.DataHazards = stats.DataHazards
	result.PipelineFlushes = stats.Flushes
	result.FetchBubbles = stats.FetchBubbles
	result.Halted = run.Halted
	result.SimulatedTime = c.SimulatedTime()
	result.WallTime = wallTime

	if err != nil {
		result.Error = err.Error()
		return result
	}

	for _, reg := range slices.Sorted(maps.Keys(bench.Expected)) {
		want := bench.Expected[reg]
		if got := c.RegFile().ReadReg(reg); got != want {
			result.Mismatches = append(result.Mismatches,
				fmt.Sprintf("R%d = %d, expected %d", reg, got, want))
		}
	}

	if h.config.CrossCheck {
		result.Mismatches = append(result.Mismatches, h.crossCheck(bench, program, c)...)
	}

	return result
}

// crossCheck runs the program on the functional emulator and compares the
// final architectural state.
func (h *Harness) crossCheck(bench Benchmark, program []insts.Instruction, c *core.Core) []string {
	machine := h.config.Machine
	regFile := emu.NewRegFile(machine.Registers)
	memory := emu.NewMemory(machine.DataMemorySize)
	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}

	e := emu.NewEmulator(program,
		emu.WithRegFile(regFile),
		emu.WithMemory(memory),
		emu.WithBasePC(machine.BasePC),
		emu.WithInstructionWidth(machine.InstructionWidth),
		emu.WithMaxInstructions(h.config.MaxCycles),
	)

	step := e.Run()
	if step.Err != nil {
		return []string{fmt.Sprintf("emulator: %v", step.Err)}
	}

	var diffs []string
	if !slices.Equal(regFile.R, c.RegFile().R) {
		diffs = append(diffs, fmt.Sprintf("registers %v, emulator %v", c.RegFile().R, regFile.R))
	}
	if regFile.Flags != c.RegFile().Flags {
		diffs = append(diffs, fmt.Sprintf("flags %v, emulator %v", c.RegFile().Flags, regFile.Flags))
	}
	if !maps.Equal(memory.NonZero(), c.Memory().NonZero()) {
		diffs = append(diffs, "data memory differs from emulator")
	}
	if e.InstructionCount() != c.Stats().Instructions {
		diffs = append(diffs, fmt.Sprintf("retired %d, emulator %d",
			c.Stats().Instructions, e.InstructionCount()))
	}

	return diffs
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== APEX Pipeline Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Halted: %v\n", r.Halted)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		_, _ = fmt.Fprintf(h.config.Output, "  Fetch Bubbles:        %d\n", r.FetchBubbles)
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Time:       %v\n", r.SimulatedTime)

		if len(r.Mismatches) > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Mismatches ---")
			for _, m := range r.Mismatches {
				_, _ = fmt.Fprintf(h.config.Output, "  %s\n", m)
			}
		}

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		}
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,data_hazards,flushes,fetch_bubbles,halted,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%v,%v\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.DataHazards,
			r.PipelineFlushes,
			r.FetchBubbles,
			r.Halted,
			r.Passed(),
		)
	}
}

// BenchmarkReport is the JSON document written by PrintJSON.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata records when and how the benchmarks ran.
type ReportMetadata struct {
	Timestamp string         `json:"timestamp"`
	Machine   *config.Config `json:"machine"`
}

// ReportSummary aggregates the results.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Passed is the number of benchmarks that halted with the expected state
	Passed int `json:"passed"`

	// TotalCycles is the sum of simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of retired instructions
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is TotalCycles / TotalInstructions
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Passed() {
			summary.Passed++
		}
	}
	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Machine:   h.config.Machine,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
