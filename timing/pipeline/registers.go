// Package pipeline provides the 5-stage APEX pipeline for cycle-accurate
// timing simulation.
package pipeline

import "github.com/sarchlab/apexsim/insts"

// Stage identifies one of the five pipeline stages.
type Stage int

const (
	// StageFetch reads the next instruction from code memory.
	StageFetch Stage = iota
	// StageDecode reads operands and issues.
	StageDecode
	// StageExecute computes results, addresses and branch outcomes.
	StageExecute
	// StageMemory accesses data memory.
	StageMemory
	// StageWriteback commits results to the register file.
	StageWriteback

	// NumStages is the pipeline depth.
	NumStages
)

var stageNames = [NumStages]string{
	StageFetch:     "Fetch",
	StageDecode:    "Decode/RF",
	StageExecute:   "Execute",
	StageMemory:    "Memory",
	StageWriteback: "Writeback",
}

// String returns the stage name used in traces.
func (s Stage) String() string {
	if s < 0 || s >= NumStages {
		return "Unknown"
	}
	return stageNames[s]
}

// Latch holds the instruction occupying one stage between cycles.
// Advancing an instruction copies the whole latch, so values computed by
// earlier stages (the operand values in particular) travel with it.
type Latch struct {
	// Valid indicates if this latch holds an instruction.
	Valid bool

	// PC is the address the instruction was fetched from.
	PC int32

	// Inst is the instruction.
	Inst insts.Instruction

	// Operand values read in decode. For LOADP and STOREP, execute replaces
	// the base operand with its incremented value.
	Rs1Value int32
	Rs2Value int32

	// Result is the ALU result, link value or loaded word.
	Result int32

	// MemAddr is the effective data memory address of loads and stores.
	MemAddr int32
}

// Clear resets the latch to the empty state.
func (l *Latch) Clear() {
	*l = Latch{}
}
