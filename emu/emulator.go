package emu

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// DefaultBasePC is the address of the first instruction in code memory.
const DefaultBasePC = 4000

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true once HALT has executed.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes APEX instructions functionally, one at a time, with no
// pipeline. It defines the architectural result every pipelined run must
// reproduce.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	program []insts.Instruction

	basePC int32
	width  int32
	pc     int32

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	halted           bool
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithRegFile sets the register file the emulator executes against.
func WithRegFile(regFile *RegFile) EmulatorOption {
	return func(e *Emulator) {
		e.regFile = regFile
	}
}

// WithMemory sets the data memory the emulator executes against.
func WithMemory(memory *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = memory
	}
}

// WithBasePC sets the address of the first instruction.
func WithBasePC(pc int32) EmulatorOption {
	return func(e *Emulator) {
		e.basePC = pc
	}
}

// WithInstructionWidth sets the code memory distance between consecutive
// instructions.
func WithInstructionWidth(width int32) EmulatorOption {
	return func(e *Emulator) {
		e.width = width
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new emulator for program.
func NewEmulator(program []insts.Instruction, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		program: program,
		basePC:  DefaultBasePC,
		width:   WordSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.regFile == nil {
		e.regFile = NewRegFile(DefaultNumRegs)
	}
	if e.memory == nil {
		e.memory = NewMemory(DefaultMemorySize)
	}
	if e.width <= 0 {
		e.width = WordSize
	}
	e.pc = e.basePC

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's data memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// PC returns the address of the next instruction.
func (e *Emulator) PC() int32 {
	return e.pc
}

// Halted returns true once HALT has executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// InstructionCount returns the number of instructions executed, HALT
// included.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	idx := (e.pc - e.basePC) / e.width
	if e.pc < e.basePC || (e.pc-e.basePC)%e.width != 0 || int(idx) >= len(e.program) {
		return StepResult{Err: fmt.Errorf("%w: pc %d", ErrInvalidPC, e.pc)}
	}
	inst := e.program[idx]

	if err := e.execute(inst); err != nil {
		return StepResult{Err: fmt.Errorf("pc %d (%s): %w", e.pc, inst, err)}
	}

	e.instructionCount++

	return StepResult{Halted: e.halted}
}

// Run executes instructions until HALT or an error.
func (e *Emulator) Run() StepResult {
	for {
		result := e.Step()
		if result.Halted || result.Err != nil {
			return result
		}
	}
}

func (e *Emulator) checkRegs(inst insts.Instruction) error {
	for _, r := range append(inst.Sources(), inst.Dests()...) {
		if err := e.regFile.Check(r); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one instruction and advances the PC.
func (e *Emulator) execute(inst insts.Instruction) error {
	info := inst.Info()
	if !inst.Op.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, inst.Op)
	}
	if err := e.checkRegs(inst); err != nil {
		return err
	}

	rs1 := e.regFile.ReadReg(inst.Rs1)
	rs2 := e.regFile.ReadReg(inst.Rs2)
	nextPC := e.pc + e.width

	switch {
	case info.IsHalt:
		e.halted = true

	case info.SetsFlags:
		result, err := ALU(inst.Op, rs1, SecondOperand(inst, rs2))
		if err != nil {
			return err
		}
		e.regFile.SetFlagsFrom(result)
		if info.WritesRd {
			e.regFile.WriteReg(inst.Rd, result)
		}

	case inst.Op == insts.OpMOVC:
		e.regFile.WriteReg(inst.Rd, inst.Imm)

	case info.MemRead:
		value, err := e.memory.Read(EffectiveAddress(inst, rs1, rs2))
		if err != nil {
			return err
		}
		if info.IncrementsRs1 {
			e.regFile.WriteReg(inst.Rs1, PostIncrement(rs1))
		}
		e.regFile.WriteReg(inst.Rd, value)

	case info.MemWrite:
		if err := e.memory.Write(EffectiveAddress(inst, rs1, rs2), rs1); err != nil {
			return err
		}
		if info.IncrementsRs2 {
			e.regFile.WriteReg(inst.Rs2, PostIncrement(rs2))
		}

	case info.IsJump:
		if info.WritesRd {
			e.regFile.WriteReg(inst.Rd, LinkValue(e.pc, e.width))
		}
		nextPC = JumpTarget(rs1, inst.Imm)

	case info.IsBranch:
		if CondMet(info.Cond, e.regFile.Flags) {
			nextPC = BranchTarget(e.pc, inst.Imm)
		}
	}

	e.pc = nextPC
	return nil
}
