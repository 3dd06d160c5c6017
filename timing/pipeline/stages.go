package pipeline

import (
	"fmt"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// FetchStage reads instructions from code memory.
type FetchStage struct {
	program []insts.Instruction
	basePC  int32
	width   int32
}

// NewFetchStage creates a fetch stage over program, which starts at basePC
// with one instruction every width addresses.
func NewFetchStage(program []insts.Instruction, basePC, width int32) *FetchStage {
	return &FetchStage{
		program: program,
		basePC:  basePC,
		width:   width,
	}
}

// Fetch returns the instruction at pc. It returns false if pc does not
// address an instruction.
func (s *FetchStage) Fetch(pc int32) (insts.Instruction, bool) {
	offset := pc - s.basePC
	if offset < 0 || offset%s.width != 0 {
		return insts.Instruction{}, false
	}

	idx := offset / s.width
	if int(idx) >= len(s.program) {
		return insts.Instruction{}, false
	}

	return s.program[idx], true
}

// DecodeStage validates the instruction, reads its operands and issues it
// when they are ready.
type DecodeStage struct {
	regFile    *emu.RegFile
	forwarding *ForwardingUnit
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile, forwarding *ForwardingUnit) *DecodeStage {
	return &DecodeStage{
		regFile:    regFile,
		forwarding: forwarding,
	}
}

// DecodeResult holds the result of the decode stage.
type DecodeResult struct {
	// Issued is true if the instruction moves to execute this cycle.
	Issued bool

	// Latch is the execute latch of an issued instruction.
	Latch Latch

	// Operands lists the resolved sources in Rs1, Rs2 order.
	Operands []Operand
}

// Forwarded returns how many operands bypassed the register file.
func (r DecodeResult) Forwarded() int {
	n := 0
	for _, op := range r.Operands {
		if op.Source.Forwarded() {
			n++
		}
	}
	return n
}

// Decode processes the instruction in the decode latch. mem and wb are the
// latches entering Memory and Writeback this cycle.
func (s *DecodeStage) Decode(d *Latch, mem, wb *Latch) (DecodeResult, error) {
	inst := d.Inst
	info := inst.Info()

	if !inst.Op.Valid() {
		return DecodeResult{}, fmt.Errorf("%w: %d", emu.ErrUnknownOpcode, inst.Op)
	}
	for _, r := range append(inst.Sources(), inst.Dests()...) {
		if err := s.regFile.Check(r); err != nil {
			return DecodeResult{}, err
		}
	}

	out := *d
	result := DecodeResult{}
	ready := true

	if info.ReadsRs1 {
		op := s.forwarding.Resolve(inst.Rs1, mem, wb)
		out.Rs1Value = op.Value
		ready = s.forwarding.Ready(op) && ready
		result.Operands = append(result.Operands, op)
	}
	if info.ReadsRs2 {
		op := s.forwarding.Resolve(inst.Rs2, mem, wb)
		out.Rs2Value = op.Value
		ready = s.forwarding.Ready(op) && ready
		result.Operands = append(result.Operands, op)
	}

	if !ready {
		return result, nil
	}

	for _, r := range inst.Dests() {
		s.regFile.SetBusy(r)
	}

	result.Issued = true
	result.Latch = out

	return result, nil
}

// ExecuteStage computes results, effective addresses and branch outcomes.
type ExecuteStage struct {
	regFile *emu.RegFile
	width   int32
}

// NewExecuteStage creates a new execute stage. width is the instruction
// width used for JALR's link value.
func NewExecuteStage(regFile *emu.RegFile, width int32) *ExecuteStage {
	return &ExecuteStage{
		regFile: regFile,
		width:   width,
	}
}

// ExecuteResult holds the result of the execute stage.
type ExecuteResult struct {
	// Latch is the memory latch.
	Latch Latch

	// Redirect is set for JUMP, JALR and taken branches.
	Redirect bool
	Target   int32
}

// Execute performs the operation of the instruction in l. Flags are
// updated in place so a branch in the next cycle sees them.
func (s *ExecuteStage) Execute(l *Latch) (ExecuteResult, error) {
	out := *l
	inst := l.Inst
	info := inst.Info()
	result := ExecuteResult{}

	switch {
	case info.SetsFlags:
		value, err := emu.ALU(inst.Op, l.Rs1Value, emu.SecondOperand(inst, l.Rs2Value))
		if err != nil {
			return result, err
		}
		s.regFile.SetFlagsFrom(value)
		if info.WritesRd {
			out.Result = value
		}

	case inst.Op == insts.OpMOVC:
		out.Result = inst.Imm

	case info.MemRead || info.MemWrite:
		out.MemAddr = emu.EffectiveAddress(inst, l.Rs1Value, l.Rs2Value)
		if info.IncrementsRs1 {
			out.Rs1Value = emu.PostIncrement(l.Rs1Value)
		}
		if info.IncrementsRs2 {
			out.Rs2Value = emu.PostIncrement(l.Rs2Value)
		}

	case info.IsJump:
		if info.WritesRd {
			out.Result = emu.LinkValue(l.PC, s.width)
		}
		result.Redirect = true
		result.Target = emu.JumpTarget(l.Rs1Value, inst.Imm)

	case info.IsBranch:
		if emu.CondMet(info.Cond, s.regFile.Flags) {
			result.Redirect = true
			result.Target = emu.BranchTarget(l.PC, inst.Imm)
		}
	}

	result.Latch = out

	return result, nil
}

// MemoryStage handles data memory loads and stores.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{
		memory: memory,
	}
}

// Access performs the memory operation of the instruction in l and returns
// the writeback latch.
func (s *MemoryStage) Access(l *Latch) (Latch, error) {
	out := *l
	info := l.Inst.Info()

	if info.MemRead {
		value, err := s.memory.Read(l.MemAddr)
		if err != nil {
			return Latch{}, err
		}
		out.Result = value
	} else if info.MemWrite {
		if err := s.memory.Write(l.MemAddr, l.Rs1Value); err != nil {
			return Latch{}, err
		}
	}

	return out, nil
}

// WritebackStage commits results to the register file.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{
		regFile: regFile,
	}
}

// Writeback commits every destination of the instruction in l. A busy bit
// stays set if one of the younger in-flight instructions also writes the
// register. It returns true if the instruction is HALT.
func (s *WritebackStage) Writeback(l *Latch, younger ...*Latch) bool {
	inst := l.Inst
	info := inst.Info()

	// The base goes first so a LOADP with rd == rs1 keeps the loaded value.
	if info.IncrementsRs1 {
		s.commit(inst.Rs1, l.Rs1Value, younger)
	}
	if info.IncrementsRs2 {
		s.commit(inst.Rs2, l.Rs2Value, younger)
	}
	if info.WritesRd {
		s.commit(inst.Rd, l.Result, younger)
	}

	return info.IsHalt
}

func (s *WritebackStage) commit(reg uint8, value int32, younger []*Latch) {
	s.regFile.WriteReg(reg, value)

	for _, y := range younger {
		if y != nil && y.Valid && y.Inst.WritesReg(reg) {
			return
		}
	}
	s.regFile.ClearBusy(reg)
}
