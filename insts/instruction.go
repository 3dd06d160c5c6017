package insts

import "fmt"

// Instruction represents a decoded APEX instruction. It is produced by the
// loader and never modified afterwards.
type Instruction struct {
	Op       Op     // Operation code
	Mnemonic string // Opcode text as written in the program

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	Imm int32 // Signed literal
}

// Info returns the opcode table entry for the instruction.
func (i Instruction) Info() OpInfo {
	return Info(i.Op)
}

// Sources returns the registers that must be ready before the instruction
// can issue.
func (i Instruction) Sources() []uint8 {
	info := i.Info()
	var regs []uint8
	if info.ReadsRs1 {
		regs = append(regs, i.Rs1)
	}
	if info.ReadsRs2 {
		regs = append(regs, i.Rs2)
	}
	return regs
}

// Dests returns every register the instruction writes back. LOADP returns
// both rd and the incremented base.
func (i Instruction) Dests() []uint8 {
	info := i.Info()
	var regs []uint8
	if info.WritesRd {
		regs = append(regs, i.Rd)
	}
	if info.IncrementsRs1 {
		regs = append(regs, i.Rs1)
	}
	if info.IncrementsRs2 {
		regs = append(regs, i.Rs2)
	}
	return regs
}

// WritesReg reports whether reg is one of the instruction's destinations.
func (i Instruction) WritesReg(reg uint8) bool {
	for _, d := range i.Dests() {
		if d == reg {
			return true
		}
	}
	return false
}

// String formats the instruction the way it appears in program text,
// e.g. "ADDL,R1,R2,#42".
func (i Instruction) String() string {
	name := i.Mnemonic
	if name == "" {
		name = i.Op.String()
	}

	switch i.Info().Format {
	case FormatRegReg:
		return fmt.Sprintf("%s,R%d,R%d,R%d", name, i.Rd, i.Rs1, i.Rs2)
	case FormatRegImm:
		return fmt.Sprintf("%s,R%d,R%d,#%d", name, i.Rd, i.Rs1, i.Imm)
	case FormatMove:
		return fmt.Sprintf("%s,R%d,#%d", name, i.Rd, i.Imm)
	case FormatStore:
		return fmt.Sprintf("%s,R%d,R%d,#%d", name, i.Rs1, i.Rs2, i.Imm)
	case FormatCompare:
		return fmt.Sprintf("%s,R%d,R%d", name, i.Rs1, i.Rs2)
	case FormatCompareI:
		return fmt.Sprintf("%s,R%d,#%d", name, i.Rs1, i.Imm)
	case FormatBranch:
		return fmt.Sprintf("%s,#%d", name, i.Imm)
	case FormatJump:
		return fmt.Sprintf("%s,R%d,#%d", name, i.Rs1, i.Imm)
	default:
		return name
	}
}
