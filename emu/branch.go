package emu

import "github.com/sarchlab/apexsim/insts"

// CondMet evaluates a branch condition against the flags.
func CondMet(cond insts.Cond, f Flags) bool {
	switch cond {
	case insts.CondZero:
		return f.Zero
	case insts.CondNotZero:
		return !f.Zero
	case insts.CondPositive:
		return f.Positive
	case insts.CondNotPositive:
		return !f.Positive
	case insts.CondNegative:
		return f.Negative
	case insts.CondNotNegative:
		return !f.Negative
	default:
		return false
	}
}

// BranchTarget returns the target of a PC-relative branch at pc.
func BranchTarget(pc, imm int32) int32 {
	return pc + imm
}

// JumpTarget returns the target of JUMP or JALR.
func JumpTarget(rs1Value, imm int32) int32 {
	return rs1Value + imm
}

// LinkValue returns the return address JALR writes to rd: the address of
// the instruction after pc.
func LinkValue(pc, width int32) int32 {
	return pc + width
}
