package emu

import "github.com/sarchlab/apexsim/insts"

// WordSize is the post-increment step of LOADP and STOREP and the default
// width of one instruction in code memory.
const WordSize = 4

// EffectiveAddress computes the data memory address of a load or store.
// Loads address off rs1, stores off rs2.
func EffectiveAddress(inst insts.Instruction, rs1Value, rs2Value int32) int32 {
	if inst.Info().MemWrite {
		return rs2Value + inst.Imm
	}
	return rs1Value + inst.Imm
}

// PostIncrement returns the updated base register value for LOADP/STOREP.
func PostIncrement(base int32) int32 {
	return base + WordSize
}
