// Package insts provides APEX instruction definitions.
//
// This package describes the small APEX register-machine instruction set as a
// closed set of opcodes plus one metadata table that every pipeline stage
// consults. It supports:
//   - Register ALU operations: ADD, SUB, MUL, DIV, AND, OR, XOR
//   - Literal ALU operations: ADDL, SUBL, MOVC
//   - Compares: CMP, CML
//   - Memory: LOAD, STORE and the post-increment forms LOADP, STOREP
//   - Control flow: BZ, BNZ, BP, BNP, BN, BNN, JUMP, JALR
//   - HALT and NOP
//
// Usage:
//
//	inst := insts.Instruction{Op: insts.OpADDL, Rd: 1, Rs1: 2, Imm: 42}
//	info := insts.Info(inst.Op)
//	fmt.Printf("%s writes rd: %v\n", inst, info.WritesRd)
package insts
