package emu

import (
	"fmt"

	"github.com/sarchlab/apexsim/insts"
)

// ALU computes the result of an arithmetic, logic or compare opcode.
// op2 is rs2's value for register forms and the literal for ADDL, SUBL and
// CML. CMP and CML return the difference that their flags are taken from.
func ALU(op insts.Op, op1, op2 int32) (int32, error) {
	switch op {
	case insts.OpADD, insts.OpADDL:
		return op1 + op2, nil
	case insts.OpSUB, insts.OpSUBL, insts.OpCMP, insts.OpCML:
		return op1 - op2, nil
	case insts.OpMUL:
		return op1 * op2, nil
	case insts.OpDIV:
		if op2 == 0 {
			return 0, ErrDivideByZero
		}
		return op1 / op2, nil
	case insts.OpAND:
		return op1 & op2, nil
	case insts.OpOR:
		return op1 | op2, nil
	case insts.OpXOR:
		return op1 ^ op2, nil
	default:
		return 0, fmt.Errorf("%w: %s is not an ALU operation", ErrUnknownOpcode, op)
	}
}

// SecondOperand picks the ALU's second input for an instruction: the
// literal for literal forms, rs2's value otherwise.
func SecondOperand(inst insts.Instruction, rs2Value int32) int32 {
	switch inst.Info().Format {
	case insts.FormatRegImm, insts.FormatCompareI:
		return inst.Imm
	default:
		return rs2Value
	}
}
