package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

var _ = Describe("ALU", func() {
	DescribeTable("operations",
		func(op insts.Op, a, b, want int32) {
			Expect(emu.ALU(op, a, b)).To(Equal(want))
		},
		Entry("ADD", insts.OpADD, int32(5), int32(10), int32(15)),
		Entry("ADDL", insts.OpADDL, int32(5), int32(-10), int32(-5)),
		Entry("SUB", insts.OpSUB, int32(5), int32(10), int32(-5)),
		Entry("SUBL", insts.OpSUBL, int32(5), int32(5), int32(0)),
		Entry("MUL", insts.OpMUL, int32(-3), int32(7), int32(-21)),
		Entry("DIV", insts.OpDIV, int32(-7), int32(2), int32(-3)),
		Entry("AND", insts.OpAND, int32(0b1100), int32(0b1010), int32(0b1000)),
		Entry("OR", insts.OpOR, int32(0b1100), int32(0b1010), int32(0b1110)),
		Entry("XOR", insts.OpXOR, int32(0b1100), int32(0b1010), int32(0b0110)),
		Entry("CMP", insts.OpCMP, int32(3), int32(3), int32(0)),
		Entry("CML", insts.OpCML, int32(3), int32(4), int32(-1)),
		Entry("wrapping ADD", insts.OpADD, int32(math.MaxInt32), int32(1), int32(math.MinInt32)),
	)

	It("should reject division by zero", func() {
		_, err := emu.ALU(insts.OpDIV, 1, 0)
		Expect(err).To(MatchError(emu.ErrDivideByZero))
	})

	It("should reject non-ALU opcodes", func() {
		_, err := emu.ALU(insts.OpLOAD, 1, 0)
		Expect(err).To(MatchError(emu.ErrUnknownOpcode))
	})

	It("should pick the literal for literal forms", func() {
		Expect(emu.SecondOperand(insts.Instruction{Op: insts.OpADDL, Imm: 9}, 100)).To(Equal(int32(9)))
		Expect(emu.SecondOperand(insts.Instruction{Op: insts.OpCML, Imm: 9}, 100)).To(Equal(int32(9)))
		Expect(emu.SecondOperand(insts.Instruction{Op: insts.OpADD, Imm: 9}, 100)).To(Equal(int32(100)))
	})
})

var _ = Describe("Branch helpers", func() {
	DescribeTable("CondMet",
		func(cond insts.Cond, flags emu.Flags, want bool) {
			Expect(emu.CondMet(cond, flags)).To(Equal(want))
		},
		Entry("BZ taken", insts.CondZero, emu.Flags{Zero: true}, true),
		Entry("BZ not taken", insts.CondZero, emu.Flags{Positive: true}, false),
		Entry("BNZ taken", insts.CondNotZero, emu.Flags{Negative: true}, true),
		Entry("BP taken", insts.CondPositive, emu.Flags{Positive: true}, true),
		Entry("BNP taken", insts.CondNotPositive, emu.Flags{Zero: true}, true),
		Entry("BN taken", insts.CondNegative, emu.Flags{Negative: true}, true),
		Entry("BNN not taken", insts.CondNotNegative, emu.Flags{Negative: true}, false),
		Entry("no condition", insts.CondNone, emu.Flags{Zero: true}, false),
	)

	It("should compute targets", func() {
		Expect(emu.BranchTarget(4004, 8)).To(Equal(int32(4012)))
		Expect(emu.JumpTarget(4000, 12)).To(Equal(int32(4012)))
		Expect(emu.LinkValue(4020, emu.WordSize)).To(Equal(int32(4024)))
	})

	It("should compute load and store addresses", func() {
		load := insts.Instruction{Op: insts.OpLOAD, Imm: 4}
		store := insts.Instruction{Op: insts.OpSTORE, Imm: 4}
		Expect(emu.EffectiveAddress(load, 100, 200)).To(Equal(int32(104)))
		Expect(emu.EffectiveAddress(store, 100, 200)).To(Equal(int32(204)))
		Expect(emu.PostIncrement(100)).To(Equal(int32(104)))
	})
})
