package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

func movc(rd uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpMOVC, Rd: rd, Imm: imm}
}

func halt() insts.Instruction {
	return insts.Instruction{Op: insts.OpHALT}
}

var _ = Describe("Emulator", func() {
	It("should execute straight-line arithmetic", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 5),
			movc(1, 10),
			{Op: insts.OpADD, Rd: 2, Rs1: 0, Rs2: 1},
			halt(),
		})

		result := e.Run()

		Expect(result.Err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeTrue())
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(15)))
		Expect(e.RegFile().Flags).To(Equal(emu.Flags{Positive: true}))
		Expect(e.InstructionCount()).To(Equal(uint64(4)))
	})

	It("should take a branch on the reset zero flag", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 0),
			{Op: insts.OpBZ, Imm: 8},
			movc(1, 99),
			movc(2, 7),
			halt(),
		})

		Expect(e.Run().Err).NotTo(HaveOccurred())
		Expect(e.RegFile().ReadReg(1)).To(BeZero())
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(7)))
		Expect(e.InstructionCount()).To(Equal(uint64(4)))
	})

	It("should store and load", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 4000),
			{Op: insts.OpSTORE, Rs1: 0, Rs2: 0, Imm: 0},
			{Op: insts.OpLOAD, Rd: 1, Rs1: 0, Imm: 0},
			halt(),
		})

		Expect(e.Run().Err).NotTo(HaveOccurred())
		Expect(e.RegFile().ReadReg(1)).To(Equal(int32(4000)))
		Expect(e.Memory().Read(4000)).To(Equal(int32(4000)))
	})

	It("should post-increment LOADP and STOREP bases", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 100),
			movc(1, 42),
			{Op: insts.OpSTOREP, Rs1: 1, Rs2: 0, Imm: 0},
			movc(2, 100),
			{Op: insts.OpLOADP, Rd: 3, Rs1: 2, Imm: 0},
			halt(),
		})

		Expect(e.Run().Err).NotTo(HaveOccurred())
		Expect(e.RegFile().ReadReg(0)).To(Equal(int32(104)))
		Expect(e.RegFile().ReadReg(2)).To(Equal(int32(104)))
		Expect(e.RegFile().ReadReg(3)).To(Equal(int32(42)))
	})

	It("should link and jump with JALR", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 4012),
			{Op: insts.OpJALR, Rd: 5, Rs1: 0, Imm: 0},
			movc(1, 1),
			halt(),
		})

		Expect(e.Run().Err).NotTo(HaveOccurred())
		Expect(e.RegFile().ReadReg(5)).To(Equal(int32(4008)))
		Expect(e.RegFile().ReadReg(1)).To(BeZero())
	})

	It("should count down a loop", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 3),
			movc(1, 0),
			{Op: insts.OpADDL, Rd: 1, Rs1: 1, Imm: 2},
			{Op: insts.OpSUBL, Rd: 0, Rs1: 0, Imm: 1},
			{Op: insts.OpBNZ, Imm: -8},
			halt(),
		})

		Expect(e.Run().Err).NotTo(HaveOccurred())
		Expect(e.RegFile().ReadReg(1)).To(Equal(int32(6)))
		Expect(e.RegFile().ReadReg(0)).To(BeZero())
	})

	It("should report running off the end of the program", func() {
		e := emu.NewEmulator([]insts.Instruction{movc(0, 1)})
		Expect(e.Run().Err).To(MatchError(emu.ErrInvalidPC))
	})

	It("should report invalid registers", func() {
		e := emu.NewEmulator([]insts.Instruction{movc(20, 1), halt()})
		Expect(e.Run().Err).To(MatchError(emu.ErrInvalidRegister))
	})

	It("should report invalid addresses", func() {
		e := emu.NewEmulator([]insts.Instruction{
			movc(0, 5000),
			{Op: insts.OpLOAD, Rd: 1, Rs1: 0},
			halt(),
		})
		Expect(e.Run().Err).To(MatchError(emu.ErrInvalidAddress))
	})

	It("should report unknown opcodes", func() {
		e := emu.NewEmulator([]insts.Instruction{{Op: insts.OpUnknown}})
		Expect(e.Run().Err).To(MatchError(emu.ErrUnknownOpcode))
	})

	It("should stop at the instruction limit", func() {
		e := emu.NewEmulator(
			[]insts.Instruction{{Op: insts.OpJUMP, Rs1: 0, Imm: 4000}},
			emu.WithMaxInstructions(10),
		)
		result := e.Run()
		Expect(result.Err).To(MatchError(emu.ErrMaxInstructions))
		Expect(e.InstructionCount()).To(Equal(uint64(10)))
	})

	It("should honor a custom base PC", func() {
		e := emu.NewEmulator([]insts.Instruction{movc(0, 1), halt()}, emu.WithBasePC(0))
		Expect(e.PC()).To(BeZero())
		Expect(e.Run().Halted).To(BeTrue())
	})
})
