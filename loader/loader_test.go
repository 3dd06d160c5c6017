package loader_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/insts"
	"github.com/sarchlab/apexsim/loader"
)

var _ = Describe("Loader", func() {
	Describe("ParseString", func() {
		It("should parse every format", func() {
			program, err := loader.ParseString(`
MOVC,R0,#5
ADD,R2,R0,R1
ADDL,R3,R2,#-7
LOAD,R4,R0,#8
STORE,R4,R0,#12
LOADP,R5,R6,#0
STOREP,R5,R6,#4
CMP,R1,R2
CML,R1,#3
BNZ,#-8
JUMP,R7,#0
JALR,R8,R7,#4
NOP
HALT
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(program).To(HaveLen(14))

			Expect(program[0]).To(Equal(insts.Instruction{Op: insts.OpMOVC, Mnemonic: "MOVC", Rd: 0, Imm: 5}))
			Expect(program[1]).To(Equal(insts.Instruction{Op: insts.OpADD, Mnemonic: "ADD", Rd: 2, Rs1: 0, Rs2: 1}))
			Expect(program[2].Imm).To(Equal(int32(-7)))
			Expect(program[4]).To(Equal(insts.Instruction{Op: insts.OpSTORE, Mnemonic: "STORE", Rs1: 4, Rs2: 0, Imm: 12}))
			Expect(program[6].Rs2).To(Equal(uint8(6)))
			Expect(program[7]).To(Equal(insts.Instruction{Op: insts.OpCMP, Mnemonic: "CMP", Rs1: 1, Rs2: 2}))
			Expect(program[9].Imm).To(Equal(int32(-8)))
			Expect(program[10]).To(Equal(insts.Instruction{Op: insts.OpJUMP, Mnemonic: "JUMP", Rs1: 7}))
			Expect(program[11]).To(Equal(insts.Instruction{Op: insts.OpJALR, Mnemonic: "JALR", Rd: 8, Rs1: 7, Imm: 4}))
			Expect(program[13].Op).To(Equal(insts.OpHALT))
		})

		It("should accept whitespace separators and comments", func() {
			program, err := loader.ParseString("  add r2, r0, r1   ; sum\n\n// nothing here\nHALT // stop\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(program).To(HaveLen(2))
			Expect(program[0].Op).To(Equal(insts.OpADD))
			Expect(program[0].Mnemonic).To(Equal("add"))
			Expect(program[0].Rd).To(Equal(uint8(2)))
		})

		It("should round-trip through String", func() {
			text := "STOREP,R3,R5,#8"
			program, err := loader.ParseString(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(program[0].String()).To(Equal(text))
		})

		It("should return an empty program for empty input", func() {
			program, err := loader.ParseString("\n\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(program).To(BeEmpty())
		})

		DescribeTable("should reject malformed lines",
			func(text string, want error) {
				_, err := loader.ParseString("MOVC,R0,#1\n" + text)
				Expect(err).To(MatchError(want))

				var loadErr *loader.LoadError
				Expect(errors.As(err, &loadErr)).To(BeTrue())
				Expect(loadErr.Line).To(Equal(2))
			},
			Entry("unknown opcode", "FOO,R1,R2", loader.ErrUnknownOpcode),
			Entry("missing operand", "ADD,R1,R2", loader.ErrOperand),
			Entry("extra operand", "HALT,R1", loader.ErrOperand),
			Entry("literal for register", "ADD,R1,R2,#3", loader.ErrOperand),
			Entry("register for literal", "MOVC,R1,R2", loader.ErrOperand),
			Entry("bad register number", "MOVC,Rx,#1", loader.ErrOperand),
			Entry("register too large", "MOVC,R300,#1", loader.ErrOperand),
			Entry("bad literal", "MOVC,R1,#abc", loader.ErrOperand),
		)
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should load a program file", func() {
			path := filepath.Join(tempDir, "input.asm")
			Expect(os.WriteFile(path, []byte("MOVC,R0,#5\nHALT\n"), 0o644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Path).To(Equal(path))
			Expect(prog.Instructions).To(HaveLen(2))
		})

		It("should return error for non-existent file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.asm"))
			Expect(err).To(HaveOccurred())
		})

		It("should name the file in parse errors", func() {
			path := filepath.Join(tempDir, "bad.asm")
			Expect(os.WriteFile(path, []byte("BOGUS\n"), 0o644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(err).To(MatchError(loader.ErrUnknownOpcode))
			Expect(err.Error()).To(ContainSubstring("bad.asm"))
		})
	})
})
