package core_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/loader"
	"github.com/sarchlab/apexsim/timing/config"
	"github.com/sarchlab/apexsim/timing/core"
)

const sumProgram = `
MOVC,R0,#5
MOVC,R1,#10
ADD,R2,R0,R1
HALT
`

var _ = Describe("Core", func() {
	var c *core.Core

	newCore := func(text string, cfg *config.Config) *core.Core {
		program, err := loader.ParseString(text)
		Expect(err).NotTo(HaveOccurred())

		c, err := core.New(program, cfg)
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("should create a core with the default configuration", func() {
		c = newCore(sumProgram, nil)

		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Config().Registers).To(Equal(16))
		Expect(c.Inspect().PC).To(Equal(int32(4000)))
	})

	It("should run until halt", func() {
		c = newCore(sumProgram, nil)

		result, err := c.Run(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeTrue())
		Expect(result.Outcome()).To(Equal(core.OutcomeHalted))
		Expect(result.CyclesExecuted).To(Equal(uint64(8)))
		Expect(result.InstructionsCompleted).To(Equal(uint64(4)))

		snap := c.Inspect()
		Expect(snap.Registers[2]).To(Equal(int32(15)))
		Expect(snap.Flags).To(Equal(emu.Flags{Positive: true}))
		Expect(snap.Cycle).To(Equal(uint64(8)))
	})

	It("should report budget exhaustion as an outcome, not an error", func() {
		c = newCore(sumProgram, nil)

		result, err := c.Run(5)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeFalse())
		Expect(result.Outcome()).To(Equal(core.OutcomeBudgetExhausted))
		Expect(result.CyclesExecuted).To(Equal(uint64(5)))

		result, err = c.Run(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcome()).To(Equal(core.OutcomeHalted))
		Expect(result.CyclesExecuted).To(Equal(uint64(8)))
	})

	It("should use the configured cycle budget", func() {
		cfg := config.DefaultConfig()
		cfg.MaxCycles = 3
		c = newCore(sumProgram, cfg)

		result, err := c.Run(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.CyclesExecuted).To(Equal(uint64(3)))
	})

	It("should return stats", func() {
		c = newCore("MOVC,R0,#0\nBZ,#8\nMOVC,R1,#99\nMOVC,R2,#7\nHALT\n", nil)

		_, err := c.Run(0)
		Expect(err).NotTo(HaveOccurred())

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(10)))
		Expect(stats.Instructions).To(Equal(uint64(4)))
		Expect(stats.Flushes).To(Equal(uint64(1)))
		Expect(stats.FetchBubbles).To(Equal(uint64(1)))
		Expect(stats.CPI()).To(BeNumerically("~", 2.5))
	})

	It("should honor the machine configuration", func() {
		cfg := config.DefaultConfig()
		cfg.BasePC = 0
		cfg.InstructionWidth = 1
		cfg.Registers = 4
		c = newCore("JALR,R3,R0,#2\nMOVC,R1,#1\nMOVC,R2,#2\nHALT\n", cfg)

		_, err := c.Run(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.RegFile().ReadReg(3)).To(Equal(int32(1)))
		Expect(c.RegFile().ReadReg(1)).To(BeZero())
		Expect(c.RegFile().ReadReg(2)).To(Equal(int32(2)))
	})

	It("should fail the run on a register outside the configured file", func() {
		cfg := config.DefaultConfig()
		cfg.Registers = 4
		c = newCore("MOVC,R4,#1\nHALT\n", cfg)

		_, err := c.Run(0)

		Expect(err).To(MatchError(emu.ErrInvalidRegister))
	})

	It("should reject an invalid configuration", func() {
		cfg := config.DefaultConfig()
		cfg.InstructionWidth = 0

		_, err := core.New(nil, cfg)

		Expect(err).To(HaveOccurred())
	})

	It("should convert cycles to simulated time", func() {
		cfg := config.DefaultConfig()
		cfg.ClockMHz = 500
		c = newCore(sumProgram, cfg)

		_, err := c.Run(0)
		Expect(err).NotTo(HaveOccurred())

		Expect(c.SimulatedTime()).To(Equal(16 * time.Nanosecond))
	})

	It("should reset core state", func() {
		c = newCore(sumProgram, nil)
		_, err := c.Run(0)
		Expect(err).NotTo(HaveOccurred())

		c.Reset()

		Expect(c.Halted()).To(BeFalse())
		Expect(c.RegFile().ReadReg(2)).To(BeZero())
		Expect(c.Stats()).To(Equal(core.Stats{}))

		result, err := c.Run(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeTrue())
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should load and run a program file", func() {
			path := filepath.Join(tempDir, "input.asm")
			Expect(os.WriteFile(path, []byte(sumProgram), 0644)).To(Succeed())

			c, err := core.Load(path, nil)
			Expect(err).NotTo(HaveOccurred())

			result, err := c.Run(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeTrue())
		})

		It("should refuse to build a core from a malformed program", func() {
			path := filepath.Join(tempDir, "bad.asm")
			Expect(os.WriteFile(path, []byte("MOVC,R0,#1\nADD,R1\n"), 0644)).To(Succeed())

			_, err := core.Load(path, nil)

			var loadErr *loader.LoadError
			Expect(errors.As(err, &loadErr)).To(BeTrue())
			Expect(loadErr.Line).To(Equal(2))
		})
	})
})
