package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/apexsim/timing/config"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	Describe("DefaultConfig", func() {
		It("should describe the reference machine", func() {
			c := config.DefaultConfig()

			Expect(c.Registers).To(Equal(16))
			Expect(c.DataMemorySize).To(Equal(4096))
			Expect(c.BasePC).To(Equal(int32(4000)))
			Expect(c.InstructionWidth).To(Equal(int32(4)))
			Expect(c.MaxCycles).To(Equal(uint64(5000)))
			Expect(c.Validate()).To(Succeed())
		})

		It("should run at 1 GHz", func() {
			Expect(config.DefaultConfig().ClockFrequency()).To(Equal(1000 * sim.MHz))
		})
	})

	Describe("LoadConfig", func() {
		It("should overlay file values on the defaults", func() {
			path := filepath.Join(tempDir, "config.json")
			Expect(os.WriteFile(path, []byte(`{"registers": 32, "log_level": "debug"}`), 0644)).To(Succeed())

			c, err := config.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Registers).To(Equal(32))
			Expect(c.DataMemorySize).To(Equal(4096))
			Expect(c.NewLogger().GetLevel()).To(Equal(logrus.DebugLevel))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0644)).To(Succeed())

			_, err := config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveConfig", func() {
		It("should round-trip through a file", func() {
			path := filepath.Join(tempDir, "saved.json")
			c := config.DefaultConfig()
			c.BasePC = 0
			c.MaxCycles = 42

			Expect(c.SaveConfig(path)).To(Succeed())
			loaded, err := config.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		})
	})

	Describe("Validate", func() {
		DescribeTable("should reject",
			func(mutate func(*config.Config)) {
				c := config.DefaultConfig()
				mutate(c)
				Expect(c.Validate()).NotTo(Succeed())
			},
			Entry("no registers", func(c *config.Config) { c.Registers = 0 }),
			Entry("too many registers", func(c *config.Config) { c.Registers = 300 }),
			Entry("no data memory", func(c *config.Config) { c.DataMemorySize = 0 }),
			Entry("negative base PC", func(c *config.Config) { c.BasePC = -4 }),
			Entry("zero instruction width", func(c *config.Config) { c.InstructionWidth = 0 }),
			Entry("zero clock", func(c *config.Config) { c.ClockMHz = 0 }),
			Entry("unknown log level", func(c *config.Config) { c.LogLevel = "loud" }),
		)
	})

	Describe("Clone", func() {
		It("should not alias the source config", func() {
			c := config.DefaultConfig()
			clone := c.Clone()
			clone.Registers = 8

			Expect(c.Registers).To(Equal(16))
		})
	})

	Describe("NewLogger", func() {
		It("should fall back to warn", func() {
			c := config.DefaultConfig()
			c.LogLevel = "loud"
			Expect(c.NewLogger().GetLevel()).To(Equal(logrus.WarnLevel))
		})
	})
})
