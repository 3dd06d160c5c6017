package benchmarks

import (
	"fmt"
	"strings"

	"github.com/sarchlab/apexsim/emu"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific pipeline characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		loadUse(),
		functionCalls(),
		branchTaken(),
		postIncrement(),
		mixedOperations(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, load-use stalls and post-increment copying.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		branchTaken(),
		loadUse(),
		postIncrement(),
	}
}

// 1. Arithmetic Sequential - independent operations, no stalls after setup
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "independent ALU operations - measures issue throughput",
		Source: `
MOVC,R0,#10
MOVC,R1,#1
MOVC,R2,#2
MOVC,R3,#3
ADDL,R4,R0,#1
ADDL,R5,R0,#2
ADDL,R6,R0,#3
ADDL,R7,R0,#4
ADD,R8,R1,R2
ADDL,R9,R3,#4
HALT
`,
		Expected: map[uint8]int32{4: 11, 5: 12, 6: 13, 7: 14, 8: 3, 9: 7},
	}
}

// 2. Dependency Chain - every instruction consumes the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDL operations - measures forwarding",
		Source:      buildDependencyChain(20),
		Expected:    map[uint8]int32{0: 20},
	}
}

func buildDependencyChain(n int) string {
	var b strings.Builder
	b.WriteString("MOVC,R0,#0\n")
	for range n {
		b.WriteString("ADDL,R0,R0,#1\n")
	}
	b.WriteString("HALT\n")
	return b.String()
}

// 3. Load Use - each load is consumed by the next instruction
func loadUse() Benchmark {
	var b strings.Builder
	b.WriteString("MOVC,R0,#0\nMOVC,R2,#0\n")
	for i := range 8 {
		_, _ = fmt.Fprintf(&b, "LOAD,R1,R0,#%d\nADD,R2,R2,R1\n", i)
	}
	b.WriteString("HALT\n")

	return Benchmark{
		Name:        "load_use",
		Description: "8 loads each followed by a dependent ADD - measures load-use stalls",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			for i := range int32(8) {
				_ = memory.Write(i, i+1)
			}
		},
		Source:   b.String(),
		Expected: map[uint8]int32{1: 8, 2: 36},
	}
}

// 4. Function Calls - JALR into a subroutine that returns with JUMP
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "3 JALR calls and JUMP returns - measures redirect cost",
		Source: `
MOVC,R0,#0
JALR,R6,R7,#4020
JALR,R6,R7,#4020
JALR,R6,R7,#4020
HALT
ADDL,R0,R0,#5
JUMP,R6,#0
`,
		Expected: map[uint8]int32{0: 15, 6: 4016},
	}
}

// 5. Branch Taken - a counted loop closed by BNZ
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "10-iteration loop - measures taken-branch flushes",
		Source: `
MOVC,R0,#10
MOVC,R1,#0
ADDL,R1,R1,#3
SUBL,R0,R0,#1
BNZ,#-8
HALT
`,
		Expected: map[uint8]int32{0: 0, 1: 30},
	}
}

// 6. Post Increment - LOADP/STOREP array copy with a running sum
func postIncrement() Benchmark {
	return Benchmark{
		Name:        "post_increment",
		Description: "copy 4 words with LOADP/STOREP - measures dual writeback",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			for i := range int32(4) {
				_ = memory.Write(100+4*i, i+1)
			}
		},
		Source: `
MOVC,R0,#100
MOVC,R1,#200
MOVC,R2,#4
MOVC,R3,#0
LOADP,R4,R0,#0
ADD,R3,R3,R4
STOREP,R4,R1,#0
SUBL,R2,R2,#1
BNZ,#-16
HALT
`,
		Expected: map[uint8]int32{0: 116, 1: 216, 2: 0, 3: 10, 4: 4},
	}
}

// 7. Mixed Operations - every ALU opcode plus compares and branches
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "mix of ALU, compare and branch operations",
		Source: `
MOVC,R0,#12
MOVC,R1,#5
MUL,R2,R0,R1
DIV,R3,R2,R1
AND,R4,R0,R1
OR,R5,R0,R1
XOR,R6,R0,R1
SUB,R7,R3,R0
CMP,R2,R3
BP,#8
MOVC,R8,#99
CML,R7,#0
BNZ,#8
MOVC,R9,#2
HALT
`,
		Expected: map[uint8]int32{2: 60, 3: 12, 4: 4, 5: 13, 6: 9, 7: 0, 8: 0, 9: 2},
	}
}
