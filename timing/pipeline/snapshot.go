package pipeline

import "github.com/sarchlab/apexsim/emu"

// Snapshot is a copy of the pipeline's architectural and in-flight state at
// a cycle boundary.
type Snapshot struct {
	Cycle     uint64
	Completed uint64
	PC        int32

	Registers []int32
	Busy      []bool
	Flags     emu.Flags

	// DataMemory holds the non-zero words of data memory keyed by address.
	DataMemory map[int32]int32

	Latches [NumStages]Latch

	Control      ControlState
	FetchEnabled bool
	Halted       bool
}

// Snapshot captures the current state. The result does not alias the
// pipeline.
func (p *Pipeline) Snapshot() Snapshot {
	rf := p.regFile.Clone()

	s := Snapshot{
		Cycle:        p.stats.Cycles,
		Completed:    p.stats.Instructions,
		PC:           p.pc,
		Registers:    rf.R,
		Busy:         rf.Busy,
		Flags:        rf.Flags,
		DataMemory:   p.dataMem.NonZero(),
		Control:      p.control.State(),
		FetchEnabled: p.control.FetchEnabled(),
		Halted:       p.halted,
	}

	for st := StageFetch; st < NumStages; st++ {
		s.Latches[st] = *p.StageLatch(st)
	}

	return s
}
