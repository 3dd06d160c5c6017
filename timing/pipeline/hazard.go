package pipeline

import "github.com/sarchlab/apexsim/emu"

// ForwardSource indicates where a source operand's value comes from.
type ForwardSource int

const (
	// ForwardNone means no in-flight producer matched; use the register
	// file value.
	ForwardNone ForwardSource = iota
	// ForwardFromMemory means forward from the instruction entering Memory.
	ForwardFromMemory
	// ForwardFromWriteback means forward from the instruction entering
	// Writeback.
	ForwardFromWriteback
	// ForwardPending means the newest producer is a load whose value is not
	// known yet. The operand is not ready.
	ForwardPending
)

// String returns the source name.
func (s ForwardSource) String() string {
	switch s {
	case ForwardNone:
		return "RegFile"
	case ForwardFromMemory:
		return "Memory"
	case ForwardFromWriteback:
		return "Writeback"
	case ForwardPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// Forwarded reports whether the value bypassed the register file.
func (s ForwardSource) Forwarded() bool {
	return s == ForwardFromMemory || s == ForwardFromWriteback
}

// Operand is a resolved source operand.
type Operand struct {
	Reg    uint8
	Value  int32
	Source ForwardSource
}

// ForwardingUnit resolves decode's source operands against the in-flight
// instructions. It reads the latches that Execute and Memory produced this
// cycle, so a value computed this cycle is visible to decode in the same
// cycle.
type ForwardingUnit struct {
	regFile *emu.RegFile
}

// NewForwardingUnit creates a forwarding unit reading from regFile.
func NewForwardingUnit(regFile *emu.RegFile) *ForwardingUnit {
	return &ForwardingUnit{regFile: regFile}
}

// Resolve returns the value decode sees for reg. mem is the latch entering
// Memory and wb the latch entering Writeback; the younger producer wins.
//
// A forwarded value clears the register's busy bit.
func (f *ForwardingUnit) Resolve(reg uint8, mem, wb *Latch) Operand {
	if value, pending, ok := f.match(reg, mem, false); ok {
		return f.forward(reg, value, pending, ForwardFromMemory)
	}

	if value, pending, ok := f.match(reg, wb, true); ok {
		return f.forward(reg, value, pending, ForwardFromWriteback)
	}

	return Operand{Reg: reg, Value: f.regFile.ReadReg(reg), Source: ForwardNone}
}

func (f *ForwardingUnit) forward(reg uint8, value int32, pending bool, from ForwardSource) Operand {
	if pending {
		return Operand{Reg: reg, Source: ForwardPending}
	}
	f.regFile.ClearBusy(reg)
	return Operand{Reg: reg, Value: value, Source: from}
}

// match checks a single latch. loadDone is false for the latch entering
// Memory, where a load's value has not been read yet.
func (f *ForwardingUnit) match(reg uint8, l *Latch, loadDone bool) (value int32, pending, ok bool) {
	if l == nil || !l.Valid {
		return 0, false, false
	}

	info := l.Inst.Info()
	switch {
	case info.WritesRd && l.Inst.Rd == reg:
		if info.IsLoad() && !loadDone {
			return 0, true, true
		}
		return l.Result, false, true
	case info.IncrementsRs2 && l.Inst.Rs2 == reg:
		return l.Rs2Value, false, true
	case info.IncrementsRs1 && l.Inst.Rs1 == reg:
		return l.Rs1Value, false, true
	}

	return 0, false, false
}

// Ready reports whether decode may issue with this operand: it was
// forwarded, or it comes from the register file and no producer is
// outstanding.
func (f *ForwardingUnit) Ready(op Operand) bool {
	switch op.Source {
	case ForwardFromMemory, ForwardFromWriteback:
		return true
	case ForwardNone:
		return !f.regFile.IsBusy(op.Reg)
	default:
		return false
	}
}
