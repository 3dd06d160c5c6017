// Package emu provides APEX architectural state and functional emulation.
package emu

import "fmt"

// DefaultNumRegs is the size of the APEX general register file.
const DefaultNumRegs = 16

// Flags holds the condition flags written by arithmetic and compare
// instructions.
type Flags struct {
	// Zero is set when the last result was 0.
	Zero bool
	// Positive is set when the last result was > 0.
	Positive bool
	// Negative is set when the last result was < 0.
	Negative bool
}

// ResetFlags returns the flags of a freshly reset machine. The register file
// starts at zero, so Z is set.
func ResetFlags() Flags {
	return Flags{Zero: true}
}

// FlagsFor computes the flags for a result.
func FlagsFor(result int32) Flags {
	return Flags{
		Zero:     result == 0,
		Positive: result > 0,
		Negative: result < 0,
	}
}

// String formats the flags like "P->[1], Z->[0], N->[0]".
func (f Flags) String() string {
	return fmt.Sprintf("P->[%d], Z->[%d], N->[%d]", b2i(f.Positive), b2i(f.Zero), b2i(f.Negative))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RegFile represents the APEX register file.
// It contains the general-purpose registers, one busy bit per register and
// the condition flags.
type RegFile struct {
	// R holds the general-purpose registers.
	R []int32

	// Busy marks registers whose pending producer has not yet made its
	// value available to decode.
	Busy []bool

	// Flags holds the condition flags.
	Flags Flags
}

// NewRegFile creates a register file with n registers in the reset state.
func NewRegFile(n int) *RegFile {
	if n <= 0 {
		n = DefaultNumRegs
	}
	return &RegFile{
		R:     make([]int32, n),
		Busy:  make([]bool, n),
		Flags: ResetFlags(),
	}
}

// NumRegs returns the number of general-purpose registers.
func (r *RegFile) NumRegs() int {
	return len(r.R)
}

// Valid reports whether reg names a register in this file.
func (r *RegFile) Valid(reg uint8) bool {
	return int(reg) < len(r.R)
}

// Check returns ErrInvalidRegister if reg is out of range.
func (r *RegFile) Check(reg uint8) error {
	if !r.Valid(reg) {
		return fmt.Errorf("%w: R%d (register file has %d registers)",
			ErrInvalidRegister, reg, len(r.R))
	}
	return nil
}

// ReadReg reads a register value. Out-of-range registers read as 0; callers
// validate indices with Check before an instruction issues.
func (r *RegFile) ReadReg(reg uint8) int32 {
	if !r.Valid(reg) {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Out-of-range writes are ignored.
func (r *RegFile) WriteReg(reg uint8, value int32) {
	if !r.Valid(reg) {
		return
	}
	r.R[reg] = value
}

// IsBusy reports whether reg has a pending producer.
func (r *RegFile) IsBusy(reg uint8) bool {
	if !r.Valid(reg) {
		return false
	}
	return r.Busy[reg]
}

// SetBusy marks reg as having a pending producer.
func (r *RegFile) SetBusy(reg uint8) {
	if r.Valid(reg) {
		r.Busy[reg] = true
	}
}

// ClearBusy marks reg as safe to read.
func (r *RegFile) ClearBusy(reg uint8) {
	if r.Valid(reg) {
		r.Busy[reg] = false
	}
}

// SetFlagsFrom updates the flags from a result.
func (r *RegFile) SetFlagsFrom(result int32) {
	r.Flags = FlagsFor(result)
}

// Reset zeroes every register and busy bit and restores the reset flags.
func (r *RegFile) Reset() {
	for i := range r.R {
		r.R[i] = 0
		r.Busy[i] = false
	}
	r.Flags = ResetFlags()
}

// Clone returns a deep copy of the register file.
func (r *RegFile) Clone() *RegFile {
	c := &RegFile{
		R:     make([]int32, len(r.R)),
		Busy:  make([]bool, len(r.Busy)),
		Flags: r.Flags,
	}
	copy(c.R, r.R)
	copy(c.Busy, r.Busy)
	return c
}
