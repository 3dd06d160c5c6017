package insts

// OpInfo describes how an opcode uses the pipeline. Every stage dispatches
// on the same table instead of carrying its own per-opcode switch.
type OpInfo struct {
	Format Format

	// Source operands that must be ready before the instruction can issue.
	ReadsRs1 bool
	ReadsRs2 bool

	// WritesRd is set when the instruction produces a result for rd.
	WritesRd bool

	// Post-increment base registers. The incremented value is carried in the
	// latch's Rs1Value (LOADP) or Rs2Value (STOREP) and committed at writeback.
	IncrementsRs1 bool
	IncrementsRs2 bool

	// SetsFlags is set for every instruction that updates Z/P/N in execute.
	SetsFlags bool

	MemRead  bool
	MemWrite bool

	// Control flow.
	IsBranch bool // conditional, PC-relative
	IsJump   bool // JUMP and JALR, register-relative
	Cond     Cond

	IsHalt bool
}

var opTable = [numOps]OpInfo{
	OpUnknown: {},

	OpADD: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpSUB: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpMUL: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpDIV: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpAND: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpOR:  {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},
	OpXOR: {Format: FormatRegReg, ReadsRs1: true, ReadsRs2: true, WritesRd: true, SetsFlags: true},

	OpADDL: {Format: FormatRegImm, ReadsRs1: true, WritesRd: true, SetsFlags: true},
	OpSUBL: {Format: FormatRegImm, ReadsRs1: true, WritesRd: true, SetsFlags: true},
	OpMOVC: {Format: FormatMove, WritesRd: true},

	OpLOAD:   {Format: FormatRegImm, ReadsRs1: true, WritesRd: true, MemRead: true},
	OpSTORE:  {Format: FormatStore, ReadsRs1: true, ReadsRs2: true, MemWrite: true},
	OpLOADP:  {Format: FormatRegImm, ReadsRs1: true, WritesRd: true, IncrementsRs1: true, MemRead: true},
	OpSTOREP: {Format: FormatStore, ReadsRs1: true, ReadsRs2: true, IncrementsRs2: true, MemWrite: true},

	OpCMP: {Format: FormatCompare, ReadsRs1: true, ReadsRs2: true, SetsFlags: true},
	OpCML: {Format: FormatCompareI, ReadsRs1: true, SetsFlags: true},

	OpBZ:  {Format: FormatBranch, IsBranch: true, Cond: CondZero},
	OpBNZ: {Format: FormatBranch, IsBranch: true, Cond: CondNotZero},
	OpBP:  {Format: FormatBranch, IsBranch: true, Cond: CondPositive},
	OpBNP: {Format: FormatBranch, IsBranch: true, Cond: CondNotPositive},
	OpBN:  {Format: FormatBranch, IsBranch: true, Cond: CondNegative},
	OpBNN: {Format: FormatBranch, IsBranch: true, Cond: CondNotNegative},

	OpJUMP: {Format: FormatJump, ReadsRs1: true, IsJump: true},
	OpJALR: {Format: FormatRegImm, ReadsRs1: true, WritesRd: true, IsJump: true},

	OpHALT: {Format: FormatNone, IsHalt: true},
	OpNOP:  {Format: FormatNone},
}

// Info returns the table entry for an opcode. Unknown opcodes return the
// zero OpInfo.
func Info(op Op) OpInfo {
	if op >= numOps {
		return OpInfo{}
	}
	return opTable[op]
}

// IsLoad reports whether the opcode reads data memory into rd. Loads only
// know their rd value after the memory stage.
func (i OpInfo) IsLoad() bool {
	return i.MemRead
}

// IsControl reports whether the opcode can redirect the program counter.
func (i OpInfo) IsControl() bool {
	return i.IsBranch || i.IsJump
}
