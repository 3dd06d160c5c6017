package insts

import "strings"

// Op represents an APEX opcode.
type Op uint8

// APEX opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpAND
	OpOR
	OpXOR
	OpADDL
	OpSUBL
	OpMOVC
	OpLOAD
	OpSTORE
	OpLOADP
	OpSTOREP
	OpCMP
	OpCML
	OpBZ
	OpBNZ
	OpBP
	OpBNP
	OpBN
	OpBNN
	OpJUMP
	OpJALR
	OpHALT
	OpNOP

	numOps
)

// Format represents the operand layout of an instruction in program text.
type Format uint8

// Instruction formats.
const (
	FormatNone     Format = iota // HALT, NOP
	FormatRegReg                 // rd, rs1, rs2
	FormatRegImm                 // rd, rs1, #imm
	FormatMove                   // rd, #imm
	FormatStore                  // rs1, rs2, #imm
	FormatCompare                // rs1, rs2
	FormatCompareI               // rs1, #imm
	FormatBranch                 // #imm
	FormatJump                   // rs1, #imm
)

// Cond represents the flag test performed by a conditional branch.
type Cond uint8

// Branch conditions.
const (
	CondNone        Cond = iota
	CondZero             // Z == 1
	CondNotZero          // Z == 0
	CondPositive         // P == 1
	CondNotPositive      // P == 0
	CondNegative         // N == 1
	CondNotNegative      // N == 0
)

var opNames = [numOps]string{
	OpUnknown: "UNKNOWN",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpMUL:     "MUL",
	OpDIV:     "DIV",
	OpAND:     "AND",
	OpOR:      "OR",
	OpXOR:     "XOR",
	OpADDL:    "ADDL",
	OpSUBL:    "SUBL",
	OpMOVC:    "MOVC",
	OpLOAD:    "LOAD",
	OpSTORE:   "STORE",
	OpLOADP:   "LOADP",
	OpSTOREP:  "STOREP",
	OpCMP:     "CMP",
	OpCML:     "CML",
	OpBZ:      "BZ",
	OpBNZ:     "BNZ",
	OpBP:      "BP",
	OpBNP:     "BNP",
	OpBN:      "BN",
	OpBNN:     "BNN",
	OpJUMP:    "JUMP",
	OpJALR:    "JALR",
	OpHALT:    "HALT",
	OpNOP:     "NOP",
}

// String returns the mnemonic of the opcode.
func (o Op) String() string {
	if o >= numOps {
		return opNames[OpUnknown]
	}
	return opNames[o]
}

// Valid reports whether o is a defined opcode other than OpUnknown.
func (o Op) Valid() bool {
	return o > OpUnknown && o < numOps
}

// ParseOp looks up an opcode by mnemonic. The match is case-insensitive.
func ParseOp(mnemonic string) (Op, bool) {
	m := strings.ToUpper(strings.TrimSpace(mnemonic))
	for op := OpADD; op < numOps; op++ {
		if opNames[op] == m {
			return op, true
		}
	}
	return OpUnknown, false
}

// Ops returns every defined opcode in declaration order.
func Ops() []Op {
	ops := make([]Op, 0, numOps-1)
	for op := OpADD; op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}
