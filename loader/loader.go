// Package loader parses APEX assembly text into instructions.
//
// A program is one instruction per line. Operands are separated by commas,
// whitespace or both, registers are written R<n> and literals #<n>:
//
//	MOVC,R0,#5
//	ADD R2, R0, R1
//	HALT
//
// Blank lines and text after ';' or '//' are ignored.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/apexsim/insts"
)

var (
	// ErrUnknownOpcode is returned for a mnemonic that is not in the ISA.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrOperand is returned for a missing, extra or malformed operand.
	ErrOperand = errors.New("bad operand")
)

// LoadError reports where in the program text parsing failed.
type LoadError struct {
	Line int
	Text string
	Err  error
}

// Error implements error.
func (e *LoadError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Program is a parsed program file.
type Program struct {
	// Path is the file the program was read from.
	Path string

	// Instructions holds code memory in address order.
	Instructions []insts.Instruction
}

// Load reads and parses the program at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	instructions, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Program{Path: path, Instructions: instructions}, nil
}

// ParseString parses program text held in a string.
func ParseString(text string) ([]insts.Instruction, error) {
	return Parse(strings.NewReader(text))
}

// Parse reads program text from r.
func Parse(r io.Reader) ([]insts.Instruction, error) {
	var program []insts.Instruction

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		fields := splitLine(raw)
		if len(fields) == 0 {
			continue
		}

		inst, err := parseInstruction(fields)
		if err != nil {
			return nil, &LoadError{Line: lineNo, Text: strings.TrimSpace(raw), Err: err}
		}
		program = append(program, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return program, nil
}

func splitLine(line string) []string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r'
	})
}

// operand kinds, in the order they appear in the text for each format
type operand uint8

const (
	opndRd operand = iota
	opndRs1
	opndRs2
	opndImm
)

var layouts = map[insts.Format][]operand{
	insts.FormatNone:     nil,
	insts.FormatRegReg:   {opndRd, opndRs1, opndRs2},
	insts.FormatRegImm:   {opndRd, opndRs1, opndImm},
	insts.FormatMove:     {opndRd, opndImm},
	insts.FormatStore:    {opndRs1, opndRs2, opndImm},
	insts.FormatCompare:  {opndRs1, opndRs2},
	insts.FormatCompareI: {opndRs1, opndImm},
	insts.FormatBranch:   {opndImm},
	insts.FormatJump:     {opndRs1, opndImm},
}

func parseInstruction(fields []string) (insts.Instruction, error) {
	mnemonic := fields[0]
	op, ok := insts.ParseOp(mnemonic)
	if !ok {
		return insts.Instruction{}, fmt.Errorf("%w: %s", ErrUnknownOpcode, mnemonic)
	}

	inst := insts.Instruction{Op: op, Mnemonic: mnemonic}
	layout := layouts[insts.Info(op).Format]
	args := fields[1:]
	if len(args) != len(layout) {
		return insts.Instruction{}, fmt.Errorf("%w: %s takes %d operands, got %d",
			ErrOperand, strings.ToUpper(mnemonic), len(layout), len(args))
	}

	for i, kind := range layout {
		if kind == opndImm {
			imm, err := parseImm(args[i])
			if err != nil {
				return insts.Instruction{}, err
			}
			inst.Imm = imm
			continue
		}

		reg, err := parseReg(args[i])
		if err != nil {
			return insts.Instruction{}, err
		}
		switch kind {
		case opndRd:
			inst.Rd = reg
		case opndRs1:
			inst.Rs1 = reg
		case opndRs2:
			inst.Rs2 = reg
		}
	}

	return inst, nil
}

func parseReg(s string) (uint8, error) {
	if len(s) < 2 || (s[0] != 'R' && s[0] != 'r') {
		return 0, fmt.Errorf("%w: expected register, got %q", ErrOperand, s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: bad register %q", ErrOperand, s)
	}
	return uint8(n), nil
}

func parseImm(s string) (int32, error) {
	if len(s) < 2 || s[0] != '#' {
		return 0, fmt.Errorf("%w: expected literal, got %q", ErrOperand, s)
	}
	n, err := strconv.ParseInt(s[1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad literal %q", ErrOperand, s)
	}
	return int32(n), nil
}
