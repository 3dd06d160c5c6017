package emu

import "errors"

// Errors reported while executing a program. They are fatal to the run.
var (
	// ErrInvalidRegister is returned when an instruction names a register
	// outside the register file.
	ErrInvalidRegister = errors.New("invalid register index")

	// ErrInvalidAddress is returned when a load or store touches an address
	// outside data memory.
	ErrInvalidAddress = errors.New("invalid memory address")

	// ErrDivideByZero is returned by DIV with a zero divisor.
	ErrDivideByZero = errors.New("divide by zero")

	// ErrUnknownOpcode is returned when an instruction carries an opcode the
	// machine does not implement.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// ErrInvalidPC is returned by the functional emulator when the program
// counter leaves code memory.
var ErrInvalidPC = errors.New("program counter outside code memory")

// ErrMaxInstructions is returned by the functional emulator when its
// instruction limit is reached before HALT.
var ErrMaxInstructions = errors.New("max instructions reached")
