package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/timing/core"
	"github.com/sarchlab/apexsim/timing/pipeline"
)

const regsPerRow = 8

func printCodeMemory(w io.Writer, c *core.Core) {
	cfg := c.Config()
	_, _ = fmt.Fprintf(w, "APEX_CPU: PC initialized to %d\n", cfg.BasePC)
	_, _ = fmt.Fprintln(w, "APEX_CPU: Printing Code Memory")
	for i, inst := range c.Pipeline.Program() {
		_, _ = fmt.Fprintf(w, "%-6d %s\n", cfg.BasePC+int32(i)*cfg.InstructionWidth, inst)
	}
	_, _ = fmt.Fprintln(w, "")
}

func printCycle(w io.Writer, snap pipeline.Snapshot) {
	_, _ = fmt.Fprintln(w, "--------------------------------------------")
	_, _ = fmt.Fprintf(w, "Clock Cycle #: %d\n", snap.Cycle)
	_, _ = fmt.Fprintln(w, "--------------------------------------------")

	for s := pipeline.StageFetch; s < pipeline.NumStages; s++ {
		l := snap.Latches[s]
		if !l.Valid {
			_, _ = fmt.Fprintf(w, "%-15s: EMPTY\n", s)
			continue
		}
		_, _ = fmt.Fprintf(w, "%-15s: pc(%d) %s\n", s, l.PC, l.Inst)
	}
}

// printState prints the register file, non-zero data memory and flags.
func printState(w io.Writer, regs []int32, memory *emu.Memory, flags emu.Flags) {
	_, _ = fmt.Fprintf(w, "----------\n%s\n----------\n", "Registers:")
	for i, v := range regs {
		_, _ = fmt.Fprintf(w, "R%-3d[%-3d] ", i, v)
		if (i+1)%regsPerRow == 0 || i == len(regs)-1 {
			_, _ = fmt.Fprintln(w, "")
		}
	}

	_, _ = fmt.Fprintf(w, "----------\n%s\n----------\n", "Data Memory:")
	words := memory.NonZero()
	for _, addr := range memory.NonZeroAddrs() {
		_, _ = fmt.Fprintf(w, "%-3d[%-3d] ", addr, words[addr])
	}
	_, _ = fmt.Fprintln(w, "")

	_, _ = fmt.Fprintf(w, "----------\n%s\n----------\n", "Flags:")
	_, _ = fmt.Fprintln(w, flags)
}

// stepRun ticks the core one cycle at a time, printing every stage and
// waiting for a key between cycles. stopped is true when the user quit.
func stepRun(
	c *core.Core,
	maxCycles uint64,
	stdin io.Reader,
	stdout io.Writer,
) (result core.RunResult, stopped bool, err error) {
	keys, restore, err := newKeyReader(stdin)
	if err != nil {
		return result, false, err
	}
	defer restore()

	for i := uint64(0); i < maxCycles && !c.Halted(); i++ {
		if err = c.Tick(); err != nil {
			break
		}
		printCycle(stdout, c.Inspect())
		if c.Halted() {
			break
		}

		_, _ = fmt.Fprintln(stdout, "Press any key to advance CPU Clock or <q> to quit:")
		key, readErr := keys()
		if readErr != nil || key == 'q' {
			stopped = true
			break
		}
	}

	stats := c.Stats()
	result = core.RunResult{
		CyclesExecuted:        stats.Cycles,
		InstructionsCompleted: stats.Instructions,
		Halted:                c.Halted(),
	}
	return result, stopped, err
}

// newKeyReader returns a function that reads one key press. A terminal is
// switched to raw mode until restore is called; other inputs are read a
// line at a time and the first byte of the line is the key.
func newKeyReader(stdin io.Reader) (read func() (byte, error), restore func(), err error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set raw mode: %w", err)
		}

		buf := make([]byte, 1)
		read = func() (byte, error) {
			if _, err := f.Read(buf); err != nil {
				return 0, err
			}
			return buf[0], nil
		}
		return read, func() { _ = term.Restore(fd, oldState) }, nil
	}

	r := bufio.NewReader(stdin)
	read = func() (byte, error) {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			return line[0], nil
		}
		return 0, err
	}
	return read, func() {}, nil
}
