package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
	"github.com/sarchlab/apexsim/insts"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of cycles decode held an instruction it could
	// not issue.
	Stalls uint64
	// Flushes is the number of taken branches and jumps.
	Flushes uint64
	// FetchBubbles is the number of cycles fetch skipped after a redirect.
	FetchBubbles uint64
	// DataHazards is the number of operands delivered by forwarding.
	DataHazards uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger that receives per-cycle stage traces at debug
// level.
func WithLogger(logger logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithBasePC sets the address of the first instruction.
func WithBasePC(pc int32) PipelineOption {
	return func(p *Pipeline) {
		p.basePC = pc
	}
}

// WithInstructionWidth sets the code memory distance between consecutive
// instructions.
func WithInstructionWidth(width int32) PipelineOption {
	return func(p *Pipeline) {
		p.width = width
	}
}

// Pipeline implements the 5-stage in-order APEX pipeline.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
type Pipeline struct {
	// Stage latches, holding the instruction each stage works on this cycle.
	fetch     Latch
	decode    Latch
	execute   Latch
	memory    Latch
	writeback Latch

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	forwarding *ForwardingUnit
	control    *Control

	// Shared resources
	regFile *emu.RegFile
	dataMem *emu.Memory

	program []insts.Instruction
	basePC  int32
	width   int32
	pc      int32

	logger logrus.FieldLogger

	stats Statistics

	halted bool
	err    error
}

// NewPipeline creates a new 5-stage pipeline that runs program against
// regFile and memory.
func NewPipeline(
	program []insts.Instruction,
	regFile *emu.RegFile,
	memory *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		program: program,
		regFile: regFile,
		dataMem: memory,
		basePC:  emu.DefaultBasePC,
		width:   emu.WordSize,
		control: NewControl(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.width <= 0 {
		p.width = emu.WordSize
	}
	if p.logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		p.logger = logger
	}

	p.forwarding = NewForwardingUnit(regFile)
	p.fetchStage = NewFetchStage(program, p.basePC, p.width)
	p.decodeStage = NewDecodeStage(regFile, p.forwarding)
	p.executeStage = NewExecuteStage(regFile, p.width)
	p.memoryStage = NewMemoryStage(memory)
	p.writebackStage = NewWritebackStage(regFile)
	p.pc = p.basePC

	return p
}

// PC returns the address of the next fetch.
func (p *Pipeline) PC() int32 {
	return p.pc
}

// BasePC returns the address of the first instruction.
func (p *Pipeline) BasePC() int32 {
	return p.basePC
}

// Program returns the instructions in code memory.
func (p *Pipeline) Program() []insts.Instruction {
	return p.program
}

// RegFile returns the register file.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// Memory returns the data memory.
func (p *Pipeline) Memory() *emu.Memory {
	return p.dataMem
}

// GetFetch returns the fetch latch.
func (p *Pipeline) GetFetch() *Latch {
	return &p.fetch
}

// GetDecode returns the decode latch.
func (p *Pipeline) GetDecode() *Latch {
	return &p.decode
}

// GetExecute returns the execute latch.
func (p *Pipeline) GetExecute() *Latch {
	return &p.execute
}

// GetMemory returns the memory latch.
func (p *Pipeline) GetMemory() *Latch {
	return &p.memory
}

// GetWriteback returns the writeback latch.
func (p *Pipeline) GetWriteback() *Latch {
	return &p.writeback
}

// StageLatch returns the latch of a stage.
func (p *Pipeline) StageLatch(s Stage) *Latch {
	switch s {
	case StageFetch:
		return &p.fetch
	case StageDecode:
		return &p.decode
	case StageExecute:
		return &p.execute
	case StageMemory:
		return &p.memory
	case StageWriteback:
		return &p.writeback
	default:
		return nil
	}
}

// ControlState returns the fetch/decode control state.
func (p *Pipeline) ControlState() ControlState {
	return p.control.State()
}

// FetchEnabled reports whether fetch is still active.
func (p *Pipeline) FetchEnabled() bool {
	return p.control.FetchEnabled()
}

// Stats returns the pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted returns true once HALT has retired.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Err returns the error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Run executes the pipeline until it halts or fails.
func (p *Pipeline) Run() error {
	for !p.halted {
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunCycles executes at most cycles ticks, stopping early on halt or error.
// It returns the number of ticks executed.
func (p *Pipeline) RunCycles(cycles uint64) (uint64, error) {
	var executed uint64
	for executed < cycles && !p.halted {
		if err := p.Tick(); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

// Tick executes one pipeline cycle.
//
// Stages are evaluated in reverse order (WB→MEM→EX→ID→IF) against the
// latches as they stood at the start of the cycle. Each stage produces the
// next value of the latch downstream of it and all latches are updated at
// cycle end. Decode forwards from the latches Execute and Memory produced
// this cycle.
//
// Once HALT retires no other stage runs and later ticks do nothing. Once a
// stage fails every later tick returns the same error.
func (p *Pipeline) Tick() error {
	if p.err != nil {
		return p.err
	}
	if p.halted {
		return nil
	}

	p.stats.Cycles++

	// Stage 5: Writeback
	if p.writeback.Valid {
		p.trace(StageWriteback, &p.writeback)
		halt := p.writebackStage.Writeback(&p.writeback, &p.memory, &p.execute)
		p.stats.Instructions++
		if halt {
			p.halted = true
			p.logger.WithField("cycle", p.stats.Cycles).Debug("halt retired")
			return nil
		}
	}

	// Stage 4: Memory
	var nextWB Latch
	if p.memory.Valid {
		p.trace(StageMemory, &p.memory)
		out, err := p.memoryStage.Access(&p.memory)
		if err != nil {
			return p.fail(StageMemory, &p.memory, err)
		}
		nextWB = out
	}

	// Stage 3: Execute
	var nextMEM Latch
	redirected := false
	if p.execute.Valid {
		p.trace(StageExecute, &p.execute)
		res, err := p.executeStage.Execute(&p.execute)
		if err != nil {
			return p.fail(StageExecute, &p.execute, err)
		}
		nextMEM = res.Latch

		if res.Redirect {
			redirected = true
			p.redirect(res.Target)
		}
	}

	// Stage 2: Decode
	var nextEX Latch
	nextID := p.decode
	if redirected {
		nextID.Clear()
	} else if p.decode.Valid {
		p.trace(StageDecode, &p.decode)
		res, err := p.decodeStage.Decode(&p.decode, &nextMEM, &nextWB)
		if err != nil {
			return p.fail(StageDecode, &p.decode, err)
		}
		p.stats.DataHazards += uint64(res.Forwarded())

		if res.Issued {
			nextEX = res.Latch
			nextID.Clear()
			p.control.Issue()
		} else {
			p.control.Stall()
			p.stats.Stalls++
			p.logger.WithFields(logrus.Fields{
				"cycle": p.stats.Cycles,
				"pc":    p.decode.PC,
				"inst":  p.decode.Inst.String(),
			}).Debug("decode stalled")
		}
	}

	// Stage 1: Fetch
	nextIF := p.fetch
	if p.control.FetchEnabled() {
		if p.control.ConsumeRedirect() {
			p.stats.FetchBubbles++
		} else {
			nextIF = p.doFetch(&nextID)
		}
	}

	p.fetch = nextIF
	p.decode = nextID
	p.execute = nextEX
	p.memory = nextMEM
	p.writeback = nextWB

	return nil
}

// doFetch reads the instruction at the PC into the fetch latch and hands it
// to decode unless decode is stalled.
func (p *Pipeline) doFetch(nextID *Latch) Latch {
	inst, ok := p.fetchStage.Fetch(p.pc)
	if !ok {
		return Latch{}
	}

	fetched := Latch{Valid: true, PC: p.pc, Inst: inst}
	p.trace(StageFetch, &fetched)

	if p.control.Stalled() {
		return fetched
	}

	p.pc += p.width
	*nextID = fetched

	if inst.Info().IsHalt {
		p.control.DisableFetch()
	}

	return fetched
}

func (p *Pipeline) redirect(target int32) {
	p.logger.WithFields(logrus.Fields{
		"cycle":  p.stats.Cycles,
		"pc":     p.execute.PC,
		"target": target,
	}).Debug("redirect")

	p.pc = target
	p.control.Redirect()
	p.stats.Flushes++
}

func (p *Pipeline) fail(stage Stage, l *Latch, err error) error {
	p.err = fmt.Errorf("%s stage, pc %d (%s): %w", stage, l.PC, l.Inst, err)
	return p.err
}

func (p *Pipeline) trace(stage Stage, l *Latch) {
	p.logger.WithFields(logrus.Fields{
		"cycle": p.stats.Cycles,
		"stage": stage.String(),
		"pc":    l.PC,
		"inst":  l.Inst.String(),
	}).Debug("stage")
}

// Reset clears all latches, statistics and control state and moves the PC
// back to the base address. The register file and data memory are left
// alone.
func (p *Pipeline) Reset() {
	p.fetch.Clear()
	p.decode.Clear()
	p.execute.Clear()
	p.memory.Clear()
	p.writeback.Clear()
	p.control.Reset()
	p.pc = p.basePC
	p.stats = Statistics{}
	p.halted = false
	p.err = nil
}
