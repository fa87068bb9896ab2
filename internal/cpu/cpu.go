// Package cpu implements a cycle-accurate MOS 6502 (Ricoh 2A03 NMOS
// variant) interpreter: the register file, flag semantics, opcode
// decoding into per-cycle Pipelines, addressing-mode micro-sequences, and
// NMI/RESET splicing.
package cpu

import "fmt"

// Status register bit masks. Bit 4 (B) is never stored in P; it only
// exists the instant it is OR-ed onto a pushed byte during BRK/PHP.
const (
	cFlagMask   = 1 << 0
	zFlagMask   = 1 << 1
	iFlagMask   = 1 << 2
	dFlagMask   = 1 << 3
	bFlagMask   = 1 << 4
	flag5Mask   = 1 << 5
	vFlagMask   = 1 << 6
	nFlagMask   = 1 << 7
	stackBase   = 0x0100
	nmiVectorLo = 0xFFFA
	nmiVectorHi = 0xFFFB
	resetVecLo  = 0xFFFC
)

// ErrBadInstruction is returned by Execute (wrapped with the byte and
// address) when decode() lands on an Invalid opcode slot.
var ErrBadInstruction = fmt.Errorf("bad instruction")

// BadInstructionError names the offending byte and the address it was
// fetched from.
type BadInstructionError struct {
	Byte uint8
	Addr uint16
}

func (e *BadInstructionError) Error() string {
	return fmt.Sprintf("cpu: bad instruction $%02X at $%04X", e.Byte, e.Addr)
}

func (e *BadInstructionError) Unwrap() error { return ErrBadInstruction }

// Bus is the memory interface the CPU and DMA decorator drive; it is
// satisfied by *mmu.Mmu.
type Bus interface {
	ReadByte(addr uint16) (uint8, error)
	WriteByte(addr uint16, value uint8) error
	ReadWord(addr uint16) (uint16, error)
	WriteWord(addr uint16, value uint16) error
}

// Registers is the 6502 register file. All fields except pc are 8-bit.
type Registers struct {
	A, X, Y, SP uint8
	PC          uint16
	P           uint8
}

// Cpu is the Mos6502 execution core: registers, the in-flight Pipeline,
// the NMI latch, and the bus it drives.
type Cpu struct {
	Reg   Registers
	bus   Bus
	state State

	pipeline *Pipeline

	nmiPending bool

	// Working registers for the addressing-mode micro-sequences;
	// overwritten at the start of every decode, never read across
	// instruction boundaries.
	effectiveAddr uint16
	baseAddr      uint16
	tmp           uint8
	tmp2          uint8
	pageCross     bool
	pendingErr    error

	decoded bool // true for the single Execute() call that just decoded
}

// New creates a Cpu wired to bus. Callers must call Reset before the
// first Execute to establish power-on state and load pc from the reset
// vector.
func New(bus Bus) *Cpu {
	return &Cpu{bus: bus}
}

// flag/setFlag keep P packed as a single byte so PHP/PLP/BRK push and
// pop the exact bit pattern hardware does; never model flags as
// independent booleans that could drift from P.
func (c *Cpu) flag(mask uint8) bool { return c.Reg.P&mask != 0 }

func (c *Cpu) setFlag(mask uint8, v bool) {
	if v {
		c.Reg.P |= mask
	} else {
		c.Reg.P &^= mask
	}
}

func (c *Cpu) setZN(v uint8) {
	c.setFlag(zFlagMask, v == 0)
	c.setFlag(nFlagMask, v&0x80 != 0)
}

// Reset performs the 6502 reset sequence: clears the Pipeline and the
// pending-NMI latch, sets power-on register values, and loads pc from
// $FFFC/$FFFD. It pushes nothing to the stack.
func (c *Cpu) Reset() error {
	c.pipeline = nil
	c.nmiPending = false

	c.Reg.A, c.Reg.X, c.Reg.Y = 0, 0, 0
	c.Reg.SP = 0xFD
	c.Reg.P = iFlagMask | flag5Mask

	pc, err := c.bus.ReadWord(resetVecLo)
	if err != nil {
		return err
	}
	c.Reg.PC = pc
	c.state = State{}
	return nil
}

// SetNMI latches (or clears) a pending NMI. The PPU calls this with true
// at the start of VBlank; the CPU consumes the latch at the next
// instruction boundary.
func (c *Cpu) SetNMI(pending bool) {
	c.nmiPending = pending
}

// Cycle returns the total number of master cycles this CPU has consumed
// since Reset.
func (c *Cpu) Cycle() uint64 { return c.state.Cycle }

// State returns the observable snapshot (start_pc/start_cycle/cycle and
// the currently decoded opcode) for tracing and tests.
func (c *Cpu) State() State { return c.state }

// PC exposes the program counter for the trace formatter and DMA's
// parity decision.
func (c *Cpu) PC() uint16 { return c.Reg.PC }

// JustDecoded reports whether the most recent Execute call decoded a new
// instruction (or spliced in the NMI sequence) rather than running a
// queued pipeline step. The trace formatter captures register state on
// the Execute call where this is true — registers have not yet been
// touched by the instruction they belong to.
func (c *Cpu) JustDecoded() bool { return c.decoded }

// Execute advances the CPU by exactly one bus cycle: if the current
// Pipeline is drained it decodes the next instruction (or splices in the
// NMI sequence) without running any of its steps yet; otherwise it pops
// and runs exactly one queued step. The master cycle counter always
// increments by 1. Returns the first error raised by decode or any step.
func (c *Cpu) Execute() error {
	if c.pipeline.Drained() {
		c.decoded = true
		if err := c.beginNext(); err != nil {
			c.state.Cycle++
			return err
		}
	} else {
		c.decoded = false
		c.pipeline.advance(c)
	}
	c.state.Cycle++
	if err := c.pendingErr; err != nil {
		c.pendingErr = nil
		return err
	}
	return nil
}

// beginNext decodes the next instruction (or the NMI sequence) into a
// fresh Pipeline without running any step of it yet.
func (c *Cpu) beginNext() error {
	if c.nmiPending {
		c.nmiPending = false
		c.pipeline = c.nmiPipeline()
		return nil
	}

	c.state.StartPC = c.Reg.PC
	c.state.StartCycle = c.state.Cycle

	addr := c.Reg.PC
	raw, err := c.bus.ReadByte(addr)
	if err != nil {
		return err
	}
	c.Reg.PC++

	op := &opcodeTable[raw]
	c.state.CurrentOpcode = op
	if op.Family == Invalid {
		return &BadInstructionError{Byte: raw, Addr: addr}
	}

	c.pipeline = c.buildPipeline(op)
	return nil
}

// read/write wrap bus access to stash the first error encountered during
// a step so Execute can surface it after incrementing the cycle counter
// (a faulting bus access is itself one bus cycle).
func (c *Cpu) read(addr uint16) uint8 {
	v, err := c.bus.ReadByte(addr)
	if err != nil && c.pendingErr == nil {
		c.pendingErr = err
	}
	return v
}

func (c *Cpu) write(addr uint16, v uint8) {
	if err := c.bus.WriteByte(addr, v); err != nil && c.pendingErr == nil {
		c.pendingErr = err
	}
}

func (c *Cpu) push(v uint8) {
	c.write(stackBase+uint16(c.Reg.SP), v)
	c.Reg.SP--
}

func (c *Cpu) pop() uint8 {
	c.Reg.SP++
	return c.read(stackBase + uint16(c.Reg.SP))
}

// nmiPipeline is the 7-cycle NMI sequence: the decode cycle that
// recognizes the pending latch stands in for the first dummy read (same
// accounting brkPipeline uses for its opcode-fetch cycle), one further
// dummy read from pc, push pc high, push pc low, push p (B clear, flag5
// set), read vector low, read vector high. I_FLAG is set as a side
// effect of entering the handler; the latch was already consumed by the
// caller.
func (c *Cpu) nmiPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC >> 8)); return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC & 0xFF)); return Continue },
		func(c *Cpu) StepResult {
			c.push((c.Reg.P | flag5Mask) &^ bFlagMask)
			c.setFlag(iFlagMask, true)
			return Continue
		},
		func(c *Cpu) StepResult {
			c.tmp = c.read(nmiVectorLo)
			return Continue
		},
		func(c *Cpu) StepResult {
			hi := c.read(nmiVectorHi)
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp)
			return Stop
		},
	)
}
