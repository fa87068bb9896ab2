// Package trace renders the nestest-compatible execution log: one line
// per instruction boundary, in the exact column layout nestest.log (and
// every conformance-testing NES emulator) uses.
package trace

import (
	"fmt"

	"nespipe/internal/cpu"
)

// Bus is the slice of mmu.Mmu the formatter needs to peek the
// instruction's raw bytes for the hex dump and operand rendering. These
// reads are never counted as CPU cycles and never touch register
// windows with read side effects — only code living in ROM/RAM is
// peeked this way.
type Bus interface {
	ReadByte(addr uint16) (uint8, error)
}

// Snapshot is the register/timing state captured at an instruction
// boundary — after decode, before any of the instruction's steps run.
type Snapshot struct {
	PC             uint16
	A, X, Y, SP, P uint8
	Cycle          uint64
	PPUCycle       uint16
	PPUScanline    uint16
}

// Formatter renders Snapshots into nestest.log lines.
type Formatter struct {
	bus Bus
}

// New wraps bus for instruction-byte peeks.
func New(bus Bus) *Formatter { return &Formatter{bus: bus} }

func (f *Formatter) peek(addr uint16) uint8 {
	v, _ := f.bus.ReadByte(addr)
	return v
}

// operandLength reports how many bytes (including the opcode byte
// itself) the addressing mode occupies.
func operandLength(mode cpu.AddressMode) int {
	switch mode {
	case cpu.Implied, cpu.Accumulator:
		return 1
	case cpu.Absolute, cpu.AbsoluteX, cpu.AbsoluteY, cpu.Indirect:
		return 3
	default:
		return 2
	}
}

// Line renders one nestest.log line for the instruction starting at
// snap.PC (already decoded, none of its steps run yet).
func (f *Formatter) Line(snap Snapshot) string {
	op := cpu.Lookup(f.peek(snap.PC))
	length := operandLength(op.Mode)

	var b1, b2 uint8
	if length >= 2 {
		b1 = f.peek(snap.PC + 1)
	}
	if length >= 3 {
		b2 = f.peek(snap.PC + 2)
	}

	hexBytes := hexDump(f.peek(snap.PC), b1, b2, length)
	asm := disassemble(op, snap.PC, b1, b2)

	return fmt.Sprintf("%04X  %-9s %-32sA:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		snap.PC, hexBytes, asm, snap.A, snap.X, snap.Y, snap.P, snap.SP,
		snap.PPUCycle, snap.PPUScanline, snap.Cycle)
}

func hexDump(op, b1, b2 uint8, length int) string {
	switch length {
	case 1:
		return fmt.Sprintf("%02X", op)
	case 2:
		return fmt.Sprintf("%02X %02X", op, b1)
	default:
		return fmt.Sprintf("%02X %02X %02X", op, b1, b2)
	}
}

func disassemble(op *cpu.Opcode, pc uint16, b1, b2 uint8) string {
	mnemonic := op.Family.String()
	if op.Undocumented {
		mnemonic = "*" + mnemonic
	}

	word := uint16(b2)<<8 | uint16(b1)
	var operand string
	switch op.Mode {
	case cpu.Implied:
		operand = ""
	case cpu.Accumulator:
		operand = "A"
	case cpu.Immediate:
		operand = fmt.Sprintf("#$%02X", b1)
	case cpu.Zeropage:
		operand = fmt.Sprintf("$%02X", b1)
	case cpu.ZeropageX:
		operand = fmt.Sprintf("$%02X,X", b1)
	case cpu.ZeropageY:
		operand = fmt.Sprintf("$%02X,Y", b1)
	case cpu.Relative:
		target := pc + 2 + uint16(int8(b1))
		operand = fmt.Sprintf("$%04X", target)
	case cpu.Absolute:
		operand = fmt.Sprintf("$%04X", word)
	case cpu.AbsoluteX:
		operand = fmt.Sprintf("$%04X,X", word)
	case cpu.AbsoluteY:
		operand = fmt.Sprintf("$%04X,Y", word)
	case cpu.Indirect:
		operand = fmt.Sprintf("($%04X)", word)
	case cpu.IndexedIndirect:
		operand = fmt.Sprintf("($%02X,X)", b1)
	case cpu.IndirectIndexed:
		operand = fmt.Sprintf("($%02X),Y", b1)
	}

	if operand == "" {
		return mnemonic
	}
	return mnemonic + " " + operand
}
