package trace

import (
	"strings"
	"testing"
)

// flatBus is a 64KiB byte array implementing Bus for peeking instruction
// bytes without any cycle side effects.
type flatBus struct {
	mem [0x10000]uint8
}

func (b *flatBus) ReadByte(addr uint16) (uint8, error) { return b.mem[addr], nil }

func TestLineRendersImpliedInstruction(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0xEA // NOP
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000, A: 0x01, X: 0x02, Y: 0x03, SP: 0xFD, P: 0x24, Cycle: 7})

	if !strings.HasPrefix(line, "8000  EA") {
		t.Errorf("line = %q, want prefix %q", line, "8000  EA")
	}
	if !strings.Contains(line, "NOP") {
		t.Errorf("line = %q, want NOP mnemonic", line)
	}
	if !strings.Contains(line, "A:01 X:02 Y:03 P:24 SP:FD") {
		t.Errorf("line = %q, missing expected register column", line)
	}
	if !strings.Contains(line, "CYC:7") {
		t.Errorf("line = %q, missing CYC:7", line)
	}
}

func TestLineRendersImmediateOperand(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0xA9 // LDA #$42
	bus.mem[0x8001] = 0x42
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000})

	if !strings.HasPrefix(line, "8000  A9 42") {
		t.Errorf("line = %q, want hex dump prefix %q", line, "8000  A9 42")
	}
	if !strings.Contains(line, "LDA #$42") {
		t.Errorf("line = %q, want \"LDA #$42\"", line)
	}
}

func TestLineRendersAbsoluteOperandLittleEndian(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0x8D // STA $0200
	bus.mem[0x8001] = 0x00
	bus.mem[0x8002] = 0x02
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000})

	if !strings.HasPrefix(line, "8000  8D 00 02") {
		t.Errorf("line = %q, want three-byte hex dump", line)
	}
	if !strings.Contains(line, "STA $0200") {
		t.Errorf("line = %q, want \"STA $0200\"", line)
	}
}

func TestLineRendersRelativeBranchAsResolvedTarget(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0xF0 // BEQ +4
	bus.mem[0x8001] = 0x04
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000})

	// Branch target = PC + 2 + signed offset = 0x8000 + 2 + 4 = 0x8006.
	if !strings.Contains(line, "BEQ $8006") {
		t.Errorf("line = %q, want \"BEQ $8006\"", line)
	}
}

func TestLineRendersNegativeRelativeOffsetBackwards(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8010] = 0xD0 // BNE -6
	bus.mem[0x8011] = 0xFA // -6 as int8
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8010})

	// Target = 0x8010 + 2 + (-6) = 0x800C.
	if !strings.Contains(line, "BNE $800C") {
		t.Errorf("line = %q, want \"BNE $800C\"", line)
	}
}

func TestLineRendersIndirectIndexedOperand(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0x91 // STA ($10),Y
	bus.mem[0x8001] = 0x10
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000})

	if !strings.Contains(line, "STA ($10),Y") {
		t.Errorf("line = %q, want \"STA ($10),Y\"", line)
	}
}

func TestLineRendersUndocumentedOpcodeWithAsterisk(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0xA7 // LAX $10 (zeropage) — undocumented
	bus.mem[0x8001] = 0x10
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000})

	if !strings.Contains(line, "*LAX $10") {
		t.Errorf("line = %q, want undocumented mnemonic marked with '*'", line)
	}
}

func TestLineIncludesPPUPositionColumn(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0x8000] = 0xEA
	f := New(bus)

	line := f.Line(Snapshot{PC: 0x8000, PPUScanline: 241, PPUCycle: 7})

	if !strings.Contains(line, "PPU:  7,241") {
		t.Errorf("line = %q, want PPU column \"PPU:  7,241\" (dot, then scanline)", line)
	}
}
