package cpu

import "testing"

// testBus is a flat 64KiB RAM implementing Bus, enough to drive every
// addressing mode and the reset/NMI vectors without any bank routing.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) ReadByte(addr uint16) (uint8, error) { return b.mem[addr], nil }

func (b *testBus) WriteByte(addr uint16, v uint8) error {
	b.mem[addr] = v
	return nil
}

func (b *testBus) ReadWord(addr uint16) (uint16, error) {
	lo, _ := b.ReadByte(addr)
	hi, _ := b.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo), nil
}

func (b *testBus) WriteWord(addr uint16, v uint16) error {
	b.WriteByte(addr, uint8(v))
	b.WriteByte(addr+1, uint8(v>>8))
	return nil
}

// newCPU writes prog starting at org, points the reset vector at org, and
// returns a freshly-Reset Cpu.
func newCPU(t *testing.T, org uint16, prog ...uint8) (*Cpu, *testBus) {
	t.Helper()
	bus := &testBus{}
	copy(bus.mem[org:], prog)
	bus.mem[resetVecLo] = uint8(org)
	bus.mem[resetVecLo+1] = uint8(org >> 8)

	c := New(bus)
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return c, bus
}

// run executes Execute() until the pipeline drains back to idle after at
// least one instruction has decoded, i.e. through exactly one instruction
// boundary to the next.
func run(t *testing.T, c *Cpu, instructions int) {
	t.Helper()
	decodes := 0
	for decodes < instructions {
		if err := c.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if c.JustDecoded() {
			decodes++
		}
	}
	// Drain the just-decoded instruction too.
	for !c.pipeline.Drained() {
		if err := c.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
}

func TestResetEstablishesPowerOnState(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xEA)

	if c.Reg.SP != 0xFD {
		t.Errorf("SP = %#02x, want 0xFD", c.Reg.SP)
	}
	if c.Reg.P != iFlagMask|flag5Mask {
		t.Errorf("P = %#02x, want I|FLAG5", c.Reg.P)
	}
	if c.Reg.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", c.Reg.PC)
	}
	if c.Cycle() != 0 {
		t.Errorf("Cycle() = %d, want 0", c.Cycle())
	}
}

func TestLDAImmediateTakesTwoCycles(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xA9, 0x42) // LDA #$42

	run(t, c, 1)

	if c.Reg.A != 0x42 {
		t.Errorf("A = %#02x, want 0x42", c.Reg.A)
	}
	if c.Cycle() != 2 {
		t.Errorf("Cycle() = %d, want 2", c.Cycle())
	}
	if c.flag(zFlagMask) {
		t.Error("Z should be clear for a nonzero load")
	}
	if c.flag(nFlagMask) {
		t.Error("N should be clear for $42")
	}
}

func TestLDAZeroAndNegativeFlags(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xA9, 0x00) // LDA #$00
	run(t, c, 1)
	if !c.flag(zFlagMask) {
		t.Error("Z should be set after loading 0")
	}

	c, _ = newCPU(t, 0x8000, 0xA9, 0x80) // LDA #$80
	run(t, c, 1)
	if !c.flag(nFlagMask) {
		t.Error("N should be set after loading a value with bit 7 set")
	}
}

func TestADCSetsCarryOverflowAndZero(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xA9, 0xFF, 0x69, 0x01) // LDA #$FF; ADC #$01
	run(t, c, 2)

	if c.Reg.A != 0x00 {
		t.Errorf("A = %#02x, want 0x00", c.Reg.A)
	}
	if !c.flag(cFlagMask) {
		t.Error("expected carry out of 0xFF+0x01")
	}
	if !c.flag(zFlagMask) {
		t.Error("expected zero result")
	}
}

func TestADCSignedOverflow(t *testing.T) {
	// LDA #$7F (max positive); ADC #$01 -> 0x80, signed overflow.
	c, _ := newCPU(t, 0x8000, 0xA9, 0x7F, 0x69, 0x01)
	run(t, c, 2)

	if c.Reg.A != 0x80 {
		t.Errorf("A = %#02x, want 0x80", c.Reg.A)
	}
	if !c.flag(vFlagMask) {
		t.Error("expected signed overflow for 0x7F+0x01")
	}
	if !c.flag(nFlagMask) {
		t.Error("expected N set for 0x80")
	}
}

func TestSBCBorrow(t *testing.T) {
	// SEC; LDA #$00; SBC #$01 -> 0xFF, carry clear (borrow occurred).
	c, _ := newCPU(t, 0x8000, 0x38, 0xA9, 0x00, 0xE9, 0x01)
	run(t, c, 3)

	if c.Reg.A != 0xFF {
		t.Errorf("A = %#02x, want 0xFF", c.Reg.A)
	}
	if c.flag(cFlagMask) {
		t.Error("expected carry clear (borrow) after 0x00-0x01")
	}
}

func TestAbsoluteXPageCrossAddsCycle(t *testing.T) {
	// LDA $80FF,X with X=1 crosses from page $80 to $81: 5 cycles instead
	// of 4.
	c, bus := newCPU(t, 0x8000, 0xA2, 0x01, 0xBD, 0xFF, 0x80) // LDX #$01; LDA $80FF,X
	bus.mem[0x8100] = 0x77
	run(t, c, 2)

	if c.Reg.A != 0x77 {
		t.Errorf("A = %#02x, want 0x77", c.Reg.A)
	}
	if c.Cycle() != 2+5 {
		t.Errorf("Cycle() = %d, want 7 (2 for LDX + 5 for page-crossing LDA)", c.Cycle())
	}
}

func TestAbsoluteXNoPageCrossIsFourCycles(t *testing.T) {
	// LDA $8000,X with X=1 stays in the same page: 4 cycles.
	c, bus := newCPU(t, 0x8000, 0xA2, 0x01, 0xBD, 0x00, 0x80) // LDX #$01; LDA $8000,X
	bus.mem[0x8001] = 0x55
	run(t, c, 2)

	if c.Cycle() != 2+4 {
		t.Errorf("Cycle() = %d, want 6 (2 for LDX + 4 for non-crossing LDA)", c.Cycle())
	}
}

func TestBranchNotTakenIsTwoCycles(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xB0, 0x10) // BCS +16, carry clear so not taken
	run(t, c, 1)
	if c.Cycle() != 2 {
		t.Errorf("Cycle() = %d, want 2", c.Cycle())
	}
	if c.Reg.PC != 0x8002 {
		t.Errorf("PC = %#04x, want 0x8002", c.Reg.PC)
	}
}

func TestBranchTakenSamePageIsThreeCycles(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0x38, 0xB0, 0x10) // SEC; BCS +16 (taken, no page cross)
	run(t, c, 2)
	if c.Cycle() != 2+3 {
		t.Errorf("Cycle() = %d, want 5 (2 for SEC + 3 for taken branch)", c.Cycle())
	}
	if c.Reg.PC != 0x8013 {
		t.Errorf("PC = %#04x, want 0x8013", c.Reg.PC)
	}
}

func TestJSRAndRTSRoundTrip(t *testing.T) {
	// JSR $9000 at $8000; $9000: RTS.
	c, bus := newCPU(t, 0x8000, 0x20, 0x00, 0x90)
	bus.mem[0x9000] = 0x60 // RTS

	run(t, c, 1) // JSR
	if c.Reg.PC != 0x9000 {
		t.Fatalf("PC after JSR = %#04x, want 0x9000", c.Reg.PC)
	}
	if c.Cycle() != 6 {
		t.Errorf("JSR Cycle() = %d, want 6", c.Cycle())
	}

	run(t, c, 1) // RTS
	if c.Reg.PC != 0x8003 {
		t.Errorf("PC after RTS = %#04x, want 0x8003 (JSR return address)", c.Reg.PC)
	}
	if c.Cycle() != 6+6 {
		t.Errorf("Cycle() after RTS = %d, want 12", c.Cycle())
	}
}

func TestPHAAndPLARoundTrip(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xA9, 0x5A, 0x48, 0xA9, 0x00, 0x68) // LDA #$5A; PHA; LDA #$00; PLA
	sp := c.Reg.SP
	run(t, c, 4)

	if c.Reg.A != 0x5A {
		t.Errorf("A = %#02x, want 0x5A (restored by PLA)", c.Reg.A)
	}
	if c.Reg.SP != sp {
		t.Errorf("SP = %#02x, want %#02x (balanced push/pull)", c.Reg.SP, sp)
	}
}

func TestBRKPushesPCAndStatusThenLoadsIRQVector(t *testing.T) {
	c, bus := newCPU(t, 0x8000, 0x00) // BRK
	bus.mem[0xFFFE] = 0x00
	bus.mem[0xFFFF] = 0x90 // IRQ/BRK vector -> $9000

	run(t, c, 1)

	if c.Reg.PC != 0x9000 {
		t.Errorf("PC = %#04x, want 0x9000", c.Reg.PC)
	}
	if !c.flag(iFlagMask) {
		t.Error("expected I flag set after BRK")
	}
	if c.Cycle() != 7 {
		t.Errorf("Cycle() = %d, want 7", c.Cycle())
	}
}

func TestNMITakesPrecedenceAtInstructionBoundary(t *testing.T) {
	c, bus := newCPU(t, 0x8000, 0xEA, 0xEA) // NOP; NOP
	bus.mem[nmiVectorLo] = 0x00
	bus.mem[nmiVectorHi] = 0x91 // NMI vector -> $9100

	c.SetNMI(true)
	run(t, c, 1) // decodes the NMI sequence instead of the next NOP

	if c.Reg.PC != 0x9100 {
		t.Errorf("PC = %#04x, want 0x9100 (NMI vector)", c.Reg.PC)
	}
	if c.Cycle() != 7 {
		t.Errorf("Cycle() = %d, want 7 (NMI sequence length)", c.Cycle())
	}
}

func TestJustDecodedOnlyOnDecodeCycle(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xA9, 0x01, 0xA9, 0x02) // LDA #$01; LDA #$02

	decodeCount := 0
	for i := 0; i < 4; i++ {
		if err := c.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if c.JustDecoded() {
			decodeCount++
		}
	}
	if decodeCount != 2 {
		t.Errorf("JustDecoded() fired %d times over 4 cycles, want 2 (one per 2-cycle LDA)", decodeCount)
	}
}

func TestBadInstructionReturnsError(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0x02) // $02 is unassigned in opcodeTable

	err := c.Execute()
	if err == nil {
		t.Fatal("expected an error decoding an invalid opcode")
	}
	var bad *BadInstructionError
	if be, ok := err.(*BadInstructionError); ok {
		bad = be
	}
	if bad == nil {
		t.Fatalf("expected *BadInstructionError, got %T", err)
	}
	if bad.Byte != 0x02 {
		t.Errorf("Byte = %#02x, want 0x02", bad.Byte)
	}
}

func TestStateTracksStartPCAndStartCycle(t *testing.T) {
	c, _ := newCPU(t, 0x8000, 0xEA, 0xA9, 0x01) // NOP; LDA #$01

	run(t, c, 1) // NOP
	st := c.State()
	if st.StartPC != 0x8000 {
		t.Errorf("StartPC = %#04x, want 0x8000", st.StartPC)
	}
	if st.StartCycle != 0 {
		t.Errorf("StartCycle = %d, want 0", st.StartCycle)
	}

	run(t, c, 1) // LDA
	st = c.State()
	if st.StartPC != 0x8001 {
		t.Errorf("StartPC = %#04x, want 0x8001", st.StartPC)
	}
	if st.StartCycle != 2 {
		t.Errorf("StartCycle = %d, want 2", st.StartCycle)
	}
}
