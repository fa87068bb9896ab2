package nes

import (
	"testing"

	"nespipe/internal/cartridge"
)

func buildTestCartridge(t *testing.T, instructions []uint8) *cartridge.Cartridge {
	t.Helper()
	cart, err := cartridge.NewTestROMBuilder().
		WithPRGSize(1).
		WithCHRSize(1).
		WithInstructions(instructions).
		WithResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge: %v", err)
	}
	return cart
}

func TestNewSystemIsUsableBeforeCartridgeLoad(t *testing.T) {
	sys := New()
	if sys.Cpu == nil || sys.Ppu == nil || sys.Apu == nil || sys.Input == nil {
		t.Fatal("expected New() to wire every component")
	}
}

func TestLoadCartridgeAndResetEstablishesPC(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xEA, 0xEA, 0xEA}) // NOP NOP NOP
	sys.LoadCartridge(cart)

	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sys.Cpu.Reg.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", sys.Cpu.Reg.PC)
	}
	if sys.Cycle() != 0 {
		t.Errorf("Cycle() = %d, want 0", sys.Cycle())
	}
}

func TestStepAdvancesThreePPUTicksPerCPUTick(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xEA}) // NOP
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if err := sys.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if sys.Ppu.Cycle() != 3 {
		t.Errorf("PPU cycle after one System.Step() = %d, want 3", sys.Ppu.Cycle())
	}
}

func TestStepFrameRunsExactlyOneNTSCFrame(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xEA}) // NOP, falls through to itself
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if err := sys.StepFrame(); err != nil {
		t.Fatalf("StepFrame: %v", err)
	}
	if sys.Cycle() != ntscCyclesPerFrame {
		t.Errorf("Cycle() after StepFrame() = %d, want %d", sys.Cycle(), ntscCyclesPerFrame)
	}
}

func TestOAMDMATriggersFromRegisterWrite(t *testing.T) {
	sys := New()
	// LDA #$02; STA $4014 (OAMDMA); NOP forever after.
	cart := buildTestCartridge(t, []uint8{0xA9, 0x02, 0x8D, 0x14, 0x40, 0xEA})
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	// Run long enough to execute LDA and STA (far fewer than a frame).
	for i := 0; i < 20; i++ {
		if err := sys.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if !sys.dma.Active() {
		t.Fatal("expected OAM DMA to be triggered by the STA $4014 write")
	}
}

func TestJustDecodedReflectsDMAState(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xA9, 0x02, 0x8D, 0x14, 0x40, 0xEA})
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := sys.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !sys.dma.Active() {
		t.Fatal("expected OAM DMA active by now")
	}
	if sys.JustDecoded() {
		t.Error("expected JustDecoded()==false while a DMA transfer stalls the CPU")
	}
}

func TestReadByteDoesNotChargeACycle(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xEA})
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	before := sys.Cycle()
	if _, err := sys.ReadByte(0x8000); err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if sys.Cycle() != before {
		t.Errorf("Cycle() changed from %d to %d after a peek ReadByte", before, sys.Cycle())
	}
}

func TestFrameBufferIsNTSCSized(t *testing.T) {
	sys := New()
	fb := sys.FrameBuffer()
	if len(fb) != 256*240 {
		t.Errorf("len(FrameBuffer()) = %d, want %d", len(fb), 256*240)
	}
}

func TestCPUStateAndPPUStateSnapshot(t *testing.T) {
	sys := New()
	cart := buildTestCartridge(t, []uint8{0xA9, 0x42}) // LDA #$42
	sys.LoadCartridge(cart)
	if err := sys.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := sys.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	cpuState := sys.CPUState()
	if cpuState.A != 0x42 {
		t.Errorf("CPUState.A = %#02x, want 0x42", cpuState.A)
	}

	ppuState := sys.PPUState()
	if ppuState.Scanline != sys.Ppu.Scanline() {
		t.Errorf("PPUState.Scanline = %d, want %d", ppuState.Scanline, sys.Ppu.Scanline())
	}
}
