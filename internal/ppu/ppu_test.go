package ppu

import "testing"

// fakeChr is a flat 8KiB CHR window implementing ChrPort.
type fakeChr struct {
	data [0x2000]uint8
}

func (c *fakeChr) ReadCHR(addr uint16) uint8 { return c.data[addr] }

func (c *fakeChr) WriteCHR(addr uint16, v uint8) { c.data[addr] = v }

func TestResetPowerOnState(t *testing.T) {
	p := New()
	if p.Scanline() != 261 {
		t.Errorf("Scanline() = %d, want 261 (pre-render)", p.Scanline())
	}
	if p.Cycle() != 0 {
		t.Errorf("Cycle() = %d, want 0", p.Cycle())
	}
	if p.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d, want 0", p.FrameCount())
	}
}

func TestVBlankFlagSetsAtScanline241Cycle1(t *testing.T) {
	p := New()

	// Advance to scanline 241, cycle 1: (241 - (-1)) * 341 + 1 ticks from
	// the pre-render line's start.
	ticks := (241 - (-1)) * 341 + 1
	for i := 0; i < ticks; i++ {
		p.Execute()
	}

	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Fatal("expected VBlank flag set at scanline 241, cycle 1")
	}
}

func TestReadingStatusClearsVBlankAndWriteLatch(t *testing.T) {
	p := New()
	ticks := (241 - (-1)) * 341 + 1
	for i := 0; i < ticks; i++ {
		p.Execute()
	}

	p.WriteRegister(0x2006, 0x12) // first $2006 write sets w=true
	first := p.ReadRegister(0x2002)
	if first&0x80 == 0 {
		t.Fatal("expected VBlank set before the status read")
	}

	second := p.ReadRegister(0x2002)
	if second&0x80 != 0 {
		t.Error("expected VBlank flag cleared by reading $2002")
	}

	// The write-latch should also have been reset, so this $2006 write is
	// treated as the "first" of a pair again.
	p.WriteRegister(0x2006, 0x34)
	p.WriteRegister(0x2006, 0x56)
	// A second write-address pair should now target $3456 rather than
	// treat 0x56 as a stray low byte of the first pair (which would have
	// left the latch mid-sequence if $2002 hadn't reset it).
	if p.v != 0x3456 {
		t.Errorf("v after the $2006 pair = %#04x, want 0x3456", p.v)
	}
	p.WriteRegister(0x2007, 0xAB)
}

func TestNMICallbackFiresOnVBlankWhenEnabled(t *testing.T) {
	p := New()
	p.WriteRegister(0x2000, 0x80) // enable NMI generation

	fired := false
	p.SetNMICallback(func() { fired = true })

	ticks := (241 - (-1)) * 341 + 1
	for i := 0; i < ticks; i++ {
		p.Execute()
	}

	if !fired {
		t.Error("expected NMI callback to fire at VBlank start with PPUCTRL bit 7 set")
	}
}

func TestNMICallbackDoesNotFireWhenDisabled(t *testing.T) {
	p := New()
	fired := false
	p.SetNMICallback(func() { fired = true })

	ticks := (241 - (-1)) * 341 + 1
	for i := 0; i < ticks; i++ {
		p.Execute()
	}

	if fired {
		t.Error("expected no NMI callback without PPUCTRL bit 7 set")
	}
}

func TestVBlankClearsAtPreRenderLine(t *testing.T) {
	p := New()
	ticksToVBlank := (241 - (-1)) * 341 + 1
	for i := 0; i < ticksToVBlank; i++ {
		p.Execute()
	}
	if p.ReadRegister(0x2002)&0x80 == 0 {
		t.Fatal("expected VBlank set")
	}

	// Advance from scanline 241 to scanline 261 (pre-render), cycle 1.
	ticksToPreRender := (261 - 241) * 341
	for i := 0; i < ticksToPreRender; i++ {
		p.Execute()
	}

	raw := p.ReadRegister(0x2002)
	if raw&0x80 != 0 {
		t.Error("expected VBlank flag cleared at the pre-render line")
	}
}

func TestFrameCountIncrementsAfterFullFrame(t *testing.T) {
	p := New()
	totalTicks := 262 * 341 // one full frame's worth of PPU dots
	for i := 0; i < totalTicks; i++ {
		p.Execute()
	}
	if p.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", p.FrameCount())
	}
}

func TestOAMReadWriteThroughRegisters(t *testing.T) {
	p := New()
	p.WriteRegister(0x2003, 0x10) // OAMADDR = 0x10
	p.WriteRegister(0x2004, 0x99) // OAMDATA write, auto-increments OAMADDR

	p.WriteRegister(0x2003, 0x10) // point OAMADDR back at 0x10
	got := p.ReadRegister(0x2004)
	if got != 0x99 {
		t.Errorf("OAMDATA read = %#02x, want 0x99", got)
	}
}

func TestVRAMReadIsBufferedOneByteLate(t *testing.T) {
	p := New()
	p.SetChr(&fakeChr{}, MirrorHorizontal)

	// $2006 high then low byte sets v = 0x2005 (a nametable address).
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x05)
	p.WriteRegister(0x2007, 0x77) // write through to VRAM, v auto-advances

	// Re-point v at 0x2005 and read: $2007 reads return the *previous*
	// buffered value first, not the byte just requested.
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x05)
	p.ReadRegister(0x2007) // primes the buffer with whatever was there before
	second := p.ReadRegister(0x2007)

	if second != 0x77 {
		t.Errorf("second buffered $2007 read = %#02x, want 0x77", second)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := New()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x20) // write $3F00

	// $3F10 mirrors $3F00.
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x10)
	got := p.ReadRegister(0x2007) // palette reads are unbuffered
	if got != 0x20 {
		t.Errorf("palette mirror $3F10 = %#02x, want 0x20 (mirrors $3F00)", got)
	}
}

func TestNametableIndexVerticalMirroring(t *testing.T) {
	p := New()
	p.SetChr(&fakeChr{}, MirrorVertical)

	// Under vertical mirroring, $2000 and $2800 are the same physical
	// nametable (table 0), while $2400 and $2C00 are the other (table 1).
	idxA := p.nametableIndex(0x2000)
	idxB := p.nametableIndex(0x2800)
	if idxA != idxB {
		t.Errorf("vertical mirroring: nametableIndex($2000)=%d != nametableIndex($2800)=%d", idxA, idxB)
	}

	idxC := p.nametableIndex(0x2400)
	if idxA == idxC {
		t.Error("vertical mirroring: table 0 and table 1 should not collide")
	}
}
