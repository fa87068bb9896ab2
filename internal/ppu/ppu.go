// Package ppu implements the register-level and timing contract the CPU
// core requires of the 2C02: the CPU-visible register file, the
// scanline/cycle counters that drive VBlank and NMI, and OAM as the DMA
// decorator's write target. Pixel and tile rendering are out of scope —
// they belong to the PPU's own rendering pipeline, an external
// collaborator this module never reimplements.
package ppu

import (
	"nespipe/internal/membank"
	"nespipe/internal/mmu"
)

// ChrPort is the cartridge's CHR window, as seen from the PPU bus.
type ChrPort interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// MirrorMode is the cartridge's nametable mirroring wiring.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Ppu is the NES Picture Processing Unit (2C02), scoped to the register
// file and timing the CPU/DMA contract needs.
type Ppu struct {
	ctrl   uint8 // $2000
	mask   uint8 // $2001
	status uint8 // $2002
	oamAddr uint8 // $2003

	v, t uint16 // VRAM address / temp address latch
	x    uint8  // fine X scroll
	w    bool   // write-toggle latch

	readBuffer uint8 // buffered $2007 read

	oam [256]uint8

	scanline int // -1 (pre-render, reported as 261) .. 260
	cycle    int // 0..340
	frame    uint64
	oddFrame bool

	nmiCallback func()

	mirror MirrorMode
	vram   [0x800]uint8 // 2KiB nametable RAM, mirrored per MirrorMode
	palette [32]uint8

	chrBus *mmu.Mmu
}

// New creates a Ppu with no cartridge CHR bound; call SetChr before use.
func New() *Ppu {
	p := &Ppu{}
	p.Reset()
	return p
}

// SetChr (re)builds the PPU-side bus: pattern tables from the
// cartridge's CHR window plus this Ppu's own nametable/palette storage,
// mirroring spec.md §4.1's "separate PPU-side MMU".
func (p *Ppu) SetChr(chr ChrPort, mirror MirrorMode) {
	p.mirror = mirror
	p.chrBus = mmu.New()
	p.chrBus.Install(newChrBank(chr))
}

// SetNMICallback registers the callback invoked when VBlank starts with
// NMI generation enabled in PPUCTRL.
func (p *Ppu) SetNMICallback(cb func()) { p.nmiCallback = cb }

// Reset restores power-on register state.
func (p *Ppu) Reset() {
	p.ctrl, p.mask = 0, 0
	p.status = 0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.scanline, p.cycle = -1, 0
	p.frame = 0
	p.oddFrame = false
	for i := range p.oam {
		p.oam[i] = 0
	}
}

// Cycle and Scanline expose the current PPU position for tracing;
// scanline 261 is this implementation's pre-render line (internally -1).
func (p *Ppu) Cycle() uint16 { return uint16(p.cycle) }
func (p *Ppu) Scanline() uint16 {
	if p.scanline < 0 {
		return 261
	}
	return uint16(p.scanline)
}

func (p *Ppu) FrameCount() uint64 { return p.frame }

// ReadRegister implements mmu.PpuPort: CPU access to $2000-$2007,
// already resolved to its canonical address by the caller's mirroring.
func (p *Ppu) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		v := p.status
		p.status &^= 0x80
		p.w = false
		return v
	case 0x2004:
		return p.oam[p.oamAddr]
	case 0x2007:
		return p.readData()
	default:
		// PPUCTRL/PPUMASK/OAMADDR/PPUSCROLL/PPUADDR are write-only;
		// behavior on read is unspecified beyond mirroring (spec.md
		// §9), so return PPUSTATUS' low five bits as a stand-in
		// open-bus value; nothing sets those bits, so this is 0.
		return p.status & 0x1F
	}
}

// WriteRegister implements mmu.PpuPort.
func (p *Ppu) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2000:
		p.ctrl = value
		p.t = (p.t &^ 0x0C00) | (uint16(value)&0x03)<<10
	case 0x2001:
		p.mask = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		if !p.w {
			p.t = (p.t &^ 0x001F) | uint16(value>>3)
			p.x = value & 0x07
		} else {
			p.t = (p.t &^ 0x73E0) | (uint16(value)&0x07)<<12 | (uint16(value)&0xF8)<<2
		}
		p.w = !p.w
	case 0x2006:
		if !p.w {
			p.t = (p.t &^ 0x7F00) | (uint16(value)&0x3F)<<8
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(value)
			p.v = p.t
		}
		p.w = !p.w
	case 0x2007:
		p.writeData(value)
	}
}

func (p *Ppu) readData() uint8 {
	addr := p.v & 0x3FFF
	var v uint8
	if addr >= 0x3F00 {
		v = p.readPalette(addr)
		p.readBuffer = p.readVRAM(addr - 0x1000)
	} else {
		v = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	}
	p.advanceVramAddr()
	return v
}

func (p *Ppu) writeData(value uint8) {
	addr := p.v & 0x3FFF
	if addr >= 0x3F00 {
		p.writePalette(addr, value)
	} else {
		p.writeVRAM(addr, value)
	}
	p.advanceVramAddr()
}

func (p *Ppu) advanceVramAddr() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

func (p *Ppu) readVRAM(addr uint16) uint8 {
	if addr < 0x2000 {
		if p.chrBus == nil {
			return 0
		}
		v, _ := p.chrBus.ReadByte(addr)
		return v
	}
	return p.vram[p.nametableIndex(addr)]
}

func (p *Ppu) writeVRAM(addr uint16, value uint8) {
	if addr < 0x2000 {
		if p.chrBus != nil {
			_ = p.chrBus.WriteByte(addr, value)
		}
		return
	}
	p.vram[p.nametableIndex(addr)] = value
}

// nametableIndex applies the cartridge's mirroring mode to a $2000-$2FFF
// PPU address, folding it into the 2KiB of physical nametable RAM.
func (p *Ppu) nametableIndex(addr uint16) uint16 {
	offset := (addr - 0x2000) % 0x1000
	table := offset / 0x400
	cell := offset % 0x400
	switch p.mirror {
	case MirrorVertical:
		return (table%2)*0x400 + cell
	case MirrorSingleScreen0:
		return cell
	case MirrorSingleScreen1:
		return 0x400 + cell
	default: // MirrorHorizontal
		return (table/2)*0x400 + cell
	}
}

func (p *Ppu) readPalette(addr uint16) uint8 {
	return p.palette[paletteIndex(addr)]
}

func (p *Ppu) writePalette(addr uint16, value uint8) {
	p.palette[paletteIndex(addr)] = value
}

func paletteIndex(addr uint16) uint16 {
	i := (addr - 0x3F00) % 32
	if i%4 == 0 {
		i &= 0x0F // $3F10/$3F14/$3F18/$3F1C mirror $3F00/$3F04/$3F08/$3F0C
	}
	return i
}

// Execute advances the PPU by one cycle, driving scanline/cycle
// counters, VBlank set/clear, and the NMI edge callback.
func (p *Ppu) Execute() {
	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frame++
			p.oddFrame = !p.oddFrame
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status |= 0x80
		if p.ctrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if p.scanline == -1 && p.cycle == 1 {
		p.status &^= 0x80
	}
}

// chrBank routes $0000-$1FFF of the PPU bus to the cartridge's CHR
// window — the only non-flat bank the PPU side needs, since pattern
// tables have no uniform mirroring to express via membank's modulo size.
type chrBank struct {
	port ChrPort
}

func newChrBank(port ChrPort) *chrBank { return &chrBank{port: port} }

func (c *chrBank) IsAddressInRange(addr uint16) bool { return addr < 0x2000 }
func (c *chrBank) Read(addr uint16) uint8             { return c.port.ReadCHR(addr) }
func (c *chrBank) Write(addr uint16, v uint8)         { c.port.WriteCHR(addr, v) }

var _ mmu.Bank = (*chrBank)(nil)
var _ mmu.Bank = (*membank.Bank)(nil)
