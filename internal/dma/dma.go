// Package dma implements the OAM DMA decorator: it wraps the CPU so the
// system driver can keep calling Execute() once per master tick without
// knowing whether a DMA transfer is in progress.
package dma

// Cpu is the slice of cpu.Cpu the decorator needs: it must keep ticking
// the wrapped CPU when no transfer is active, and must know the wrapped
// CPU's current cycle parity to decide the 513-vs-514 stall length.
type Cpu interface {
	Execute() error
	Cycle() uint64
	JustDecoded() bool
}

// Bus is the slice of mmu.Mmu the decorator needs to read the source
// page and write into the PPU's OAMDATA register.
type Bus interface {
	ReadByte(addr uint16) (uint8, error)
	WriteByte(addr uint16, value uint8) error
}

const oamDataRegister = 0x2004

// Dma decorates a Cpu with the 513/514-cycle OAM DMA stall: while a
// transfer is active, Execute performs one DMA micro-step instead of
// advancing the wrapped CPU.
type Dma struct {
	cpu Cpu
	bus Bus

	counter   uint16 // cycles remaining in the current transfer; 0 = idle
	startPage uint8
	offset    uint8
	pending   uint8
}

// New wraps cpu and bus.
func New(cpu Cpu, bus Bus) *Dma {
	return &Dma{cpu: cpu, bus: bus}
}

// Active reports whether a DMA transfer is currently stalling the CPU.
func (d *Dma) Active() bool { return d.counter > 0 }

// JustDecoded forwards the wrapped CPU's decode flag; a DMA micro-step
// never decodes.
func (d *Dma) JustDecoded() bool {
	if d.counter > 0 {
		return false
	}
	return d.cpu.JustDecoded()
}

// TriggerDMA begins a 256-byte OAM DMA transfer from page*0x100. The
// stall is 513 cycles, or 514 if triggered on an odd CPU cycle — the
// open question in spec.md §9 resolved using the CPU's post-increment
// cycle parity (the cycle count already reflects the triggering write's
// own bus cycle).
func (d *Dma) TriggerDMA(page uint8) {
	d.startPage = page
	d.offset = 0
	if d.cpu.Cycle()%2 == 1 {
		d.counter = 514
	} else {
		d.counter = 513
	}
}

// Execute advances by one master cycle: one DMA micro-step if a
// transfer is active, otherwise one CPU Execute call. Once past any
// pre-alignment idle cycle, the counter is always 512 at the first
// read/write cycle regardless of whether one or two idle cycles ran, so
// the alternation is read on even, write on odd.
func (d *Dma) Execute() error {
	if d.counter == 0 {
		return d.cpu.Execute()
	}

	if d.counter > 512 {
		// Pre-alignment idle cycle(s), present only when DMA was
		// triggered on an odd CPU cycle.
		d.counter--
		return nil
	}

	if d.counter%2 == 0 {
		addr := uint16(d.startPage)<<8 + uint16(d.offset)
		v, err := d.bus.ReadByte(addr)
		if err != nil {
			return err
		}
		d.pending = v
	} else {
		if err := d.bus.WriteByte(oamDataRegister, d.pending); err != nil {
			return err
		}
		d.offset++
	}
	d.counter--
	return nil
}
