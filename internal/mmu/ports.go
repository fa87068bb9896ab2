package mmu

// PpuPort is the slice of IPpu (spec.md §6) the CPU-side bus needs: byte
// access to the mirrored register window at $2000-$3FFF.
type PpuPort interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// ApuPort is the $4000-$4013/$4015 APU register window, plus the $4017 frame
// counter write it shares with the input port's controller-2 read.
type ApuPort interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// InputPort is the $4016-$4017 controller-strobe window.
type InputPort interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// RomPort is IRom: the cartridge's PRG window as seen from the CPU bus.
type RomPort interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
}

// PpuBank routes $2000-$3FFF (mirrored every 8 bytes) to a PpuPort.
type PpuBank struct {
	port PpuPort
}

// NewPpuBank wraps port as an mmu.Bank.
func NewPpuBank(port PpuPort) *PpuBank { return &PpuBank{port: port} }

func (p *PpuBank) IsAddressInRange(addr uint16) bool {
	return addr >= 0x2000 && addr <= 0x3FFF
}

func (p *PpuBank) Read(addr uint16) uint8 {
	return p.port.ReadRegister(0x2000 + (addr & 0x0007))
}

func (p *PpuBank) Write(addr uint16, value uint8) {
	p.port.WriteRegister(0x2000+(addr&0x0007), value)
}

// ApuBank routes $4000-$4013 and $4015 to an ApuPort. $4014 (OAMDMA) is
// excluded — it belongs to the system's oamDmaBank, not the APU — so the
// two banks never overlap regardless of install order.
type ApuBank struct {
	port ApuPort
}

// NewApuBank wraps port as an mmu.Bank.
func NewApuBank(port ApuPort) *ApuBank { return &ApuBank{port: port} }

func (a *ApuBank) IsAddressInRange(addr uint16) bool {
	return (addr >= 0x4000 && addr <= 0x4013) || addr == 0x4015
}

func (a *ApuBank) Read(addr uint16) uint8     { return a.port.ReadRegister(addr) }
func (a *ApuBank) Write(addr uint16, v uint8) { a.port.WriteRegister(addr, v) }

// IoBank routes $4016-$4017: both addresses go to the controller-strobe
// InputPort, and $4017 writes also reach the APU's frame counter —
// hardware shares that address between the two devices.
type IoBank struct {
	input InputPort
	apu   ApuPort
}

// NewIoBank wraps input and apu as an mmu.Bank.
func NewIoBank(input InputPort, apu ApuPort) *IoBank { return &IoBank{input: input, apu: apu} }

func (i *IoBank) IsAddressInRange(addr uint16) bool { return addr == 0x4016 || addr == 0x4017 }

func (i *IoBank) Read(addr uint16) uint8 { return i.input.Read(addr) }

func (i *IoBank) Write(addr uint16, v uint8) {
	i.input.Write(addr, v)
	if addr == 0x4017 {
		i.apu.WriteRegister(addr, v)
	}
}

// RomBank routes the cartridge's PRG window, $4020-$FFFF per spec.md
// §4.1 (the NROM implementation only answers for $6000 and up; below that
// in this range reads return 0 and writes are ignored).
type RomBank struct {
	port RomPort
}

// NewRomBank wraps port as an mmu.Bank.
func NewRomBank(port RomPort) *RomBank { return &RomBank{port: port} }

func (r *RomBank) IsAddressInRange(addr uint16) bool {
	return addr >= 0x4020
}

func (r *RomBank) Read(addr uint16) uint8     { return r.port.ReadPRG(addr) }
func (r *RomBank) Write(addr uint16, v uint8) { r.port.WritePRG(addr, v) }
