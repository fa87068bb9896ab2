// Package membank implements the fixed-range, optionally mirrored byte
// storage the MMU routes addresses through.
package membank

import "fmt"

// Bank is a read/write view over [StartAddr, EndAddr] backed by Size
// bytes. Addresses are taken modulo Size, so mirroring falls out for free
// whenever Size is smaller than the address range it covers.
type Bank struct {
	name      string
	startAddr uint16
	endAddr   uint16
	data      []uint8
}

// New creates a bank covering [start, end] backed by size bytes.
//
// size must evenly divide end-start+1 for mirroring to land on clean
// boundaries; gones only ever mirrors RAM (2KiB over 8KiB) and PPU
// registers (8 bytes over 8KiB), both of which do.
func New(name string, start, end uint16, size int) *Bank {
	if size <= 0 {
		panic(fmt.Sprintf("membank %s: non-positive size %d", name, size))
	}
	return &Bank{
		name:      name,
		startAddr: start,
		endAddr:   end,
		data:      make([]uint8, size),
	}
}

// NewFromBytes wraps an existing backing slice instead of allocating a
// fresh one — used for cartridge PRG/CHR windows that must alias the
// loaded ROM image rather than copy it.
func NewFromBytes(name string, start, end uint16, data []uint8) *Bank {
	if len(data) == 0 {
		panic(fmt.Sprintf("membank %s: empty backing slice", name))
	}
	return &Bank{
		name:      name,
		startAddr: start,
		endAddr:   end,
		data:      data,
	}
}

// Name identifies the bank for error messages and tracing.
func (b *Bank) Name() string { return b.name }

// StartAddr is the first address this bank claims.
func (b *Bank) StartAddr() uint16 { return b.startAddr }

// EndAddr is the last address (inclusive) this bank claims.
func (b *Bank) EndAddr() uint16 { return b.endAddr }

// IsAddressInRange reports whether addr falls within [StartAddr, EndAddr].
func (b *Bank) IsAddressInRange(addr uint16) bool {
	return addr >= b.startAddr && addr <= b.endAddr
}

func (b *Bank) offset(addr uint16) int {
	return int(addr-b.startAddr) % len(b.data)
}

// Read returns the byte at addr, mirrored modulo the backing size.
func (b *Bank) Read(addr uint16) uint8 {
	return b.data[b.offset(addr)]
}

// Write stores value at addr, mirrored modulo the backing size.
func (b *Bank) Write(addr uint16, value uint8) {
	b.data[b.offset(addr)] = value
}
