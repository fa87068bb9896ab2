// Package mmu implements the CPU-side memory bus: an ordered list of
// banks, each claiming a fixed address range, with the first matching
// bank winning on every access.
package mmu

import "fmt"

// Bank is anything the Mmu can route an address to: internal RAM, PPU
// registers, APU/IO, or the cartridge. membank.Bank satisfies this for
// plain backing-array storage; PpuBank/ApuBank/RomBank below satisfy it
// for components with read/write side effects.
type Bank interface {
	IsAddressInRange(addr uint16) bool
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// ErrInvalidAddress is returned (wrapped with the offending address and
// direction) when no installed bank claims an address.
var ErrInvalidAddress = fmt.Errorf("invalid address")

// AddressError reports an access to an address no bank covers.
type AddressError struct {
	Addr  uint16
	Write bool
}

func (e *AddressError) Error() string {
	dir := "read"
	if e.Write {
		dir = "write"
	}
	return fmt.Sprintf("mmu: invalid address %s $%04X", dir, e.Addr)
}

func (e *AddressError) Unwrap() error { return ErrInvalidAddress }

// Mmu composes an ordered list of banks and dispatches each access to the
// first one whose range contains the address.
type Mmu struct {
	banks []Bank
	// lastValue is the last byte placed on the bus by any access,
	// returned for addresses with no documented read behavior (open bus).
	lastValue uint8
}

// New creates an Mmu with no banks installed; use Install to add them in
// priority order (first match wins, so narrower/more specific ranges
// should be installed before broader fallbacks).
func New() *Mmu {
	return &Mmu{}
}

// Install appends a bank to the end of the routing list.
func (m *Mmu) Install(b Bank) {
	m.banks = append(m.banks, b)
}

func (m *Mmu) find(addr uint16) Bank {
	for _, b := range m.banks {
		if b.IsAddressInRange(addr) {
			return b
		}
	}
	return nil
}

// ReadByte reads one byte, returning an *AddressError if no bank claims
// addr. Memory-mapped registers with read side effects are invoked
// exactly once per call.
func (m *Mmu) ReadByte(addr uint16) (uint8, error) {
	b := m.find(addr)
	if b == nil {
		return m.lastValue, &AddressError{Addr: addr, Write: false}
	}
	v := b.Read(addr)
	m.lastValue = v
	return v, nil
}

// WriteByte writes one byte, returning an *AddressError if no bank
// claims addr.
func (m *Mmu) WriteByte(addr uint16, value uint8) error {
	b := m.find(addr)
	if b == nil {
		return &AddressError{Addr: addr, Write: true}
	}
	b.Write(addr, value)
	m.lastValue = value
	return nil
}

// ReadWord performs two real bus reads at addr and addr+1 and composes
// them little-endian. There is no atomicity across the two halves: a
// memory-mapped register with read side effects observes both accesses,
// matching real 6502 behavior.
func (m *Mmu) ReadWord(addr uint16) (uint16, error) {
	lo, err := m.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// WriteWord performs two real bus writes at addr and addr+1, low byte
// first, little-endian.
func (m *Mmu) WriteWord(addr uint16, value uint16) error {
	if err := m.WriteByte(addr, uint8(value&0xFF)); err != nil {
		return err
	}
	return m.WriteByte(addr+1, uint8(value>>8))
}
