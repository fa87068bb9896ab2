package cpu

// opcodeTable is the static 256-entry decode: each raw opcode byte maps
// to its Family/AddressMode/MemoryAccess. Entries never explicitly
// listed below default to {Invalid, Implied, AccessNone, false} and
// cause decode() to fail with a BadInstructionError naming the byte and
// the address it was fetched from.
var opcodeTable [256]Opcode

type opEntry struct {
	byte   uint8
	family Family
	mode   AddressMode
	access MemoryAccess
	undoc  bool
}

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = Opcode{Byte: uint8(i), Family: Invalid, Mode: Implied, Access: AccessNone}
	}
	for _, e := range officialOpcodes {
		opcodeTable[e.byte] = Opcode{Byte: e.byte, Family: e.family, Mode: e.mode, Access: e.access}
	}
	for _, e := range undocumentedOpcodes {
		opcodeTable[e.byte] = Opcode{Byte: e.byte, Family: e.family, Mode: e.mode, Access: e.access, Undocumented: true}
	}
}

// officialOpcodes is the documented 151-entry 6502 instruction set.
var officialOpcodes = []opEntry{
	{0x00, BRK, Implied, AccessNone, false},
	{0x01, ORA, IndexedIndirect, AccessRead, false},
	{0x05, ORA, Zeropage, AccessRead, false},
	{0x06, ASL, Zeropage, AccessReadWrite, false},
	{0x08, PHP, Implied, AccessNone, false},
	{0x09, ORA, Immediate, AccessRead, false},
	{0x0A, ASL, Accumulator, AccessReadWrite, false},
	{0x0D, ORA, Absolute, AccessRead, false},
	{0x0E, ASL, Absolute, AccessReadWrite, false},
	{0x10, BPL, Relative, AccessNone, false},
	{0x11, ORA, IndirectIndexed, AccessRead, false},
	{0x15, ORA, ZeropageX, AccessRead, false},
	{0x16, ASL, ZeropageX, AccessReadWrite, false},
	{0x18, CLC, Implied, AccessNone, false},
	{0x19, ORA, AbsoluteY, AccessRead, false},
	{0x1D, ORA, AbsoluteX, AccessRead, false},
	{0x1E, ASL, AbsoluteX, AccessReadWrite, false},
	{0x20, JSR, Absolute, AccessNone, false},
	{0x21, AND, IndexedIndirect, AccessRead, false},
	{0x24, BIT, Zeropage, AccessRead, false},
	{0x25, AND, Zeropage, AccessRead, false},
	{0x26, ROL, Zeropage, AccessReadWrite, false},
	{0x28, PLP, Implied, AccessNone, false},
	{0x29, AND, Immediate, AccessRead, false},
	{0x2A, ROL, Accumulator, AccessReadWrite, false},
	{0x2C, BIT, Absolute, AccessRead, false},
	{0x2D, AND, Absolute, AccessRead, false},
	{0x2E, ROL, Absolute, AccessReadWrite, false},
	{0x30, BMI, Relative, AccessNone, false},
	{0x31, AND, IndirectIndexed, AccessRead, false},
	{0x35, AND, ZeropageX, AccessRead, false},
	{0x36, ROL, ZeropageX, AccessReadWrite, false},
	{0x38, SEC, Implied, AccessNone, false},
	{0x39, AND, AbsoluteY, AccessRead, false},
	{0x3D, AND, AbsoluteX, AccessRead, false},
	{0x3E, ROL, AbsoluteX, AccessReadWrite, false},
	{0x40, RTI, Implied, AccessNone, false},
	{0x41, EOR, IndexedIndirect, AccessRead, false},
	{0x45, EOR, Zeropage, AccessRead, false},
	{0x46, LSR, Zeropage, AccessReadWrite, false},
	{0x48, PHA, Implied, AccessNone, false},
	{0x49, EOR, Immediate, AccessRead, false},
	{0x4A, LSR, Accumulator, AccessReadWrite, false},
	{0x4C, JMP, Absolute, AccessNone, false},
	{0x4D, EOR, Absolute, AccessRead, false},
	{0x4E, LSR, Absolute, AccessReadWrite, false},
	{0x50, BVC, Relative, AccessNone, false},
	{0x51, EOR, IndirectIndexed, AccessRead, false},
	{0x55, EOR, ZeropageX, AccessRead, false},
	{0x56, LSR, ZeropageX, AccessReadWrite, false},
	{0x58, CLI, Implied, AccessNone, false},
	{0x59, EOR, AbsoluteY, AccessRead, false},
	{0x5D, EOR, AbsoluteX, AccessRead, false},
	{0x5E, LSR, AbsoluteX, AccessReadWrite, false},
	{0x60, RTS, Implied, AccessNone, false},
	{0x61, ADC, IndexedIndirect, AccessRead, false},
	{0x65, ADC, Zeropage, AccessRead, false},
	{0x66, ROR, Zeropage, AccessReadWrite, false},
	{0x68, PLA, Implied, AccessNone, false},
	{0x69, ADC, Immediate, AccessRead, false},
	{0x6A, ROR, Accumulator, AccessReadWrite, false},
	{0x6C, JMP, Indirect, AccessNone, false},
	{0x6D, ADC, Absolute, AccessRead, false},
	{0x6E, ROR, Absolute, AccessReadWrite, false},
	{0x70, BVS, Relative, AccessNone, false},
	{0x71, ADC, IndirectIndexed, AccessRead, false},
	{0x75, ADC, ZeropageX, AccessRead, false},
	{0x76, ROR, ZeropageX, AccessReadWrite, false},
	{0x78, SEI, Implied, AccessNone, false},
	{0x79, ADC, AbsoluteY, AccessRead, false},
	{0x7D, ADC, AbsoluteX, AccessRead, false},
	{0x7E, ROR, AbsoluteX, AccessReadWrite, false},
	{0x81, STA, IndexedIndirect, AccessWrite, false},
	{0x84, STY, Zeropage, AccessWrite, false},
	{0x85, STA, Zeropage, AccessWrite, false},
	{0x86, STX, Zeropage, AccessWrite, false},
	{0x88, DEY, Implied, AccessNone, false},
	{0x8A, TXA, Implied, AccessNone, false},
	{0x8C, STY, Absolute, AccessWrite, false},
	{0x8D, STA, Absolute, AccessWrite, false},
	{0x8E, STX, Absolute, AccessWrite, false},
	{0x90, BCC, Relative, AccessNone, false},
	{0x91, STA, IndirectIndexed, AccessWrite, false},
	{0x94, STY, ZeropageX, AccessWrite, false},
	{0x95, STA, ZeropageX, AccessWrite, false},
	{0x96, STX, ZeropageY, AccessWrite, false},
	{0x98, TYA, Implied, AccessNone, false},
	{0x99, STA, AbsoluteY, AccessWrite, false},
	{0x9A, TXS, Implied, AccessNone, false},
	{0x9D, STA, AbsoluteX, AccessWrite, false},
	{0xA0, LDY, Immediate, AccessRead, false},
	{0xA1, LDA, IndexedIndirect, AccessRead, false},
	{0xA2, LDX, Immediate, AccessRead, false},
	{0xA4, LDY, Zeropage, AccessRead, false},
	{0xA5, LDA, Zeropage, AccessRead, false},
	{0xA6, LDX, Zeropage, AccessRead, false},
	{0xA8, TAY, Implied, AccessNone, false},
	{0xA9, LDA, Immediate, AccessRead, false},
	{0xAA, TAX, Implied, AccessNone, false},
	{0xAC, LDY, Absolute, AccessRead, false},
	{0xAD, LDA, Absolute, AccessRead, false},
	{0xAE, LDX, Absolute, AccessRead, false},
	{0xB0, BCS, Relative, AccessNone, false},
	{0xB1, LDA, IndirectIndexed, AccessRead, false},
	{0xB4, LDY, ZeropageX, AccessRead, false},
	{0xB5, LDA, ZeropageX, AccessRead, false},
	{0xB6, LDX, ZeropageY, AccessRead, false},
	{0xB8, CLV, Implied, AccessNone, false},
	{0xB9, LDA, AbsoluteY, AccessRead, false},
	{0xBA, TSX, Implied, AccessNone, false},
	{0xBC, LDY, AbsoluteX, AccessRead, false},
	{0xBD, LDA, AbsoluteX, AccessRead, false},
	{0xBE, LDX, AbsoluteY, AccessRead, false},
	{0xC0, CPY, Immediate, AccessRead, false},
	{0xC1, CMP, IndexedIndirect, AccessRead, false},
	{0xC4, CPY, Zeropage, AccessRead, false},
	{0xC5, CMP, Zeropage, AccessRead, false},
	{0xC6, DEC, Zeropage, AccessReadWrite, false},
	{0xC8, INY, Implied, AccessNone, false},
	{0xC9, CMP, Immediate, AccessRead, false},
	{0xCA, DEX, Implied, AccessNone, false},
	{0xCC, CPY, Absolute, AccessRead, false},
	{0xCD, CMP, Absolute, AccessRead, false},
	{0xCE, DEC, Absolute, AccessReadWrite, false},
	{0xD0, BNE, Relative, AccessNone, false},
	{0xD1, CMP, IndirectIndexed, AccessRead, false},
	{0xD5, CMP, ZeropageX, AccessRead, false},
	{0xD6, DEC, ZeropageX, AccessReadWrite, false},
	{0xD8, CLD, Implied, AccessNone, false},
	{0xD9, CMP, AbsoluteY, AccessRead, false},
	{0xDD, CMP, AbsoluteX, AccessRead, false},
	{0xDE, DEC, AbsoluteX, AccessReadWrite, false},
	{0xE0, CPX, Immediate, AccessRead, false},
	{0xE1, SBC, IndexedIndirect, AccessRead, false},
	{0xE4, CPX, Zeropage, AccessRead, false},
	{0xE5, SBC, Zeropage, AccessRead, false},
	{0xE6, INC, Zeropage, AccessReadWrite, false},
	{0xE8, INX, Implied, AccessNone, false},
	{0xE9, SBC, Immediate, AccessRead, false},
	{0xEA, NOP, Implied, AccessNone, false},
	{0xEC, CPX, Absolute, AccessRead, false},
	{0xED, SBC, Absolute, AccessRead, false},
	{0xEE, INC, Absolute, AccessReadWrite, false},
	{0xF0, BEQ, Relative, AccessNone, false},
	{0xF1, SBC, IndirectIndexed, AccessRead, false},
	{0xF5, SBC, ZeropageX, AccessRead, false},
	{0xF6, INC, ZeropageX, AccessReadWrite, false},
	{0xF8, SED, Implied, AccessNone, false},
	{0xF9, SBC, AbsoluteY, AccessRead, false},
	{0xFD, SBC, AbsoluteX, AccessRead, false},
	{0xFE, INC, AbsoluteX, AccessReadWrite, false},
}

// undocumentedOpcodes covers the subset spec.md scopes illegal-opcode
// fidelity to: LAX and the NOP variants (with correct bus traffic on
// their addressing modes). SAX/DCP/SBC-EB and the rest of the illegal
// set are deliberately left Invalid — a BadInstructionError on them is
// the documented behavior for anything outside this subset.
var undocumentedOpcodes = []opEntry{
	{0xA7, LAX, Zeropage, AccessRead, true},
	{0xB7, LAX, ZeropageY, AccessRead, true},
	{0xAF, LAX, Absolute, AccessRead, true},
	{0xBF, LAX, AbsoluteY, AccessRead, true},
	{0xA3, LAX, IndexedIndirect, AccessRead, true},
	{0xB3, LAX, IndirectIndexed, AccessRead, true},

	{0x1A, NOP, Implied, AccessNone, true},
	{0x3A, NOP, Implied, AccessNone, true},
	{0x5A, NOP, Implied, AccessNone, true},
	{0x7A, NOP, Implied, AccessNone, true},
	{0xDA, NOP, Implied, AccessNone, true},
	{0xFA, NOP, Implied, AccessNone, true},

	{0x80, NOP, Immediate, AccessRead, true},
	{0x82, NOP, Immediate, AccessRead, true},
	{0x89, NOP, Immediate, AccessRead, true},
	{0xC2, NOP, Immediate, AccessRead, true},
	{0xE2, NOP, Immediate, AccessRead, true},

	{0x04, NOP, Zeropage, AccessRead, true},
	{0x44, NOP, Zeropage, AccessRead, true},
	{0x64, NOP, Zeropage, AccessRead, true},

	{0x14, NOP, ZeropageX, AccessRead, true},
	{0x34, NOP, ZeropageX, AccessRead, true},
	{0x54, NOP, ZeropageX, AccessRead, true},
	{0x74, NOP, ZeropageX, AccessRead, true},
	{0xD4, NOP, ZeropageX, AccessRead, true},
	{0xF4, NOP, ZeropageX, AccessRead, true},

	{0x0C, NOP, Absolute, AccessRead, true},

	{0x1C, NOP, AbsoluteX, AccessRead, true},
	{0x3C, NOP, AbsoluteX, AccessRead, true},
	{0x5C, NOP, AbsoluteX, AccessRead, true},
	{0x7C, NOP, AbsoluteX, AccessRead, true},
	{0xDC, NOP, AbsoluteX, AccessRead, true},
	{0xFC, NOP, AbsoluteX, AccessRead, true},
}

// Lookup returns the decoded Opcode for a raw byte without consuming a
// cycle; used by the trace formatter to render instructions that have
// already been fetched.
func Lookup(b uint8) *Opcode {
	return &opcodeTable[b]
}
