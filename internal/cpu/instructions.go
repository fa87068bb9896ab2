package cpu

// buildPipeline composes the addressing-mode prefix (internal/cpu's
// addrPrefix) with the family's operation step(s) for op, or builds a
// dedicated pipeline for instructions with no uniform addressing
// treatment (branches, stack ops, JSR/RTS/RTI/BRK, transfers, flag ops).
func (c *Cpu) buildPipeline(op *Opcode) *Pipeline {
	switch op.Family {
	case BRK:
		return c.brkPipeline()
	case JSR:
		return c.jsrPipeline()
	case RTS:
		return c.rtsPipeline()
	case RTI:
		return c.rtiPipeline()
	case JMP:
		if op.Mode == Indirect {
			return c.jmpIndirectPipeline()
		}
		return c.jmpAbsolutePipeline()
	case PHA:
		return c.pushPipeline(func(c *Cpu) uint8 { return c.Reg.A })
	case PHP:
		return c.pushPipeline(func(c *Cpu) uint8 { return (c.Reg.P | flag5Mask) | bFlagMask })
	case PLA:
		return c.pullAPipeline()
	case PLP:
		return c.pullPPipeline()
	case TAX:
		return c.transferPipeline(func(c *Cpu) { c.Reg.X = c.Reg.A; c.setZN(c.Reg.X) })
	case TAY:
		return c.transferPipeline(func(c *Cpu) { c.Reg.Y = c.Reg.A; c.setZN(c.Reg.Y) })
	case TXA:
		return c.transferPipeline(func(c *Cpu) { c.Reg.A = c.Reg.X; c.setZN(c.Reg.A) })
	case TYA:
		return c.transferPipeline(func(c *Cpu) { c.Reg.A = c.Reg.Y; c.setZN(c.Reg.A) })
	case TSX:
		return c.transferPipeline(func(c *Cpu) { c.Reg.X = c.Reg.SP; c.setZN(c.Reg.X) })
	case TXS:
		return c.transferPipeline(func(c *Cpu) { c.Reg.SP = c.Reg.X })
	case INX:
		return c.regStepPipeline(func(c *Cpu) { c.Reg.X++; c.setZN(c.Reg.X) })
	case INY:
		return c.regStepPipeline(func(c *Cpu) { c.Reg.Y++; c.setZN(c.Reg.Y) })
	case DEX:
		return c.regStepPipeline(func(c *Cpu) { c.Reg.X--; c.setZN(c.Reg.X) })
	case DEY:
		return c.regStepPipeline(func(c *Cpu) { c.Reg.Y--; c.setZN(c.Reg.Y) })
	case CLC:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(cFlagMask, false) })
	case SEC:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(cFlagMask, true) })
	case CLD:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(dFlagMask, false) })
	case SED:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(dFlagMask, true) })
	case CLI:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(iFlagMask, false) })
	case SEI:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(iFlagMask, true) })
	case CLV:
		return c.flagPipeline(func(c *Cpu) { c.setFlag(vFlagMask, false) })
	case BCC:
		return c.branchPipeline(func(c *Cpu) bool { return !c.flag(cFlagMask) })
	case BCS:
		return c.branchPipeline(func(c *Cpu) bool { return c.flag(cFlagMask) })
	case BEQ:
		return c.branchPipeline(func(c *Cpu) bool { return c.flag(zFlagMask) })
	case BNE:
		return c.branchPipeline(func(c *Cpu) bool { return !c.flag(zFlagMask) })
	case BPL:
		return c.branchPipeline(func(c *Cpu) bool { return !c.flag(nFlagMask) })
	case BMI:
		return c.branchPipeline(func(c *Cpu) bool { return c.flag(nFlagMask) })
	case BVC:
		return c.branchPipeline(func(c *Cpu) bool { return !c.flag(vFlagMask) })
	case BVS:
		return c.branchPipeline(func(c *Cpu) bool { return c.flag(vFlagMask) })
	case NOP:
		if op.Mode == Implied {
			return c.regStepPipeline(func(c *Cpu) {})
		}
		return c.addressedNopPipeline(op)
	default:
		return c.genericPipeline(op)
	}
}

// genericPipeline handles every family whose addressing treatment is
// uniform: ADC/AND/BIT/CMP/CPX/CPY/EOR/LDA/LDX/LDY/LAX/ORA/SBC (read),
// STA/STX/STY (write), ASL/LSR/ROL/ROR/INC/DEC (read-modify-write,
// including the Accumulator variants of the shift/rotate family).
func (c *Cpu) genericPipeline(op *Opcode) *Pipeline {
	if op.Mode == Accumulator {
		return NewPipeline(func(c *Cpu) StepResult {
			c.Reg.A = c.applyRMW(op.Family, c.Reg.A)
			return Stop
		})
	}

	prefix := addrPrefix(op.Mode, op.Access)
	var final Step

	switch op.Access {
	case AccessRead:
		final = func(c *Cpu) StepResult {
			var operand uint8
			if op.Mode == Immediate {
				operand = c.fetchPC()
			} else {
				operand = c.read(c.effectiveAddr)
			}
			c.applyRead(op.Family, operand)
			return Stop
		}
	case AccessWrite:
		final = func(c *Cpu) StepResult {
			c.write(c.effectiveAddr, c.valueFor(op.Family))
			return Stop
		}
	case AccessReadWrite:
		final = func(c *Cpu) StepResult {
			c.write(c.effectiveAddr, c.applyRMW(op.Family, c.tmp))
			return Stop
		}
	default:
		final = func(c *Cpu) StepResult { return Stop }
	}

	return NewPipeline(append(prefix, final)...)
}

// addressedNopPipeline reproduces the bus traffic of an undocumented NOP
// that uses a real addressing mode (reads are issued for side-effect
// fidelity on memory-mapped peripherals; the value is discarded).
func (c *Cpu) addressedNopPipeline(op *Opcode) *Pipeline {
	prefix := addrPrefix(op.Mode, AccessRead)
	final := func(c *Cpu) StepResult {
		if op.Mode == Immediate {
			c.fetchPC()
		} else {
			c.read(c.effectiveAddr)
		}
		return Stop
	}
	return NewPipeline(append(prefix, final)...)
}

func (c *Cpu) valueFor(f Family) uint8 {
	switch f {
	case STA:
		return c.Reg.A
	case STX:
		return c.Reg.X
	case STY:
		return c.Reg.Y
	}
	return 0
}

// applyRead performs the ALU/load/compare semantics whose sole effect is
// register and flag updates from a fetched operand.
func (c *Cpu) applyRead(f Family, m uint8) {
	switch f {
	case ADC:
		c.adc(m)
	case SBC:
		c.adc(^m)
	case AND:
		c.Reg.A &= m
		c.setZN(c.Reg.A)
	case ORA:
		c.Reg.A |= m
		c.setZN(c.Reg.A)
	case EOR:
		c.Reg.A ^= m
		c.setZN(c.Reg.A)
	case BIT:
		c.setFlag(zFlagMask, c.Reg.A&m == 0)
		c.setFlag(vFlagMask, m&vFlagMask != 0)
		c.setFlag(nFlagMask, m&nFlagMask != 0)
	case CMP:
		c.compare(c.Reg.A, m)
	case CPX:
		c.compare(c.Reg.X, m)
	case CPY:
		c.compare(c.Reg.Y, m)
	case LDA:
		c.Reg.A = m
		c.setZN(c.Reg.A)
	case LDX:
		c.Reg.X = m
		c.setZN(c.Reg.X)
	case LDY:
		c.Reg.Y = m
		c.setZN(c.Reg.Y)
	case LAX:
		c.Reg.A = m
		c.Reg.X = m
		c.setZN(m)
	}
}

// adc implements both ADC (operand as given) and SBC (operand
// pre-complemented by the caller) since both share one result/flag
// formula on NMOS 6502 hardware; decimal mode is never honored.
func (c *Cpu) adc(m uint8) {
	carry := uint16(0)
	if c.flag(cFlagMask) {
		carry = 1
	}
	a := uint16(c.Reg.A)
	result := a + uint16(m) + carry
	c.setFlag(cFlagMask, result > 0xFF)
	r8 := uint8(result)
	c.setFlag(zFlagMask, r8 == 0)
	c.setFlag(nFlagMask, r8&0x80 != 0)
	c.setFlag(vFlagMask, (uint8(a)^r8)&(m^r8)&0x80 != 0)
	c.Reg.A = r8
}

func (c *Cpu) compare(reg, m uint8) {
	t := uint16(reg) - uint16(m)
	c.setFlag(cFlagMask, reg >= m)
	c.setFlag(zFlagMask, reg == m)
	c.setFlag(nFlagMask, uint8(t)&0x80 != 0)
}

// applyRMW performs the shift/rotate/inc/dec semantics shared by the
// memory and Accumulator forms, returning the new value for the caller
// to write back.
func (c *Cpu) applyRMW(f Family, old uint8) uint8 {
	switch f {
	case ASL:
		c.setFlag(cFlagMask, old&0x80 != 0)
		v := old << 1
		c.setZN(v)
		return v
	case LSR:
		c.setFlag(cFlagMask, old&0x01 != 0)
		v := old >> 1
		c.setZN(v)
		return v
	case ROL:
		carryIn := uint8(0)
		if c.flag(cFlagMask) {
			carryIn = 1
		}
		c.setFlag(cFlagMask, old&0x80 != 0)
		v := (old << 1) | carryIn
		c.setZN(v)
		return v
	case ROR:
		carryIn := uint8(0)
		if c.flag(cFlagMask) {
			carryIn = 0x80
		}
		c.setFlag(cFlagMask, old&0x01 != 0)
		v := (old >> 1) | carryIn
		c.setZN(v)
		return v
	case INC:
		v := old + 1
		c.setZN(v)
		return v
	case DEC:
		v := old - 1
		c.setZN(v)
		return v
	}
	return old
}

// regStepPipeline is the single-cycle pattern for INX/INY/DEX/DEY and
// the implicit NOP: one bus-silent step that mutates registers/flags.
func (c *Cpu) regStepPipeline(f func(c *Cpu)) *Pipeline {
	return NewPipeline(func(c *Cpu) StepResult {
		f(c)
		return Stop
	})
}

func (c *Cpu) flagPipeline(f func(c *Cpu)) *Pipeline {
	return NewPipeline(func(c *Cpu) StepResult {
		f(c)
		return Stop
	})
}

func (c *Cpu) transferPipeline(f func(c *Cpu)) *Pipeline {
	return NewPipeline(func(c *Cpu) StepResult {
		f(c)
		return Stop
	})
}

// pushPipeline is PHA/PHP: one dummy read (the internal cycle hardware
// spends deciding what to push), then the push itself. 3 cycles total.
func (c *Cpu) pushPipeline(value func(c *Cpu) uint8) *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.push(value(c)); return Stop },
	)
}

// pullAPipeline is PLA: dummy read, sp increment (idle), pop into A.
func (c *Cpu) pullAPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.read(stackBase + uint16(c.Reg.SP)); return Continue },
		func(c *Cpu) StepResult {
			c.Reg.A = c.pop()
			c.setZN(c.Reg.A)
			return Stop
		},
	)
}

// pullPPipeline is PLP: same shape as PLA, but forces FLAG_5 set and B
// clear on the popped byte.
func (c *Cpu) pullPPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.read(stackBase + uint16(c.Reg.SP)); return Continue },
		func(c *Cpu) StepResult {
			c.Reg.P = (c.pop() | flag5Mask) &^ bFlagMask
			return Stop
		},
	)
}

// branchPipeline is Bxx: first step checks the condition; if false, pc
// already advanced past the operand byte is wrong — the operand byte
// must still be consumed even when not taken, so the first step both
// fetches the offset and checks the condition. If false, Stop (2 cycles
// total). If true, fetch already done; compute new pc and continue
// unless a page cross adds one idle cycle.
func (c *Cpu) branchPipeline(taken func(c *Cpu) bool) *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult {
			offset := int8(c.fetchPC())
			if !taken(c) {
				return Stop
			}
			oldPC := c.Reg.PC
			newPC := uint16(int32(oldPC) + int32(offset))
			c.baseAddr = oldPC
			c.effectiveAddr = newPC
			c.pageCross = crosses(oldPC, newPC)
			return Continue
		},
		func(c *Cpu) StepResult {
			c.read(c.baseAddr) // idle read while pc settles to the branch target
			c.Reg.PC = c.effectiveAddr
			if !c.pageCross {
				return Stop
			}
			return Continue
		},
		func(c *Cpu) StepResult {
			c.read(c.Reg.PC) // extra idle cycle on taken-branch page cross
			return Stop
		},
	)
}

// jmpAbsolutePipeline is plain JMP $nnnn: fetch low, fetch high and jump.
func (c *Cpu) jmpAbsolutePipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
		func(c *Cpu) StepResult {
			hi := c.fetchPC()
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp)
			return Stop
		},
	)
}

// jmpIndirectPipeline reproduces the mandatory page-wrap bug: the high
// byte is read from (pointer & 0xFF00) | ((pointer+1) & 0xFF), never
// crossing into the next page.
func (c *Cpu) jmpIndirectPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
		func(c *Cpu) StepResult {
			hi := c.fetchPC()
			c.baseAddr = uint16(hi)<<8 | uint16(c.tmp)
			return Continue
		},
		func(c *Cpu) StepResult { c.tmp2 = c.read(c.baseAddr); return Continue },
		func(c *Cpu) StepResult {
			hiAddr := (c.baseAddr & 0xFF00) | ((c.baseAddr + 1) & 0x00FF)
			hi := c.read(hiAddr)
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp2)
			return Stop
		},
	)
}

// jsrPipeline follows hardware's curious cycle shape: fetch low,
// internal delay, push pc high, push pc low, fetch high and jump. pc
// pushed is the address of the last byte of JSR (the current pc at the
// time of the push, one less than the return address, since the
// high-byte fetch has not happened yet).
func (c *Cpu) jsrPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
		func(c *Cpu) StepResult { c.read(stackBase + uint16(c.Reg.SP)); return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC >> 8)); return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC & 0xFF)); return Continue },
		func(c *Cpu) StepResult {
			hi := c.fetchPC()
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp)
			return Stop
		},
	)
}

// rtsPipeline: dummy read, idle stack read, pop low, pop high, then
// pc = (high<<8|low)+1 with a dummy read. 6 cycles total.
func (c *Cpu) rtsPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.read(stackBase + uint16(c.Reg.SP)); return Continue },
		func(c *Cpu) StepResult { c.tmp = c.pop(); return Continue },
		func(c *Cpu) StepResult { c.tmp2 = c.pop(); return Continue },
		func(c *Cpu) StepResult {
			c.Reg.PC = uint16(c.tmp2)<<8 | uint16(c.tmp)
			c.Reg.PC++
			c.read(c.Reg.PC)
			return Stop
		},
	)
}

// rtiPipeline: pop p (force FLAG_5, clear B), pop pc low, pop pc high.
// Unlike RTS, pc is not incremented afterward.
func (c *Cpu) rtiPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); return Continue },
		func(c *Cpu) StepResult { c.read(stackBase + uint16(c.Reg.SP)); return Continue },
		func(c *Cpu) StepResult {
			c.Reg.P = (c.pop() | flag5Mask) &^ bFlagMask
			return Continue
		},
		func(c *Cpu) StepResult { c.tmp = c.pop(); return Continue },
		func(c *Cpu) StepResult {
			hi := c.pop()
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp)
			return Stop
		},
	)
}

// brkPipeline is treated like an interrupt: dummy read, push pc high,
// push pc low, push p|B_FLAG, read vector low, read vector high. 7
// cycles total.
func (c *Cpu) brkPipeline() *Pipeline {
	return NewPipeline(
		func(c *Cpu) StepResult { c.read(c.Reg.PC); c.Reg.PC++; return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC >> 8)); return Continue },
		func(c *Cpu) StepResult { c.push(uint8(c.Reg.PC & 0xFF)); return Continue },
		func(c *Cpu) StepResult {
			c.push((c.Reg.P | flag5Mask) | bFlagMask)
			c.setFlag(iFlagMask, true)
			return Continue
		},
		func(c *Cpu) StepResult { c.tmp = c.read(0xFFFE); return Continue },
		func(c *Cpu) StepResult {
			hi := c.read(0xFFFF)
			c.Reg.PC = uint16(hi)<<8 | uint16(c.tmp)
			return Stop
		},
	)
}
