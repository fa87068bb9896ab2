package cpu

// fetchPC reads the byte at pc and advances pc; used for every operand
// fetch in every addressing mode.
func (c *Cpu) fetchPC() uint8 {
	v := c.read(c.Reg.PC)
	c.Reg.PC++
	return v
}

func crosses(base, effective uint16) bool {
	return base&0xFF00 != effective&0xFF00
}

// addrPrefix returns the bus-cycle steps that compute c.effectiveAddr
// (and, for read-modify-write access, pre-read the old value into
// c.tmp and dummy-write it back) for one addressing mode / access class
// combination. Immediate, Implied and Accumulator have no prefix steps:
// their single operation step folds address computation into itself,
// matching their 2-cycle total.
func addrPrefix(mode AddressMode, access MemoryAccess) []Step {
	switch mode {
	case Implied, Accumulator, Immediate:
		return nil

	case Zeropage:
		steps := []Step{
			func(c *Cpu) StepResult {
				c.effectiveAddr = uint16(c.fetchPC())
				return Continue
			},
		}
		return appendRMW(steps, access)

	case ZeropageX:
		return zeropageIndexed(c_xIndex, access)
	case ZeropageY:
		return zeropageIndexed(c_yIndex, access)

	case Absolute:
		steps := []Step{
			func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
			func(c *Cpu) StepResult {
				hi := c.fetchPC()
				c.effectiveAddr = uint16(hi)<<8 | uint16(c.tmp)
				return Continue
			},
		}
		return appendRMW(steps, access)

	case AbsoluteX:
		return absoluteIndexed(c_xIndex, access)
	case AbsoluteY:
		return absoluteIndexed(c_yIndex, access)

	case IndexedIndirect:
		return []Step{
			func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
			func(c *Cpu) StepResult { c.read(uint16(c.tmp)); return Continue },
			func(c *Cpu) StepResult {
				c.tmp2 = c.read(uint16(uint8(c.tmp + c.Reg.X)))
				return Continue
			},
			func(c *Cpu) StepResult {
				hi := c.read(uint16(uint8(c.tmp + c.Reg.X + 1)))
				c.effectiveAddr = uint16(hi)<<8 | uint16(c.tmp2)
				return Continue
			},
		}

	case IndirectIndexed:
		return indirectIndexed(access)

	case Indirect:
		// Only JMP uses this mode; built directly in instructions.go
		// since it never goes through the generic operate step.
		return nil
	}
	return nil
}

// index selects which register an indexed addressing mode uses.
type index uint8

const (
	c_xIndex index = iota
	c_yIndex
)

func (c *Cpu) indexValue(idx index) uint8 {
	if idx == c_xIndex {
		return c.Reg.X
	}
	return c.Reg.Y
}

func zeropageIndexed(idx index, access MemoryAccess) []Step {
	steps := []Step{
		func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue },
		func(c *Cpu) StepResult {
			c.read(uint16(c.tmp)) // dummy read from unindexed base
			c.effectiveAddr = uint16(uint8(c.tmp + c.indexValue(idx)))
			return Continue
		},
	}
	return appendRMW(steps, access)
}

func absoluteIndexed(idx index, access MemoryAccess) []Step {
	fetchLow := func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue }
	fetchHighAndCompute := func(c *Cpu) StepResult {
		hi := c.fetchPC()
		c.baseAddr = uint16(hi)<<8 | uint16(c.tmp)
		c.effectiveAddr = c.baseAddr + uint16(c.indexValue(idx))
		c.pageCross = crosses(c.baseAddr, c.effectiveAddr)
		if access == AccessRead && !c.pageCross {
			return Skip
		}
		return Continue
	}
	dummyRead := func(c *Cpu) StepResult {
		c.read(c.effectiveAddr - 0x0100)
		return Continue
	}

	steps := []Step{fetchLow, fetchHighAndCompute, dummyRead}
	return appendRMW(steps, access)
}

func indirectIndexed(access MemoryAccess) []Step {
	fetchZp := func(c *Cpu) StepResult { c.tmp = c.fetchPC(); return Continue }
	readLow := func(c *Cpu) StepResult { c.tmp2 = c.read(uint16(c.tmp)); return Continue }
	readHighAndCompute := func(c *Cpu) StepResult {
		hi := c.read(uint16(uint8(c.tmp + 1)))
		pointer := uint16(hi)<<8 | uint16(c.tmp2)
		c.effectiveAddr = pointer + uint16(c.Reg.Y)
		c.pageCross = crosses(pointer, c.effectiveAddr)
		if access == AccessRead && !c.pageCross {
			return Skip
		}
		return Continue
	}
	dummyRead := func(c *Cpu) StepResult {
		c.read(c.effectiveAddr - 0x0100)
		return Continue
	}

	steps := []Step{fetchZp, readLow, readHighAndCompute, dummyRead}
	return appendRMW(steps, access)
}

// appendRMW appends the old-value read and dummy write-back steps when
// access is read-modify-write; both are no-ops for the other classes.
func appendRMW(steps []Step, access MemoryAccess) []Step {
	if access != AccessReadWrite {
		return steps
	}
	return append(steps,
		func(c *Cpu) StepResult { c.tmp = c.read(c.effectiveAddr); return Continue },
		func(c *Cpu) StepResult { c.write(c.effectiveAddr, c.tmp); return Continue },
	)
}
