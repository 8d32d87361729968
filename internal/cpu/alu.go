package cpu

// 8-bit arithmetic and logic. Each helper computes flags per the documented
// rule for its operation; callers store results where the opcode says.

func (c *CPU) add8(v uint8) {
	a := c.Regs.A
	r := a + v
	c.Regs.setZNHC(r == 0, false, a&0x0F+v&0x0F > 0x0F, uint16(a)+uint16(v) > 0xFF)
	c.Regs.A = r
}

func (c *CPU) adc8(v uint8) {
	a := c.Regs.A
	carry := uint8(0)
	if c.Regs.Has(FlagC) {
		carry = 1
	}
	r := a + v + carry
	c.Regs.setZNHC(r == 0, false,
		a&0x0F+v&0x0F+carry > 0x0F,
		uint16(a)+uint16(v)+uint16(carry) > 0xFF)
	c.Regs.A = r
}

func (c *CPU) sub8(v uint8) {
	a := c.Regs.A
	r := a - v
	c.Regs.setZNHC(r == 0, true, a&0x0F < v&0x0F, a < v)
	c.Regs.A = r
}

func (c *CPU) sbc8(v uint8) {
	a := c.Regs.A
	carry := uint8(0)
	if c.Regs.Has(FlagC) {
		carry = 1
	}
	r := a - v - carry
	c.Regs.setZNHC(r == 0, true,
		a&0x0F < v&0x0F+carry,
		uint16(a) < uint16(v)+uint16(carry))
	c.Regs.A = r
}

func (c *CPU) and8(v uint8) {
	c.Regs.A &= v
	c.Regs.setZNHC(c.Regs.A == 0, false, true, false)
}

func (c *CPU) xor8(v uint8) {
	c.Regs.A ^= v
	c.Regs.setZNHC(c.Regs.A == 0, false, false, false)
}

func (c *CPU) or8(v uint8) {
	c.Regs.A |= v
	c.Regs.setZNHC(c.Regs.A == 0, false, false, false)
}

// cp8 is subtraction for flags only; A is untouched.
func (c *CPU) cp8(v uint8) {
	a := c.Regs.A
	c.Regs.setZNHC(a == v, true, a&0x0F < v&0x0F, a < v)
}

// inc8 and dec8 preserve the carry flag.

func (c *CPU) inc8(v uint8) uint8 {
	r := v + 1
	c.Regs.Assign(FlagZ, r == 0)
	c.Regs.Assign(FlagN, false)
	c.Regs.Assign(FlagH, v&0x0F == 0x0F)
	return r
}

func (c *CPU) dec8(v uint8) uint8 {
	r := v - 1
	c.Regs.Assign(FlagZ, r == 0)
	c.Regs.Assign(FlagN, true)
	c.Regs.Assign(FlagH, v&0x0F == 0)
	return r
}

// add16 implements ADD HL,rr: Z is preserved, H carries out of bit 11.
func (c *CPU) add16(v uint16) {
	hl := c.Regs.HL()
	c.Regs.Assign(FlagN, false)
	c.Regs.Assign(FlagH, hl&0x0FFF+v&0x0FFF > 0x0FFF)
	c.Regs.Assign(FlagC, uint32(hl)+uint32(v) > 0xFFFF)
	c.Regs.SetHL(hl + v)
}

// addSPe8 computes SP plus a signed immediate, shared by ADD SP,e8 and
// LD HL,SP+e8. Flags come from unsigned byte arithmetic on the low byte.
func (c *CPU) addSPe8(offset uint8) uint16 {
	sp := c.Regs.SP
	e := uint16(int16(int8(offset))) //nolint:gosec // G115: sign extension
	c.Regs.setZNHC(false, false,
		sp&0x0F+uint16(offset)&0x0F > 0x0F,
		sp&0xFF+uint16(offset) > 0xFF)
	return sp + e
}

// daa adjusts A to binary-coded decimal after an add or subtract, using the
// N, H and C flags left by that operation.
func (c *CPU) daa() {
	a := c.Regs.A
	carry := c.Regs.Has(FlagC)

	if c.Regs.Has(FlagN) {
		if carry {
			a -= 0x60
		}
		if c.Regs.Has(FlagH) {
			a -= 0x06
		}
	} else {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.Regs.Has(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	}

	c.Regs.A = a
	c.Regs.Assign(FlagZ, a == 0)
	c.Regs.Assign(FlagH, false)
	c.Regs.Assign(FlagC, carry)
}

// Rotates and shifts. The CB-prefixed forms set Z from the result; the four
// A-register forms at 0x07/0x0F/0x17/0x1F always clear Z, which their
// handlers do after calling these.

func (c *CPU) rlc(v uint8) uint8 {
	r := v<<1 | v>>7
	c.Regs.setZNHC(r == 0, false, false, v&0x80 != 0)
	return r
}

func (c *CPU) rrc(v uint8) uint8 {
	r := v>>1 | v<<7
	c.Regs.setZNHC(r == 0, false, false, v&0x01 != 0)
	return r
}

func (c *CPU) rl(v uint8) uint8 {
	r := v << 1
	if c.Regs.Has(FlagC) {
		r |= 0x01
	}
	c.Regs.setZNHC(r == 0, false, false, v&0x80 != 0)
	return r
}

func (c *CPU) rr(v uint8) uint8 {
	r := v >> 1
	if c.Regs.Has(FlagC) {
		r |= 0x80
	}
	c.Regs.setZNHC(r == 0, false, false, v&0x01 != 0)
	return r
}

func (c *CPU) sla(v uint8) uint8 {
	r := v << 1
	c.Regs.setZNHC(r == 0, false, false, v&0x80 != 0)
	return r
}

// sra keeps bit 7, shifting arithmetically.
func (c *CPU) sra(v uint8) uint8 {
	r := v>>1 | v&0x80
	c.Regs.setZNHC(r == 0, false, false, v&0x01 != 0)
	return r
}

func (c *CPU) swap(v uint8) uint8 {
	r := v<<4 | v>>4
	c.Regs.setZNHC(r == 0, false, false, false)
	return r
}

func (c *CPU) srl(v uint8) uint8 {
	r := v >> 1
	c.Regs.setZNHC(r == 0, false, false, v&0x01 != 0)
	return r
}

// bit tests one bit, preserving carry.
func (c *CPU) bit(n, v uint8) {
	c.Regs.Assign(FlagZ, v&(1<<n) == 0)
	c.Regs.Assign(FlagN, false)
	c.Regs.Assign(FlagH, true)
}
