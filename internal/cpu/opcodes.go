package cpu

// instruction is one decode table entry. cycles documents the T-cycle cost
// with branches untaken; the executed cost is accumulated from bus accesses
// and internal cycles, and equals this value on the untaken path.
type instruction struct {
	mnemonic string
	cycles   uint8
	fn       func(*CPU)
}

// Register index encoding used by the regular opcode blocks:
// 0..5 are B,C,D,E,H,L, 6 is the byte at (HL), 7 is A.

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

func (c *CPU) reg8(i uint8) uint8 {
	switch i {
	case 0:
		return c.Regs.B
	case 1:
		return c.Regs.C
	case 2:
		return c.Regs.D
	case 3:
		return c.Regs.E
	case 4:
		return c.Regs.H
	case 5:
		return c.Regs.L
	case 6:
		return c.read(c.Regs.HL())
	default:
		return c.Regs.A
	}
}

func (c *CPU) setReg8(i, v uint8) {
	switch i {
	case 0:
		c.Regs.B = v
	case 1:
		c.Regs.C = v
	case 2:
		c.Regs.D = v
	case 3:
		c.Regs.E = v
	case 4:
		c.Regs.H = v
	case 5:
		c.Regs.L = v
	case 6:
		c.write(c.Regs.HL(), v)
	default:
		c.Regs.A = v
	}
}

// Control-flow helpers shared by the conditional opcode families.

func (c *CPU) jr(taken bool) {
	offset := c.fetchByte()
	if taken {
		c.internal(4)
		c.Regs.PC += uint16(int16(int8(offset))) //nolint:gosec // G115: sign extension
	}
}

func (c *CPU) jp(taken bool) {
	target := c.fetchWord()
	if taken {
		c.internal(4)
		c.Regs.PC = target
	}
}

func (c *CPU) call(taken bool) {
	target := c.fetchWord()
	if taken {
		c.internal(4)
		c.push(c.Regs.PC)
		c.Regs.PC = target
	}
}

func (c *CPU) retIf(taken bool) {
	c.internal(4)
	if taken {
		c.ret()
	}
}

func (c *CPU) ret() {
	c.Regs.PC = c.pop()
	c.internal(4)
}

func (c *CPU) rst(vector uint16) {
	c.internal(4)
	c.push(c.Regs.PC)
	c.Regs.PC = vector
}

// locked freezes the core. The hardware's unassigned opcodes halt the CPU
// permanently rather than trapping.
func locked(c *CPU) {
	c.locked = true
}

// primary is the unprefixed opcode table. The irregular quadrants are
// spelled out; the regular LD and ALU blocks are generated in init.
var primary = [256]instruction{
	0x00: {"NOP", 4, func(c *CPU) {}},
	0x01: {"LD BC,nn", 12, func(c *CPU) { c.Regs.SetBC(c.fetchWord()) }},
	0x02: {"LD (BC),A", 8, func(c *CPU) { c.write(c.Regs.BC(), c.Regs.A) }},
	0x03: {"INC BC", 8, func(c *CPU) { c.internal(4); c.Regs.SetBC(c.Regs.BC() + 1) }},
	0x04: {"INC B", 4, func(c *CPU) { c.Regs.B = c.inc8(c.Regs.B) }},
	0x05: {"DEC B", 4, func(c *CPU) { c.Regs.B = c.dec8(c.Regs.B) }},
	0x06: {"LD B,n", 8, func(c *CPU) { c.Regs.B = c.fetchByte() }},
	0x07: {"RLCA", 4, func(c *CPU) { c.Regs.A = c.rlc(c.Regs.A); c.Regs.Assign(FlagZ, false) }},
	0x08: {"LD (nn),SP", 20, func(c *CPU) {
		addr := c.fetchWord()
		c.write(addr, uint8(c.Regs.SP))      //nolint:gosec // G115: byte extraction
		c.write(addr+1, uint8(c.Regs.SP>>8)) //nolint:gosec // G115: byte extraction
	}},
	0x09: {"ADD HL,BC", 8, func(c *CPU) { c.internal(4); c.add16(c.Regs.BC()) }},
	0x0A: {"LD A,(BC)", 8, func(c *CPU) { c.Regs.A = c.read(c.Regs.BC()) }},
	0x0B: {"DEC BC", 8, func(c *CPU) { c.internal(4); c.Regs.SetBC(c.Regs.BC() - 1) }},
	0x0C: {"INC C", 4, func(c *CPU) { c.Regs.C = c.inc8(c.Regs.C) }},
	0x0D: {"DEC C", 4, func(c *CPU) { c.Regs.C = c.dec8(c.Regs.C) }},
	0x0E: {"LD C,n", 8, func(c *CPU) { c.Regs.C = c.fetchByte() }},
	0x0F: {"RRCA", 4, func(c *CPU) { c.Regs.A = c.rrc(c.Regs.A); c.Regs.Assign(FlagZ, false) }},

	0x10: {"STOP", 4, func(c *CPU) { c.stop() }},
	0x11: {"LD DE,nn", 12, func(c *CPU) { c.Regs.SetDE(c.fetchWord()) }},
	0x12: {"LD (DE),A", 8, func(c *CPU) { c.write(c.Regs.DE(), c.Regs.A) }},
	0x13: {"INC DE", 8, func(c *CPU) { c.internal(4); c.Regs.SetDE(c.Regs.DE() + 1) }},
	0x14: {"INC D", 4, func(c *CPU) { c.Regs.D = c.inc8(c.Regs.D) }},
	0x15: {"DEC D", 4, func(c *CPU) { c.Regs.D = c.dec8(c.Regs.D) }},
	0x16: {"LD D,n", 8, func(c *CPU) { c.Regs.D = c.fetchByte() }},
	0x17: {"RLA", 4, func(c *CPU) { c.Regs.A = c.rl(c.Regs.A); c.Regs.Assign(FlagZ, false) }},
	0x18: {"JR e", 12, func(c *CPU) { c.jr(true) }},
	0x19: {"ADD HL,DE", 8, func(c *CPU) { c.internal(4); c.add16(c.Regs.DE()) }},
	0x1A: {"LD A,(DE)", 8, func(c *CPU) { c.Regs.A = c.read(c.Regs.DE()) }},
	0x1B: {"DEC DE", 8, func(c *CPU) { c.internal(4); c.Regs.SetDE(c.Regs.DE() - 1) }},
	0x1C: {"INC E", 4, func(c *CPU) { c.Regs.E = c.inc8(c.Regs.E) }},
	0x1D: {"DEC E", 4, func(c *CPU) { c.Regs.E = c.dec8(c.Regs.E) }},
	0x1E: {"LD E,n", 8, func(c *CPU) { c.Regs.E = c.fetchByte() }},
	0x1F: {"RRA", 4, func(c *CPU) { c.Regs.A = c.rr(c.Regs.A); c.Regs.Assign(FlagZ, false) }},

	0x20: {"JR NZ,e", 8, func(c *CPU) { c.jr(!c.Regs.Has(FlagZ)) }},
	0x21: {"LD HL,nn", 12, func(c *CPU) { c.Regs.SetHL(c.fetchWord()) }},
	0x22: {"LD (HL+),A", 8, func(c *CPU) {
		c.write(c.Regs.HL(), c.Regs.A)
		c.Regs.SetHL(c.Regs.HL() + 1)
	}},
	0x23: {"INC HL", 8, func(c *CPU) { c.internal(4); c.Regs.SetHL(c.Regs.HL() + 1) }},
	0x24: {"INC H", 4, func(c *CPU) { c.Regs.H = c.inc8(c.Regs.H) }},
	0x25: {"DEC H", 4, func(c *CPU) { c.Regs.H = c.dec8(c.Regs.H) }},
	0x26: {"LD H,n", 8, func(c *CPU) { c.Regs.H = c.fetchByte() }},
	0x27: {"DAA", 4, func(c *CPU) { c.daa() }},
	0x28: {"JR Z,e", 8, func(c *CPU) { c.jr(c.Regs.Has(FlagZ)) }},
	0x29: {"ADD HL,HL", 8, func(c *CPU) { c.internal(4); c.add16(c.Regs.HL()) }},
	0x2A: {"LD A,(HL+)", 8, func(c *CPU) {
		c.Regs.A = c.read(c.Regs.HL())
		c.Regs.SetHL(c.Regs.HL() + 1)
	}},
	0x2B: {"DEC HL", 8, func(c *CPU) { c.internal(4); c.Regs.SetHL(c.Regs.HL() - 1) }},
	0x2C: {"INC L", 4, func(c *CPU) { c.Regs.L = c.inc8(c.Regs.L) }},
	0x2D: {"DEC L", 4, func(c *CPU) { c.Regs.L = c.dec8(c.Regs.L) }},
	0x2E: {"LD L,n", 8, func(c *CPU) { c.Regs.L = c.fetchByte() }},
	0x2F: {"CPL", 4, func(c *CPU) {
		c.Regs.A = ^c.Regs.A
		c.Regs.Assign(FlagN, true)
		c.Regs.Assign(FlagH, true)
	}},

	0x30: {"JR NC,e", 8, func(c *CPU) { c.jr(!c.Regs.Has(FlagC)) }},
	0x31: {"LD SP,nn", 12, func(c *CPU) { c.Regs.SP = c.fetchWord() }},
	0x32: {"LD (HL-),A", 8, func(c *CPU) {
		c.write(c.Regs.HL(), c.Regs.A)
		c.Regs.SetHL(c.Regs.HL() - 1)
	}},
	0x33: {"INC SP", 8, func(c *CPU) { c.internal(4); c.Regs.SP++ }},
	0x34: {"INC (HL)", 12, func(c *CPU) {
		addr := c.Regs.HL()
		c.write(addr, c.inc8(c.read(addr)))
	}},
	0x35: {"DEC (HL)", 12, func(c *CPU) {
		addr := c.Regs.HL()
		c.write(addr, c.dec8(c.read(addr)))
	}},
	0x36: {"LD (HL),n", 12, func(c *CPU) { c.write(c.Regs.HL(), c.fetchByte()) }},
	0x37: {"SCF", 4, func(c *CPU) {
		c.Regs.Assign(FlagN, false)
		c.Regs.Assign(FlagH, false)
		c.Regs.Assign(FlagC, true)
	}},
	0x38: {"JR C,e", 8, func(c *CPU) { c.jr(c.Regs.Has(FlagC)) }},
	0x39: {"ADD HL,SP", 8, func(c *CPU) { c.internal(4); c.add16(c.Regs.SP) }},
	0x3A: {"LD A,(HL-)", 8, func(c *CPU) {
		c.Regs.A = c.read(c.Regs.HL())
		c.Regs.SetHL(c.Regs.HL() - 1)
	}},
	0x3B: {"DEC SP", 8, func(c *CPU) { c.internal(4); c.Regs.SP-- }},
	0x3C: {"INC A", 4, func(c *CPU) { c.Regs.A = c.inc8(c.Regs.A) }},
	0x3D: {"DEC A", 4, func(c *CPU) { c.Regs.A = c.dec8(c.Regs.A) }},
	0x3E: {"LD A,n", 8, func(c *CPU) { c.Regs.A = c.fetchByte() }},
	0x3F: {"CCF", 4, func(c *CPU) {
		c.Regs.Assign(FlagN, false)
		c.Regs.Assign(FlagH, false)
		c.Regs.Assign(FlagC, !c.Regs.Has(FlagC))
	}},

	// 0x40-0xBF are generated in init; HALT sits in the LD block.
	0x76: {"HALT", 4, func(c *CPU) { c.halt() }},

	0xC0: {"RET NZ", 8, func(c *CPU) { c.retIf(!c.Regs.Has(FlagZ)) }},
	0xC1: {"POP BC", 12, func(c *CPU) { c.Regs.SetBC(c.pop()) }},
	0xC2: {"JP NZ,nn", 12, func(c *CPU) { c.jp(!c.Regs.Has(FlagZ)) }},
	0xC3: {"JP nn", 16, func(c *CPU) { c.jp(true) }},
	0xC4: {"CALL NZ,nn", 12, func(c *CPU) { c.call(!c.Regs.Has(FlagZ)) }},
	0xC5: {"PUSH BC", 16, func(c *CPU) { c.internal(4); c.push(c.Regs.BC()) }},
	0xC6: {"ADD A,n", 8, func(c *CPU) { c.add8(c.fetchByte()) }},
	0xC7: {"RST $00", 16, func(c *CPU) { c.rst(0x0000) }},
	0xC8: {"RET Z", 8, func(c *CPU) { c.retIf(c.Regs.Has(FlagZ)) }},
	0xC9: {"RET", 16, func(c *CPU) { c.ret() }},
	0xCA: {"JP Z,nn", 12, func(c *CPU) { c.jp(c.Regs.Has(FlagZ)) }},
	0xCB: {"PREFIX CB", 8, func(c *CPU) {
		op := c.fetchByte()
		in := &extended[op]
		if in.fn == nil {
			panic(decodeGap{opcode: op})
		}
		in.fn(c)
	}},
	0xCC: {"CALL Z,nn", 12, func(c *CPU) { c.call(c.Regs.Has(FlagZ)) }},
	0xCD: {"CALL nn", 24, func(c *CPU) { c.call(true) }},
	0xCE: {"ADC A,n", 8, func(c *CPU) { c.adc8(c.fetchByte()) }},
	0xCF: {"RST $08", 16, func(c *CPU) { c.rst(0x0008) }},

	0xD0: {"RET NC", 8, func(c *CPU) { c.retIf(!c.Regs.Has(FlagC)) }},
	0xD1: {"POP DE", 12, func(c *CPU) { c.Regs.SetDE(c.pop()) }},
	0xD2: {"JP NC,nn", 12, func(c *CPU) { c.jp(!c.Regs.Has(FlagC)) }},
	0xD3: {"LOCK", 4, locked},
	0xD4: {"CALL NC,nn", 12, func(c *CPU) { c.call(!c.Regs.Has(FlagC)) }},
	0xD5: {"PUSH DE", 16, func(c *CPU) { c.internal(4); c.push(c.Regs.DE()) }},
	0xD6: {"SUB A,n", 8, func(c *CPU) { c.sub8(c.fetchByte()) }},
	0xD7: {"RST $10", 16, func(c *CPU) { c.rst(0x0010) }},
	0xD8: {"RET C", 8, func(c *CPU) { c.retIf(c.Regs.Has(FlagC)) }},
	0xD9: {"RETI", 16, func(c *CPU) {
		c.ret()
		c.ic.SetMasterEnable(true)
	}},
	0xDA: {"JP C,nn", 12, func(c *CPU) { c.jp(c.Regs.Has(FlagC)) }},
	0xDB: {"LOCK", 4, locked},
	0xDC: {"CALL C,nn", 12, func(c *CPU) { c.call(c.Regs.Has(FlagC)) }},
	0xDD: {"LOCK", 4, locked},
	0xDE: {"SBC A,n", 8, func(c *CPU) { c.sbc8(c.fetchByte()) }},
	0xDF: {"RST $18", 16, func(c *CPU) { c.rst(0x0018) }},

	0xE0: {"LDH (n),A", 12, func(c *CPU) {
		c.write(0xFF00+uint16(c.fetchByte()), c.Regs.A)
	}},
	0xE1: {"POP HL", 12, func(c *CPU) { c.Regs.SetHL(c.pop()) }},
	0xE2: {"LDH (C),A", 8, func(c *CPU) { c.write(0xFF00+uint16(c.Regs.C), c.Regs.A) }},
	0xE3: {"LOCK", 4, locked},
	0xE4: {"LOCK", 4, locked},
	0xE5: {"PUSH HL", 16, func(c *CPU) { c.internal(4); c.push(c.Regs.HL()) }},
	0xE6: {"AND A,n", 8, func(c *CPU) { c.and8(c.fetchByte()) }},
	0xE7: {"RST $20", 16, func(c *CPU) { c.rst(0x0020) }},
	0xE8: {"ADD SP,e", 16, func(c *CPU) {
		offset := c.fetchByte()
		c.internal(8)
		c.Regs.SP = c.addSPe8(offset)
	}},
	0xE9: {"JP HL", 4, func(c *CPU) { c.Regs.PC = c.Regs.HL() }},
	0xEA: {"LD (nn),A", 16, func(c *CPU) { c.write(c.fetchWord(), c.Regs.A) }},
	0xEB: {"LOCK", 4, locked},
	0xEC: {"LOCK", 4, locked},
	0xED: {"LOCK", 4, locked},
	0xEE: {"XOR A,n", 8, func(c *CPU) { c.xor8(c.fetchByte()) }},
	0xEF: {"RST $28", 16, func(c *CPU) { c.rst(0x0028) }},

	0xF0: {"LDH A,(n)", 12, func(c *CPU) {
		c.Regs.A = c.read(0xFF00 + uint16(c.fetchByte()))
	}},
	0xF1: {"POP AF", 12, func(c *CPU) { c.Regs.SetAF(c.pop()) }},
	0xF2: {"LDH A,(C)", 8, func(c *CPU) { c.Regs.A = c.read(0xFF00 + uint16(c.Regs.C)) }},
	0xF3: {"DI", 4, func(c *CPU) { c.ic.SetMasterEnable(false) }},
	0xF4: {"LOCK", 4, locked},
	0xF5: {"PUSH AF", 16, func(c *CPU) { c.internal(4); c.push(c.Regs.AF()) }},
	0xF6: {"OR A,n", 8, func(c *CPU) { c.or8(c.fetchByte()) }},
	0xF7: {"RST $30", 16, func(c *CPU) { c.rst(0x0030) }},
	0xF8: {"LD HL,SP+e", 12, func(c *CPU) {
		offset := c.fetchByte()
		c.internal(4)
		c.Regs.SetHL(c.addSPe8(offset))
	}},
	0xF9: {"LD SP,HL", 8, func(c *CPU) { c.internal(4); c.Regs.SP = c.Regs.HL() }},
	0xFA: {"LD A,(nn)", 16, func(c *CPU) { c.Regs.A = c.read(c.fetchWord()) }},
	0xFB: {"EI", 4, func(c *CPU) { c.ic.ScheduleMasterEnable() }},
	0xFC: {"LOCK", 4, locked},
	0xFD: {"LOCK", 4, locked},
	0xFE: {"CP A,n", 8, func(c *CPU) { c.cp8(c.fetchByte()) }},
	0xFF: {"RST $38", 16, func(c *CPU) { c.rst(0x0038) }},
}

// init fills the two regular quadrants: the 8x8 LD block and the 8x8 ALU
// block, both indexed by the 3-bit register encoding.
func init() {
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dst := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		src := uint8(op) & 0x07    //nolint:gosec // G115: 3-bit field
		cycles := uint8(4)
		if dst == 6 || src == 6 {
			cycles = 8
		}
		primary[op] = instruction{
			mnemonic: "LD " + regNames[dst] + "," + regNames[src],
			cycles:   cycles,
			fn:       func(c *CPU) { c.setReg8(dst, c.reg8(src)) },
		}
	}

	aluFns := [8]func(*CPU, uint8){
		(*CPU).add8, (*CPU).adc8, (*CPU).sub8, (*CPU).sbc8,
		(*CPU).and8, (*CPU).xor8, (*CPU).or8, (*CPU).cp8,
	}
	aluNames := [8]string{"ADD", "ADC", "SUB", "SBC", "AND", "XOR", "OR", "CP"}

	for op := 0x80; op <= 0xBF; op++ {
		idx := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		src := uint8(op) & 0x07    //nolint:gosec // G115: 3-bit field
		fn := aluFns[idx]
		cycles := uint8(4)
		if src == 6 {
			cycles = 8
		}
		primary[op] = instruction{
			mnemonic: aluNames[idx] + " A," + regNames[src],
			cycles:   cycles,
			fn:       func(c *CPU) { fn(c, c.reg8(src)) },
		}
	}
}
