package cpu

import "strconv"

// extended is the CB-prefixed opcode table. Every one of the 256 entries is
// regular, so the whole table is generated: rotates and shifts in the first
// quadrant, then BIT, RES and SET with the bit number in bits 3-5.
//
// Entry cycle counts exclude the two prefix fetches; the prefix dispatcher's
// own entry carries those.
var extended [256]instruction

func init() {
	shiftFns := [8]func(*CPU, uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}
	shiftNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	for op := 0x00; op <= 0x3F; op++ {
		idx := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		reg := uint8(op) & 0x07    //nolint:gosec // G115: 3-bit field
		fn := shiftFns[idx]
		cycles := uint8(0)
		if reg == 6 {
			cycles = 8 // read-modify-write at (HL)
		}
		extended[op] = instruction{
			mnemonic: shiftNames[idx] + " " + regNames[reg],
			cycles:   cycles,
			fn:       func(c *CPU) { c.setReg8(reg, fn(c, c.reg8(reg))) },
		}
	}

	for op := 0x40; op <= 0x7F; op++ {
		n := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		reg := uint8(op) & 0x07  //nolint:gosec // G115: 3-bit field
		cycles := uint8(0)
		if reg == 6 {
			cycles = 4 // read only, no write-back
		}
		extended[op] = instruction{
			mnemonic: "BIT " + strconv.Itoa(int(n)) + "," + regNames[reg],
			cycles:   cycles,
			fn:       func(c *CPU) { c.bit(n, c.reg8(reg)) },
		}
	}

	for op := 0x80; op <= 0xBF; op++ {
		n := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		reg := uint8(op) & 0x07  //nolint:gosec // G115: 3-bit field
		mask := uint8(1) << n
		cycles := uint8(0)
		if reg == 6 {
			cycles = 8
		}
		extended[op] = instruction{
			mnemonic: "RES " + strconv.Itoa(int(n)) + "," + regNames[reg],
			cycles:   cycles,
			fn:       func(c *CPU) { c.setReg8(reg, c.reg8(reg)&^mask) },
		}
	}

	for op := 0xC0; op <= 0xFF; op++ {
		n := uint8(op>>3) & 0x07 //nolint:gosec // G115: 3-bit field
		reg := uint8(op) & 0x07  //nolint:gosec // G115: 3-bit field
		mask := uint8(1) << n
		cycles := uint8(0)
		if reg == 6 {
			cycles = 8
		}
		extended[op] = instruction{
			mnemonic: "SET " + strconv.Itoa(int(n)) + "," + regNames[reg],
			cycles:   cycles,
			fn:       func(c *CPU) { c.setReg8(reg, c.reg8(reg)|mask) },
		}
	}
}
