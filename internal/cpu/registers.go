package cpu

// Flag bits of the F register. The low nibble is unwired and always zero.
const (
	FlagZ uint8 = 1 << 7 // zero
	FlagN uint8 = 1 << 6 // subtract
	FlagH uint8 = 1 << 5 // half-carry
	FlagC uint8 = 1 << 4 // carry
)

// Registers is the SM83 register file: eight 8-bit registers paired into
// four 16-bit views, plus the stack pointer and program counter.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

// NewRegisters returns the documented post-boot register values.
func NewRegisters() *Registers {
	return &Registers{
		A: 0x01, F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}

// 16-bit pair views.

// AF returns the AF pair.
func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }

// BC returns the BC pair.
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// DE returns the DE pair.
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// HL returns the HL pair.
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetAF sets the AF pair; the low nibble of F stays zero.
func (r *Registers) SetAF(v uint16) {
	r.A = uint8(v >> 8)   //nolint:gosec // G115: byte extraction
	r.F = uint8(v) & 0xF0 //nolint:gosec // G115: byte extraction
}

// SetBC sets the BC pair.
func (r *Registers) SetBC(v uint16) {
	r.B = uint8(v >> 8) //nolint:gosec // G115: byte extraction
	r.C = uint8(v)      //nolint:gosec // G115: byte extraction
}

// SetDE sets the DE pair.
func (r *Registers) SetDE(v uint16) {
	r.D = uint8(v >> 8) //nolint:gosec // G115: byte extraction
	r.E = uint8(v)      //nolint:gosec // G115: byte extraction
}

// SetHL sets the HL pair.
func (r *Registers) SetHL(v uint16) {
	r.H = uint8(v >> 8) //nolint:gosec // G115: byte extraction
	r.L = uint8(v)      //nolint:gosec // G115: byte extraction
}

// Flag operations.

// Has reports whether a flag is set.
func (r *Registers) Has(flag uint8) bool { return r.F&flag != 0 }

// Assign sets or clears a flag.
func (r *Registers) Assign(flag uint8, on bool) {
	if on {
		r.F |= flag
	} else {
		r.F &^= flag
	}
}

// setZNHC assigns all four flags at once; most ALU operations recompute
// every flag they touch per their documented rule.
func (r *Registers) setZNHC(z, n, h, c bool) {
	f := uint8(0)
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if c {
		f |= FlagC
	}
	r.F = f
}
