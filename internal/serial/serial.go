// Package serial implements the Game Boy serial transfer registers.
//
// Only internal-clock transfers are modelled: with no link partner the
// incoming line is held high, so the shifted-in byte is always 0xFF. Each
// outgoing byte is handed to an optional callback, which is how test images
// report their results.
package serial

// Register addresses.
const (
	SB = 0xFF01 // transfer data
	SC = 0xFF02 // transfer control
)

// SC register bits.
const (
	scStart         = 0x80
	scInternalClock = 0x01
)

// A transfer shifts one bit every 512 T-cycles on the internal 8192 Hz
// clock; a full byte takes 4096 T-cycles.
const cyclesPerBit = 512

// RequestFunc is called to raise the Serial interrupt.
type RequestFunc func()

// ByteFunc receives each completed outgoing byte.
type ByteFunc func(b uint8)

// Port holds the serial transfer state.
type Port struct {
	sb uint8
	sc uint8

	active      bool
	bitsLeft    uint8
	cycleBudget uint16

	requestInterrupt RequestFunc
	onByte           ByteFunc
}

// New creates a Port raising its interrupt through requestInterrupt.
func New(requestInterrupt RequestFunc) *Port {
	return &Port{requestInterrupt: requestInterrupt}
}

// SetByteCallback registers a sink for completed outgoing bytes.
func (p *Port) SetByteCallback(fn ByteFunc) {
	p.onByte = fn
}

// Read reads a serial register. Unwired SC bits read as 1.
func (p *Port) Read(addr uint16) uint8 {
	switch addr {
	case SB:
		return p.sb
	case SC:
		return p.sc | ^uint8(scStart|scInternalClock)
	}
	return 0xFF
}

// Write writes a serial register. Setting SC bit 7 with the internal clock
// selected starts a transfer; an external-clock request just sits until a
// partner would drive it, which never happens here.
func (p *Port) Write(addr uint16, value uint8) {
	switch addr {
	case SB:
		p.sb = value
	case SC:
		p.sc = value & (scStart | scInternalClock)
		if p.sc&scStart != 0 && p.sc&scInternalClock != 0 {
			p.active = true
			p.bitsLeft = 8
			p.cycleBudget = cyclesPerBit
		}
	}
}

// Step advances an active transfer by the given number of T-cycles.
func (p *Port) Step(cycles uint8) {
	if !p.active {
		return
	}
	budget := uint16(cycles)
	for budget > 0 && p.active {
		n := budget
		if n > p.cycleBudget {
			n = p.cycleBudget
		}
		p.cycleBudget -= n
		budget -= n
		if p.cycleBudget == 0 {
			p.shiftBit()
			p.cycleBudget = cyclesPerBit
		}
	}
}

func (p *Port) shiftBit() {
	if p.bitsLeft == 8 && p.onByte != nil {
		// Capture the outgoing byte before it is shifted away.
		p.onByte(p.sb)
	}
	p.sb = p.sb<<1 | 1 // no partner: incoming line is high
	p.bitsLeft--
	if p.bitsLeft == 0 {
		p.active = false
		p.sc &^= scStart
		if p.requestInterrupt != nil {
			p.requestInterrupt()
		}
	}
}

// State is the serializable port state.
type State struct {
	SB          uint8
	SC          uint8
	Active      bool
	BitsLeft    uint8
	CycleBudget uint16
}

// Snapshot captures the port state.
func (p *Port) Snapshot() State {
	return State{
		SB:          p.sb,
		SC:          p.sc,
		Active:      p.active,
		BitsLeft:    p.bitsLeft,
		CycleBudget: p.cycleBudget,
	}
}

// Restore replaces the port state.
func (p *Port) Restore(s State) {
	p.sb = s.SB
	p.sc = s.SC
	p.active = s.Active
	p.bitsLeft = s.BitsLeft
	p.cycleBudget = s.CycleBudget
}
