// Package timer implements the Game Boy timer and divider system.
//
// A free-running 16-bit counter underlies everything: DIV ($FF04) is its top
// byte, and TIMA ($FF05) advances on a falling edge of one counter bit
// selected by TAC ($FF07), gated by the TAC enable bit. Because the edge
// detector watches the counter itself rather than a derived clock, writes
// that reset or reconfigure the counter can produce spurious TIMA
// increments, and those quirks are reproduced here.
//
// TIMA overflow is not instantaneous: the register holds 0 for one machine
// cycle before the reload from TMA ($FF06) lands and the Timer interrupt is
// requested. A TIMA write inside that window cancels both.
package timer

// Register addresses.
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// TAC register bits.
const (
	tacEnable    = 0x04
	tacClockMask = 0x03
)

// RequestFunc is called to raise the Timer interrupt.
type RequestFunc func()

// Counter bit watched for each TAC clock select value.
var clockBit = [4]uint{9, 3, 5, 7}

// Timer holds the divider counter and the programmable counter with its
// delayed-reload state machine.
type Timer struct {
	counter uint16 // internal counter; DIV is the top byte
	tima    uint8
	tma     uint8
	tac     uint8

	// Overflow reload pipeline. reloadDelay counts machine cycles until the
	// TMA reload and interrupt land; reloadedNow marks the single machine
	// cycle on which they did.
	reloadDelay uint8
	reloadedNow bool

	requestInterrupt RequestFunc
}

// New creates a Timer that raises its interrupt through requestInterrupt.
func New(requestInterrupt RequestFunc) *Timer {
	return &Timer{requestInterrupt: requestInterrupt}
}

// Read reads a timer register. Unselected TAC bits read as 1.
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case DIV:
		return uint8(t.counter >> 8) //nolint:gosec // G115: DIV is the top byte
	case TIMA:
		return t.tima
	case TMA:
		return t.tma
	case TAC:
		return t.tac | ^uint8(tacEnable|tacClockMask)
	}
	return 0xFF
}

// Write writes a timer register, applying the documented edge quirks.
func (t *Timer) Write(addr uint16, value uint8) {
	switch addr {
	case DIV:
		// Any write zeroes the whole internal counter. If the watched bit
		// was high, the reset itself is a falling edge.
		old := t.counter
		t.counter = 0
		if t.fallingEdge(old, 0) {
			t.increment()
		}

	case TIMA:
		if t.reloadedNow {
			// The reload already landed this cycle; the write is lost.
			return
		}
		if t.reloadDelay > 0 {
			// Write inside the overflow window cancels the pending reload
			// and its interrupt.
			t.reloadDelay = 0
		}
		t.tima = value

	case TMA:
		t.tma = value
		if t.reloadedNow {
			// TMA was being copied into TIMA this very cycle; the new value
			// is what arrives.
			t.tima = value
		}

	case TAC:
		old := t.tac
		t.tac = value & (tacEnable | tacClockMask)
		// Reconfiguring the mux can drop the watched signal from 1 to 0.
		if t.signal(t.counter, old) && !t.signal(t.counter, t.tac) {
			t.increment()
		}
	}
}

// Step advances the timer by the given number of T-cycles. Cycles arrive in
// machine-cycle multiples; the overflow pipeline is advanced once per
// machine cycle so the reload lands exactly one machine cycle after the
// overflow.
func (t *Timer) Step(cycles uint8) {
	for consumed := uint8(0); consumed < cycles; consumed += 4 {
		t.stepMachineCycle()
	}
}

func (t *Timer) stepMachineCycle() {
	t.reloadedNow = false
	if t.reloadDelay > 0 {
		t.reloadDelay--
		if t.reloadDelay == 0 {
			t.tima = t.tma
			t.reloadedNow = true
			if t.requestInterrupt != nil {
				t.requestInterrupt()
			}
		}
	}

	old := t.counter
	t.counter += 4 // wraps at 65536, matching hardware
	if t.fallingEdge(old, t.counter) {
		t.increment()
	}
}

// signal is the edge-detector input: the selected counter bit ANDed with the
// enable bit, for a given TAC value.
func (t *Timer) signal(counter uint16, tac uint8) bool {
	if tac&tacEnable == 0 {
		return false
	}
	return counter&(1<<clockBit[tac&tacClockMask]) != 0
}

// fallingEdge reports a 1->0 transition of the watched signal between two
// counter values under the current TAC.
func (t *Timer) fallingEdge(oldCounter, newCounter uint16) bool {
	return t.signal(oldCounter, t.tac) && !t.signal(newCounter, t.tac)
}

// increment advances TIMA. On overflow TIMA reads 0 and the reload is armed
// for the following machine cycle; nothing else happens yet.
func (t *Timer) increment() {
	t.tima++
	if t.tima == 0 {
		t.reloadDelay = 1
	}
}

// Divider returns the visible DIV value.
func (t *Timer) Divider() uint8 {
	return uint8(t.counter >> 8) //nolint:gosec // G115: DIV is the top byte
}

// State is the serializable timer state.
type State struct {
	Counter     uint16
	TIMA        uint8
	TMA         uint8
	TAC         uint8
	ReloadDelay uint8
	ReloadedNow bool
}

// Snapshot captures the timer state.
func (t *Timer) Snapshot() State {
	return State{
		Counter:     t.counter,
		TIMA:        t.tima,
		TMA:         t.tma,
		TAC:         t.tac,
		ReloadDelay: t.reloadDelay,
		ReloadedNow: t.reloadedNow,
	}
}

// Restore replaces the timer state.
func (t *Timer) Restore(s State) {
	t.counter = s.Counter
	t.tima = s.TIMA
	t.tma = s.TMA
	t.tac = s.TAC
	t.reloadDelay = s.ReloadDelay
	t.reloadedNow = s.ReloadedNow
}
