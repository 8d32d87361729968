// Package joypad implements the Game Boy joypad matrix and P1 register.
package joypad

// Button identifies one key of the eight-key matrix.
type Button uint8

// Buttons. The low nibble value is the P1 bit the button drives; action and
// direction keys share bits and are distinguished by the select lines.
const (
	A Button = iota
	B
	Select
	Start
	Right
	Left
	Up
	Down
)

func (b Button) String() string {
	names := [...]string{"A", "B", "Select", "Start", "Right", "Left", "Up", "Down"}
	if int(b) < len(names) {
		return names[b]
	}
	return "Unknown"
}

// bit returns the P1 low-nibble bit the button pulls low when selected.
func (b Button) bit() uint8 {
	return 1 << (b % 4)
}

func (b Button) isAction() bool {
	return b <= Start
}

// P1 select lines (0 = selected).
const (
	selectDirection = 0x10 // P14
	selectAction    = 0x20 // P15
)

// RequestFunc is called to raise the Joypad interrupt.
type RequestFunc func()

// Joypad holds the key matrix state and the P1 select lines. A key press
// raises the Joypad interrupt, which is also the wake signal that ends the
// CPU's stopped state.
type Joypad struct {
	p1Select uint8 // bits 4-5 as last written
	action   uint8 // pressed action keys, 1 = pressed
	dir      uint8 // pressed direction keys, 1 = pressed

	requestInterrupt RequestFunc
	wake             func()
}

// New creates a Joypad with both matrix halves deselected.
func New(requestInterrupt RequestFunc) *Joypad {
	return &Joypad{
		p1Select:         selectDirection | selectAction,
		requestInterrupt: requestInterrupt,
	}
}

// SetWakeFunc registers the external wake signal delivered on key presses,
// used to leave the stopped state.
func (j *Joypad) SetWakeFunc(fn func()) {
	j.wake = fn
}

// Read returns the P1 register. Unselected halves contribute nothing;
// pressed keys in a selected half read as 0. Upper two bits are unwired.
func (j *Joypad) Read() uint8 {
	result := 0xC0 | j.p1Select
	nibble := uint8(0x0F)
	if j.p1Select&selectAction == 0 {
		nibble &^= j.action
	}
	if j.p1Select&selectDirection == 0 {
		nibble &^= j.dir
	}
	return result | nibble
}

// Write updates the P1 select lines; only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.p1Select = value & (selectDirection | selectAction)
}

// Press marks a button pressed, raises the Joypad interrupt and delivers
// the wake signal. Opposing directions are mutually exclusive, as the
// physical pad cannot report both.
func (j *Joypad) Press(b Button) {
	if b.isAction() {
		j.action |= b.bit()
	} else {
		opposite := map[Button]Button{Up: Down, Down: Up, Left: Right, Right: Left}[b]
		if j.dir&opposite.bit() == 0 {
			j.dir |= b.bit()
		}
	}
	if j.requestInterrupt != nil {
		j.requestInterrupt()
	}
	if j.wake != nil {
		j.wake()
	}
}

// Release marks a button released.
func (j *Joypad) Release(b Button) {
	if b.isAction() {
		j.action &^= b.bit()
	} else {
		j.dir &^= b.bit()
	}
}

// State is the serializable joypad state. Live key positions are host input
// and are not captured.
type State struct {
	P1Select uint8
}

// Snapshot captures the joypad register state.
func (j *Joypad) Snapshot() State {
	return State{P1Select: j.p1Select}
}

// Restore replaces the joypad register state.
func (j *Joypad) Restore(s State) {
	j.p1Select = s.P1Select
}
