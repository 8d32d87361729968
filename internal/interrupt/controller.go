// Package interrupt implements the Game Boy interrupt controller.
//
// Five fixed sources share a 5-bit enable mask (IE, $FFFF) and a 5-bit
// pending mask (IF, $FF0F). Dispatch priority is fixed: the lowest-numbered
// pending-and-enabled source wins.
package interrupt

// Source identifies one of the five interrupt sources, in priority order.
type Source uint8

// Interrupt sources. The value is the bit position in IE/IF and determines
// dispatch priority (lower wins).
const (
	VBlank Source = 0
	LCD    Source = 1
	Timer  Source = 2
	Serial Source = 3
	Joypad Source = 4
)

// String returns a human-readable name for the interrupt source.
func (s Source) String() string {
	switch s {
	case VBlank:
		return "VBlank"
	case LCD:
		return "LCD"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	default:
		return "Unknown"
	}
}

// Vector returns the fixed service-routine address for the source.
func (s Source) Vector() uint16 {
	return 0x0040 + uint16(s)*8
}

// Mask returns the IE/IF bit for the source.
func (s Source) Mask() uint8 {
	return 1 << s
}

const sourceMask = 0x1F // Only the low 5 bits of IE/IF are wired

// Controller holds the interrupt enable/pending masks and the master-enable
// latch. Setting the master latch through ScheduleMasterEnable takes effect
// only after the instruction following the one that set it; the CPU commits
// the delayed enable at the instruction boundary.
type Controller struct {
	enable  uint8 // IE ($FFFF), all 8 bits stored, low 5 significant
	pending uint8 // IF ($FF0F), low 5 bits

	master        bool // IME
	masterPending bool // IME scheduled by EI, committed one instruction later
}

// New creates a Controller with everything masked off.
func New() *Controller {
	return &Controller{}
}

// Request sets the pending bit for the source. Callable by any peripheral.
// A pending bit, once set, is cleared only by Acknowledge or an explicit
// write to IF.
func (c *Controller) Request(s Source) {
	c.pending |= s.Mask()
}

// Pending returns the set of sources that are both pending and enabled.
func (c *Controller) Pending() uint8 {
	return c.enable & c.pending & sourceMask
}

// NextPending returns the highest-priority source that is pending and
// enabled. The second return is false when nothing is dispatchable.
func (c *Controller) NextPending() (Source, bool) {
	p := c.Pending()
	if p == 0 {
		return 0, false
	}
	for s := VBlank; s <= Joypad; s++ {
		if p&s.Mask() != 0 {
			return s, true
		}
	}
	return 0, false
}

// Acknowledge clears the pending bit for the source and drops the master
// latch, as hardware does at the start of dispatch.
func (c *Controller) Acknowledge(s Source) {
	c.pending &^= s.Mask()
	c.master = false
	c.masterPending = false
}

// MasterEnabled reports the IME latch.
func (c *Controller) MasterEnabled() bool {
	return c.master
}

// SetMasterEnable sets or clears IME immediately (DI, RETI). Clearing also
// cancels a scheduled enable.
func (c *Controller) SetMasterEnable(v bool) {
	c.master = v
	if !v {
		c.masterPending = false
	}
}

// ScheduleMasterEnable arms the delayed IME set performed by EI. It is
// modelled as an explicit pending field, never an immediate flip.
func (c *Controller) ScheduleMasterEnable() {
	if !c.master {
		c.masterPending = true
	}
}

// EnableScheduled reports whether a delayed IME set is armed.
func (c *Controller) EnableScheduled() bool {
	return c.masterPending
}

// CommitScheduledEnable flips IME on if a delayed set is armed. The CPU
// calls this after the instruction following EI completes.
func (c *Controller) CommitScheduledEnable() {
	if c.masterPending {
		c.master = true
		c.masterPending = false
	}
}

// ReadEnable returns the IE register ($FFFF).
func (c *Controller) ReadEnable() uint8 {
	return c.enable
}

// WriteEnable sets the IE register ($FFFF).
func (c *Controller) WriteEnable(v uint8) {
	c.enable = v
}

// ReadPending returns the IF register ($FF0F). Unwired upper bits read as 1.
func (c *Controller) ReadPending() uint8 {
	return c.pending | ^uint8(sourceMask)
}

// WritePending sets the IF register ($FF0F).
func (c *Controller) WritePending(v uint8) {
	c.pending = v & sourceMask
}

// State is the serializable controller state.
type State struct {
	Enable        uint8
	Pending       uint8
	Master        bool
	MasterPending bool
}

// Snapshot captures the controller state.
func (c *Controller) Snapshot() State {
	return State{
		Enable:        c.enable,
		Pending:       c.pending,
		Master:        c.master,
		MasterPending: c.masterPending,
	}
}

// Restore replaces the controller state.
func (c *Controller) Restore(s State) {
	c.enable = s.Enable
	c.pending = s.Pending
	c.master = s.Master
	c.masterPending = s.MasterPending
}
