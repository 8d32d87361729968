package cartridge

// MBC3 supports up to 2 MiB of ROM, 32 KiB of RAM and an optional
// real-time clock. The $4000-$5FFF register selects either a RAM bank
// (0-3) or, with values $08-$0C, one of the five RTC registers mapped over
// the RAM window. Writing $00 then $01 to $6000-$7FFF latches the live
// clock into a shadow set that stays stable until the next latch.
type MBC3 struct {
	header *Header
	rom    []byte
	ram    []byte

	ramEnable bool
	romBank   uint8 // 7 bits, 0 aliased to 1
	ramSelect uint8 // RAM bank 0-3 or RTC register $08-$0C

	rtc      rtc
	latchArm bool // last $6000 write was $00

	romBanks int
	ramBanks int
}

// RTC register selector values.
const (
	rtcSeconds  = 0x08
	rtcMinutes  = 0x09
	rtcHours    = 0x0A
	rtcDaysLow  = 0x0B
	rtcDaysHigh = 0x0C
)

// rtcDayHighMask covers the wired DH bits: day bit 8, halt, day carry.
const rtcDayHighMask = 0xC1

// Cartridge oscillator: one RTC second per CPU clock second.
const cyclesPerSecond = 4194304

// rtc is the live clock plus its latched shadow. Time advances from the
// machine's cycle stream, keeping execution fully deterministic.
type rtc struct {
	seconds uint8
	minutes uint8
	hours   uint8
	days    uint16 // 9 bits; overflow sets the carry in dayHigh
	halted  bool
	carry   bool

	latched [5]uint8
	cycles  uint32 // T-cycle accumulator toward the next second
}

func (r *rtc) tick(cycles uint8) {
	if r.halted {
		return
	}
	r.cycles += uint32(cycles)
	for r.cycles >= cyclesPerSecond {
		r.cycles -= cyclesPerSecond
		r.addSecond()
	}
}

func (r *rtc) addSecond() {
	r.seconds++
	if r.seconds < 60 {
		return
	}
	r.seconds = 0
	r.minutes++
	if r.minutes < 60 {
		return
	}
	r.minutes = 0
	r.hours++
	if r.hours < 24 {
		return
	}
	r.hours = 0
	r.days++
	if r.days > 0x1FF {
		r.days = 0
		r.carry = true
	}
}

func (r *rtc) latch() {
	r.latched = [5]uint8{r.seconds, r.minutes, r.hours, uint8(r.days), r.dayHigh()}
}

func (r *rtc) dayHigh() uint8 {
	v := uint8(r.days>>8) & 0x01
	if r.halted {
		v |= 0x40
	}
	if r.carry {
		v |= 0x80
	}
	return v
}

func (r *rtc) read(sel uint8) uint8 {
	if int(sel-rtcSeconds) < len(r.latched) {
		return r.latched[sel-rtcSeconds]
	}
	return openBus
}

func (r *rtc) write(sel, value uint8) {
	switch sel {
	case rtcSeconds:
		r.seconds = value & 0x3F
		r.cycles = 0 // writing seconds also resets the sub-second counter
	case rtcMinutes:
		r.minutes = value & 0x3F
	case rtcHours:
		r.hours = value & 0x1F
	case rtcDaysLow:
		r.days = r.days&0x100 | uint16(value)
	case rtcDaysHigh:
		r.days = r.days&0xFF | uint16(value&0x01)<<8
		r.halted = value&0x40 != 0
		r.carry = value&0x80 != 0
	}
}

func newMBC3(rom []byte, header *Header) *MBC3 {
	return &MBC3{
		header:   header,
		rom:      rom,
		ram:      allocRAM(header),
		romBank:  1,
		romBanks: header.ROMBanks(),
		ramBanks: header.RAMBanks(),
	}
}

func (c *MBC3) hasRTC() bool {
	return c.header.ControllerType.HasRTC()
}

// Read reads a byte through the current banking state.
func (c *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return romByte(c.rom, 0, addr)

	case addr < 0x8000:
		return romByte(c.rom, maskBank(int(c.romBank), c.romBanks), addr-0x4000)

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable {
			return openBus
		}
		if c.ramSelect >= rtcSeconds {
			if !c.hasRTC() {
				return openBus
			}
			return c.rtc.read(c.ramSelect)
		}
		if c.ram == nil {
			return openBus
		}
		return ramByte(c.ram, maskBank(int(c.ramSelect), c.ramBanks), addr-0xA000)

	default:
		return openBus
	}
}

// Write updates the banking registers, RTC, or external RAM.
func (c *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnable = value&0x0F == 0x0A

	case addr < 0x4000:
		c.romBank = value & 0x7F
		if c.romBank == 0 {
			c.romBank = 1
		}

	case addr < 0x6000:
		c.ramSelect = value & 0x0F

	case addr < 0x8000:
		// $00 followed by $01 latches the clock.
		if c.latchArm && value == 0x01 && c.hasRTC() {
			c.rtc.latch()
		}
		c.latchArm = value == 0x00

	case addr >= 0xA000 && addr < 0xC000:
		if !c.ramEnable {
			return
		}
		if c.ramSelect >= rtcSeconds {
			if c.hasRTC() {
				c.rtc.write(c.ramSelect, value)
			}
			return
		}
		if c.ram != nil {
			setRAMByte(c.ram, maskBank(int(c.ramSelect), c.ramBanks), addr-0xA000, value)
		}
	}
}

// Step advances the RTC from the machine's cycle stream.
func (c *MBC3) Step(cycles uint8) {
	if c.hasRTC() {
		c.rtc.tick(cycles)
	}
}

// Header returns the cartridge header.
func (c *MBC3) Header() *Header { return c.header }

// HasBattery reports battery-backed state.
func (c *MBC3) HasBattery() bool { return c.header.ControllerType.HasBattery() }

// RAM returns a copy of the external RAM contents.
func (c *MBC3) RAM() []byte { return copyRAM(c.ram) }

// LoadRAM restores external RAM contents.
func (c *MBC3) LoadRAM(data []byte) error { return loadRAM(c.ram, data) }

// RTCState is the serializable real-time-clock state.
type RTCState struct {
	Seconds  uint8
	Minutes  uint8
	Hours    uint8
	Days     uint16
	Halted   bool
	Carry    bool
	Latched  [5]uint8
	Cycles   uint32
	LatchArm bool
}

// Snapshot captures the banking, RAM and RTC state.
func (c *MBC3) Snapshot() State {
	return State{
		ROMBank:   uint16(c.romBank),
		RAMBank:   c.ramSelect,
		RAMEnable: c.ramEnable,
		RAM:       copyRAM(c.ram),
		RTC: RTCState{
			Seconds:  c.rtc.seconds,
			Minutes:  c.rtc.minutes,
			Hours:    c.rtc.hours,
			Days:     c.rtc.days,
			Halted:   c.rtc.halted,
			Carry:    c.rtc.carry,
			Latched:  c.rtc.latched,
			Cycles:   c.rtc.cycles,
			LatchArm: c.latchArm,
		},
	}
}

// Restore replaces the banking, RAM and RTC state.
func (c *MBC3) Restore(s State) error {
	c.romBank = uint8(s.ROMBank) & 0x7F
	if c.romBank == 0 {
		c.romBank = 1
	}
	c.ramSelect = s.RAMBank & 0x0F
	c.ramEnable = s.RAMEnable
	c.rtc = rtc{
		seconds: s.RTC.Seconds,
		minutes: s.RTC.Minutes,
		hours:   s.RTC.Hours,
		days:    s.RTC.Days & 0x1FF,
		halted:  s.RTC.Halted,
		carry:   s.RTC.Carry,
		latched: s.RTC.Latched,
		cycles:  s.RTC.Cycles,
	}
	c.latchArm = s.RTC.LatchArm
	return loadRAM(c.ram, s.RAM)
}
