package machine

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"dotmatrix/internal/interrupt"
	"dotmatrix/internal/joypad"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.WarnLevel)
	os.Exit(m.Run())
}

// buildROM assembles a 32 KiB image with a valid header and the given
// program at the entry point.
func buildROM(controllerType, ramCode uint8, program []byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)
	copy(rom[0x0134:], "MACHTEST")
	rom[0x0147] = controllerType
	rom[0x0148] = 0x00
	rom[0x0149] = ramCode
	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	return rom
}

// haltProgram parks the CPU in a tight jump so the cycle stream stays
// predictable.
var haltProgram = []byte{0x18, 0xFE} // JR -2

func newMachine(t *testing.T, program []byte) *Machine {
	t.Helper()
	m, err := New(buildROM(0x00, 0x00, program))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}

func TestNewRejectsBadImage(t *testing.T) {
	if _, err := New([]byte{0x00, 0x01}); err == nil {
		t.Error("New() with a truncated image: expected error")
	}
}

func TestWiring(t *testing.T) {
	m := newMachine(t, haltProgram)

	// The bus must see the cartridge program at the entry point.
	if v, _ := m.Bus.Read(0x0100); v != 0x18 {
		t.Errorf("bus ROM read = %02X, want 18", v)
	}

	// A joypad press must land in IF.
	m.Joypad.Press(joypad.Start)
	if m.IC.ReadPending()&interrupt.Joypad.Mask() == 0 {
		t.Error("joypad press did not raise the Joypad interrupt")
	}
}

func TestStepFansOut(t *testing.T) {
	m := newMachine(t, haltProgram)

	m.RunCycles(4096)

	if m.CPU.Cycles < 4096 {
		t.Errorf("CPU cycles = %d, want >= 4096", m.CPU.Cycles)
	}
	// DIV ticks every 256 T-cycles, so the timer saw the same stream.
	if v, _ := m.Bus.Read(0xFF04); v < 15 {
		t.Errorf("DIV = %d, want >= 15 after 4096 cycles", v)
	}
	// The LCD walked into the first scanline's draw or later.
	if v, _ := m.Bus.Read(0xFF44); v < 8 {
		t.Errorf("LY = %d, want >= 8 after 4096 cycles", v)
	}
}

func TestSerialOutput(t *testing.T) {
	program := []byte{
		0x3E, 'O', // LD A,'O'
		0xE0, 0x01, // LDH (FF01),A
		0x3E, 0x81, // LD A,81
		0xE0, 0x02, // LDH (FF02),A
		0x18, 0xFE, // JR -2
	}
	m := newMachine(t, program)

	m.RunCycles(8192) // a transfer takes 4096 cycles

	if got := string(m.SerialOutput()); got != "O" {
		t.Errorf("serial output = %q, want %q", got, "O")
	}
}

func TestRunFrame(t *testing.T) {
	m := newMachine(t, haltProgram)

	m.RunFrame()

	// The first frame completes when line 144 begins.
	if m.CPU.Cycles < 144*456 {
		t.Errorf("cycles = %d, want >= %d for one frame", m.CPU.Cycles, 144*456)
	}
	if m.CPU.Cycles > CyclesPerFrame+64 {
		t.Errorf("cycles = %d, want about one frame (%d)", m.CPU.Cycles, CyclesPerFrame)
	}
}

func TestBatteryRAM(t *testing.T) {
	m, err := New(buildROM(0x03, 0x02, haltProgram)) // MBC1+RAM+BATTERY, 8 KiB
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	data := make([]byte, 0x2000)
	data[0] = 0xAB
	data[0x1FFF] = 0xCD
	if err := m.LoadBatteryRAM(data); err != nil {
		t.Fatalf("LoadBatteryRAM() error: %v", err)
	}

	got := m.BatteryRAM()
	if got[0] != 0xAB || got[0x1FFF] != 0xCD {
		t.Errorf("battery RAM = %02X...%02X, want AB...CD", got[0], got[0x1FFF])
	}
}

func TestBatteryRAMAbsent(t *testing.T) {
	m := newMachine(t, haltProgram)

	if got := m.BatteryRAM(); got != nil {
		t.Errorf("BatteryRAM() = %v, want nil without a battery", got)
	}
}

func TestSnapshotDeterministicResume(t *testing.T) {
	program := []byte{
		0x3E, 0x05, // LD A,5
		0xE0, 0x07, // LDH (FF07),A  timer on, fastest clock
		0x3C,       // INC A
		0x18, 0xFD, // JR -3
	}
	a := newMachine(t, program)
	a.RunCycles(5000)

	snap := a.Snapshot()

	b := newMachine(t, program)
	if err := b.Restore(snap); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	a.RunCycles(20000)
	b.RunCycles(20000)

	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Errorf("machines diverged after restore (-a +b):\n%s", diff)
	}
}

func TestSnapshotVersionCheck(t *testing.T) {
	m := newMachine(t, haltProgram)

	s := m.Snapshot()
	s.Version = 99
	if err := m.Restore(s); err == nil {
		t.Error("Restore() with a wrong version: expected error")
	}
}

func TestSaveLoadState(t *testing.T) {
	m := newMachine(t, haltProgram)
	m.RunCycles(10000)

	var buf bytes.Buffer
	if err := m.SaveState(&buf); err != nil {
		t.Fatalf("SaveState() error: %v", err)
	}
	want := m.Snapshot()

	other := newMachine(t, haltProgram)
	if err := other.LoadState(&buf); err != nil {
		t.Fatalf("LoadState() error: %v", err)
	}

	if diff := cmp.Diff(want, other.Snapshot()); diff != "" {
		t.Errorf("state after load mismatch (-want +got):\n%s", diff)
	}
}
