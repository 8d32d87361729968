package cartridge

import (
	"testing"
)

func TestMBC2RegisterSelect(t *testing.T) {
	cart, err := New(makeROM(TypeMBC2, 2, 0)) // 8 banks
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Address bit 8 clear: RAM enable latch. Bank register untouched.
	cart.Write(0x0000, 0x0A)
	if got := bankAt(cart, 0x4000); got != 1 {
		t.Errorf("bank = %d, want 1 after enable write", got)
	}

	// Address bit 8 set: ROM bank register.
	cart.Write(0x0100, 0x03)
	if got := bankAt(cart, 0x4000); got != 3 {
		t.Errorf("bank = %d, want 3", got)
	}

	// Bank 0 aliases to 1.
	cart.Write(0x2100, 0x00)
	if got := bankAt(cart, 0x4000); got != 1 {
		t.Errorf("bank after select 0 = %d, want 1", got)
	}
}

func TestMBC2RAMNibbles(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC2, 1, 0))

	cart.Write(0x0000, 0x0A) // enable
	cart.Write(0xA000, 0xA5) // only the low nibble is wired

	if got := cart.Read(0xA000); got != 0xF5 {
		t.Errorf("RAM read = %02X, want F5 (upper nibble reads 1s)", got)
	}
}

func TestMBC2RAMEcho(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC2, 1, 0))
	cart.Write(0x0000, 0x0A)

	// 512 cells repeat through the whole window.
	cart.Write(0xA000, 0x07)
	if got := cart.Read(0xA200); got != 0xF7 {
		t.Errorf("echo read = %02X, want F7", got)
	}
	cart.Write(0xA3FF, 0x02)
	if got := cart.Read(0xA1FF); got != 0xF2 {
		t.Errorf("echo read = %02X, want F2", got)
	}
}

func TestMBC2RAMDisabled(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC2, 1, 0))

	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("disabled RAM read = %02X, want FF", got)
	}
	cart.Write(0xA000, 0x05)
	cart.Write(0x0000, 0x0A)
	if got := cart.Read(0xA000); got != 0xF0 {
		t.Errorf("RAM = %02X, want F0 (disabled write swallowed)", got)
	}
}
