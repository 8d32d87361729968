package cartridge

import (
	"testing"
)

func TestMBC5BankSwitch(t *testing.T) {
	cart, err := New(makeROM(TypeMBC5, 3, 0)) // 16 banks
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	cart.Write(0x2000, 0x0A)
	if got := bankAt(cart, 0x4000); got != 10 {
		t.Errorf("bank = %d, want 10", got)
	}
}

func TestMBC5BankZeroSelectable(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC5, 1, 0))

	// No zero aliasing: bank 0 appears in the switchable window too.
	cart.Write(0x2000, 0x00)
	if got := bankAt(cart, 0x4000); got != 0 {
		t.Errorf("bank = %d, want 0 (no aliasing on this controller)", got)
	}
}

func TestMBC5NinthBit(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC5, 8, 0)) // 512 banks

	cart.Write(0x2000, 0x04)
	cart.Write(0x3000, 0x01)
	if got := bankAt(cart, 0x4000); got != 0x104 {
		t.Errorf("bank = %#x, want 0x104", got)
	}

	// Clearing the high bit leaves the low byte.
	cart.Write(0x3000, 0x00)
	if got := bankAt(cart, 0x4000); got != 0x004 {
		t.Errorf("bank = %#x, want 0x004", got)
	}
}

func TestMBC5RAMBanking(t *testing.T) {
	cart, _ := New(makeROM(TypeMBC5RAM, 1, 0x04)) // 16 RAM banks

	cart.Write(0x0000, 0x0A)
	for bank := uint8(0); bank < 16; bank++ {
		cart.Write(0x4000, bank)
		cart.Write(0xA000, 0x40+bank)
	}
	for bank := uint8(0); bank < 16; bank++ {
		cart.Write(0x4000, bank)
		if got := cart.Read(0xA000); got != 0x40+bank {
			t.Errorf("RAM bank %d = %02X, want %02X", bank, got, 0x40+bank)
		}
	}
}
