package memmodel

import (
	"testing"

	"github.com/emgre/agc/emu/register"
)

func TestTranslateDirectErasable(t *testing.T) {
	kind, idx := Translate(0o0010, 5, 2, false)
	if kind != Erasable {
		t.Fatalf("address 0010 must be direct erasable, got %v", kind)
	}
	if idx != 0o0010 {
		t.Fatalf("direct erasable index = %o, want %o", idx, 0o0010)
	}
}

func TestTranslateSwitchedErasableUsesEBANK(t *testing.T) {
	kind, idx := Translate(0o1400, 3, 2, false)
	if kind != Erasable {
		t.Fatalf("address 1400 must be switched erasable, got %v", kind)
	}
	want := uint32(3)*ErasableBankSize + 0
	if idx != want {
		t.Fatalf("switched erasable index = %o, want %o", idx, want)
	}
}

func TestTranslateFixedUsesFBANKAndSuperbank(t *testing.T) {
	kind, idx := Translate(0o2000, 0, 24, true)
	if kind != Fixed {
		t.Fatalf("address 2000 must be fixed, got %v", kind)
	}
	want := uint32(32)*FixedBankSize + 0
	if idx != want {
		t.Fatalf("superbank-extended fixed index = %o, want %o", idx, want)
	}
}

func TestLoadFixedThenReadMatchesWithOddParity(t *testing.T) {
	m := New()
	if err := m.LoadFixed(2, 0, 0o12345); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, idx := Translate(0o2000, 0, 2, false)
	value, ok := m.ReadFixed(idx)
	if value != 0o12345 {
		t.Fatalf("read back %o, want %o", value, 0o12345)
	}
	if !ok {
		t.Fatal("freshly loaded word must report parity OK")
	}
}

func TestLoadFixedRawMismatchedParityFailsOnRead(t *testing.T) {
	m := New()
	// A weave that put the wrong sense on the parity line: the payload is
	// unchanged but the stored parity bit no longer agrees with it.
	if err := m.LoadFixedRaw(2, 0, 0o12345, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, idx := Translate(0o2000, 0, 2, false)
	value, ok := m.ReadFixed(idx)
	if value != 0o12345 {
		t.Fatalf("read back %o, want %o", value, 0o12345)
	}
	if ok {
		t.Fatal("expected a corrupted parity bit to report parityOK=false")
	}
}

func TestLoadFixedOutOfRangeErrors(t *testing.T) {
	m := New()
	if err := m.LoadFixed(36, 0, 0); err == nil {
		t.Fatal("expected an AddressError for bank 36")
	}
}

func TestUnpopulatedErasableReadsZero(t *testing.T) {
	m := New()
	if v := m.ReadErasable(9999999); v != register.Word(0) {
		t.Fatalf("out of range erasable read = %o, want 0", v)
	}
}
