package adder

import (
	"testing"

	"github.com/emgre/agc/emu/register"
)

func TestAddWithEndAroundCarry(t *testing.T) {
	// +1 + -1 (ones complement of 1) with an end-around carry should settle
	// back to +0, not -1.
	r := Add(1, Negate(1), false, false)
	if !r.Sum.IsZero() {
		t.Fatalf("1 + (-1) = %s, want a zero pattern", r.Sum)
	}
}

func TestOverflowOnPositiveOverflow(t *testing.T) {
	r := Add(0o37777, 1, false, false)
	if !r.Overflow {
		t.Fatalf("adding 1 to +37777 (octal) must overflow, got sum %s", r.Sum)
	}
	if r.Sum&register.SignBit == r.Sum&register.MagSignBit {
		// Should disagree; otherwise Overflow logic is inconsistent with the
		// raw bit pattern.
		t.Fatalf("overflow flag inconsistent with bit16/bit15 of %o", r.Sum)
	}
}

func TestNoEACSuppressesWraparound(t *testing.T) {
	r := Add(register.WordMask, 1, false, true)
	if r.Sum != 0 {
		t.Fatalf("with NO_EAC asserted, carry out of bit16 must be dropped, got %o", r.Sum)
	}
}

func TestIncrementDecrementRoundTrip(t *testing.T) {
	start := register.Word(0o100)
	up := Increment(start)
	down := Decrement(up.Sum)
	if down.Sum != start {
		t.Fatalf("increment then decrement: got %s, want %s", down.Sum, start)
	}
}
