package register

import "testing"

func TestWriteThenReadRoundTrips(t *testing.T) {
	f := New()
	f.BeginTick(1)
	if err := f.Write(A, 0o12345); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Read(A); got != 0o12345 {
		t.Fatalf("A = %o, want %o", got, 0o12345)
	}
}

func TestDoubleWriteSameTickIsViolation(t *testing.T) {
	f := New()
	f.BeginTick(4)
	if err := f.Write(Z, 1); err != nil {
		t.Fatalf("first write: unexpected error: %v", err)
	}
	err := f.Write(Z, 2)
	if err == nil {
		t.Fatal("expected a ViolationError on double write, got nil")
	}
	var verr *ViolationError
	if !asViolation(err, &verr) {
		t.Fatalf("expected *ViolationError, got %T: %v", err, err)
	}
	if verr.Reg != Z || verr.Tick != 4 {
		t.Fatalf("unexpected violation contents: %+v", verr)
	}
	if f.Violation() == nil {
		t.Fatal("expected File.Violation() to retain the error")
	}
}

func TestDoubleWriteClearedOnNextTick(t *testing.T) {
	f := New()
	f.BeginTick(1)
	_ = f.Write(A, 1)
	f.BeginTick(2)
	if err := f.Write(A, 2); err != nil {
		t.Fatalf("write on a fresh tick must succeed, got %v", err)
	}
}

func TestClearThenWriteSameTickIsNotAViolation(t *testing.T) {
	f := New()
	f.BeginTick(1)
	f.Clear(A)
	if err := f.Write(A, 5); err != nil {
		t.Fatalf("clear-then-write must be permitted, got %v", err)
	}
}

func TestOnesComplementSignExtension(t *testing.T) {
	w := Word(0o37777) // +max in 15 bits
	c := w.OnesComplement()
	if !c.Negative() {
		t.Fatalf("complement of +max should be negative, got %s", c)
	}
	if c.SignExtend()&SignBit == 0 {
		t.Fatal("sign extend should set bit 16 for a negative value")
	}
}

func TestZeroVariants(t *testing.T) {
	pos := Word(0)
	neg := Word(MagMask)
	if !pos.IsZero() || !neg.IsZero() {
		t.Fatal("both +0 and -0 patterns must report IsZero")
	}
	if pos.IsNegativeZero() {
		t.Fatal("+0 must not report IsNegativeZero")
	}
	if !neg.IsNegativeZero() {
		t.Fatal("-0 must report IsNegativeZero")
	}
}

func asViolation(err error, out **ViolationError) bool {
	v, ok := err.(*ViolationError)
	if ok {
		*out = v
	}
	return ok
}
