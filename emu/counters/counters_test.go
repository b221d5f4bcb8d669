package counters

import (
	"testing"

	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
)

func TestServiceIncrementsPinc(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	idx := b.CellIndex("PIPAX")
	if idx < 0 {
		t.Fatal("PIPAX cell not registered")
	}
	b.RequestIncrement(idx)
	b.Service()

	if got := mem.ReadErasable(uint32(0o037)); got != 1 {
		t.Fatalf("PIPAX = %o, want 1", got)
	}
}

func TestTime3OverflowRaisesT3Rupt(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	mem.WriteErasable(uint32(0o026), register.MagMask)

	idx := b.CellIndex("TIME3")
	b.RequestIncrement(idx)
	b.Service()

	vector, entry, ok := b.Highest()
	if !ok {
		t.Fatal("expected T3RUPT pending after TIME3 overflow")
	}
	if Vector(vector) != T3RUPT {
		t.Fatalf("vector = %d, want T3RUPT", vector)
	}
	if entry == 0 {
		t.Fatal("expected a nonzero entry address")
	}
}

func TestHighestRespectsFixedPriority(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	b.RaiseExternal(HANDRUPT)
	b.RaiseExternal(KEYRUPT1)

	vector, _, ok := b.Highest()
	if !ok || Vector(vector) != KEYRUPT1 {
		t.Fatalf("expected KEYRUPT1 to win over HANDRUPT, got %d ok=%v", vector, ok)
	}
}

func TestClearDropsPendingBit(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	b.RaiseExternal(UPRUPT)
	b.Clear(int(UPRUPT))
	if _, _, ok := b.Highest(); ok {
		t.Fatal("expected no pending interrupt after Clear")
	}
}

func TestTime1OverflowChainsIntoTime2(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	mem.WriteErasable(uint32(0o025), register.MagMask) // TIME1
	mem.WriteErasable(uint32(0o024), 5)                // TIME2

	idx := b.CellIndex("TIME1")
	b.RequestIncrement(idx)
	b.Service()

	if got := mem.ReadErasable(uint32(0o024)); got != 6 {
		t.Fatalf("TIME2 = %o after TIME1 overflow, want 6", got)
	}
	if _, _, ok := b.Highest(); ok {
		t.Fatal("TIME1 overflow should chain silently, not raise an interrupt")
	}
}

func TestNewRegistersAllTwentyCells(t *testing.T) {
	mem := memmodel.New()
	b := New(mem)
	if got := len(b.cells); got != 20 {
		t.Fatalf("registered %d involuntary counter cells, want 20 (spec section 3)", got)
	}
}
