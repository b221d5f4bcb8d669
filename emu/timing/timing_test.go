package timing

import "testing"

func TestRingWrapsAfterTwelvePulses(t *testing.T) {
	g := New()
	g.SetStrt2(false)
	g.gojam = false
	g.pulse = 0 // New parks the ring at T12; count the cycle from T01

	for i := 0; i < PulseCount-1; i++ {
		if _, wrapped := g.Advance(); wrapped {
			t.Fatalf("unexpected wrap at step %d", i)
		}
	}
	_, wrapped := g.Advance()
	if !wrapped {
		t.Fatal("expected wrap after 12 advances")
	}
	if g.Pulse() != 1 {
		t.Fatalf("pulse after wrap = %d, want 1", g.Pulse())
	}
}

func TestGojamHeldWhileStrt2Asserted(t *testing.T) {
	g := New()
	for i := 0; i < 30; i++ {
		if !g.Gojam() {
			t.Fatalf("GOJAM dropped while STRT2 asserted at step %d", i)
		}
		g.Advance()
	}
}

func TestGojamDeassertsAfterHoldWindow(t *testing.T) {
	g := New()
	g.SetStrt2(false)
	g.AssertGojam()
	for i := 0; i < GojamHoldPulses; i++ {
		if !g.Gojam() {
			t.Fatalf("GOJAM dropped early at tick %d", i)
		}
		g.Advance()
	}
	if g.Gojam() {
		t.Fatal("GOJAM should have deasserted after the hold window")
	}
}
