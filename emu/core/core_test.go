package core

import (
	"strings"
	"testing"

	"github.com/emgre/agc/emu/register"
)

func TestNewHoldsGojamUntilStrt2Dropped(t *testing.T) {
	c := New()
	if !c.Timing.Gojam() {
		t.Fatal("expected GOJAM asserted at power on")
	}
	for i := 0; i < 24; i++ {
		if err := c.StepOnePulse(); err != nil {
			t.Fatalf("StepOnePulse: %v", err)
		}
	}
	if !c.Timing.Gojam() {
		t.Fatal("expected GOJAM still held while STRT2 is asserted")
	}

	c.SetInput("STRT2", false)
	for i := 0; i < 24; i++ {
		if err := c.StepOnePulse(); err != nil {
			t.Fatalf("StepOnePulse: %v", err)
		}
	}
	if c.Timing.Gojam() {
		t.Fatal("expected GOJAM released once STRT2 dropped and the hold window elapsed")
	}
}

func TestLoadFixedRejectsOutOfRangeBank(t *testing.T) {
	c := New()
	if err := c.LoadFixed(99, 0, 0o12345); err == nil {
		t.Fatal("expected an error for an out-of-range bank")
	}
	if err := c.LoadFixed(0, 0, 0o12345); err != nil {
		t.Fatalf("LoadFixed: %v", err)
	}
}

func TestSetInputGetOutputRoundTrip(t *testing.T) {
	c := New()
	c.SetInput("SBYBUT", true)
	if !c.GetOutput("SBYBUT") {
		t.Fatal("expected SBYBUT to read back true")
	}
}

func TestWriteTraceRowFormat(t *testing.T) {
	c := New()
	var sb strings.Builder
	if err := c.WriteTraceRow(&sb); err != nil {
		t.Fatalf("WriteTraceRow: %v", err)
	}
	row := sb.String()
	fields := strings.Split(strings.TrimSuffix(row, "\n"), ";")
	// subinstruction counter, T-pulse label, 14 registers, then a trailing
	// empty field from the mandated trailing ';'.
	if len(fields) != 17 {
		t.Fatalf("expected 17 ';'-separated fields (incl. trailing empty), got %d: %q", len(fields), row)
	}
	if !strings.HasPrefix(fields[1], "T") {
		t.Fatalf("expected time pulse field to start with T, got %q", fields[1])
	}
	if fields[len(fields)-1] != "" {
		t.Fatalf("expected trailing empty field from the mandated trailing ';', got %q", fields[len(fields)-1])
	}
}

func TestAssertGojamForcesReset(t *testing.T) {
	c := New()
	c.SetInput("STRT2", false)
	for i := 0; i < 24; i++ {
		_ = c.StepOnePulse()
	}
	c.AssertGojam()
	if !c.Timing.Gojam() {
		t.Fatal("expected GOJAM asserted immediately after AssertGojam")
	}

	// The reset is only actually applied on the first T01 the hold observes
	// (spec section 4.6), so step until it lands rather than assuming the
	// very next tick happens to land on T01.
	const searchBudget = 13
	reached := false
	for i := 0; i < searchBudget; i++ {
		if err := c.StepOnePulse(); err != nil {
			t.Fatalf("StepOnePulse: %v", err)
		}
		if c.Regs.Read(register.Z) == 0o4000 {
			reached = true
			break
		}
	}
	if !reached {
		t.Fatalf("expected Z forced to the GOJAM reset vector 04000 within %d ticks, got %o", searchBudget, c.Regs.Read(register.Z))
	}
	if got := c.Regs.Read(register.SQ); got != 0 {
		t.Fatalf("expected SQ cleared by GOJAM reset, got %o", got)
	}
}
