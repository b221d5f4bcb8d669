package alarm

import (
	"testing"

	"github.com/emgre/agc/emu/decoder"
	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/emu/timing"
)

func newMonitor() (*Monitor, *decoder.Engine, *timing.Generator) {
	regs := register.New()
	mem := memmodel.New()
	eng := decoder.New(regs, mem)
	gen := timing.New()
	gen.SetStrt2(false)
	m := New(gen, eng)
	return m, eng, gen
}

func TestParityFailureAssertsGojam(t *testing.T) {
	m, _, gen := newMonitor()
	m.ObserveParity(false)
	if !m.Flags().MPAL {
		t.Fatal("expected MPAL latched")
	}
	if !gen.Gojam() {
		t.Fatal("expected GOJAM asserted after parity failure")
	}
}

func TestNightWatchmanFiresWithoutPeriodicRead(t *testing.T) {
	m, _, gen := newMonitor()
	for i := 0; i < NightWatchmanTicks+1; i++ {
		m.Tick()
	}
	if !m.Flags().NHALGA {
		t.Fatal("expected NHALGA after the night-watchman window elapses unread")
	}
	if !gen.Gojam() {
		t.Fatal("expected GOJAM asserted")
	}
}

func TestNightWatchmanResetByPeriodicRead(t *testing.T) {
	m, eng, gen := newMonitor()
	mem := eng.Mem
	mem.WriteErasable(uint32(NightWatchmanAddress), 0)
	eng.Regs.Write(register.S, NightWatchmanAddress)

	half := NightWatchmanTicks / 2
	for i := 0; i < NightWatchmanTicks+1; i++ {
		m.Tick()
		if i == half {
			eng.MemoryReadAt()
		}
	}
	if m.Flags().NHALGA {
		t.Fatal("did not expect NHALGA: address was read within the window")
	}
	_ = gen
}

func TestScalerFailAssertsGojam(t *testing.T) {
	m, _, gen := newMonitor()
	m.SetScalerFail(true)
	if !gen.Gojam() {
		t.Fatal("expected GOJAM asserted after scaler fail")
	}
	if !m.Flags().MSCAFL {
		t.Fatal("expected MSCAFL latched")
	}
}
