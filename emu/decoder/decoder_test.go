package decoder

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
)

// dumpOnFailure spews the full register file once the calling test has
// failed, giving a field-by-field view of A/L/Q/Z/B/G/S/SQ/ST/BR instead of
// the single register the failing assertion already printed.
func dumpOnFailure(t *testing.T, regs *register.File) {
	t.Helper()
	t.Cleanup(func() {
		if t.Failed() {
			spew.Dump(regs)
		}
	})
}

func newTestEngine() (*Engine, *register.File) {
	regs := register.New()
	mem := memmodel.New()
	return New(regs, mem), regs
}

// runStage drives every Tn of one Stage against regs, mimicking what
// Sequencer will eventually do; decoder tests exercise the table directly so
// they don't depend on the not-yet-built sequencer.
func runStage(e *Engine, regs *register.File, st Stage) {
	for tn := 0; tn < 12; tn++ {
		regs.BeginTick(int64(tn))
		if op := st.Ops[tn]; op != nil {
			op(e)
		}
	}
}

func TestCALoadsAccumulator(t *testing.T) {
	e, regs := newTestEngine()
	e.Mem.WriteErasable(0o10, 0o12345)
	regs.Write(register.B, 0o10)

	ins := Lookup(sqCode(false, 0))
	if ins == nil || ins.Name != "CA" {
		t.Fatalf("expected CA instruction, got %v", ins)
	}
	runStage(e, regs, ins.Stages[StageExec1])

	if got := regs.Read(register.A); got != 0o12345 {
		t.Fatalf("A = %o, want 012345", got)
	}
}

func TestTCSetsReturnAndTarget(t *testing.T) {
	e, regs := newTestEngine()
	regs.Write(register.Z, 0o4001)
	regs.Write(register.B, 0o5000)

	ins := Lookup(sqCode(false, 7))
	runStage(e, regs, ins.Stages[StageExec1])

	if got := regs.Read(register.Q); got != 0o4001 {
		t.Fatalf("Q = %o, want 04001", got)
	}
	if got := regs.Read(register.Z); got != 0o5000 {
		t.Fatalf("Z = %o, want 05000", got)
	}
}

func TestXCHSwapsAAndMemory(t *testing.T) {
	e, regs := newTestEngine()
	e.Mem.WriteErasable(0o20, 0o100)
	regs.Write(register.A, 0o200)
	regs.Write(register.B, 0o20)

	ins := Lookup(sqCode(false, 9))
	runStage(e, regs, ins.Stages[StageExec1])

	if got := regs.Read(register.A); got != 0o100 {
		t.Fatalf("A = %o, want 0100", got)
	}
	if got := e.Mem.ReadErasable(0o20); got != 0o200 {
		t.Fatalf("mem[020] = %o, want 0200", got)
	}
}

func TestCCSZeroBranchesByTwo(t *testing.T) {
	e, regs := newTestEngine()
	dumpOnFailure(t, regs)
	e.Mem.WriteErasable(0o30, 0)
	regs.Write(register.B, 0o30)
	regs.Write(register.Z, 0o4010)

	ins := Lookup(sqCode(false, 8))
	runStage(e, regs, ins.Stages[StageExec1])

	if got := regs.Read(register.Z); got != 0o4012 {
		t.Fatalf("Z = %o, want 04012", got)
	}
	if got := regs.Read(register.A); got != 0 {
		t.Fatalf("A = %o, want 0", got)
	}
}

func TestCCSNegativeZeroBranchesByFour(t *testing.T) {
	e, regs := newTestEngine()
	dumpOnFailure(t, regs)
	e.Mem.WriteErasable(0o30, register.MagMask) // all-ones -0
	regs.Write(register.B, 0o30)
	regs.Write(register.Z, 0o4010)

	ins := Lookup(sqCode(false, 8))
	runStage(e, regs, ins.Stages[StageExec1])

	if got := regs.Read(register.Z); got != 0o4014 {
		t.Fatalf("Z = %o, want 04014 (-0 takes the +4 branch, distinct from +0's +2)", got)
	}
	if got := regs.Read(register.A); got != 0 {
		t.Fatalf("A = %o, want 0", got)
	}
}

func TestADCapturesOverflow(t *testing.T) {
	e, regs := newTestEngine()
	dumpOnFailure(t, regs)
	e.Mem.WriteErasable(0o40, 1)
	regs.Write(register.B, 0o40)
	regs.Write(register.A, 0o37777)

	ins := Lookup(sqCode(false, 3))
	runStage(e, regs, ins.Stages[StageExec1])

	if !e.Overflowed() {
		t.Fatal("expected BR1 overflow capture after +037777 + 1")
	}
}

func TestDASWritesBothWordsOfAnEvenPair(t *testing.T) {
	e, regs := newTestEngine()
	regs.Write(register.B, 0o101) // odd operand, rounds down to 0100
	regs.Write(register.A, 1)
	regs.Write(register.L, 1)

	ins := Lookup(sqCode(false, 11))
	runStage(e, regs, ins.Stages[StageExec1])
	runStage(e, regs, ins.Stages[StageExec2])

	if got := e.Mem.ReadErasable(0o101); got != 1 {
		t.Fatalf("mem[0101] (low) = %o, want 1", got)
	}
	if got := e.Mem.ReadErasable(0o100); got != 1 {
		t.Fatalf("mem[0100] (high) = %o, want 1", got)
	}
	if got := regs.Read(register.A); got != 0 {
		t.Fatalf("A after DAS = %o, want 0", got)
	}
}

func TestMPComputesMagnitudeProduct(t *testing.T) {
	e, regs := newTestEngine()
	e.Mem.WriteErasable(0o50, 3)
	regs.Write(register.B, 0o50)
	regs.Write(register.A, 5)

	ins := Lookup(sqCode(true, 7))
	runStage(e, regs, ins.Stages[StageExec1])
	runStage(e, regs, ins.Stages[StageExec2])

	if got := regs.Read(register.L); got != 15 {
		t.Fatalf("L (low product word) = %o, want 15 = 017", got)
	}
}

func TestReadWriteChannelRoundTrip(t *testing.T) {
	e, regs := newTestEngine()
	fake := &fakeChannels{}
	e.SetChannels(fake)
	regs.Write(register.B, 7)
	regs.Write(register.A, 0o1234)

	write := Lookup(sqCode(true, 10))
	runStage(e, regs, write.Stages[StageExec1])

	regs.Write(register.A, 0)
	read := Lookup(sqCode(true, 9))
	runStage(e, regs, read.Stages[StageExec1])

	if got := regs.Read(register.A); got != 0o1234 {
		t.Fatalf("A after READ = %o, want 01234", got)
	}
}

type fakeChannels struct {
	values [64]register.Word
}

func (f *fakeChannels) Read(ch register.Word) register.Word  { return f.values[ch&0x3f] }
func (f *fakeChannels) Write(ch register.Word, v register.Word) { f.values[ch&0x3f] = v }
