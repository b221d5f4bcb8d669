/*
 * AGC - Top-level core harness.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package core wires together the timing generator, register file, memory
// model, decoder engine, sequencer, involuntary counters, alarm monitor and
// I/O bus into the external interface described in spec section 6: a
// step-one-pulse primitive plus named-signal and fixed-image loading hooks.
// Everything else (the interactive dashboard, CLI argument parsing, trace
// file I/O) is an external collaborator layered on top of this package; see
// spec section 1's "Out of scope" list.
package core

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/emgre/agc/emu/alarm"
	"github.com/emgre/agc/emu/counters"
	"github.com/emgre/agc/emu/decoder"
	"github.com/emgre/agc/emu/iobus"
	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/emu/sequencer"
	"github.com/emgre/agc/emu/timing"
)

// runCommand is a control-channel message for the background stepping loop
// started by Run, mirroring the teacher's master.Packet dispatch loop but
// reduced to the three transitions an unmanned CPU core actually needs.
type runCommand int

const (
	cmdRunStart runCommand = iota
	cmdRunStop
	cmdRunShutdown
)

// Core bundles one complete machine instance.
type Core struct {
	Timing    *timing.Generator
	Regs      *register.File
	Mem       *memmodel.Memory
	Engine    *decoder.Engine
	Sequencer *sequencer.Sequencer
	Counters  *counters.Bank
	Alarm     *alarm.Monitor
	Bus       *iobus.Bus

	subinstructionCounter int64
	signals               map[string]bool

	wg       sync.WaitGroup
	control  chan runCommand
	running  bool
	traceOut io.Writer
}

// New constructs a fully wired Core: power-on state, STRT2 held, GOJAM
// asserted (spec section 6.4).
func New() *Core {
	regs := register.New()
	mem := memmodel.New()
	eng := decoder.New(regs, mem)
	gen := timing.New()
	bus := iobus.New()
	bus.BindSuperbank(eng)
	eng.SetChannels(bus)

	cnt := counters.New(mem)
	mon := alarm.New(gen, eng)

	seq := sequencer.New(gen, eng)
	seq.SetCounterSource(cnt)
	seq.SetInterruptSource(cnt)

	return &Core{
		Timing:    gen,
		Regs:      regs,
		Mem:       mem,
		Engine:    eng,
		Sequencer: seq,
		Counters:  cnt,
		Alarm:     mon,
		Bus:       bus,
		signals:   make(map[string]bool),
		control:   make(chan runCommand, 4),
	}
}

// SetTraceOutput arms per-pulse CSV trace output (spec section 6.3) for the
// background Run loop; pass nil to disable.
func (c *Core) SetTraceOutput(w io.Writer) {
	c.traceOut = w
}

// Run drives the machine continuously until told to stop, stepping one
// pulse at a time whenever SendStart has been called, idling otherwise.
// It blocks; callers start it in its own goroutine, mirroring the teacher's
// emu/core Start loop (select over a control channel, step while running,
// idle otherwise) adapted from whole-instruction CPU cycles to single time
// pulses and from a telnet/master.Packet dispatch to plain start/stop/
// shutdown control.
func (c *Core) Run() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case cmd := <-c.control:
			switch cmd {
			case cmdRunStart:
				c.running = true
			case cmdRunStop:
				c.running = false
			case cmdRunShutdown:
				return
			}
			continue
		default:
		}

		if !c.running {
			time.Sleep(time.Millisecond)
			continue
		}

		if err := c.StepOnePulse(); err != nil {
			slog.Error("design violation, stopping", "error", err)
			c.running = false
			continue
		}
		if c.traceOut != nil {
			if err := c.WriteTraceRow(c.traceOut); err != nil {
				slog.Error("trace write failed", "error", err)
			}
		}
	}
}

// SendStart asks the Run loop to begin free-running stepping.
func (c *Core) SendStart() {
	c.control <- cmdRunStart
}

// SendStop asks the Run loop to pause free-running stepping, leaving all
// state intact so a later SendStart resumes where it left off.
func (c *Core) SendStop() {
	c.control <- cmdRunStop
}

// Shutdown asks the Run loop to exit and waits for it to do so.
func (c *Core) Shutdown() {
	c.control <- cmdRunShutdown
	c.wg.Wait()
}

// StepOnePulse advances the machine by exactly one time pulse (spec section
// 6's step_one_pulse). It returns the first design-violation error observed,
// if any; development builds are expected to treat a non-nil error as fatal
// (spec section 7).
func (c *Core) StepOnePulse() error {
	err := c.Sequencer.Step()
	c.Alarm.Tick()
	c.Alarm.ObserveParity(c.Engine.LastParityOK())
	c.subinstructionCounter = c.Sequencer.DecodedCount()
	return err
}

// Snapshot returns all observable registers (spec section 6's snapshot()).
func (c *Core) Snapshot() register.Snapshot {
	return c.Regs.Snapshot()
}

// SetInput manipulates a named external input signal (spec section 6.1).
// The STRT2 signal is wired directly to the timing generator's power-on
// hold, and SCAFAL and VFAIL drive the alarm monitor's scaler-fail and
// voltage-fail lines; every signal, wired or not, is also a plain latch
// surfaced through GetOutput for the peripheral layer's own interpretation.
func (c *Core) SetInput(signal string, level bool) {
	c.signals[signal] = level
	switch signal {
	case "STRT2":
		c.Timing.SetStrt2(level)
	case "SCAFAL":
		c.Alarm.SetScalerFail(level)
	case "VFAIL":
		c.Alarm.SetVoltageFail(level)
	}
}

// GetOutput returns the last level set for a named signal. Output-only
// signals (COMACT, KYRLS, RESTRT, ...) are expected to be set by peripheral
// wiring outside this package via SetInput under the same name.
func (c *Core) GetOutput(signal string) bool {
	return c.signals[signal]
}

// LoadFixed populates one fixed-memory word, simulating loading the rope
// (spec section 6's load_fixed).
func (c *Core) LoadFixed(bank, offset int, word register.Word) error {
	return c.Mem.LoadFixed(bank, offset, word)
}

// AssertGojam forces a restart (spec section 6's assert_gojam).
func (c *Core) AssertGojam() {
	c.Timing.AssertGojam()
}

// SubinstructionCount returns the number of instructions decoded since
// construction (Sequencer.DecodedCount), used as the first column of the trace format (spec
// section 6.3).
func (c *Core) SubinstructionCount() int64 {
	return c.subinstructionCounter
}

// WriteTraceRow appends one CSV row in the format specified by section 6.3:
// subinstruction counter, time pulse label, then A L Q Z EBANK FBANK B G S
// SQ ST X Y BR in octal, ';'-separated with a trailing ';'.
func (c *Core) WriteTraceRow(w io.Writer) error {
	s := c.Snapshot()
	_, err := fmt.Fprintf(w, "%d;T%02d;%s;%s;%s;%s;%s;%s;%s;%s;%s;%s;%s;%s;%s;%s;\n",
		c.subinstructionCounter, c.Timing.Pulse(),
		s.A, s.L, s.Q, s.Z, s.EBank, s.FBank, s.B, s.G, s.S, s.SQ, s.ST, s.X, s.Y, s.BR)
	return err
}
