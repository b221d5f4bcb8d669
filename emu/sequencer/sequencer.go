/*
 * AGC - Sequence generator: fetch, decode dispatch, GOJAM, interrupts.
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

// Package sequencer is the top-level per-tick driver: it owns the time
// pulse ring (package timing) and the decoder Engine, dispatches into the
// per-instruction Stage tables (package decoder), and performs the
// T12-of-instruction housekeeping the rest of the machine hangs off of:
// GOJAM reset, counter/interrupt arbitration, and folding the next
// instruction's fetch into the tick that retires the current one. A
// dedicated fetch-only stage still runs once after a cold GOJAM reset or an
// interrupt/EDRUPT vector entry, but every steady-state one-stage
// instruction thereafter costs exactly 12 ticks (spec section 4.6,
// section 8); instructions with extra stages cost 12 ticks per stage.
package sequencer

import (
	"fmt"
	"strings"

	"github.com/emgre/agc/emu/decoder"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/emu/timing"
	"github.com/emgre/agc/util/debug"
)

// Debug flag bits for Debug/DEBUG sequencer <flag>.
const (
	DebugDecode = 1 << iota
	DebugInterrupt
)

// GojamResetZ, GojamResetFBank are the register values GOJAM forces (spec
// section 4.6: "SQ <- 0, ST <- 0, Z <- 4000 (octal), FBANK <- 2, EBANK <- 0").
const (
	GojamResetZ     register.Word = 0o4000
	GojamResetFBank register.Word = 2
)

// CounterSource abstracts the involuntary-counter subsystem: once per fetch
// T12, the highest-priority pending counter request steals the memory cycle
// (spec section 4.8) before any interrupt is considered.
type CounterSource interface {
	Service()
}

// InterruptSource abstracts the involuntary-counter/alarm subsystem's
// interrupt arbitration (spec section 4.8's fixed priority order), letting
// Sequencer depend on an interface instead of importing package counters.
type InterruptSource interface {
	// Highest returns the highest-priority pending vector and its fixed
	// entry address, or ok==false if nothing is pending.
	Highest() (vector int, entryAddr register.Word, ok bool)
	// Clear drops the pending bit for vector once it has been serviced.
	Clear(vector int)
}

// Sequencer drives one Engine through the fetch/execute cycle, one time
// pulse per Step call.
type Sequencer struct {
	Timing *timing.Generator
	Engine *decoder.Engine

	interrupts InterruptSource
	counters   CounterSource

	stage   int
	current *decoder.Instruction

	tick         int64
	decodedCount int64
	debugMask    int
}

// DecodedCount returns the number of instructions decoded since
// construction: one per fetch-stage completion (cold boot or
// interrupt/EDRUPT re-entry) plus one per folded fetch at the T12 that
// retires each instruction thereafter. Core uses this as the trace format's
// subinstruction counter (spec section 6.3) instead of inferring it from
// Stage() transitions, since a one-phase instruction no longer visits
// StageFetch at all in steady state.
func (s *Sequencer) DecodedCount() int64 {
	return s.decodedCount
}

// Debug enables a named trace flag ("decode", "interrupt"); see
// config/debugconfig's DEBUG sequencer <flag> directive.
func (s *Sequencer) Debug(flag string) error {
	switch strings.ToUpper(flag) {
	case "DECODE":
		s.debugMask |= DebugDecode
	case "INTERRUPT":
		s.debugMask |= DebugInterrupt
	default:
		return fmt.Errorf("sequencer: unknown debug flag %q", flag)
	}
	return nil
}

// New wires a Sequencer to its Engine and time pulse generator. Interrupts
// may be nil until the counters/alarm subsystem is constructed; SetInterruptSource
// attaches it afterward to break the natural construction-order cycle.
func New(t *timing.Generator, e *decoder.Engine) *Sequencer {
	return &Sequencer{Timing: t, Engine: e, stage: decoder.StageReset}
}

// SetInterruptSource attaches (or replaces) the interrupt arbitration source.
func (s *Sequencer) SetInterruptSource(src InterruptSource) {
	s.interrupts = src
}

// SetCounterSource attaches (or replaces) the involuntary-counter servicer.
func (s *Sequencer) SetCounterSource(src CounterSource) {
	s.counters = src
}

// Stage returns the sequencer's current ST value, as observed externally.
func (s *Sequencer) Stage() int {
	return s.stage
}

// Step advances the machine by exactly one time pulse: the unit of
// observable state change described in spec section 5 ("each call to the
// step primitive advances one time pulse"). It returns a *register.ViolationError
// if the tick's micro-operations asserted two writes to the same register.
func (s *Sequencer) Step() error {
	s.tick++
	regs := s.Engine.Regs
	regs.BeginTick(s.tick)

	tn := s.Timing.Pulse()

	if s.Timing.Gojam() {
		s.runGojamTick(tn)
	} else if s.stage == decoder.StageFetch || s.stage == decoder.StageReset {
		s.runFetchTick(tn)
	} else {
		s.runExecuteTick(tn)
	}

	s.Engine.CommitInhint()
	s.Timing.Advance()

	if v := regs.Violation(); v != nil {
		regs.ClearViolation()
		return v
	}
	return nil
}

// runGojamTick forces the reset state described in spec section 4.6 for as
// long as Timing reports GOJAM asserted; the reset is applied at every T01
// that passes while GOJAM is asserted, and other ticks of the hold window
// leave the machine state untouched.
func (s *Sequencer) runGojamTick(tn int) {
	if tn != 1 {
		return
	}
	regs := s.Engine.Regs
	regs.Clear(register.SQ)
	regs.Clear(register.ST)
	_ = regs.Write(register.Z, GojamResetZ)
	_ = regs.Write(register.FBANK, GojamResetFBank)
	_ = regs.Write(register.EBANK, 0)
	s.Engine.InhInt = false
	s.Engine.RuptLock = false
	s.stage = decoder.StageFetch
	s.current = nil
}

// runFetchTick executes the one-time fetch-only cycle used to bring the
// machine from a cold GOJAM reset (or a freshly-entered interrupt/EDRUPT
// vector) to its first decoded instruction: T01 addresses the instruction
// via Z and increments Z; T04 reads it into G; T05 stages it into B,
// applying any pending INDEX correction; T12 performs interrupt/counter
// arbitration and ordinary opcode decode. Every subsequent instruction
// folds this same work into the T12 of whatever subinstruction it retires
// from (completeInstruction) rather than spending a second subinstruction
// on it — see spec section 8, scenario 1 and the GOJAM invariant, both of
// which pin a one-phase instruction's total cost at 12 ticks.
func (s *Sequencer) runFetchTick(tn int) {
	e := s.Engine
	regs := e.Regs
	switch tn {
	case 1:
		z := regs.Read(register.Z)
		_ = regs.Write(register.S, z)
		skip := e.ConsumePCSkip()
		_ = regs.Write(register.Z, z+1+skip)
	case 4:
		_ = regs.Write(register.G, e.MemoryReadAt())
	case 5:
		w := regs.Read(register.G)
		if idx, ok := e.ConsumeIndex(); ok {
			addr := (w & register.AddressMask) + idx
			w = (w &^ register.AddressMask) | (addr & register.AddressMask)
		}
		_ = regs.Write(register.B, w)
	case 12:
		s.serviceT12()
	}
}

// serviceVectoring runs the counter-service-then-interrupt/EDRUPT
// arbitration common to every instruction boundary (spec section 4.8): a
// pending counter request is serviced first, then the highest-priority
// interrupt (if INHINT/RUPT_LOCK permit), then a pending EDRUPT. It returns
// true if either diverted control to a freshly-armed fetch stage, in which
// case the caller must not also decode normally this tick.
func (s *Sequencer) serviceVectoring() bool {
	e := s.Engine
	regs := e.Regs

	if s.counters != nil {
		s.counters.Service()
	}

	if s.interrupts != nil && !e.InhInt && !e.RuptLock {
		if vector, entry, ok := s.interrupts.Highest(); ok {
			e.ZRupt = regs.Read(register.Z)
			e.BRupt = regs.Read(register.B)
			e.RuptLock = true
			s.interrupts.Clear(vector)
			_ = regs.Write(register.Z, entry)
			regs.Clear(register.SQ)
			s.stage = decoder.StageFetch
			s.current = nil
			debug.Debugf("sequencer", s.debugMask, DebugInterrupt, "entering vector %d at %05o", vector, entry)
			return true
		}
	}

	if e.EdruptPending {
		e.EdruptPending = false
		e.RuptLock = true
		s.stage = decoder.StageFetch
		s.current = nil
		return true
	}

	return false
}

// serviceT12 is the one-time boot/re-entry fetch stage's T12: vectoring,
// then ordinary opcode decode from the B register runFetchTick already
// staged across this same stage's T01/T04/T05.
func (s *Sequencer) serviceT12() {
	if s.serviceVectoring() {
		return
	}

	e := s.Engine
	regs := e.Regs

	b := regs.Read(register.B)
	sq := (b >> 9) & 0x7f
	e.Extracode = sq&0x40 != 0
	_ = regs.Write(register.SQ, sq)

	ins := decoder.Lookup(sq)
	s.current = ins
	s.stage = decoder.StageExec1
	s.decodedCount++
	_ = regs.Write(register.ST, register.Word(s.stage))
	debug.Debugf("sequencer", s.debugMask, DebugDecode, "decoded SQ=%04o", sq)
}

// completeInstruction runs at T12 of the last stage of a retiring
// instruction (Stage.Next == 0): vectoring, then — unless that vectoring
// already armed a fresh fetch stage — the next instruction's
// address-select, memory read, INDEX correction and decode, folded into
// this same tick instead of a separate fetch subinstruction.
func (s *Sequencer) completeInstruction() {
	if s.serviceVectoring() {
		return
	}
	s.foldFetch()
}

// foldFetch performs, atomically within one tick, the addressing/memory
// read/decode that runFetchTick otherwise spreads across T01/T04/T05/T12 of
// a dedicated fetch subinstruction (spec section 4.5's "Z -> S, Z++,
// SQ-load"). It is what lets a one-phase instruction cost exactly 12 ticks
// in steady state: the fetch of instruction N+1 is folded into the T12 that
// retires instruction N.
func (s *Sequencer) foldFetch() {
	e := s.Engine
	regs := e.Regs

	z := regs.Read(register.Z)
	_ = regs.Write(register.S, z)
	skip := e.ConsumePCSkip()
	_ = regs.Write(register.Z, z+1+skip)

	w := e.MemoryReadAt()
	_ = regs.Write(register.G, w)
	if idx, ok := e.ConsumeIndex(); ok {
		addr := (w & register.AddressMask) + idx
		w = (w &^ register.AddressMask) | (addr & register.AddressMask)
	}
	_ = regs.Write(register.B, w)

	sq := (w >> 9) & 0x7f
	e.Extracode = sq&0x40 != 0
	_ = regs.Write(register.SQ, sq)

	ins := decoder.Lookup(sq)
	s.current = ins
	s.stage = decoder.StageExec1
	s.decodedCount++
	_ = regs.Write(register.ST, register.Word(s.stage))
	debug.Debugf("sequencer", s.debugMask, DebugDecode, "decoded SQ=%04o", sq)
}

// runExecuteTick dispatches into the current instruction's per-Tn
// micro-operations and, at T12, either advances ST to whatever the Stage
// named as Next or — when Next == 0, retiring the instruction — folds in
// the next instruction's fetch and decode (completeInstruction).
func (s *Sequencer) runExecuteTick(tn int) {
	if s.current == nil {
		// An unassigned (SQ,ST) cell was reached (spec section 7's design
		// violation case, reached only via a corrupted fetch); treat it as a
		// one-tick no-op rather than crashing the harness outright.
		if tn == 12 {
			s.completeInstruction()
		}
		return
	}

	stage, ok := s.current.Stages[s.stage]
	if !ok {
		s.current = nil
		return
	}

	if op := stage.Ops[tn-1]; op != nil {
		op(s.Engine)
	}

	if tn == 12 {
		if stage.Next == 0 {
			s.completeInstruction()
		} else {
			s.stage = stage.Next
			_ = s.Engine.Regs.Write(register.ST, register.Word(s.stage))
		}
	}
}
