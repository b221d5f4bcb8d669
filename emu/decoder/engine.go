/*
 * AGC - Subinstruction decoder engine state.
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

// Package decoder is the subinstruction decoder / control pulse ROM (spec
// section 4.5), the heart of the emulator: a table indexed by (SQ, stage)
// whose entries name, per time pulse, the register-transfer micro-operation
// asserted that tick. Engine bundles the register file, memory, and the
// handful of internal flip-flops (CI, NO_EAC, extracode, INHINT, RUPT_LOCK)
// the table's micro-operations read and set.
package decoder

import (
	"fmt"
	"strings"

	"github.com/emgre/agc/emu/adder"
	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/util/debug"
)

// DebugParity is the one debug flag bit: "DEBUG decoder parity" traces
// every fixed-memory parity failure.
const DebugParity = 1 << iota

// Stage numbers. Stage 0 is the reset/idle value forced by GOJAM (spec
// section 3: "ST=0 is the natural next stage"). Stage 1 (Fetch) is the
// one-time fetch-only subinstruction the sequencer runs after a cold GOJAM
// reset or an interrupt/EDRUPT vector entry; every other instruction's
// fetch is folded into the T12 of whatever subinstruction retires it, so
// stage 1 is never revisited in steady state. Instruction-specific
// execution begins at stage 2.
const (
	StageReset = 0
	StageFetch = 1
	StageExec1 = 2
	StageExec2 = 3
	StageExec3 = 4
)

// BR branch-latch bit positions within the BR register (spec section 3: "2-bit
// branch latches").
const (
	BR1 register.Word = 1 << 0 // overflow capture (TOV)
	BR2 register.Word = 1 << 1 // sign/zero capture (TSGN/TMZ)
)

// Engine is the datapath and internal-flipflop state the decoder table
// operates on. It is intentionally dumb: it has no notion of Tn or which
// instruction is running; Sequencer and the per-instruction Stage tables in
// this package drive it one micro-operation at a time.
type Engine struct {
	Regs *register.File
	Mem  *memmodel.Memory

	CI        bool // carry-in flip-flop, consumed once by the next adder evaluation
	NoEAC     bool // suppress end-around carry for the next adder evaluation
	Extracode bool // current instruction is an extracode (SQ bit 6)

	InhInt   bool // interrupts globally inhibited (effective value)
	RuptLock bool // an interrupt service is in progress

	inhintPending    *bool // queued INHINT/RELINT change, applied at next T12 (spec 4.5 tie-break note)
	superbank        bool  // channel 7 FEXT bit, extends FBANK addressing
	lastParityOK     bool  // result of the most recent fixed-memory read
	lastFixedAddress uint32

	ZRupt, BRupt register.Word // interrupt-entry save latches (spec section 4.6)

	indexOffset register.Word // pending INDEX correction, applied to the next fetched instruction word
	indexArmed  bool

	pcSkip register.Word // pending Z advance past the folded fetch's normal +1 (TS's overflow skip)

	// counterReadHook, when non-nil, lets the night-watchman alarm observe
	// reads of address 0o67 without decoder importing package alarm.
	counterReadHook func(addr register.Word)

	channels Channels

	EdruptPending bool // EDRUPT requests a forced interrupt entry that does not save Z (spec section 4.6)

	debugMask int
}

// Debug enables a named trace flag ("parity"); see config/debugconfig's
// DEBUG decoder <flag> directive.
func (e *Engine) Debug(flag string) error {
	switch strings.ToUpper(flag) {
	case "PARITY":
		e.debugMask |= DebugParity
	default:
		return fmt.Errorf("decoder: unknown debug flag %q", flag)
	}
	return nil
}

// Channels is the I/O bus surface the READ/WRITE/RAND/WAND/ROR/WOR/RXOR
// instructions drive (spec section 4.7). Engine depends only on this
// interface so package iobus can depend on decoder without a cycle.
type Channels interface {
	Read(channel register.Word) register.Word
	Write(channel register.Word, value register.Word)
}

// SetChannels wires the I/O bus. Until called, channel instructions read as
// zero and discard writes.
func (e *Engine) SetChannels(c Channels) {
	e.channels = c
}

// New wires an Engine to a register file and memory image; both must
// already exist (constructed and, for Regs, zeroed by the caller before the
// first GOJAM).
func New(regs *register.File, mem *memmodel.Memory) *Engine {
	return &Engine{Regs: regs, Mem: mem, lastParityOK: true}
}

// SetCounterReadHook installs a callback invoked whenever an erasable read
// observes a given absolute address; used by the alarm monitor to detect
// the night-watchman condition (spec section 4.5) without a direct import
// cycle between decoder and alarm.
func (e *Engine) SetCounterReadHook(hook func(addr register.Word)) {
	e.counterReadHook = hook
}

// SetSuperbank sets or clears the channel-7 FEXT bit used in fixed-address
// translation (spec section 3, Superbank).
func (e *Engine) SetSuperbank(level bool) {
	e.superbank = level
}

// Superbank reports the current FEXT extension bit.
func (e *Engine) Superbank() bool {
	return e.superbank
}

// translate resolves S+EBANK/FBANK+superbank to a memory Kind and index.
func (e *Engine) translate() (memmodel.Kind, uint32) {
	s := e.Regs.Read(register.S)
	eb := e.Regs.Read(register.EBANK)
	fb := e.Regs.Read(register.FBANK)
	return memmodel.Translate(s, eb, fb, e.superbank)
}

// MemoryReadAt reads the word currently addressed by S (spec section 4.3's
// memory cycle, folded into one call since the per-(T04) staging is
// represented by the calling Stage.Ops entry, not by MemoryReadAt itself).
func (e *Engine) MemoryReadAt() register.Word {
	kind, idx := e.translate()
	if kind == memmodel.Erasable {
		if e.counterReadHook != nil {
			e.counterReadHook(e.Regs.Read(register.S))
		}
		return e.Mem.ReadErasable(idx)
	}
	v, ok := e.Mem.ReadFixed(idx)
	e.lastParityOK = ok
	e.lastFixedAddress = idx
	if !ok {
		debug.Debugf("decoder", e.debugMask, DebugParity, "parity failure at fixed %05o", idx)
	}
	return v
}

// LastParityOK reports whether the most recent fixed-memory read matched its
// stored parity bit (spec section 4.3, "Parity is computed on fetch...
// parity failure asserts MPAL").
func (e *Engine) LastParityOK() bool {
	return e.lastParityOK
}

// MemoryWriteAt writes a word to the location currently addressed by S.
// Writes to fixed memory are silently dropped (spec section 7: "writes are
// accepted but have no observable effect on fixed memory").
func (e *Engine) MemoryWriteAt(value register.Word) {
	kind, idx := e.translate()
	if kind == memmodel.Erasable {
		e.Mem.WriteErasable(idx, value)
	}
}

// Add performs one combinatorial X+Y+CI evaluation using the engine's
// current CI/NO_EAC flip-flops, consuming (resetting) both: real hardware
// pulses CI only for the one cycle that needs it.
func (e *Engine) Add() adder.Result {
	x := e.Regs.Read(register.X)
	y := e.Regs.Read(register.Y)
	r := adder.Add(x, y, e.CI, e.NoEAC)
	e.CI = false
	e.NoEAC = false
	return r
}

// CaptureOverflow latches an adder Result's overflow flag into BR1 (the TOV
// pulse of spec section 4.5).
func (e *Engine) CaptureOverflow(r adder.Result) {
	br := e.Regs.Read(register.BR)
	if r.Overflow {
		br |= BR1
	} else {
		br &^= BR1
	}
	_ = e.Regs.WriteMasked(register.BR, br, BR1)
}

// CaptureSign latches the TSGN/TMZ condition (is v negative, or a -0) into
// BR2, used by CCS/BZF/BZMF branch decisions.
func (e *Engine) CaptureSign(v register.Word) {
	br := e.Regs.Read(register.BR)
	if v.Negative() {
		br |= BR2
	} else {
		br &^= BR2
	}
	_ = e.Regs.WriteMasked(register.BR, br, BR2)
}

// Overflowed reports BR1, the last-captured overflow condition.
func (e *Engine) Overflowed() bool {
	return e.Regs.Read(register.BR)&BR1 != 0
}

// Negative reports BR2, the last-captured sign condition.
func (e *Engine) Negative() bool {
	return e.Regs.Read(register.BR)&BR2 != 0
}

// wr latches value into reg, discarding the error: double-write violations
// are surfaced later via e.Regs.Violation(), checked once per tick by the
// sequencer rather than by every call site in the instruction tables.
func (e *Engine) wr(reg register.Name, value register.Word) {
	_ = e.Regs.Write(reg, value)
}

func (e *Engine) rd(reg register.Name) register.Word {
	return e.Regs.Read(reg)
}

// ArmIndex queues an INDEX correction to be added to the very next fetched
// instruction word, consumed once by the fetch stage (spec section 4.6's
// generic flow has no explicit INDEX description beyond naming it in the
// instruction list; this follows the real machine's "modify the next
// instruction in flight" behavior).
func (e *Engine) ArmIndex(offset register.Word) {
	e.indexOffset = offset
	e.indexArmed = true
}

// ConsumeIndex returns any pending INDEX correction and clears it, called by
// the fetch stage immediately after loading B from the fetched word.
func (e *Engine) ConsumeIndex() (register.Word, bool) {
	if !e.indexArmed {
		return 0, false
	}
	e.indexArmed = false
	return e.indexOffset, true
}

// RequestPCSkip queues an extra Z advance to be folded into the next
// instruction's fetch, on top of the normal +1 (spec section 4.5's overflow
// skip, e.g. TS's "Z <- Z+2 on overflow"). It cannot be applied directly to
// Z here: the folded fetch that runs at this same T12 has not yet read Z,
// and a direct write here would race it for the same register in the same
// tick.
func (e *Engine) RequestPCSkip(amount register.Word) {
	e.pcSkip += amount
}

// ConsumePCSkip returns and clears any pending extra Z advance, called by the
// folded fetch immediately before it computes the next Z.
func (e *Engine) ConsumePCSkip() register.Word {
	skip := e.pcSkip
	e.pcSkip = 0
	return skip
}

// RequestInhint queues an INHINT/RELINT change. Per spec section 4.5's
// tie-break note, the change does not take effect immediately: CommitInhint
// applies any queued change at the end of the current tick.
func (e *Engine) RequestInhint(level bool) {
	v := level
	e.inhintPending = &v
}

// CommitInhint applies a queued INHINT/RELINT change. Called by the
// sequencer at the end of every tick, after the current tick's interrupt
// service decision has already used the old value.
func (e *Engine) CommitInhint() {
	if e.inhintPending != nil {
		e.InhInt = *e.inhintPending
		e.inhintPending = nil
	}
}
