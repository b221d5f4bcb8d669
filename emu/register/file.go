/*
 * AGC - Central register file.
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

package register

import "fmt"

// Name identifies one addressable register for write-bus gating and trace
// output.
type Name int

const (
	A Name = iota
	L
	Q
	Z
	B
	G
	S
	SQ
	ST
	BR
	EBANK
	FBANK
	X
	Y
	numRegisters
)

var names = [numRegisters]string{
	A: "A", L: "L", Q: "Q", Z: "Z", B: "B", G: "G", S: "S", SQ: "SQ",
	ST: "ST", BR: "BR", EBANK: "EBANK", FBANK: "FBANK", X: "X", Y: "Y",
}

func (n Name) String() string {
	if n < 0 || n >= numRegisters {
		return "?"
	}
	return names[n]
}

// ViolationError reports a design-time decoder bug: two write pulses
// targeting the same register asserted on the same tick (spec section 4.2's
// "MUST detect a violation" guarantee), or a write asserted outside of a
// live tick.
type ViolationError struct {
	Reg  Name
	Tick int64
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("register file: double write to %s on tick %d", e.Reg, e.Tick)
}

// File is the gated register file described in spec section 4.2. Reads OR
// their source value onto an accumulator (the "write bus"); writes latch
// that accumulator, or an explicit value, into one register per tick. File
// itself does not know about Tn or SQ — Decoder drives it one register
// write at a time and File only enforces the one-write-per-tick invariant.
type File struct {
	regs [numRegisters]Word

	tick       int64
	writtenAt  [numRegisters]int64 // tick number of last write, 0 means "never"
	writtenSet [numRegisters]bool  // whether writtenAt is valid for current tick
	violation  *ViolationError
}

// New returns a File with all registers undefined (zeroed); callers should
// immediately force a GOJAM-equivalent reset before relying on contents, per
// spec section 3 "Lifecycle".
func New() *File {
	return &File{}
}

// BeginTick must be called once per time pulse, before any reads or writes,
// to reset the double-write tracking window.
func (f *File) BeginTick(tick int64) {
	f.tick = tick
	f.writtenSet = [numRegisters]bool{}
}

// Read returns the current value of reg.
func (f *File) Read(reg Name) Word {
	return f.regs[reg]
}

// ReadInverted returns the ones complement of reg, used by source pulses
// such as R~B feeding the subtractor leg of the adder.
func (f *File) ReadInverted(reg Name) Word {
	return f.regs[reg].OnesComplement()
}

// Write latches value into reg. Calling Write twice for the same reg within
// one tick (two write pulses asserted simultaneously, which the decoder
// table must never produce) raises a ViolationError recorded on the File and
// returned to the caller so a development build can abort with the
// offending (SQ, ST, Tn) context attached by the decoder.
func (f *File) Write(reg Name, value Word) error {
	if f.writtenSet[reg] {
		err := &ViolationError{Reg: reg, Tick: f.tick}
		f.violation = err
		return err
	}
	f.writtenSet[reg] = true
	f.writtenAt[reg] = f.tick
	f.regs[reg] = value & WordMask
	return nil
}

// WriteMasked writes only the bits selected by mask, preserving the rest of
// reg's prior value; used by EBANK/FBANK/BR writes that occupy only a few
// bits of their host word.
func (f *File) WriteMasked(reg Name, value, mask Word) error {
	if f.writtenSet[reg] {
		err := &ViolationError{Reg: reg, Tick: f.tick}
		f.violation = err
		return err
	}
	f.writtenSet[reg] = true
	f.writtenAt[reg] = f.tick
	f.regs[reg] = (f.regs[reg] &^ mask) | (value & mask)
	return nil
}

// Clear forces reg to zero outside of the write-bus path (the CLA/CLZ/CLG
// style pulses of spec section 4.2, which "apply before writes"). Clear does
// not participate in the double-write check: a clear followed by a write in
// the same tick is the documented CLA-then-WA idiom used throughout the
// decoder table.
func (f *File) Clear(reg Name) {
	f.regs[reg] = 0
}

// Violation returns the most recently detected double-write violation, or
// nil. The engine checks this after every tick and aborts development
// builds per spec section 7 (Design violations).
func (f *File) Violation() *ViolationError {
	return f.violation
}

// ClearViolation resets the recorded violation, used by tests that
// deliberately probe the detector.
func (f *File) ClearViolation() {
	f.violation = nil
}

// Snapshot is the programmer- and internally-visible register state exposed
// between ticks (spec section 6, Core step API: snapshot()).
type Snapshot struct {
	A, L, Q, Z, B, G    Word
	S                   Word
	SQ                  Word
	ST                  Word
	BR                  Word
	EBank, FBank        Word
	X, Y                Word
}

// Snapshot captures all observable registers at the current tick boundary.
func (f *File) Snapshot() Snapshot {
	return Snapshot{
		A: f.regs[A], L: f.regs[L], Q: f.regs[Q], Z: f.regs[Z],
		B: f.regs[B], G: f.regs[G], S: f.regs[S], SQ: f.regs[SQ],
		ST: f.regs[ST], BR: f.regs[BR], EBank: f.regs[EBANK],
		FBank: f.regs[FBANK], X: f.regs[X], Y: f.regs[Y],
	}
}
