/*
 * AGC - Involuntary counters and interrupt priority arbitration.
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

// Package counters is the involuntary-counter subsystem (spec section 4.8):
// 20 dedicated erasable cells incremented or decremented by hardware
// between subinstructions in response to external pulse edges, plus the
// fixed-priority interrupt vector table those counters (and other sources)
// feed. It implements sequencer.CounterSource and sequencer.InterruptSource
// so package sequencer never imports it directly.
package counters

import (
	"fmt"
	"strings"

	"github.com/emgre/agc/emu/memmodel"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/util/debug"
)

// DebugRupt is the one debug flag bit: "DEBUG counters rupt" traces every
// interrupt vector as it's raised.
const DebugRupt = 1 << iota

// Mode names the hardware increment/decrement discipline applied to a
// counter cell (spec section 4.8).
type Mode int

const (
	PINC  Mode = iota // plus increment: cell += 1, overflowing past +037777 (and past 077777) to +0
	MINC              // minus increment: cell -= 1, underflowing from +0 to 077777
	PCDU              // plus count, direction unknown: increments, reporting over/underflow
	MCDU              // minus count, direction unknown
	DINC              // diminish increment: moves toward zero, signed
	SHINC             // shift increment; applied as a plain PINC step (no shift is performed)
	SHANC             // shift-and-count; applied as a plain PINC step (no shift, no carry cell)
)

// Cell describes one involuntary counter's address and behavior.
type Cell struct {
	Name    string
	Address register.Word // absolute erasable address, octal 024-060 range
	Mode    Mode
	// Overflow, if non-empty, names the interrupt vector raised when this
	// cell's PCDU/DINC style operation overflows (spec: "Overflow of
	// TIME1->TIME2, TIME3->T3RUPT, ...").
	Overflow string
	// OverflowCell, if non-empty, names another registered cell to bump by
	// one PINC step when this cell overflows — TIME1's chain into TIME2 is
	// the only standard instance (spec section 4.8).
	OverflowCell string
}

// Vector is one of the ten fixed-priority interrupt sources (spec section
// 4.8's priority list, highest first).
type Vector int

const (
	T6RUPT Vector = iota
	T5RUPT
	T3RUPT
	T4RUPT
	KEYRUPT1
	KEYRUPT2
	UPRUPT
	DOWNRUPT
	RADARRUPT
	HANDRUPT
	numVectors
)

var vectorNames = [numVectors]string{
	T6RUPT: "T6RUPT", T5RUPT: "T5RUPT", T3RUPT: "T3RUPT", T4RUPT: "T4RUPT",
	KEYRUPT1: "KEYRUPT1", KEYRUPT2: "KEYRUPT2", UPRUPT: "UPRUPT",
	DOWNRUPT: "DOWNRUPT", RADARRUPT: "RADARRUPT", HANDRUPT: "HANDRUPT",
}

// entryOffset is this vector's absolute entry address, loaded straight into
// Z; the vectors sit just above the GOJAM restart address 0o4000.
var entryOffset = [numVectors]register.Word{
	T6RUPT: 0o4004, T5RUPT: 0o4010, T3RUPT: 0o4014, T4RUPT: 0o4020,
	KEYRUPT1: 0o4024, KEYRUPT2: 0o4030, UPRUPT: 0o4034, DOWNRUPT: 0o4040,
	RADARRUPT: 0o4044, HANDRUPT: 0o4050,
}

// Bank is the involuntary-counter and interrupt arbitration unit. It reads
// and writes erasable memory directly (the "steals one memory cycle"
// behavior of spec section 4.8) without going through the decoder's S/G
// staging, since counter service happens outside normal instruction flow.
type Bank struct {
	Mem *memmodel.Memory

	cells   []Cell
	pending []bool // per-cell request flags, parallel to cells

	interruptPending [numVectors]bool

	debugMask int
}

// Debug enables a named trace flag ("rupt"); see config/debugconfig's
// DEBUG counters <flag> directive.
func (b *Bank) Debug(flag string) error {
	switch strings.ToUpper(flag) {
	case "RUPT":
		b.debugMask |= DebugRupt
	default:
		return fmt.Errorf("counters: unknown debug flag %q", flag)
	}
	return nil
}

// New constructs a Bank for the 20 standard involuntary counter cells (spec
// section 3's "octal 024-060" range); callers needing nonstandard cell maps
// can still append via RegisterCell.
func New(mem *memmodel.Memory) *Bank {
	b := &Bank{Mem: mem}
	b.RegisterCell(Cell{Name: "TIME2", Address: 0o024, Mode: PCDU})
	b.RegisterCell(Cell{Name: "TIME1", Address: 0o025, Mode: SHINC, OverflowCell: "TIME2"})
	b.RegisterCell(Cell{Name: "TIME3", Address: 0o026, Mode: PCDU, Overflow: "T3RUPT"})
	b.RegisterCell(Cell{Name: "TIME4", Address: 0o027, Mode: PCDU, Overflow: "T4RUPT"})
	b.RegisterCell(Cell{Name: "TIME5", Address: 0o030, Mode: PCDU, Overflow: "T5RUPT"})
	b.RegisterCell(Cell{Name: "TIME6", Address: 0o031, Mode: PCDU, Overflow: "T6RUPT"})
	b.RegisterCell(Cell{Name: "CDUX", Address: 0o032, Mode: DINC})
	b.RegisterCell(Cell{Name: "CDUY", Address: 0o033, Mode: DINC})
	b.RegisterCell(Cell{Name: "CDUZ", Address: 0o034, Mode: DINC})
	b.RegisterCell(Cell{Name: "OPTY", Address: 0o035, Mode: DINC})
	b.RegisterCell(Cell{Name: "OPTX", Address: 0o036, Mode: DINC})
	b.RegisterCell(Cell{Name: "PIPAX", Address: 0o037, Mode: PINC})
	b.RegisterCell(Cell{Name: "PIPAY", Address: 0o040, Mode: PINC})
	b.RegisterCell(Cell{Name: "PIPAZ", Address: 0o041, Mode: PINC})
	b.RegisterCell(Cell{Name: "CDUXCMD", Address: 0o046, Mode: DINC})
	b.RegisterCell(Cell{Name: "CDUYCMD", Address: 0o047, Mode: DINC})
	b.RegisterCell(Cell{Name: "CDUZCMD", Address: 0o050, Mode: DINC})
	b.RegisterCell(Cell{Name: "RHCP", Address: 0o056, Mode: DINC})
	b.RegisterCell(Cell{Name: "RHCY", Address: 0o057, Mode: DINC})
	b.RegisterCell(Cell{Name: "RHCR", Address: 0o060, Mode: DINC})
	return b
}

// RegisterCell adds a counter cell definition and returns its index, used by
// RequestIncrement.
func (b *Bank) RegisterCell(c Cell) int {
	b.cells = append(b.cells, c)
	b.pending = append(b.pending, false)
	return len(b.cells) - 1
}

// RequestIncrement flags an external pulse edge against a cell (PIPA pulse,
// CDU angle step, TIMEn free-run, etc.), to be serviced at the next T12.
func (b *Bank) RequestIncrement(cellIndex int) {
	if cellIndex >= 0 && cellIndex < len(b.pending) {
		b.pending[cellIndex] = true
	}
}

// CellIndex looks up a registered cell by name, or -1 if unknown.
func (b *Bank) CellIndex(name string) int {
	for i, c := range b.cells {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Service applies exactly one pending counter request, in registration
// order, matching spec section 4.8's "the highest-priority pending counter
// steals one memory cycle". Counter-to-counter priority is not otherwise
// specified; registration order (TIMEn before CDU/PIPA/optics) is used.
func (b *Bank) Service() {
	for i, pend := range b.pending {
		if !pend {
			continue
		}
		b.pending[i] = false
		b.apply(b.cells[i])
		return
	}
}

func (b *Bank) apply(c Cell) {
	v := b.Mem.ReadErasable(uint32(c.Address))
	var result register.Word
	overflowed := false

	switch c.Mode {
	case PINC:
		result, overflowed = pincStep(v)
	case MINC:
		result, overflowed = mincStep(v)
	case PCDU:
		result, overflowed = pincStep(v)
	case MCDU:
		result, overflowed = mincStep(v)
	case DINC:
		result = dincStep(v)
	case SHINC, SHANC:
		result, overflowed = pincStep(v)
	}

	b.Mem.WriteErasable(uint32(c.Address), result)
	if !overflowed {
		return
	}
	if c.Overflow != "" {
		b.raise(c.Overflow)
	}
	if c.OverflowCell != "" {
		if i := b.CellIndex(c.OverflowCell); i >= 0 {
			b.apply(b.cells[i])
		}
	}
}

func pincStep(v register.Word) (register.Word, bool) {
	sum := uint32(v&register.MagMask) + 1
	if sum == uint32(register.MagSignBit) {
		// +037777 + 1 leaves the positive range: overflow, cell wraps to +0.
		return 0, true
	}
	overflow := sum > uint32(register.MagMask)
	return register.Word(sum & uint32(register.MagMask)), overflow
}

func mincStep(v register.Word) (register.Word, bool) {
	mag := uint32(v & register.MagMask)
	underflow := mag == 0
	if underflow {
		return register.MagMask, true
	}
	return register.Word(mag - 1), false
}

func dincStep(v register.Word) register.Word {
	if v.Negative() {
		if v.IsZero() {
			return 0
		}
		return v + 1
	}
	if v.IsZero() {
		return 0
	}
	return v - 1
}

func (b *Bank) raise(name string) {
	for v, n := range vectorNames {
		if n == name {
			b.interruptPending[v] = true
			debug.Debugf("counters", b.debugMask, DebugRupt, "raised %s", name)
			return
		}
	}
}

// RaiseExternal marks an externally sourced interrupt (KEYRUPT, UPRUPT,
// DOWNRUPT, RADARRUPT, HANDRUPT) pending; these do not come from a counter
// overflow, only from the I/O bus (spec section 4.7/4.8).
func (b *Bank) RaiseExternal(v Vector) {
	if v >= 0 && v < numVectors {
		b.interruptPending[v] = true
	}
}

// Highest implements sequencer.InterruptSource: the lowest Vector constant
// with its pending bit set wins, matching the fixed priority order in spec
// section 4.8 (T6RUPT highest ... HANDRUPT lowest).
func (b *Bank) Highest() (vector int, entryAddr register.Word, ok bool) {
	for v := Vector(0); v < numVectors; v++ {
		if b.interruptPending[v] {
			return int(v), entryOffset[v], true
		}
	}
	return 0, 0, false
}

// Clear implements sequencer.InterruptSource.
func (b *Bank) Clear(vector int) {
	if vector >= 0 && vector < int(numVectors) {
		b.interruptPending[Vector(vector)] = false
	}
}
