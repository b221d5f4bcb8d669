/*
 * AGC - Subinstruction decoder: instruction table.
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

package decoder

import "github.com/emgre/agc/emu/register"

// Op is one register-transfer micro-operation asserted at a single time
// pulse. Most cells of the table are nil: real subinstructions only drive
// the datapath on a handful of the twelve pulses.
type Op func(e *Engine)

// Stage is one row of the control pulse ROM for a single instruction: twelve
// per-pulse micro-operations plus the stage to transition to at T12. Next==0
// means the instruction is complete and the sequencer folds the next
// instruction's fetch into this T12.
type Stage struct {
	Ops  [12]Op
	Next int
}

// Instruction names one SQ code's behavior across however many stages it
// needs beyond the shared fetch stage (StageFetch, handled centrally by
// Sequencer). Stages are keyed by stage number (StageExec1, StageExec2, ...).
type Instruction struct {
	Name   string
	Stages map[int]Stage
}

// sqCode packs a 6-bit opcode and the extracode flag into the 7-bit SQ
// space (spec section 3: "7-bit instruction register"). The corpus's
// original bit-for-bit Block II encoding is gate-level plumbing the spec
// does not mandate (section 4.5 names mnemonics, not wire assignments); this
// table assigns a compact SQ per mnemonic instead.
func sqCode(extracode bool, code int) register.Word {
	v := register.Word(code & 0x3f)
	if extracode {
		v |= 0x40
	}
	return v
}

// table maps an SQ code to its Instruction definition. Built once in init.
var table map[register.Word]*Instruction

func register_(code register.Word, ins *Instruction) {
	table[code] = ins
}

// Lookup returns the Instruction bound to an SQ code, or nil if SQ addresses
// an unassigned slot (spec section 7: decoding an invalid (SQ,ST,Tn) cell is
// a design violation in a well-formed image; at runtime we fail soft and
// treat it as a no-op single-stage instruction so a corrupted fetch cannot
// crash the harness outright).
func Lookup(sq register.Word) *Instruction {
	return table[sq&0x7f]
}

func init() {
	table = make(map[register.Word]*Instruction)
	installArithmetic()
	installTransfer()
	installDouble()
	installMulDiv()
	installIO()
}
