/*
 * AGC - X/Y adder with end-around carry.
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

// Package adder implements the combinatorial X+Y+CI adder (spec section
// 4.4): 15-bit ones-complement addition with end-around carry, yielding an
// overflow flag that the sequence generator latches into BR1/BR2.
package adder

import "github.com/emgre/agc/emu/register"

// Result is the combinatorial output of one adder evaluation. Nothing here
// is latched; the decoder decides which pulse (WG, WA, ...) drives the sum
// onto a register this tick.
type Result struct {
	Sum      register.Word
	Overflow bool // bit16 != bit15 of the raw 16-bit sum
	Carry    bool // end-around carry occurred (informational, used by DV/MP)
}

// Add computes X + Y + carryIn with end-around carry from bit 16 back into
// bit 1, unless noEAC suppresses it (used by the DV/MP step sequences that
// need a plain 16-bit add without wraparound).
func Add(x, y register.Word, carryIn bool, noEAC bool) Result {
	sum := uint32(x) + uint32(y)
	if carryIn {
		sum++
	}

	carry := sum > uint32(register.WordMask)
	if carry && !noEAC {
		sum = (sum & uint32(register.WordMask)) + 1
	} else {
		sum &= uint32(register.WordMask)
	}

	s := register.Word(sum & uint32(register.WordMask))
	return Result{
		Sum:      s,
		Overflow: s.Overflowed(),
		Carry:    carry,
	}
}

// Negate returns the ones complement of v, the datapath used by CS and by
// the subtract leg of SU/DV (Y complemented onto the adder instead of a
// dedicated subtractor).
func Negate(v register.Word) register.Word {
	return v.OnesComplement()
}

// Increment returns v+1 with end-around carry, the datapath behind INCR,
// AUG (positive case) and PINC.
func Increment(v register.Word) Result {
	return Add(v, 1, false, false)
}

// Decrement returns v-1 (v plus the complement of 1) with end-around carry,
// the datapath behind DIM (negative case) and MINC.
func Decrement(v register.Word) Result {
	return Add(v, Negate(1), false, false)
}
