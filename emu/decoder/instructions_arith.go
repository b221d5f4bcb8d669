/*
 * AGC - Subinstruction decoder: arithmetic instructions.
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

import (
	"github.com/emgre/agc/emu/adder"
	"github.com/emgre/agc/emu/register"
)

// operandAddr reads the 12-bit address field carried in B by the fetch
// stage and drives it onto S, per the generic T01 address-selection pulse
// described in spec section 4.5.
func operandAddr(e *Engine) {
	e.wr(register.S, e.rd(register.B)&register.AddressMask)
}

func installArithmetic() {
	// CA K: A <- mem[K]. Single execute stage.
	register_(sqCode(false, 0), &Instruction{Name: "CA", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) { e.wr(register.A, e.rd(register.G)) },
			},
			Next: 0,
		},
	}})

	// CS K: A <- -mem[K] (ones complement).
	register_(sqCode(false, 1), &Instruction{Name: "CS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) { e.wr(register.A, e.rd(register.G).OnesComplement()) },
			},
			Next: 0,
		},
	}})

	// TS K: mem[K] <- A; if A overflowed, A is corrected and Z skips by 1
	// (spec's TOV pulse, captured into BR1 by the preceding arithmetic op).
	register_(sqCode(false, 2), &Instruction{Name: "TS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				8: func(e *Engine) {
					a := e.rd(register.A)
					if a.Overflowed() {
						e.wr(register.A, a.SignExtend())
						e.RequestPCSkip(1)
					}
				},
				9: func(e *Engine) { e.MemoryWriteAt(e.rd(register.A).SignExtend()) },
			},
			Next: 0,
		},
	}})

	// AD K: A <- A + mem[K], ones-complement add with end-around carry,
	// capturing overflow in BR1.
	register_(sqCode(false, 3), &Instruction{Name: "AD", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					e.wr(register.X, e.rd(register.A))
					e.wr(register.Y, e.rd(register.G))
				},
				8: func(e *Engine) {
					r := e.Add()
					e.wr(register.A, r.Sum)
					e.CaptureOverflow(r)
				},
			},
			Next: 0,
		},
	}})

	// ADS K: mem[K] <- mem[K] + A; A <- same sum (accumulate to storage).
	register_(sqCode(false, 4), &Instruction{Name: "ADS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					e.wr(register.X, e.rd(register.A))
					e.wr(register.Y, e.rd(register.G))
				},
				8: func(e *Engine) {
					r := e.Add()
					e.wr(register.A, r.Sum)
					e.CaptureOverflow(r)
				},
				9: func(e *Engine) { e.MemoryWriteAt(e.rd(register.A)) },
			},
			Next: 0,
		},
	}})

	// SU K: A <- A - mem[K], implemented as add of the ones complement.
	register_(sqCode(false, 5), &Instruction{Name: "SU", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					e.wr(register.X, e.rd(register.A))
					e.wr(register.Y, e.rd(register.G).OnesComplement())
				},
				8: func(e *Engine) {
					r := e.Add()
					e.wr(register.A, r.Sum)
					e.CaptureOverflow(r)
				},
			},
			Next: 0,
		},
	}})

	// MSU K: A <- A - mem[K] with the modular (non-end-around-carry)
	// subtract used for the scale-factor-sensitive trig routines.
	register_(sqCode(true, 0), &Instruction{Name: "MSU", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					e.wr(register.X, e.rd(register.A))
					e.wr(register.Y, e.rd(register.G).OnesComplement())
					e.NoEAC = true
				},
				8: func(e *Engine) {
					r := e.Add()
					e.wr(register.A, r.Sum)
					e.CaptureOverflow(r)
				},
			},
			Next: 0,
		},
	}})

	// MASK K: A <- A AND mem[K] (bitwise, over the 15-bit payload).
	register_(sqCode(false, 6), &Instruction{Name: "MASK", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					a := e.rd(register.A) & register.MagMask
					g := e.rd(register.G) & register.MagMask
					e.wr(register.A, (a & g).SignExtend())
				},
			},
			Next: 0,
		},
	}})

	// INCR K: mem[K] <- mem[K] + 1.
	register_(sqCode(true, 1), &Instruction{Name: "INCR", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				9: func(e *Engine) {
					e.MemoryWriteAt(adder.Increment(e.rd(register.G)).Sum)
				},
			},
			Next: 0,
		},
	}})

	// AUG K: mem[K] <- mem[K] + 1 if mem[K] >= 0, else mem[K] - 1 (magnitude
	// augment, used for up/down counters).
	register_(sqCode(true, 2), &Instruction{Name: "AUG", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				9: func(e *Engine) {
					g := e.rd(register.G)
					if g.Negative() {
						e.MemoryWriteAt(adder.Decrement(g).Sum)
					} else {
						e.MemoryWriteAt(adder.Increment(g).Sum)
					}
				},
			},
			Next: 0,
		},
	}})

	// DIM K: mem[K] <- mem[K] magnitude diminished by 1 toward zero (never
	// crossing zero), used for countdown timers.
	register_(sqCode(true, 3), &Instruction{Name: "DIM", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				9: func(e *Engine) {
					g := e.rd(register.G)
					switch {
					case g.IsZero():
						e.MemoryWriteAt(0)
					case g.Negative():
						e.MemoryWriteAt(adder.Increment(g).Sum)
					default:
						e.MemoryWriteAt(adder.Decrement(g).Sum)
					}
				},
			},
			Next: 0,
		},
	}})
}
