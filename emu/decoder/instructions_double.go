/*
 * AGC - Subinstruction decoder: double-precision and exchange instructions.
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

// pairBase rounds an operand address down to even: the double-precision
// instructions store their high word at the even address of a pair and
// their low word at the next (odd) address (spec section 9, Open Question
// (c), resolved this way and recorded in DESIGN.md).
func pairBase(addr register.Word) register.Word {
	return addr &^ 1
}

// lowWordAddr selects the operand address for stage 2 (the low word, read
// and written first so any carry is available for the high-word stage).
func lowWordAddr(e *Engine) {
	base := pairBase(e.rd(register.B) & register.AddressMask)
	e.wr(register.S, base+1)
}

// highWordAddr selects the high word for stage 3, reusing the base address
// computed by the fetch-stage operand field (still intact in B).
func highWordAddr(e *Engine) {
	base := pairBase(e.rd(register.B) & register.AddressMask)
	e.wr(register.S, base)
}

func installDouble() {
	// DAS K: (A:L) added into the double-precision word at K (base = K
	// rounded to even), low word first so the carry feeds the high-word add.
	register_(sqCode(false, 11), &Instruction{Name: "DAS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: lowWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) {
					e.wr(register.X, e.rd(register.L))
					e.wr(register.Y, e.rd(register.G))
				},
				8: func(e *Engine) {
					r := e.Add()
					e.wr(register.L, r.Sum)
					e.CI = r.Carry
				},
				9: func(e *Engine) { e.MemoryWriteAt(e.rd(register.L)) },
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				0: highWordAddr,
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
				9: func(e *Engine) {
					e.MemoryWriteAt(e.rd(register.A))
					e.wr(register.A, 0)
					e.wr(register.L, 0)
				},
			},
			Next: 0,
		},
	}})

	// DCA K: A:L <- mem[high]:mem[low].
	register_(sqCode(false, 12), &Instruction{Name: "DCA", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: lowWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) { e.wr(register.L, e.rd(register.G)) },
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				0: highWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) { e.wr(register.A, e.rd(register.G)) },
			},
			Next: 0,
		},
	}})

	// DCS K: A:L <- -(mem[high]:mem[low]).
	register_(sqCode(false, 13), &Instruction{Name: "DCS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: lowWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) { e.wr(register.L, e.rd(register.G).OnesComplement()) },
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				0: highWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) { e.wr(register.A, e.rd(register.G).OnesComplement()) },
			},
			Next: 0,
		},
	}})

	// DXCH K: swap A:L with mem[high]:mem[low].
	register_(sqCode(false, 14), &Instruction{Name: "DXCH", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: lowWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) {
					old := e.rd(register.G)
					e.MemoryWriteAt(e.rd(register.L))
					e.wr(register.L, old)
				},
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				0: highWordAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) {
					old := e.rd(register.G)
					e.MemoryWriteAt(e.rd(register.A))
					e.wr(register.A, old)
				},
			},
			Next: 0,
		},
	}})

	// LXCH K: swap L with mem[K] (single word).
	register_(sqCode(false, 15), &Instruction{Name: "LXCH", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) {
					old := e.rd(register.L)
					e.wr(register.L, e.rd(register.G))
					e.MemoryWriteAt(old)
				},
			},
			Next: 0,
		},
	}})

	// QXCH K: swap Q with mem[K] (single word).
	register_(sqCode(true, 6), &Instruction{Name: "QXCH", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) {
					old := e.rd(register.Q)
					e.wr(register.Q, e.rd(register.G))
					e.MemoryWriteAt(old)
				},
			},
			Next: 0,
		},
	}})
}
