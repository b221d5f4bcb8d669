/*
 * AGC - Subinstruction decoder: multiply and divide.
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

// magnitude extracts the unsigned 14-bit magnitude of a ones-complement
// payload, folding -0 and +0 to the same zero.
func magnitude(w register.Word) uint32 {
	m := uint32(w & register.MagMask)
	if w.Negative() {
		m = uint32(register.MagMask) - m
	}
	return m
}

func withSign(mag uint32, negative bool) register.Word {
	v := register.Word(mag) & register.MagMask
	if negative {
		v = v.OnesComplement()
	}
	return v.SignExtend()
}

func installMulDiv() {
	// MP K: A:L <- A * mem[K], a true double-precision product spread across
	// two stages to approximate the real instruction's multi-cycle cost
	// (spec's non-goals exclude bit-serial gate fidelity for this step).
	register_(sqCode(true, 7), &Instruction{Name: "MP", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				6: func(e *Engine) {
					a := e.rd(register.A)
					k := e.rd(register.G)
					product := magnitude(a) * magnitude(k)
					negative := a.Negative() != k.Negative()
					hi := register.Word(product >> 14)
					lo := register.Word(product & uint32(register.MagMask))
					e.wr(register.A, withSign(uint32(hi), negative))
					e.wr(register.L, withSign(uint32(lo), negative))
				},
			},
			Next: 0,
		},
	}})

	// DV K: A <- quotient, L <- remainder of (A:L) / mem[K]. Simplified to a
	// single-word dividend (A) rather than the full double-precision
	// dividend.
	register_(sqCode(true, 8), &Instruction{Name: "DV", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
			},
			Next: StageExec2,
		},
		StageExec2: {
			Ops: [12]Op{
				6: func(e *Engine) {
					a := e.rd(register.A)
					k := e.rd(register.G)
					negative := a.Negative() != k.Negative()
					var q, r uint32
					if magnitude(k) != 0 {
						q = magnitude(a) / magnitude(k)
						r = magnitude(a) % magnitude(k)
					}
					e.wr(register.A, withSign(q, negative))
					e.wr(register.L, withSign(r, a.Negative()))
				},
			},
			Next: 0,
		},
	}})
}
