/*
 * AGC - Subinstruction decoder: control transfer instructions.
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

func installTransfer() {
	// TC K: Q <- Z (return address), Z <- K. TC 0 is the RESUME idiom (spec
	// section 4.6: "RESUME (TC Q where Q=0000) restores ZRUPT/BRUPT and
	// clears RUPT_LOCK"); address 0 is never a legitimate jump target in
	// flight software, so it is reserved for this purpose here as well.
	register_(sqCode(false, 7), &Instruction{Name: "TC", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				9: func(e *Engine) {
					if e.rd(register.S) == 0 {
						e.wr(register.Z, e.ZRupt)
						e.wr(register.B, e.BRupt)
						e.RuptLock = false
						return
					}
					z := e.rd(register.Z)
					e.wr(register.Q, z)
					e.wr(register.Z, e.rd(register.S))
				},
			},
			Next: 0,
		},
	}})

	// CCS K: compare-and-skip, decrementing the operand's magnitude and
	// branching by one of four offsets depending on its sign (spec section 8's
	// boundary behavior: CCS distinguishes -0 from +0 rather than folding it
	// into the +0 case, matching the real four-way Block II CCS; recorded in
	// DESIGN.md).
	register_(sqCode(false, 8), &Instruction{Name: "CCS", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				4: func(e *Engine) { e.CaptureSign(e.rd(register.G)) },
				9: func(e *Engine) {
					k := e.rd(register.G)
					z := e.rd(register.Z)
					switch {
					case k.IsNegativeZero():
						e.wr(register.A, 0)
						e.wr(register.Z, z+4)
					case k.IsZero():
						e.wr(register.A, 0)
						e.wr(register.Z, z+2)
					case k.Negative():
						e.wr(register.A, decrementMagnitude(k.OnesComplement()))
						e.wr(register.Z, z+3)
					default:
						e.wr(register.A, decrementMagnitude(k))
						e.wr(register.Z, z+1)
					}
				},
			},
			Next: 0,
		},
	}})

	// BZF K: branch to K if A is zero (either sign); otherwise fall through
	// to the next sequential instruction.
	register_(sqCode(true, 4), &Instruction{Name: "BZF", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				9: func(e *Engine) {
					if e.rd(register.A).IsZero() {
						e.wr(register.Z, e.rd(register.S))
					}
				},
			},
			Next: 0,
		},
	}})

	// BZMF K: branch to K if A is zero or negative.
	register_(sqCode(true, 5), &Instruction{Name: "BZMF", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				9: func(e *Engine) {
					a := e.rd(register.A)
					if a.IsZero() || a.Negative() {
						e.wr(register.Z, e.rd(register.S))
					}
				},
			},
			Next: 0,
		},
	}})

	// XCH K: swap A and mem[K].
	register_(sqCode(false, 9), &Instruction{Name: "XCH", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				8: func(e *Engine) {
					old := e.rd(register.A)
					e.wr(register.A, e.rd(register.G))
					e.MemoryWriteAt(old)
				},
			},
			Next: 0,
		},
	}})

	// INDEX K: mem[K]'s value is added to the address field of the very
	// next fetched instruction before it is decoded.
	register_(sqCode(false, 10), &Instruction{Name: "INDEX", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: operandAddr,
				3: func(e *Engine) { e.wr(register.G, e.MemoryReadAt()) },
				9: func(e *Engine) { e.ArmIndex(e.rd(register.G)) },
			},
			Next: 0,
		},
	}})
}

// decrementMagnitude implements CCS's "DABS" pulse: decrement-toward-zero
// without wrapping a zero magnitude to -1 (spec section 8's worked example).
func decrementMagnitude(k register.Word) register.Word {
	if k.IsZero() {
		return 0
	}
	return register.Word(uint16(k)-1) & register.MagMask
}
