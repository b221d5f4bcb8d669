/*
 * AGC - Subinstruction decoder: I/O channel instructions.
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

// channelNumber reads the channel operand carried in the fetched word's
// address field (spec section 4.7: "32 read and 32 write channels indexed
// by instruction operand").
func channelNumber(e *Engine) register.Word {
	return e.rd(register.B) & register.AddressMask
}

func (e *Engine) channelRead(ch register.Word) register.Word {
	if e.channels == nil {
		return 0
	}
	return e.channels.Read(ch)
}

func (e *Engine) channelWrite(ch, v register.Word) {
	if e.channels != nil {
		e.channels.Write(ch, v)
	}
}

func installIO() {
	// READ K: A <- channel[K].
	register_(sqCode(true, 9), &Instruction{Name: "READ", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				4: func(e *Engine) { e.wr(register.A, e.channelRead(channelNumber(e))) },
			},
			Next: 0,
		},
	}})

	// WRITE K: channel[K] <- A.
	register_(sqCode(true, 10), &Instruction{Name: "WRITE", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				9: func(e *Engine) { e.channelWrite(channelNumber(e), e.rd(register.A)) },
			},
			Next: 0,
		},
	}})

	// RAND K: A <- A AND channel[K].
	register_(sqCode(true, 11), &Instruction{Name: "RAND", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				4: func(e *Engine) {
					ch := e.channelRead(channelNumber(e))
					a := e.rd(register.A) & register.MagMask
					e.wr(register.A, (a & (ch & register.MagMask)).SignExtend())
				},
			},
			Next: 0,
		},
	}})

	// WAND K: channel[K] <- channel[K] AND A.
	register_(sqCode(true, 12), &Instruction{Name: "WAND", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				9: func(e *Engine) {
					ch := channelNumber(e)
					old := e.channelRead(ch)
					a := e.rd(register.A) & register.MagMask
					e.channelWrite(ch, (old&register.MagMask)&a)
				},
			},
			Next: 0,
		},
	}})

	// ROR K: A <- A OR channel[K].
	register_(sqCode(true, 13), &Instruction{Name: "ROR", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				4: func(e *Engine) {
					ch := e.channelRead(channelNumber(e))
					a := e.rd(register.A) & register.MagMask
					e.wr(register.A, (a | (ch & register.MagMask)).SignExtend())
				},
			},
			Next: 0,
		},
	}})

	// WOR K: channel[K] <- channel[K] OR A.
	register_(sqCode(true, 14), &Instruction{Name: "WOR", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				9: func(e *Engine) {
					ch := channelNumber(e)
					old := e.channelRead(ch)
					a := e.rd(register.A) & register.MagMask
					e.channelWrite(ch, (old&register.MagMask)|a)
				},
			},
			Next: 0,
		},
	}})

	// RXOR K: A <- A XOR channel[K].
	register_(sqCode(true, 15), &Instruction{Name: "RXOR", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				4: func(e *Engine) {
					ch := e.channelRead(channelNumber(e))
					a := e.rd(register.A) & register.MagMask
					e.wr(register.A, (a ^ (ch & register.MagMask)).SignExtend())
				},
			},
			Next: 0,
		},
	}})

	// EDRUPT: forced interrupt entry inline; does not save Z (spec section
	// 4.6). When the sequencer observes EdruptPending at T12 it sets
	// RUPT_LOCK and re-enters the fetch stage at the current Z; no vector
	// address is loaded into Z.
	register_(sqCode(false, 16), &Instruction{Name: "EDRUPT", Stages: map[int]Stage{
		StageExec1: {
			Ops: [12]Op{
				0: func(e *Engine) { e.EdruptPending = true },
			},
			Next: 0,
		},
	}})
}
