/*
 * AGC - 15-bit ones-complement word and octal formatting.
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

// Package register holds the AGC central register file: the 16-bit
// ones-complement Word type, the write-bus gated register file (A, L, Q, Z,
// B, G, S, SQ, ST, BR, EBANK, FBANK, X, Y), and the per-tick write
// accounting described in spec section 4.2.
package register

// Word is a 16-bit Block II bus value. Bit 16 (the MSB here) is a redundant
// sign bit; bits 15..1 hold magnitude-and-sign in ones-complement. Word is
// masked to 16 bits on every mutation so overflow detection (bit16 != bit15)
// stays meaningful.
type Word uint16

const (
	// SignBit is bit 16, the high (redundant) sign bit.
	SignBit Word = 1 << 15
	// MagSignBit is bit 15, the sign bit of the 15-bit payload.
	MagSignBit Word = 1 << 14
	// WordMask keeps values to 16 bits.
	WordMask Word = 0xFFFF
	// MagMask keeps the low 15 bits (sign + magnitude).
	MagMask Word = 0x7FFF
	// AddressMask keeps the low 12 bits carried on the S bus.
	AddressMask Word = 0x0FFF
)

// Negative reports whether the 15-bit payload's sign bit is set.
func (w Word) Negative() bool {
	return w&MagSignBit != 0
}

// Overflowed reports whether bit 16 disagrees with bit 15, the AGC's
// definition of adder overflow (spec section 4.4).
func (w Word) Overflowed() bool {
	return (w&SignBit != 0) != (w&MagSignBit != 0)
}

// IsZero reports +0 or -0 (both all-magnitude-bits-zero in ones complement).
func (w Word) IsZero() bool {
	return w&MagMask == 0 || w&MagMask == MagMask
}

// IsNegativeZero reports the all-ones -0 pattern specifically.
func (w Word) IsNegativeZero() bool {
	return w&MagMask == MagMask
}

// OnesComplement returns the bitwise complement of the 15-bit payload,
// resigning bit 16 to match: this is how CS and the adder's subtract path
// are built.
func (w Word) OnesComplement() Word {
	c := ^w & MagMask
	if c&MagSignBit != 0 {
		c |= SignBit
	}
	return c
}

// SignExtend forces bit 16 to equal bit 15, the normal state of any register
// after a write through the adder absent an asserted overflow pulse.
func (w Word) SignExtend() Word {
	if w.Negative() {
		return w | SignBit
	}
	return w &^ SignBit
}

var octalDigits = "01234567"

// FormatOctal renders the low bits octal digits wide, matching the trace
// format of spec section 6.3 (fixed-width, zero padded, no "0o" prefix).
func FormatOctal(v uint32, digits int) string {
	buf := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		buf[i] = octalDigits[v&7]
		v >>= 3
	}
	return string(buf)
}

// String renders a Word as five octal digits, the conventional AGC erasable
// word width (15 bits, discarding the redundant sign for display).
func (w Word) String() string {
	return FormatOctal(uint32(w&MagMask), 5)
}
