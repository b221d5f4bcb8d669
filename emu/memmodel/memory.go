/*
 * AGC - Erasable and fixed memory model.
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

// Package memmodel is the flat-array memory behind S+EBANK/FBANK addressing
// (spec section 4.3): 8 banks of 256-word erasable, 36 banks of 1024-word
// fixed (plus the channel-7 superbank extension), and the parity-checked G
// buffer staging path.
package memmodel

import "github.com/emgre/agc/emu/register"

const (
	ErasableBanks     = 8
	ErasableBankSize  = 256
	ErasableWords     = ErasableBanks * ErasableBankSize
	FixedBanks        = 36
	FixedBankSize     = 1024
	FixedWords        = FixedBanks * FixedBankSize
	directErasableLow = 0x000
	directErasableHi  = 0x2FF
	switchedErasable  = 0x300
	fixedBase         = 0x400
)

// Kind distinguishes the address space a translated address falls in.
type Kind int

const (
	Erasable Kind = iota
	Fixed
)

// Memory holds erasable and fixed (rope) storage behind the interface the
// decoder/sequencer address through S+EBANK/FBANK (spec section 4.3).
// Peripherals and rope manufacturing are explicitly out of scope (spec
// section 1); Memory is the "flat addressable store behind a defined
// interface" the spec calls for.
type Memory struct {
	erasable [ErasableWords]register.Word
	fixed    [FixedWords]register.Word
	parity   [FixedWords]bool // true = odd parity bit set, computed at load
}

// New returns an empty memory image; fixed memory must be populated with
// LoadFixed before use (spec section 6.1). Every fixed word starts as +0
// with its correct odd-parity bit, so an unloaded word reads back without
// a parity failure.
func New() *Memory {
	m := &Memory{}
	for i := range m.parity {
		m.parity[i] = computeParity(0)
	}
	return m
}

// Translate maps S (12 bits), EBANK (3 bits), FBANK (5 bits) and the
// superbank extension bit to a (Kind, absolute index) pair, per spec section
// 4.3 and the bank layout in section 3.
func Translate(addr, ebank, fbank register.Word, superbank bool) (Kind, uint32) {
	s := uint32(addr) & uint32(register.AddressMask)

	if s < switchedErasable {
		// Direct-addressed erasable banks 0..2, independent of EBANK.
		bank := s / ErasableBankSize
		if bank > 2 {
			bank = 2
		}
		off := s % ErasableBankSize
		return Erasable, bank*ErasableBankSize + off
	}

	if s < fixedBase {
		// Switched erasable, bank selected by EBANK.
		off := s - switchedErasable
		bank := uint32(ebank) & 0x7
		return Erasable, bank*ErasableBankSize + off
	}

	// Fixed memory. 0o2000-0o3777 is the switched window: FBANK selects one
	// of 32 banks, and the superbank bit (channel 7) moves banks 24 and up to
	// 32 and up. 0o4000-0o5777 and 0o6000-0o7777 are fixed-fixed banks 2 and
	// 3, independent of FBANK.
	off := s - fixedBase
	bank := uint32(fbank) & 0x1F
	if off >= FixedBankSize {
		bank = off/FixedBankSize + 1
		off %= FixedBankSize
	} else if superbank && bank >= 24 {
		bank += 8
	}
	if bank >= FixedBanks {
		bank = FixedBanks - 1
	}
	return Fixed, bank*FixedBankSize + off
}

// ReadErasable reads a word from erasable memory with no side effects; an
// out-of-range index (an unpopulated bank reference) reads as zero per spec
// section 7's "Invalid memory access" error kind.
func (m *Memory) ReadErasable(index uint32) register.Word {
	if index >= ErasableWords {
		return 0
	}
	return m.erasable[index]
}

// WriteErasable stores a word to erasable memory. Out-of-range writes are
// silently accepted with no observable effect, matching hardware (spec
// section 7).
func (m *Memory) WriteErasable(index uint32, value register.Word) {
	if index >= ErasableWords {
		return
	}
	m.erasable[index] = value & register.MagMask
}

// ReadFixed reads a fixed-memory word and checks its independently stored
// parity bit against the payload actually present, so a word corrupted (or
// loaded via LoadFixedRaw with a deliberately wrong bit) after weaving
// reports parityOK=false instead of trivially matching itself.
func (m *Memory) ReadFixed(index uint32) (value register.Word, parityOK bool) {
	if index >= FixedWords {
		return 0, true
	}
	return m.fixed[index], m.parity[index] == computeParity(m.fixed[index])
}

// LoadFixed populates one word of the fixed-memory rope image (spec section
// 6.1), stitching in the correct odd-parity bit for a sound weave. It is a
// thin wrapper over LoadFixedRaw for the common case of loading known-good
// code.
func (m *Memory) LoadFixed(bank int, offset int, word register.Word) error {
	w := word & register.MagMask
	return m.LoadFixedRaw(bank, offset, w, computeParity(w))
}

// LoadFixedRaw populates one fixed-memory word and its parity bit as two
// independent values, the way the rope's woven parity sense line is a
// physically separate conductor from the bit-core weave it accompanies
// (spec section 4.3). A caller simulating a flawed weave or bit rot can pass
// a parity bit that disagrees with the payload; ReadFixed then reports the
// mismatch instead of silently re-deriving an always-matching bit.
func (m *Memory) LoadFixedRaw(bank int, offset int, payload register.Word, parityBit bool) error {
	if bank < 0 || bank >= FixedBanks || offset < 0 || offset >= FixedBankSize {
		return &AddressError{Bank: bank, Offset: offset}
	}
	index := uint32(bank)*FixedBankSize + uint32(offset)
	m.fixed[index] = payload & register.MagMask
	m.parity[index] = parityBit
	return nil
}

// computeParity returns odd parity over the 15-bit payload, matching the
// testable property in spec section 8 ("the parity bit is odd").
func computeParity(w register.Word) bool {
	v := uint16(w & register.MagMask)
	ones := 0
	for v != 0 {
		ones += int(v & 1)
		v >>= 1
	}
	return ones%2 == 0 // odd parity: stored bit makes total ones odd
}

// AddressError reports a malformed fixed-image load request (spec section
// 7, "Input-stream errors": reported at load time, not during stepping).
type AddressError struct {
	Bank   int
	Offset int
}

func (e *AddressError) Error() string {
	return "memmodel: fixed address out of range: bank=" + register.FormatOctal(uint32(e.Bank), 2) +
		" offset=" + register.FormatOctal(uint32(e.Offset), 4)
}
