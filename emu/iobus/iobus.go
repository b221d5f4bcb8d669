/*
 * AGC - I/O channel bus.
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

// Package iobus is the I/O channel bus (spec section 4.7): 64 read and 64
// write channel latches (channel numbers taken modulo 0o100) addressed by
// the READ/WRITE/RAND/WAND/ROR/WOR/RXOR
// instruction operand. It implements decoder.Channels. External signal
// sources and sinks (IMU, optics, DSKY key matrix, uplink, telemetry
// downlink, radar) are out of scope per spec section 1; this package
// exposes only the signal interface they would plug into.
package iobus

import (
	"fmt"
	"strings"

	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/util/debug"
)

// DebugWrite is the one debug flag bit: "DEBUG iobus write" traces every
// channel write.
const DebugWrite = 1 << iota

const channelCount = 64

// Channel numbers with hardware-defined meaning beyond a generic latch
// (spec section 4.7).
const (
	ChannelFEXT     register.Word = 7  // superbank select bit
	ChannelDSKYRelay register.Word = 10 // DSKY relay matrix
	ChannelKeyboard register.Word = 15 // main keyboard
)

// SuperbankSetter is the subset of decoder.Engine's surface iobus needs to
// drive the FEXT superbank bit without importing package decoder.
type SuperbankSetter interface {
	SetSuperbank(level bool)
}

// Bus holds the 64 channel latches and the few channel-specific side
// effects named in spec section 4.7.
type Bus struct {
	read  [channelCount]register.Word
	write [channelCount]register.Word

	superbank SuperbankSetter

	onWrite map[register.Word][]func(register.Word)

	debugMask int
}

// Debug enables a named trace flag ("write"); see config/debugconfig's
// DEBUG iobus <flag> directive.
func (b *Bus) Debug(flag string) error {
	switch strings.ToUpper(flag) {
	case "WRITE":
		b.debugMask |= DebugWrite
	default:
		return fmt.Errorf("iobus: unknown debug flag %q", flag)
	}
	return nil
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{onWrite: make(map[register.Word][]func(register.Word))}
}

// BindSuperbank wires channel 7 writes to the engine's FEXT latch.
func (b *Bus) BindSuperbank(s SuperbankSetter) {
	b.superbank = s
}

// OnWrite registers a callback invoked whenever channel ch is written,
// after the latch is updated; used by the DSKY relay matrix (channel 10)
// and similar output sinks that live outside this package.
func (b *Bus) OnWrite(ch register.Word, fn func(value register.Word)) {
	b.onWrite[ch&0x3f] = append(b.onWrite[ch&0x3f], fn)
}

// Read implements decoder.Channels.
func (b *Bus) Read(ch register.Word) register.Word {
	return b.read[ch&0x3f]
}

// Write implements decoder.Channels. The written value is also latched on
// the channel's read side, so a READ of the same channel returns it until
// SetInput replaces it.
func (b *Bus) Write(ch register.Word, v register.Word) {
	ch &= 0x3f
	b.write[ch] = v
	b.read[ch] = v
	if ch == ChannelFEXT && b.superbank != nil {
		b.superbank.SetSuperbank(v&1 != 0)
	}
	for _, fn := range b.onWrite[ch] {
		fn(v)
	}
	debug.Debugf("iobus", b.debugMask, DebugWrite, "channel %02o <- %05o", ch, v)
}

// SetInput injects an externally sourced signal (a keyboard keycode, a
// radar range word, an uplink word) into a read channel, sampled at the
// start of the next tick the program reads it (spec section 5: "external
// input signals form a separate read-only frontier").
func (b *Bus) SetInput(ch register.Word, v register.Word) {
	b.read[ch&0x3f] = v
}

// GetOutput returns the last value the program wrote to a channel, for an
// external consumer (the dashboard, telemetry downlink) to observe.
func (b *Bus) GetOutput(ch register.Word) register.Word {
	return b.write[ch&0x3f]
}
