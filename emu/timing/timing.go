/*
 * AGC - Time pulse generator.
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

// Package timing is the 12-phase time pulse ring (spec section 4.1): one
// external tick advances the ring by one position, producing T01..T12. It
// also holds the GOJAM latch, asserted for a fixed window on power-up and on
// restart. The MSTRT/MSTP/MON800 derived signals are not modelled.
package timing

// GojamHoldPulses is the number of ticks GOJAM is asserted once triggered,
// chosen to satisfy the testable property in spec section 8 ("within <=12
// ticks... at T01 of SQ=TC") and recorded as an Open Question decision in
// DESIGN.md.
const GojamHoldPulses = 12

// PulseCount is the number of phases in one subinstruction's time-pulse
// ring (T01..T12).
const PulseCount = 12

// Generator drives the T01..T12 ring and the GOJAM hold window.
type Generator struct {
	pulse      int  // 0-based index into the ring, 0 == T01
	gojam      bool
	gojamTicks int // remaining ticks GOJAM stays asserted
	strt2      bool
}

// New returns a Generator held at T12 with GOJAM asserted, matching the
// power-on reset described in spec section 6.4 ("STRT2=1 until the caller
// drops it").
func New() *Generator {
	g := &Generator{pulse: PulseCount - 1}
	g.SetStrt2(true)
	return g
}

// Pulse returns the current 1-based time pulse index, 1..12.
func (g *Generator) Pulse() int {
	return g.pulse + 1
}

// At reports whether the ring is currently at time pulse n (1..12).
func (g *Generator) At(n int) bool {
	return g.pulse+1 == n
}

// Gojam reports whether GOJAM is currently asserted.
func (g *Generator) Gojam() bool {
	return g.gojam || g.strt2
}

// SetStrt2 sets or clears the power-on-reset hold signal. While asserted,
// GOJAM is held through every T-pulse (spec section 6.4).
func (g *Generator) SetStrt2(level bool) {
	g.strt2 = level
}

// AssertGojam forces a restart: holds GOJAM for GojamHoldPulses ticks (spec
// section 4.6's GOJAM behavior, with the duration fixed per DESIGN.md).
func (g *Generator) AssertGojam() {
	g.gojam = true
	g.gojamTicks = GojamHoldPulses
}

// Advance moves the ring forward by one time pulse, decrementing any
// in-progress GOJAM hold. Returns the new pulse index (1..12) and whether
// the ring wrapped from T12 back to T01 this tick.
func (g *Generator) Advance() (pulse int, wrapped bool) {
	g.pulse++
	if g.pulse >= PulseCount {
		g.pulse = 0
		wrapped = true
	}

	if g.gojam {
		g.gojamTicks--
		if g.gojamTicks <= 0 {
			g.gojam = false
		}
	}

	return g.Pulse(), wrapped
}
