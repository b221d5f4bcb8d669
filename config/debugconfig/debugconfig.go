/*
 * AGC - Debug options configuration.
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

// Package debugconfig registers the "DEBUG" configuration directive and
// holds the flags it was given until main wires a *core.Core, since the
// configuration file is read before the core exists. Each subsystem
// (sequencer, decoder, alarm, counters, iobus) exposes its own
// Debug(flag string) error setter; this package only routes "DEBUG
// <subsystem> <flag>[,<flag>...]" lines to the right one.
package debugconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emgre/agc/config/configparser"
)

// Debuggable is implemented by every subsystem that accepts named debug
// trace flags.
type Debuggable interface {
	Debug(flag string) error
}

// pending holds flag requests seen before Apply wires the real subsystems.
var pending = map[string][]string{}

func init() {
	configparser.RegisterDirective("DEBUG", configparser.KindOptions, setDebug)
}

func setDebug(subsystem string, options []configparser.Option) error {
	subsystem = strings.ToUpper(subsystem)
	for _, opt := range options {
		pending[subsystem] = append(pending[subsystem], strings.ToUpper(opt.Name))
		for _, v := range opt.Value {
			pending[subsystem] = append(pending[subsystem], strings.ToUpper(*v))
		}
	}
	if len(options) == 0 {
		return errors.New("debugconfig: DEBUG " + subsystem + " requires at least one flag")
	}
	return nil
}

// Apply pushes every DEBUG directive collected while the configuration file
// was read into the matching subsystem, once the core's subsystems exist.
func Apply(targets map[string]Debuggable) error {
	for subsystem, flags := range pending {
		target, ok := targets[subsystem]
		if !ok {
			return fmt.Errorf("debugconfig: unknown debug target %q", subsystem)
		}
		for _, flag := range flags {
			if err := target.Debug(flag); err != nil {
				return err
			}
		}
	}
	return nil
}
