/*
 * AGC - Debug options configuration test set.
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

package debugconfig

import (
	"testing"

	"github.com/emgre/agc/config/configparser"
)

type fakeTarget struct {
	seen []string
	fail bool
}

func (f *fakeTarget) Debug(flag string) error {
	if f.fail {
		return &flagError{flag}
	}
	f.seen = append(f.seen, flag)
	return nil
}

type flagError struct{ flag string }

func (e *flagError) Error() string { return "bad flag: " + e.flag }

func TestSetDebugCollectsFlags(t *testing.T) {
	pending = map[string][]string{}

	options := []configparser.Option{{Name: "decode"}, {Name: "interrupt"}}
	if err := setDebug("sequencer", options); err != nil {
		t.Fatalf("setDebug: %v", err)
	}
	if len(pending["SEQUENCER"]) != 2 {
		t.Fatalf("pending[SEQUENCER] = %v, want 2 flags", pending["SEQUENCER"])
	}
}

func TestSetDebugRejectsEmptyOptions(t *testing.T) {
	pending = map[string][]string{}
	if err := setDebug("sequencer", nil); err == nil {
		t.Error("expected an error for DEBUG with no flags")
	}
}

func TestApplyRoutesToTarget(t *testing.T) {
	pending = map[string][]string{"SEQUENCER": {"DECODE"}}
	target := &fakeTarget{}
	if err := Apply(map[string]Debuggable{"SEQUENCER": target}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(target.seen) != 1 || target.seen[0] != "DECODE" {
		t.Errorf("target saw %v, want [DECODE]", target.seen)
	}
}

func TestApplyUnknownTarget(t *testing.T) {
	pending = map[string][]string{"BOGUS": {"FLAG"}}
	if err := Apply(map[string]Debuggable{}); err == nil {
		t.Error("expected an error for an unknown debug target")
	}
}
