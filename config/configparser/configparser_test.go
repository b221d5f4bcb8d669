/*
 * AGC - Configuration file parser test set.
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

package configparser

import (
	"strings"
	"testing"
)

var testValue string
var testOptions []Option

func resetTest() {
	testValue = "error"
	testOptions = nil
}

func cleanUpConfig() {
	directives = map[string]directiveDef{}
	resetTest()
}

func recordValue(value string, options []Option) error {
	testValue = value
	testOptions = options
	return nil
}

func TestParseLineSwitch(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("STRT2HOLD", KindSwitch, recordValue)

	line := optionLine{line: "STRT2HOLD"}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if testValue != "" {
		t.Errorf("expected switch to carry no value, got %q", testValue)
	}

	resetTest()
	line = optionLine{line: "STRT2HOLD  # comment"}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine with trailing comment: %v", err)
	}

	resetTest()
	line = optionLine{line: "STRT2HOLD extra"}
	if err := line.parseLine(1); err == nil {
		t.Error("expected an error for a switch given an argument")
	}
}

func TestParseLineValue(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("ROPE", KindValue, recordValue)

	line := optionLine{line: "ROPE rope.bin  # the flight rope"}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if testValue != "rope.bin" {
		t.Errorf("value = %q, want rope.bin", testValue)
	}

	resetTest()
	line = optionLine{line: `ROPE "my rope.bin"`}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine quoted: %v", err)
	}
	if testValue != "my rope.bin" {
		t.Errorf("value = %q, want %q", testValue, "my rope.bin")
	}
}

func TestParseLineUnknownDirective(t *testing.T) {
	cleanUpConfig()
	line := optionLine{line: "BOGUS 1"}
	if err := line.parseLine(1); err == nil {
		t.Error("expected an error for an unregistered directive")
	}
}

func TestParseLineOptionsComma(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("DEBUG", KindOptions, recordValue)

	line := optionLine{line: "DEBUG sequencer decode,interrupt"}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if testValue != "sequencer" {
		t.Errorf("value = %q, want sequencer", testValue)
	}
	if len(testOptions) != 1 {
		t.Fatalf("got %d options, want 1", len(testOptions))
	}
	if testOptions[0].Name != "decode" {
		t.Errorf("option name = %q, want decode", testOptions[0].Name)
	}
	if len(testOptions[0].Value) != 1 || *testOptions[0].Value[0] != "interrupt" {
		t.Errorf("comma value not parsed: %+v", testOptions[0].Value)
	}
}

func TestParseLineOptionsEqual(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("DEBUG", KindOptions, recordValue)

	line := optionLine{line: `DEBUG decoder parity="verbose trace"`}
	if err := line.parseLine(1); err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if len(testOptions) != 1 {
		t.Fatalf("got %d options, want 1", len(testOptions))
	}
	if testOptions[0].EqualOpt != "verbose trace" {
		t.Errorf("EqualOpt = %q, want %q", testOptions[0].EqualOpt, "verbose trace")
	}
}

func TestLoadConfigMultipleLines(t *testing.T) {
	cleanUpConfig()

	var seen []string
	RegisterDirective("ROPE", KindValue, func(value string, _ []Option) error {
		seen = append(seen, "ROPE:"+value)
		return nil
	})
	RegisterDirective("STRT2HOLD", KindSwitch, func(_ string, _ []Option) error {
		seen = append(seen, "STRT2HOLD")
		return nil
	})

	input := "ROPE rope.bin\n# comment line\n\nSTRT2HOLD\n"
	if err := LoadConfig(strings.NewReader(input)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(seen) != 2 || seen[0] != "ROPE:rope.bin" || seen[1] != "STRT2HOLD" {
		t.Errorf("unexpected directive order: %v", seen)
	}
}
