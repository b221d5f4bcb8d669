/*
 * AGC - Configuration file parser.
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

// Package configparser is the simulator's startup configuration file reader.
// A session needs far less than a full multi-device mainframe: a rope image
// to load, an optional trace/debug file, and the
// debug subsystem switches registered by config/debugconfig. The line
// grammar and its lexer are kept from the teacher's device config language
// (directive name, an optional first value, an optional comma-separated
// option list); only the set of registered directives changed.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is one comma-separated, optionally `name=value`, element trailing a
// directive's first value (spec section 6.1's DEBUG switches are the
// primary consumer).
type Option struct {
	Name     string
	EqualOpt string
	Value    []*string
}

// Kind selects how a directive's remainder of the line is parsed.
type Kind int

const (
	// KindValue: directive takes exactly one bare value (a path or a number),
	// e.g. "ROPE rope.bin".
	KindValue Kind = iota
	// KindOptions: directive takes one value followed by a comma-separated
	// option list, e.g. "DEBUG sequencer decode,interrupt".
	KindOptions
	// KindSwitch: directive takes no arguments, e.g. "STRT2HOLD".
	KindSwitch
)

type directiveDef struct {
	fn   func(value string, options []Option) error
	kind Kind
}

var directives = map[string]directiveDef{}

// DirectiveNames lists every registered directive, for command-line
// completion and error messages.
func DirectiveNames() []string {
	names := make([]string, 0, len(directives))
	for name := range directives {
		names = append(names, name)
	}
	return names
}

// RegisterDirective should be called from an init function to add a
// configuration file directive (spec section 6's load_fixed and the debug
// switches of config/debugconfig both arrive through this registry).
func RegisterDirective(name string, kind Kind, fn func(value string, options []Option) error) {
	directives[strings.ToUpper(name)] = directiveDef{fn: fn, kind: kind}
}

type optionLine struct {
	line string
	pos  int
}

// LoadConfigFile reads and applies every directive line in name, in order.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	return LoadConfig(file)
}

// LoadConfig reads and applies every directive line from r, in order; split
// out from LoadConfigFile so tests can feed a strings.Reader directly.
func LoadConfig(r io.Reader) error {
	reader := bufio.NewReader(r)
	lineNumber := 0
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line := optionLine{line: raw}
		if perr := line.parseLine(lineNumber); perr != nil {
			return perr
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (line *optionLine) parseLine(lineNumber int) error {
	name := line.parseDirectiveName()
	if name == "" {
		return nil
	}

	def, ok := directives[name]
	if !ok {
		return fmt.Errorf("configparser: unknown directive %q, line %d", name, lineNumber)
	}

	switch def.kind {
	case KindSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("configparser: directive %q takes no arguments, line %d", name, lineNumber)
		}
		return def.fn("", nil)

	case KindValue:
		value, ok := line.parseQuoteString()
		if !ok || value == "" {
			return fmt.Errorf("configparser: %q requires a value, line %d", name, lineNumber)
		}
		return def.fn(value, nil)

	case KindOptions:
		value, ok := line.parseQuoteString()
		if !ok {
			return fmt.Errorf("configparser: %q requires a value, line %d", name, lineNumber)
		}
		options, err := line.parseOptions()
		if err != nil {
			return fmt.Errorf("configparser: %s, line %d", err, lineNumber)
		}
		return def.fn(value, options)
	}
	return nil
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// parseDirectiveName reads the leading keyword of a line (the config
// directive name), uppercased; returns "" on a blank or comment-only line.
func (line *optionLine) parseDirectiveName() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}

	name := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) {
			name += string([]byte{by})
			line.pos++
			continue
		}
		break
	}
	return strings.ToUpper(name)
}

// parseQuoteString reads the directive's first value: a bare token (ended by
// whitespace or a comma), or a double-quoted string (so paths with spaces
// can be given, with "" escaping an embedded quote).
func (line *optionLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	if line.isEOL() {
		return "", true // an absent value is valid; KindValue callers reject it themselves
	}

	if line.line[line.pos] != '"' {
		value := ""
		for !line.isEOL() {
			by := line.line[line.pos]
			if unicode.IsSpace(rune(by)) || by == ',' {
				break
			}
			value += string([]byte{by})
			line.pos++
		}
		return value, true
	}

	line.pos++ // consume opening quote
	value := ""
	for {
		if line.pos >= len(line.line) {
			return value, false
		}
		by := line.line[line.pos]
		if by == '"' {
			if line.pos+1 < len(line.line) && line.line[line.pos+1] == '"' {
				value += `"`
				line.pos += 2
				continue
			}
			line.pos++
			return value, true
		}
		value += string([]byte{by})
		line.pos++
	}
}

func (line *optionLine) getName() (string, error) {
	line.skipSpace()
	if line.isEOL() {
		return "", nil
	}
	by := line.line[line.pos]
	if !unicode.IsLetter(rune(by)) {
		return "", fmt.Errorf("invalid option character %q", by)
	}
	value := ""
	for !line.isEOL() {
		by = line.line[line.pos]
		if !unicode.IsLetter(rune(by)) && !unicode.IsNumber(rune(by)) {
			break
		}
		value += string([]byte{by})
		line.pos++
	}
	return value, nil
}

func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()
	name, err := line.getName()
	if name == "" {
		return nil, err
	}

	option := Option{Name: name}
	if line.isEOL() {
		return &option, nil
	}

	if line.line[line.pos] == '=' {
		line.pos++
		v, ok := line.parseQuoteString()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string at position %d", line.pos)
		}
		option.EqualOpt = v
	}

	line.skipSpace()
	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		line.skipSpace()
		v, err := line.getName()
		if err != nil {
			return nil, err
		}
		if v != "" {
			option.Value = append(option.Value, &v)
		}
		line.skipSpace()
	}
	return &option, nil
}

func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		opt, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if opt == nil {
			break
		}
		options = append(options, *opt)
	}
	return options, nil
}
