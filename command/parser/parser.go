/*
 * AGC - Command parser.
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

// Package parser implements the interactive console's command language: a
// small set of verbs (step, run, stop, gojam, set, show, load, trace, quit)
// dispatched by unambiguous-prefix match, the way the teacher's device
// console commands are.  There is no device/channel registry here - the AGC
// has a single core and a named-signal/fixed-memory surface instead.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/emgre/agc/emu/core"
	"github.com/emgre/agc/emu/register"
)

type cmd struct {
	name     string
	min      int
	process  func(*cmdLine, *core.Core) (bool, error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "step", min: 2, process: step},
	{name: "run", min: 1, process: run},
	{name: "continue", min: 1, process: run},
	{name: "stop", min: 3, process: stop},
	{name: "gojam", min: 2, process: gojam},
	{name: "set", min: 3, process: set},
	{name: "show", min: 2, process: show},
	{name: "load", min: 2, process: load},
	{name: "trace", min: 2, process: trace},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one line of console input against core; the bool
// result reports whether the console should exit.
func ProcessCommand(commandLine string, c *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	match := matchList(name)
	switch len(match) {
	case 0:
		return false, errors.New("command not found: " + name)
	case 1:
		return match[0].process(&line, c)
	default:
		return false, errors.New("ambiguous command: " + name)
	}
}

// CompleteCmd offers completions for commandLine during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	if !line.isEOL() && line.line[line.pos-1] == ' ' {
		match := matchList(name)
		if len(match) != 1 || match[0].complete == nil {
			return nil
		}
		return match[0].complete(&line)
	}

	match := matchList(name)
	names := make([]string, len(match))
	for i, m := range match {
		names[i] = m.name
	}
	return names
}

func matchCommand(m cmd, name string) bool {
	if len(name) > len(m.name) {
		return false
	}
	for i := range name {
		if m.name[i] != name[i] {
			return false
		}
	}
	return len(name) >= m.min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			match = append(match, m)
		}
	}
	return match
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// getWord reads the next whitespace-delimited, lower-cased token.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return strings.ToLower(line.line[start:line.pos])
}

// getInt reads the next token and parses it as a number in the given base
// (0 lets the token itself pick a base via a 0x/0 prefix, matching the
// octal convention used throughout the console for addresses and words).
func (line *cmdLine) getInt(base int) (int64, error) {
	word := line.getWord()
	if word == "" {
		return 0, errors.New("expected a number")
	}
	return strconv.ParseInt(word, base, 64)
}

func step(line *cmdLine, c *core.Core) (bool, error) {
	n := int64(1)
	if !line.isEOL() {
		var err error
		n, err = line.getInt(10)
		if err != nil {
			return false, fmt.Errorf("step: %w", err)
		}
	}
	for i := int64(0); i < n; i++ {
		if err := c.StepOnePulse(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func run(_ *cmdLine, c *core.Core) (bool, error) {
	c.SendStart()
	return false, nil
}

func stop(_ *cmdLine, c *core.Core) (bool, error) {
	c.SendStop()
	return false, nil
}

func gojam(_ *cmdLine, c *core.Core) (bool, error) {
	c.AssertGojam()
	return false, nil
}

// set <signal> <0|1> drives a named external input (spec section 6.1).
func set(line *cmdLine, c *core.Core) (bool, error) {
	signal := line.getWord()
	if signal == "" {
		return false, errors.New("set requires a signal name")
	}
	level, err := line.getInt(10)
	if err != nil {
		return false, fmt.Errorf("set %s: %w", signal, err)
	}
	c.SetInput(strings.ToUpper(signal), level != 0)
	return false, nil
}

// show prints the current register snapshot.
func show(_ *cmdLine, c *core.Core) (bool, error) {
	s := c.Snapshot()
	fmt.Printf("A=%s L=%s Q=%s Z=%s EBANK=%s FBANK=%s\n", s.A, s.L, s.Q, s.Z, s.EBank, s.FBank)
	fmt.Printf("B=%s G=%s S=%s SQ=%s ST=%s X=%s Y=%s BR=%s\n", s.B, s.G, s.S, s.SQ, s.ST, s.X, s.Y, s.BR)
	return false, nil
}

// load <bank> <offset> <word> pokes one fixed-memory cell, all given in
// octal, simulating loading the rope.
func load(line *cmdLine, c *core.Core) (bool, error) {
	bank, err := line.getInt(8)
	if err != nil {
		return false, fmt.Errorf("load: bank: %w", err)
	}
	offset, err := line.getInt(8)
	if err != nil {
		return false, fmt.Errorf("load: offset: %w", err)
	}
	word, err := line.getInt(8)
	if err != nil {
		return false, fmt.Errorf("load: word: %w", err)
	}
	return false, c.LoadFixed(int(bank), int(offset), register.Word(word))
}

// trace <file> arms (or, given "off", disarms) the per-pulse CSV trace.
func trace(line *cmdLine, c *core.Core) (bool, error) {
	name := line.getWord()
	if name == "" || name == "off" {
		c.SetTraceOutput(nil)
		return false, nil
	}
	f, err := openTraceFile(name)
	if err != nil {
		return false, err
	}
	c.SetTraceOutput(f)
	return false, nil
}

func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	return true, nil
}

func openTraceFile(name string) (*os.File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return f, nil
}
