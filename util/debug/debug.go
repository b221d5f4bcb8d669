/*
 * AGC - Log debug data to a file.
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

package debug

import (
	"fmt"
	"os"

	"github.com/emgre/agc/config/configparser"
)

var logFile *os.File

// Debugf writes a subsystem debug line if mask&level is non-zero. module
// names the emitting subsystem (sequencer, decoder, alarm, counters, iobus);
// config/debugconfig turns mask bits on per subsystem from the DEBUG
// directive.
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if logFile == nil || (mask&level) == 0 {
		return
	}
	fmt.Fprintf(logFile, module+": "+format+"\n", a...)
}

// register the DEBUGFILE directive on initialize.
func init() {
	configparser.RegisterDirective("DEBUGFILE", configparser.KindValue, create)
}

// create opens the single debug trace file named by a "DEBUGFILE path"
// configuration line.
func create(fileName string, _ []configparser.Option) error {
	if logFile != nil {
		return fmt.Errorf("debug: only one DEBUGFILE may be configured, already have: %s", logFile.Name())
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("debug: unable to create debug file %s: %w", fileName, err)
	}

	logFile = file
	return nil
}
