/*
 * AGC - Main process.
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

package main

import (
	"bufio"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/emgre/agc/command/reader"
	"github.com/emgre/agc/config/configparser"
	"github.com/emgre/agc/config/debugconfig"
	"github.com/emgre/agc/emu/core"
	"github.com/emgre/agc/emu/register"
	"github.com/emgre/agc/util/logger"
)

var Logger *slog.Logger

var ropePath string

func init() {
	configparser.RegisterDirective("ROPE", configparser.KindValue, func(value string, _ []configparser.Option) error {
		ropePath = value
		return nil
	})
}

func main() {
	optConfig := getopt.StringLong("config", 'c', "agc.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	debugFlag := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debugFlag))
	slog.SetDefault(Logger)

	Logger.Info("AGC emulator started")

	if optConfig == nil || *optConfig == "" {
		Logger.Error("Please specify a configuration file")
		os.Exit(1)
	}

	if _, err := os.Stat(*optConfig); os.IsNotExist(err) {
		Logger.Error("configuration file not found", "path", *optConfig)
		os.Exit(1)
	}

	if err := configparser.LoadConfigFile(*optConfig); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	c := core.New()

	if err := debugconfig.Apply(map[string]debugconfig.Debuggable{
		"SEQUENCER": c.Sequencer,
		"DECODER":   c.Engine,
		"ALARM":     c.Alarm,
		"COUNTERS":  c.Counters,
		"IOBUS":     c.Bus,
	}); err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	if ropePath != "" {
		if err := loadRope(c, ropePath); err != nil {
			Logger.Error("unable to load rope", "path", ropePath, "error", err)
			os.Exit(1)
		}
	}

	go c.Run()

	consoleDone := make(chan struct{})
	go func() {
		reader.ConsoleReader(c)
		close(consoleDone)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		Logger.Info("got quit signal")
	case <-consoleDone:
		Logger.Info("console exited")
	}

	Logger.Info("shutting down core")
	c.Shutdown()
	Logger.Info("stopped")
}

// loadRope reads a flight-rope image: one octal word per non-empty,
// non-comment line, loaded sequentially starting at fixed bank 2 offset 0
// and wrapping into the next bank every 1024 words (spec section 3's fixed
// memory layout).
func loadRope(c *core.Core, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bank, offset := 2, 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, err := strconv.ParseUint(line, 8, 16)
		if err != nil {
			return err
		}
		if err := c.LoadFixed(bank, offset, register.Word(word)); err != nil {
			return err
		}
		offset++
		if offset >= 1024 {
			offset = 0
			bank++
		}
	}
	return scanner.Err()
}
