// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the GoSBI debug console, a terminal command
// interface to inspect and drive the Domain Context Manager over serial
// or SSH.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/usbarmory/GoSBI/monitor"
)

// Banner is the login welcome banner.
var Banner string

// DCM is the Domain Context Manager instance inspected by the console.
var DCM *monitor.Manager

// Harts holds the per-hart scratch of every hart, indexed by hart
// index.
var Harts []*monitor.Scratch

// ConsoleHart is the hart index commands act on.
var ConsoleHart = 0

// CmdFn is a command handler.
type CmdFn func(term *term.Terminal, arg []string) (res string, err error)

// Cmd is a console command.
type Cmd struct {
	// Name is the command name.
	Name string

	// Args defines the number of command arguments, meant to be in a
	// comma separated list.
	Args int

	// Pattern defines the command syntax and arguments.
	Pattern *regexp.Regexp

	// Syntax defines the Help() command syntax field.
	Syntax string

	// Help defines the Help() command description field.
	Help string

	// Fn defines the command handler.
	Fn CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a terminal interface command.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns a formatted string with instructions for all registered
// commands.
func Help(term *term.Terminal) string {
	var names []string
	var help strings.Builder

	width := 0

	for name, cmd := range cmds {
		names = append(names, name)

		if n := len(cmd.Name) + len(cmd.Syntax) + 1; n > width {
			width = n
		}
	}

	sort.Strings(names)

	for _, name := range names {
		cmd := cmds[name]
		syntax := strings.TrimSpace(cmd.Name + " " + cmd.Syntax)

		help.WriteString(fmt.Sprintf("  %-*s # %s\n", width, syntax, cmd.Help))
	}

	return help.String()
}

// Exec executes a console command line.
func Exec(t *term.Terminal, line string) (err error) {
	var match *Cmd
	var arg []string
	var res string

	for _, cmd := range cmds {
		if cmd.Pattern == nil {
			if line == cmd.Name {
				match = cmd
				break
			}
		} else if m := cmd.Pattern.FindStringSubmatch(line); len(m) == cmd.Args+1 {
			match = cmd
			arg = m[1:]
			break
		}
	}

	if match == nil {
		return errors.New("unknown command, type `help`")
	}

	if res, err = match.Fn(t, arg); err != nil {
		return
	}

	if len(res) > 0 {
		fmt.Fprintln(t, res)
	}

	return
}

// SerialConsole starts an interactive console on the argument
// read/writer, typically the board serial port.
func SerialConsole(console io.ReadWriter) {
	t := term.NewTerminal(console, "")
	t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))

	fmt.Fprintf(t, "%s\n", Banner)
	fmt.Fprintf(t, "%s\n", string(t.Escape.Cyan)+Help(t)+string(t.Escape.Reset))

	for {
		line, err := t.ReadLine()

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Printf("readline error, %v", err)
			continue
		}

		if err = Exec(t, line); err == io.EOF {
			break
		} else if err != nil {
			log.Printf("error: %v", err)
		}
	}
}
