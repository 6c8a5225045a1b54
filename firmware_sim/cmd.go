// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/usbarmory/GoSBI/cmd"
	"github.com/usbarmory/GoSBI/sim"
)

// addSimCommands registers console commands specific to the simulated
// machine.
func addSimCommands(mach *sim.Machine) {
	cmd.Add(cmd.Cmd{
		Name: "events",
		Help: "machine events (HSM, mode switches)",
		Fn: func(_ *term.Terminal, _ []string) (string, error) {
			var b strings.Builder

			for _, ev := range mach.Events() {
				b.WriteString(ev.String() + "\n")
			}

			return b.String(), nil
		},
	})

	cmd.Add(cmd.Cmd{
		Name:    "pmpstat",
		Args:    1,
		Pattern: regexp.MustCompile(`^pmpstat (\d+)$`),
		Syntax:  "<hart>",
		Help:    "programmed PMP policy of a hart",
		Fn: func(_ *term.Terminal, arg []string) (string, error) {
			i, err := strconv.Atoi(arg[0])

			if err != nil {
				return "", fmt.Errorf("invalid hart index, %v", err)
			}

			h := mach.Hart(i)

			if h == nil {
				return "", errors.New("invalid hart")
			}

			var b strings.Builder

			for n, r := range h.PMP().Enabled() {
				b.WriteString(fmt.Sprintf("PMP:%.2d addr:%.16x A:%d R:%v W:%v X:%v l:%v\n",
					n, r.Addr, r.A, r.R, r.W, r.X, r.Lock))
			}

			return b.String(), nil
		},
	})
}
