// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/hart"
)

func init() {
	Add(Cmd{
		Name: "domains",
		Help: "domain registry and hart assignments",
		Fn:   domainsCmd,
	})

	Add(Cmd{
		Name:    "ctx",
		Args:    1,
		Pattern: regexp.MustCompile(`^ctx (\d+)$`),
		Syntax:  "<hart>",
		Help:    "context slot chain of a hart",
		Fn:      ctxCmd,
	})

	Add(Cmd{
		Name:    "enter",
		Args:    1,
		Pattern: regexp.MustCompile(`^enter (\S+)$`),
		Syntax:  "<domain>",
		Help:    "enter a domain context",
		Fn:      enterCmd,
	})

	Add(Cmd{
		Name: "yield",
		Help: "exit the current domain context",
		Fn:   yieldCmd,
	})
}

func domainsCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if DCM == nil {
		return "", errors.New("context management not initialized")
	}

	var b strings.Builder

	for i, d := range DCM.Registry().Domains() {
		b.WriteString(fmt.Sprintf("%d: %-12s boot:%d possible:%-8v assigned:%-8v entry:%#x mode:%s ctxmgmt:%v\n",
			i, d.Name, d.BootHart, d.PossibleHarts, d.AssignedHarts,
			d.NextAddr, domain.ModeName(d.NextMode), d.CtxMgmt))
	}

	for h := 0; h < hart.MaxHarts; h++ {
		if d := DCM.Registry().HartDomain(h); d != nil {
			b.WriteString(fmt.Sprintf("hart %d: %s\n", h, d.Name))
		}
	}

	return b.String(), nil
}

func ctxCmd(_ *term.Terminal, arg []string) (res string, err error) {
	h, err := strconv.Atoi(arg[0])

	if err != nil {
		return "", fmt.Errorf("invalid hart index, %v", err)
	}

	if DCM == nil || h < 0 || h >= len(Harts) || Harts[h] == nil {
		return "", errors.New("invalid hart")
	}

	var b strings.Builder

	ctx := Harts[h].Context()

	b.WriteString(fmt.Sprintf("hart %d current context: %s\n", h, ctx.Domain()))

	for _, d := range DCM.Registry().Domains() {
		c := DCM.DomainContext(d, h)

		if c == nil {
			continue
		}

		next := "-"

		if n := c.Next(); n != nil {
			next = n.Domain().Name
		}

		b.WriteString(fmt.Sprintf("  %-12s initialized:%-5v next:%-12s mepc:%#x\n",
			d.Name, c.Initialized(), next, c.Regs.MEPC))
	}

	return b.String(), nil
}

func enterCmd(_ *term.Terminal, arg []string) (res string, err error) {
	if DCM == nil {
		return "", errors.New("context management not initialized")
	}

	d := DCM.Registry().ByName(arg[0])

	if d == nil {
		return "", fmt.Errorf("unknown domain %s", arg[0])
	}

	if ConsoleHart < 0 || ConsoleHart >= len(Harts) || Harts[ConsoleHart] == nil {
		return "", errors.New("invalid console hart")
	}

	if err = DCM.Enter(Harts[ConsoleHart], d); err != nil {
		return "", fmt.Errorf("could not enter %s, %v", d.Name, err)
	}

	return fmt.Sprintf("hart %d entered %s", ConsoleHart, d.Name), nil
}

func yieldCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if DCM == nil || ConsoleHart < 0 || ConsoleHart >= len(Harts) || Harts[ConsoleHart] == nil {
		return "", errors.New("context management not initialized")
	}

	s := Harts[ConsoleHart]

	if err = DCM.Exit(s); err != nil {
		return "", fmt.Errorf("could not exit, %v", err)
	}

	return fmt.Sprintf("hart %d now in %s", ConsoleHart, s.Context().Domain()), nil
}
