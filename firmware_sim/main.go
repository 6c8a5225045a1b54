// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// The firmware_sim command runs the Domain Context Manager on a
// simulated SMP RISC-V machine, serving the debug console over SSH for
// inspection of domain switching off hardware.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"runtime"

	"github.com/usbarmory/GoSBI/cmd"
	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/monitor"
	"github.com/usbarmory/GoSBI/sim"
	"github.com/usbarmory/GoSBI/util"

	"golang.org/x/term"
)

const (
	listenAddr = "127.0.0.1:10022"

	harts      = 2
	pmpEntries = 8

	rootAddr   = 0x80000000
	secureAddr = 0x88000000
	secureArg  = 0x1000
)

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	cmd.Banner = fmt.Sprintf("%s/%s (%s) • SBI Domain Context Manager (simulated)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func configure(mach *sim.Machine) (mgr *monitor.Manager, err error) {
	root := &domain.Domain{
		Name:          "root",
		PossibleHarts: 0b11,
		BootHart:      0,
		NextAddr:      rootAddr,
		NextMode:      domain.PrivS,
		PMP: []domain.Region{
			{Addr: 0x00000000, R: true, W: true, X: true, A: domain.PMP_A_OFF},
			{Addr: (rootAddr + 0x08000000) >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},
		},
	}

	reg, err := domain.NewRegistry(root)

	if err != nil {
		return
	}

	// example secure service domain (e.g. UEFI variable store)
	uefi := &domain.Domain{
		Name:          "uefi-vars",
		PossibleHarts: 0b11,
		AssignedHarts: 0b01,
		BootHart:      0,
		NextAddr:      secureAddr,
		NextMode:      domain.PrivS,
		NextArg1:      secureArg,
		CtxMgmt:       true,
		PMP: []domain.Region{
			{Addr: secureAddr >> 2, R: true, W: true, X: true, A: domain.PMP_A_OFF},
			{Addr: (secureAddr + 0x04000000) >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},
		},
	}

	if err = reg.Add(uefi); err != nil {
		return
	}

	return monitor.Init(reg, mach.Scratches())
}

func main() {
	mach := sim.NewMachine(harts, pmpEntries)

	mgr, err := configure(mach)

	if err != nil {
		log.Fatalf("SIM could not initialize context management, %v", err)
	}

	cmd.DCM = mgr
	cmd.Harts = mach.Scratches()

	addSimCommands(mach)

	listener, err := net.Listen("tcp", listenAddr)

	if err != nil {
		log.Fatalf("SIM could not listen, %v", err)
	}

	console := &util.Console{
		Banner: cmd.Banner,
		Help:   cmd.Help(&term.Terminal{}),
		Handler: func(t *term.Terminal, line string) error {
			return cmd.Exec(t, line)
		},
	}

	if err = console.Start(listener); err != nil {
		log.Fatalf("SIM could not start console, %v", err)
	}

	log.Printf("SIM console on %s (ssh any@%s)", listenAddr, listenAddr)

	select {}
}
