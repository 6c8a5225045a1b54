// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package domain implements isolation domains for SBI firmware, bundles
// of memory/IO permissions enforced through the RISC-V Physical Memory
// Protection unit together with a boot entry point and privilege level.
package domain

import (
	"fmt"

	"github.com/usbarmory/GoSBI/hart"
)

// Privilege level of a domain entry point.
const (
	PrivU = 0
	PrivS = 1
	PrivM = 3
)

// ModeName returns the RISC-V privilege level name of mode.
func ModeName(mode int) string {
	switch mode {
	case PrivU:
		return "U"
	case PrivS:
		return "S"
	case PrivM:
		return "M"
	default:
		return "?"
	}
}

// PMP address matching modes (pmpcfg.A), numerically identical to the
// architectural encoding programmed by the PMP driver.
const (
	PMP_A_OFF = iota
	PMP_A_TOR
	PMP_A_NA4
	PMP_A_NAPOT
)

// Region is a single PMP policy entry, expressed as the arguments of a
// PMP CSR write (see fu540.RV64.WritePMP). TOR entries match addresses
// between the previous entry address and Addr.
type Region struct {
	// Addr is the pmpaddr value, a physical address right shifted by 2.
	Addr uint64
	// R enables read access
	R bool
	// W enables write access
	W bool
	// X enables instruction fetch
	X bool
	// A is the address matching mode (PMP_A_OFF, _TOR, _NA4, _NAPOT)
	A int
	// Lock locks the entry, enforcing it in M-mode, until hart reset
	Lock bool
}

// Domain represents an isolation domain. Fields other than AssignedHarts
// are set before registration and constant afterwards.
type Domain struct {
	// Name is the domain identifier for diagnostics.
	Name string

	// PossibleHarts is the mask of hart indices that may ever run this
	// domain.
	PossibleHarts hart.Mask

	// AssignedHarts is the mask of hart indices presently executing in
	// this domain. At registration time it designates the harts the
	// domain claims at boot, its boot hart included.
	AssignedHarts hart.Mask

	// BootHart is the single hart index that performs the initial jump
	// into the domain entry code.
	BootHart int

	// NextAddr is the domain entry program counter.
	NextAddr uint64

	// NextMode is the domain entry privilege level (PrivS or PrivU).
	NextMode int

	// NextArg1 is the domain boot argument, passed in a1.
	NextArg1 uint64

	// CtxMgmt enables context management, allowing the hart to be
	// switched in and out of the domain. When false the domain runs
	// forever on its assigned harts.
	CtxMgmt bool

	// PMP is the domain memory/IO access policy, programmed on every
	// switch into the domain.
	PMP []Region
}

// Valid performs registration time validation of the domain
// configuration.
func (d *Domain) Valid() error {
	if d == nil || len(d.Name) == 0 {
		return fmt.Errorf("invalid domain name")
	}

	if d.PossibleHarts.Empty() {
		return fmt.Errorf("domain %s has no possible harts", d.Name)
	}

	if !d.PossibleHarts.Contains(d.AssignedHarts) {
		return fmt.Errorf("domain %s assigned harts %v exceed possible harts %v",
			d.Name, d.AssignedHarts, d.PossibleHarts)
	}

	if !d.PossibleHarts.IsSet(d.BootHart) {
		return fmt.Errorf("domain %s boot hart %d not in possible harts %v",
			d.Name, d.BootHart, d.PossibleHarts)
	}

	if d.NextMode != PrivS && d.NextMode != PrivU {
		return fmt.Errorf("domain %s has invalid entry mode %d", d.Name, d.NextMode)
	}

	return nil
}

// String returns the domain name.
func (d *Domain) String() string {
	return d.Name
}
