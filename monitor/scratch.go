// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package monitor implements the Domain Context Manager (DCM) of a
// RISC-V SBI security monitor, the machine-mode engine that
// synchronously and cooperatively switches harts between mutually
// isolated domains (see package domain).
//
// A non-secure domain calls into a secure domain as if it were a
// procedure: Enter saves the caller hart state into its context slot,
// restores the target slot and reprograms the PMP, the matching Exit
// reverses the switch. At boot, per-hart chains built by Init drive
// every eligible domain context through its first start exactly once.
package monitor

import (
	"github.com/usbarmory/GoSBI/domain"
)

// CSR identifies a supervisor mode control and status register tracked
// across domain switches.
type CSR int

// Tracked S-mode CSRs.
const (
	SSTATUS CSR = iota
	STVEC
	SSCRATCH
	SEPC
	SCAUSE
	STVAL
	SIE
	SIP
	SATP
	SCOUNTEREN
	SENVCFG

	NumCSR
)

// SIP_SEIP is the supervisor external interrupt pending bit of the sip
// CSR.
const SIP_SEIP = 1 << 9

// String returns the CSR assembler name.
func (c CSR) String() string {
	switch c {
	case SSTATUS:
		return "sstatus"
	case STVEC:
		return "stvec"
	case SSCRATCH:
		return "sscratch"
	case SEPC:
		return "sepc"
	case SCAUSE:
		return "scause"
	case STVAL:
		return "stval"
	case SIE:
		return "sie"
	case SIP:
		return "sip"
	case SATP:
		return "satp"
	case SCOUNTEREN:
		return "scounteren"
	case SENVCFG:
		return "senvcfg"
	default:
		return "?"
	}
}

// CSRBank provides access to the S-mode CSR file of a hart.
type CSRBank interface {
	// Swap atomically exchanges csr with val, returning the previous
	// live value. The exchange must be a single read-and-set so a trap
	// taken between read and write cannot lose state.
	Swap(csr CSR, val uint64) uint64

	// Read returns the live value of csr.
	Read(csr CSR) uint64
}

// PMP drives the Physical Memory Protection unit of a hart.
type PMP interface {
	// Count returns the number of implemented PMP entries.
	Count() int

	// Disable turns off PMP entry i.
	Disable(i int) error

	// Apply programs the given policy starting at entry 0. All entries
	// are disabled by the caller beforehand.
	Apply(regions []domain.Region) error
}

// HSM is the hart state management interface used to start and stop
// harts across domain context startup.
type HSM interface {
	// Start requests hartid to begin executing domain d at addr in the
	// given privilege level, with a0 set to the hart ID and a1 to arg1.
	Start(d *domain.Domain, hartid int, addr uint64, mode int, arg1 uint64) error

	// Stop parks the calling hart until another hart starts it. On
	// hardware the call does not return.
	Stop() error
}

// Scratch is the machine-mode per-hart state block. Each hart owns
// exactly one Scratch and only ever dereferences its own.
type Scratch struct {
	// HartID is the hart index.
	HartID int

	// CSR is the hart S-mode CSR file.
	CSR CSRBank

	// PMP is the hart Physical Memory Protection unit.
	PMP PMP

	// HSM is the hart state management implementation.
	HSM HSM

	// Frame points to the live trap frame of the hart, located by the
	// trap entry vector at mscratch minus the frame size.
	Frame *TrapRegs

	// Jump switches the hart from machine mode to the given privilege
	// level at addr, with a0 set to hartid and a1 to arg1. On hardware
	// the call does not return.
	Jump func(hartid int, addr uint64, mode int, arg1 uint64)

	ctx *Context
}

// Context returns the context slot presently active on the hart.
func (s *Scratch) Context() *Context {
	return s.ctx
}
