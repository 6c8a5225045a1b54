// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim implements a software model of the machine-mode view of an
// SMP RISC-V machine: S-mode CSR files, PMP banks, trap frames and hart
// state management, sufficient to run the Domain Context Manager off
// hardware for tests and hosted demos.
package sim

import (
	"sync"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/monitor"
)

// Machine models an SMP RISC-V machine.
type Machine struct {
	// OnStart, when set, is invoked on HSM hart start requests after
	// the event is recorded.
	OnStart func(hartid int, d *domain.Domain, addr uint64, mode int, arg1 uint64)

	harts []*Hart

	sync.Mutex
	events []Event
}

// Hart models a single hardware thread.
type Hart struct {
	csr     [monitor.NumCSR]uint64
	pmp     *PMPBank
	frame   monitor.TrapRegs
	scratch *monitor.Scratch
}

// NewMachine returns a machine with n harts, each with a zeroed CSR
// file, an empty PMP bank of pmpEntries entries and a fresh trap frame.
func NewMachine(n int, pmpEntries int) *Machine {
	m := &Machine{}

	for i := 0; i < n; i++ {
		h := &Hart{
			pmp: NewPMPBank(pmpEntries),
		}

		hartid := i

		h.scratch = &monitor.Scratch{
			HartID: hartid,
			CSR:    (*csrFile)(&h.csr),
			PMP:    h.pmp,
			HSM:    &hsm{m: m, hart: hartid},
			Frame:  &h.frame,
			Jump: func(id int, addr uint64, mode int, arg1 uint64) {
				m.jump(hartid, id, addr, mode, arg1)
			},
		}

		m.harts = append(m.harts, h)
	}

	return m
}

// Hart returns hart index i.
func (m *Machine) Hart(i int) *Hart {
	if i < 0 || i >= len(m.harts) {
		return nil
	}

	return m.harts[i]
}

// Scratch returns the scratch of hart index i.
func (m *Machine) Scratch(i int) *monitor.Scratch {
	if h := m.Hart(i); h != nil {
		return h.scratch
	}

	return nil
}

// Scratches returns the scratch of every hart, indexed by hart index.
func (m *Machine) Scratches() (s []*monitor.Scratch) {
	for _, h := range m.harts {
		s = append(s, h.scratch)
	}

	return
}

// Events returns the recorded HSM and mode switch events in order.
func (m *Machine) Events() []Event {
	m.Lock()
	defer m.Unlock()

	return append([]Event{}, m.events...)
}

// ClearEvents discards the recorded events.
func (m *Machine) ClearEvents() {
	m.Lock()
	defer m.Unlock()

	m.events = nil
}

func (m *Machine) record(ev Event) {
	m.Lock()
	defer m.Unlock()

	m.events = append(m.events, ev)
}

// jump models the machine to lower privilege mode switch: the hart
// resumes at addr with a0 set to the hart ID and a1 to the boot
// argument.
func (m *Machine) jump(hart int, id int, addr uint64, mode int, arg1 uint64) {
	h := m.harts[hart]

	h.frame.X[monitor.A0] = uint64(id)
	h.frame.X[monitor.A1] = arg1
	h.frame.MEPC = addr

	m.record(JumpEvent{Hart: hart, Addr: addr, Mode: mode, Arg1: arg1})
}

// PMP returns the hart PMP bank.
func (h *Hart) PMP() *PMPBank {
	return h.pmp
}

// Frame returns the hart live trap frame.
func (h *Hart) Frame() *monitor.TrapRegs {
	return &h.frame
}

// SetCSR presets the live value of a hart CSR.
func (h *Hart) SetCSR(csr monitor.CSR, val uint64) {
	h.csr[csr] = val
}

// csrFile implements monitor.CSRBank over an in-memory register file.
type csrFile [monitor.NumCSR]uint64

func (f *csrFile) Swap(csr monitor.CSR, val uint64) (prev uint64) {
	prev = f[csr]
	f[csr] = val

	return
}

func (f *csrFile) Read(csr monitor.CSR) uint64 {
	return f[csr]
}

// hsm implements monitor.HSM, recording start and stop requests.
type hsm struct {
	m    *Machine
	hart int
}

// Start records a hart start request and invokes the machine OnStart
// hook.
func (h *hsm) Start(d *domain.Domain, hartid int, addr uint64, mode int, arg1 uint64) error {
	h.m.record(StartEvent{
		Hart:       h.hart,
		Domain:     d.Name,
		TargetHart: hartid,
		Addr:       addr,
		Mode:       mode,
		Arg1:       arg1,
	})

	if h.m.OnStart != nil {
		h.m.OnStart(hartid, d, addr, mode, arg1)
	}

	return nil
}

// Stop records the parking of the calling hart. Unlike hardware the
// call returns, the caller is expected to stop driving the hart until a
// matching start event.
func (h *hsm) Stop() error {
	h.m.record(StopEvent{Hart: h.hart})

	return nil
}
