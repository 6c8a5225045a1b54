// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build sifive_u
// +build sifive_u

package main

import (
	"log"

	"github.com/usbarmory/tamago/riscv"
	"github.com/usbarmory/tamago/soc/sifive/fu540"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/monitor"
	"github.com/usbarmory/GoSBI/sbi"
)

// mHart is the U54 application hart the firmware runs on (hart 0 is the
// E51 monitor core).
const mHart = 1

// pmpEntries is the number of PMP entries implemented by each U54 hart.
const pmpEntries = 8

// liveFrame is the hart trap frame, filled by the trap entry vector
// which locates it through mscratch and pops it on trap return.
var liveFrame monitor.TrapRegs

// newScratch builds the per-hart machine-mode state block over the
// fu540 hardware.
func newScratch(hartid int) *monitor.Scratch {
	return &monitor.Scratch{
		HartID: hartid,
		CSR:    &csrBank{},
		PMP:    &pmpUnit{},
		HSM:    &hsm{},
		Frame:  &liveFrame,
		Jump:   jumpTo,
	}
}

// pmpUnit implements monitor.PMP over the fu540 PMP CSRs.
type pmpUnit struct{}

func (p *pmpUnit) Count() int {
	return pmpEntries
}

func (p *pmpUnit) Disable(i int) error {
	return fu540.RV64.WritePMP(i, 0, false, false, false, riscv.PMP_CFG_A_OFF, false)
}

func (p *pmpUnit) Apply(regions []domain.Region) (err error) {
	for i, r := range regions {
		if err = fu540.RV64.WritePMP(i, r.Addr, r.R, r.W, r.X, r.A, r.Lock); err != nil {
			return
		}
	}

	return
}

// csrBank implements monitor.CSRBank through per-CSR atomic swap
// instructions (see csr.s).
type csrBank struct{}

func (b *csrBank) Swap(csr monitor.CSR, val uint64) uint64 {
	switch csr {
	case monitor.SSTATUS:
		return swapSstatus(val)
	case monitor.STVEC:
		return swapStvec(val)
	case monitor.SSCRATCH:
		return swapSscratch(val)
	case monitor.SEPC:
		return swapSepc(val)
	case monitor.SCAUSE:
		return swapScause(val)
	case monitor.STVAL:
		return swapStval(val)
	case monitor.SIE:
		return swapSie(val)
	case monitor.SIP:
		return swapSip(val)
	case monitor.SATP:
		return swapSatp(val)
	case monitor.SCOUNTEREN:
		return swapScounteren(val)
	case monitor.SENVCFG:
		return swapSenvcfg(val)
	}

	return 0
}

func (b *csrBank) Read(csr monitor.CSR) uint64 {
	switch csr {
	case monitor.SSTATUS:
		return readSstatus()
	case monitor.STVEC:
		return readStvec()
	case monitor.SSCRATCH:
		return readSscratch()
	case monitor.SEPC:
		return readSepc()
	case monitor.SCAUSE:
		return readScause()
	case monitor.STVAL:
		return readStval()
	case monitor.SIE:
		return readSie()
	case monitor.SIP:
		return readSip()
	case monitor.SATP:
		return readSatp()
	case monitor.SCOUNTEREN:
		return readScounteren()
	case monitor.SENVCFG:
		return readSenvcfg()
	}

	return 0
}

// hsm implements monitor.HSM on the fu540.
//
// TODO: start secondary U54 harts through CLINT software interrupts,
// the QEMU sifive_u configuration used here runs a single application
// hart.
type hsm struct{}

func (h *hsm) Start(d *domain.Domain, hartid int, addr uint64, mode int, arg1 uint64) error {
	return sbi.ErrNotSupported
}

func (h *hsm) Stop() error {
	log.Printf("DCM parking hart %d", mHart)

	select {}
}

// jumpTo switches the hart to the given privilege level at addr, with
// a0 set to hartid and a1 to arg1. It does not return.
func jumpTo(hartid int, addr uint64, mode int, arg1 uint64) {
	var mpp uint64

	switch mode {
	case domain.PrivS:
		mpp = 1 << 11
	case domain.PrivU:
		mpp = 0
	}

	jump(uint64(hartid), addr, mpp, arg1)
}

// defined in csr.s

func swapSstatus(val uint64) uint64
func swapStvec(val uint64) uint64
func swapSscratch(val uint64) uint64
func swapSepc(val uint64) uint64
func swapScause(val uint64) uint64
func swapStval(val uint64) uint64
func swapSie(val uint64) uint64
func swapSip(val uint64) uint64
func swapSatp(val uint64) uint64
func swapScounteren(val uint64) uint64
func swapSenvcfg(val uint64) uint64

func readSstatus() uint64
func readStvec() uint64
func readSscratch() uint64
func readSepc() uint64
func readScause() uint64
func readStval() uint64
func readSie() uint64
func readSip() uint64
func readSatp() uint64
func readScounteren() uint64
func readSenvcfg() uint64

func jump(hartid uint64, addr uint64, mpp uint64, arg1 uint64)
