// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor

import (
	"log"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/sbi"
)

// switchContext switches the hart from its current context to the
// target domain context. It must execute with M-mode interrupts masked
// and is never re-entered on a hart.
//
// The phase order is load bearing: the trap frame is saved after the
// CSR exchange so a trap raised in between cannot be observed through a
// partially swapped state, and the PMP is reprogrammed before any
// memory covered by the incoming policy is touched. All PMP entries are
// disabled first as entries are not atomically replaceable and
// overlapping old/new regions could otherwise grant unintended access
// mid switch.
func (m *Manager) switchContext(s *Scratch, ctx, domCtx *Context) {
	// Reassign the hart to the domain of the target context.
	m.registry.Assign(s.HartID, domCtx.dom)

	// Disable all PMP entries in preparation for reconfiguration.
	for i := 0; i < s.PMP.Count(); i++ {
		if err := s.PMP.Disable(i); err != nil {
			log.Printf("DCM hart %d failed to disable PMP entry %d (%v)", s.HartID, i, err)
		}
	}

	if err := s.PMP.Apply(domCtx.dom.PMP); err != nil {
		log.Printf("DCM hart %d failed to configure PMP for %s (%v)", s.HartID, domCtx.dom.Name, err)
	}

	// Save the current CSR context and restore the target one.
	for c := CSR(0); c < NumCSR; c++ {
		ctx.CSR[c] = s.CSR.Swap(c, domCtx.CSR[c])
	}

	// Save the current trap state and restore the target one.
	ctx.Regs = *s.Frame
	*s.Frame = domCtx.Regs

	// The outgoing slot now holds a complete resumable snapshot.
	ctx.initialized = true

	s.ctx = domCtx
}

// startup performs the first start of a fresh domain context, entered
// through the boot-up chain with a zero saved state.
//
// The start is held back until every possible hart of the domain has
// been observed assigned, guaranteeing all of its contexts exist before
// the domain runs: early arriving harts are parked through HSM and
// restarted by the domain boot hart later. The last arriving hart
// either jumps straight into the domain entry point (boot hart) or
// starts the boot hart through HSM and parks itself.
func (m *Manager) startup(s *Scratch, domCtx *Context) error {
	d := domCtx.dom

	for i := d.PossibleHarts.Next(-1); i >= 0; i = d.PossibleHarts.Next(i) {
		if !d.AssignedHarts.IsSet(i) {
			return s.HSM.Stop()
		}
	}

	if s.HartID != d.BootHart {
		if err := s.HSM.Start(d, d.BootHart, d.NextAddr, d.NextMode, d.NextArg1); err != nil {
			log.Printf("DCM failed to start boot hart %d for %s (%v)", d.BootHart, d.Name, err)
		}

		return s.HSM.Stop()
	}

	// On hardware the mode switch does not return.
	s.Jump(s.HartID, d.NextAddr, d.NextMode, d.NextArg1)

	return nil
}

// Enter switches the calling hart into domain d, saving the caller
// state in its context slot and recording the caller as the target
// return link. Control resumes in the target domain at its saved
// program counter; the function returns as soon as the switch is made,
// and the caller's pending ecall completes once the target exits back.
//
// The target slot must have been initialized through the boot-up chain,
// entry into a fresh context is refused (sbi.ErrInvalidParam), as is
// entry into the domain already running on the hart. Crossing a switch
// with a pending supervisor external interrupt is refused
// (sbi.ErrDenied) as external interrupt routing is not carried across
// domains.
//
// No hart state is modified on the error paths.
func (m *Manager) Enter(s *Scratch, d *domain.Domain) error {
	ctx := s.ctx

	if ctx == nil || d == nil || !d.CtxMgmt {
		return sbi.ErrInvalidParam
	}

	domCtx := m.DomainContext(d, s.HartID)

	if domCtx == nil || !domCtx.initialized || domCtx == ctx {
		return sbi.ErrInvalidParam
	}

	if s.CSR.Read(SIP)&SIP_SEIP != 0 {
		return sbi.ErrDenied
	}

	// Record the caller on the target slot so the matching exit finds
	// its way home.
	domCtx.next = ctx

	m.switchContext(s, ctx, domCtx)

	return nil
}

// Exit switches the calling hart out of its current domain and into its
// successor: the recorded caller when the domain was entered, otherwise
// the next slot on the hart boot-up chain (performing its first start),
// otherwise the root domain slot.
//
// sbi.ErrInvalidParam is returned only when no successor exists.
func (m *Manager) Exit(s *Scratch) error {
	ctx := s.ctx

	if ctx == nil {
		return sbi.ErrInvalidParam
	}

	domCtx := ctx.next

	if domCtx == nil {
		// chain spent, fall back to the root domain slot
		domCtx = m.DomainContext(m.registry.Root(), s.HartID)

		if domCtx == nil || domCtx == ctx {
			return sbi.ErrInvalidParam
		}
	}

	startup := !domCtx.initialized

	m.switchContext(s, ctx, domCtx)

	if startup {
		return m.startup(s, domCtx)
	}

	return nil
}
