// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor

import (
	"github.com/usbarmory/GoSBI/domain"
)

// Context is a per-hart, per-domain context slot holding the saved
// execution state of a domain while the hart runs elsewhere.
//
// Slots are allocated once by Init and live for the lifetime of the
// firmware. A slot is mutated only by its hart, while switching out of
// it (save) or into it (restore).
type Context struct {
	// Regs is the saved trap frame.
	Regs TrapRegs

	// CSR holds the saved S-mode CSR values, indexed by CSR.
	CSR [NumCSR]uint64

	dom         *domain.Domain
	next        *Context
	initialized bool
}

// Domain returns the domain owning the slot, never nil for slots
// installed in a domain context table.
func (c *Context) Domain() *domain.Domain {
	return c.dom
}

// Next returns the slot switched into when the domain exits: the caller
// recorded by Enter or, while the slot still awaits its first start, the
// successor on the hart boot-up chain. A nil next resolves to the root
// domain slot.
func (c *Context) Next() *Context {
	return c.next
}

// Initialized returns whether the slot holds a complete resumable state.
// It flips on the first save and never clears.
func (c *Context) Initialized() bool {
	return c.initialized
}
