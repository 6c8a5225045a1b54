// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor

import (
	"log"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/hart"
	"github.com/usbarmory/GoSBI/sbi"
)

// Manager is the Domain Context Manager instance of a firmware. It owns
// every context slot and the per-domain hart index to slot tables.
type Manager struct {
	registry *domain.Registry
	harts    [hart.MaxHarts]*Scratch
	contexts map[*domain.Domain][]*Context
}

// Registry returns the domain registry the manager operates on.
func (m *Manager) Registry() *domain.Registry {
	return m.registry
}

// DomainContext returns the context slot of domain d on hart index h,
// nil when the domain is not context managed or the hart is not possible
// for it.
func (m *Manager) DomainContext(d *domain.Domain, h int) *Context {
	if h < 0 || h >= hart.MaxHarts {
		return nil
	}

	table, ok := m.contexts[d]

	if !ok {
		return nil
	}

	return table[h]
}

// Init allocates the context slots of every context managed domain and
// builds the per-hart boot-up chains that drive each slot through its
// first start.
//
// The root domain environment is live on all of its harts when the
// ecall path comes up, so its slots seed every chain head and hold each
// hart's initial context pointer. The slots of the remaining domains are
// appended in registration order: the first Exit on a hart then walks
// the chain, starting each unstarted domain context in turn, and falls
// back to the root slot once the chain is spent.
//
// Init is not idempotent and refuses a second invocation on the same
// harts.
func Init(reg *domain.Registry, harts []*Scratch) (m *Manager, err error) {
	m = &Manager{
		registry: reg,
		contexts: make(map[*domain.Domain][]*Context),
	}

	// the slice may be sparse, scratches register under their hart ID
	for _, s := range harts {
		if s == nil {
			continue
		}

		if s.HartID < 0 || s.HartID >= hart.MaxHarts {
			return nil, sbi.ErrInvalidParam
		}

		m.harts[s.HartID] = s
	}

	// tail slot of the boot-up chain under construction, per hart
	var tail [hart.MaxHarts]*Context

	root := reg.Root()
	table := make([]*Context, hart.MaxHarts)

	for i := root.PossibleHarts.Next(-1); i >= 0; i = root.PossibleHarts.Next(i) {
		s := m.harts[i]

		if s == nil {
			log.Printf("DCM %s hart %d has no scratch, cannot initialize", root.Name, i)
			return nil, sbi.ErrInvalidParam
		}

		if s.ctx != nil {
			log.Printf("DCM hart %d context management already initialized", i)
			return nil, sbi.ErrInvalidParam
		}

		ctx := &Context{dom: root}

		table[i] = ctx
		tail[i] = ctx
		s.ctx = ctx
	}

	m.contexts[root] = table

	for _, d := range reg.Domains()[1:] {
		if !d.CtxMgmt {
			continue
		}

		if err = m.setupDomainContexts(&tail, d); err != nil {
			return nil, err
		}
	}

	return
}

// setupDomainContexts allocates and chains the context slots of a single
// non-root domain over all of its possible harts.
func (m *Manager) setupDomainContexts(tail *[hart.MaxHarts]*Context, d *domain.Domain) error {
	// The domain boot hart must be among the harts it claims at boot,
	// otherwise nothing can ever perform its first start.
	if !d.AssignedHarts.IsSet(d.BootHart) {
		log.Printf("DCM %s boot hart %d is not among its boot harts %v, context can't be initialized",
			d.Name, d.BootHart, d.AssignedHarts)
		return sbi.ErrInvalidParam
	}

	table := make([]*Context, hart.MaxHarts)

	for i := d.PossibleHarts.Next(-1); i >= 0; i = d.PossibleHarts.Next(i) {
		// A hart with no chain head belongs to no bootable domain,
		// nothing will ever drive it into running this context.
		if tail[i] == nil {
			log.Printf("DCM %s possible hart %d is unassignable, domain contexts will never be started up",
				d.Name, i)
			return sbi.ErrInvalidParam
		}

		ctx := &Context{dom: d}

		table[i] = ctx
		tail[i].next = ctx
		tail[i] = ctx
	}

	m.contexts[d] = table

	// Boot claims are realized lazily by the chain walk, the root
	// environment holds the harts until then.
	d.AssignedHarts = 0

	return nil
}
