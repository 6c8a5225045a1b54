// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package domain

import (
	"fmt"

	"github.com/usbarmory/GoSBI/hart"
)

// Registry holds the domains of a firmware instance and the global
// hart index to domain assignment map.
//
// Domains are registered by the single cold boot hart before the DCM is
// initialized, the registry is read-only afterwards with the exception
// of hart assignments, which are mutated only by the hart they
// represent.
type Registry struct {
	domains []*Domain
	root    *Domain

	hartDomain [hart.MaxHarts]*Domain
}

// NewRegistry returns a domain registry with root as its root domain.
// The root domain owns every hart in its possible mask until it is
// delegated to another domain, and terminates every context boot-up
// chain.
func NewRegistry(root *Domain) (r *Registry, err error) {
	if err = root.Valid(); err != nil {
		return
	}

	// the root domain is the running environment on all of its harts
	root.AssignedHarts = root.PossibleHarts
	root.CtxMgmt = true

	r = &Registry{
		domains: []*Domain{root},
		root:    root,
	}

	for i := root.AssignedHarts.Next(-1); i >= 0; i = root.AssignedHarts.Next(i) {
		r.hartDomain[i] = root
	}

	return
}

// Add registers a domain. The domain index, used by the ecall interface
// to name enter targets, is its registration order (the root domain is
// index 0).
func (r *Registry) Add(d *Domain) (err error) {
	if err = d.Valid(); err != nil {
		return
	}

	for _, p := range r.domains {
		if p.Name == d.Name {
			return fmt.Errorf("domain %s already registered", d.Name)
		}
	}

	r.domains = append(r.domains, d)

	return
}

// Root returns the root domain.
func (r *Registry) Root() *Domain {
	return r.root
}

// Domains returns all registered domains in registration order, root
// domain first.
func (r *Registry) Domains() []*Domain {
	return r.domains
}

// ByIndex returns the domain registered at index i, nil when out of
// range.
func (r *Registry) ByIndex(i int) *Domain {
	if i < 0 || i >= len(r.domains) {
		return nil
	}

	return r.domains[i]
}

// ByName returns the domain named n, nil when not registered.
func (r *Registry) ByName(n string) *Domain {
	for _, d := range r.domains {
		if d.Name == n {
			return d
		}
	}

	return nil
}

// HartDomain returns the domain presently assigned hart index h.
func (r *Registry) HartDomain(h int) *Domain {
	if h < 0 || h >= hart.MaxHarts {
		return nil
	}

	return r.hartDomain[h]
}

// Assign reassigns hart index h from its present domain to d, keeping
// the per-domain assignment masks and the global map coherent.
//
// Each hart mutates only its own assignment, the runtime path therefore
// needs no locking.
func (r *Registry) Assign(h int, d *Domain) {
	if h < 0 || h >= hart.MaxHarts {
		return
	}

	if p := r.hartDomain[h]; p != nil {
		p.AssignedHarts.Clear(h)
	}

	r.hartDomain[h] = d
	d.AssignedHarts.Set(h)
}
