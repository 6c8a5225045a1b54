// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/usbarmory/GoSBI/domain"
)

// PMPEntry is a single modeled PMP entry.
type PMPEntry struct {
	// Region holds the programmed policy.
	Region domain.Region
	// Enabled is whether the entry is programmed.
	Enabled bool
}

// PMPBank implements monitor.PMP over an in-memory entry bank,
// enforcing that a policy is only ever applied with all entries
// disabled.
type PMPBank struct {
	entries []PMPEntry
}

// NewPMPBank returns a PMP bank with n disabled entries.
func NewPMPBank(n int) *PMPBank {
	return &PMPBank{
		entries: make([]PMPEntry, n),
	}
}

// Count returns the number of implemented entries.
func (p *PMPBank) Count() int {
	return len(p.entries)
}

// Disable turns off entry i.
func (p *PMPBank) Disable(i int) error {
	if i < 0 || i >= len(p.entries) {
		return fmt.Errorf("invalid PMP entry %d", i)
	}

	p.entries[i] = PMPEntry{}

	return nil
}

// Apply programs regions starting at entry 0, refusing the
// configuration if any entry is still enabled or the policy exceeds the
// bank.
func (p *PMPBank) Apply(regions []domain.Region) error {
	if len(regions) > len(p.entries) {
		return fmt.Errorf("policy exceeds %d PMP entries", len(p.entries))
	}

	for i, e := range p.entries {
		if e.Enabled {
			return fmt.Errorf("PMP entry %d still enabled", i)
		}
	}

	for i, r := range regions {
		p.entries[i] = PMPEntry{
			Region:  r,
			Enabled: true,
		}
	}

	return nil
}

// Enabled returns the programmed policy, in entry order.
func (p *PMPBank) Enabled() (regions []domain.Region) {
	for _, e := range p.entries {
		if e.Enabled {
			regions = append(regions, e.Region)
		}
	}

	return
}
