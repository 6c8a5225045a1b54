// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"testing"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/monitor"
)

func TestPMPBank(t *testing.T) {
	p := NewPMPBank(4)

	if p.Count() != 4 {
		t.Errorf("count is %d, expected 4", p.Count())
	}

	policy := []domain.Region{
		{Addr: 0x1000, R: true, A: domain.PMP_A_OFF},
		{Addr: 0x2000, R: true, X: true, A: domain.PMP_A_TOR},
	}

	if err := p.Apply(policy); err != nil {
		t.Fatal(err)
	}

	if n := len(p.Enabled()); n != 2 {
		t.Fatalf("%d entries enabled, expected 2", n)
	}

	// entries are not atomically replaceable, a policy can only be
	// applied on a fully disabled bank
	if err := p.Apply(policy); err == nil {
		t.Errorf("apply on enabled bank accepted")
	}

	for i := 0; i < p.Count(); i++ {
		if err := p.Disable(i); err != nil {
			t.Fatal(err)
		}
	}

	if err := p.Apply(policy); err != nil {
		t.Fatal(err)
	}

	if err := p.Disable(4); err == nil {
		t.Errorf("out of range disable accepted")
	}

	if err := NewPMPBank(1).Apply(policy); err == nil {
		t.Errorf("oversized policy accepted")
	}
}

func TestCSRFile(t *testing.T) {
	m := NewMachine(1, 4)
	h := m.Hart(0)

	h.SetCSR(monitor.SATP, 0x123)

	bank := m.Scratch(0).CSR

	if v := bank.Read(monitor.SATP); v != 0x123 {
		t.Errorf("satp is %#x, expected 0x123", v)
	}

	if prev := bank.Swap(monitor.SATP, 0x456); prev != 0x123 {
		t.Errorf("swap returned %#x, expected 0x123", prev)
	}

	if v := bank.Read(monitor.SATP); v != 0x456 {
		t.Errorf("satp is %#x, expected 0x456", v)
	}
}

func TestEvents(t *testing.T) {
	m := NewMachine(2, 4)

	var started []int

	m.OnStart = func(hartid int, d *domain.Domain, addr uint64, mode int, arg1 uint64) {
		started = append(started, hartid)
	}

	s := m.Scratch(1)

	s.HSM.Start(&domain.Domain{Name: "d"}, 0, 0x80000000, domain.PrivS, 0)
	s.HSM.Stop()
	s.Jump(1, 0x80200000, domain.PrivS, 7)

	events := m.Events()

	if len(events) != 3 {
		t.Fatalf("recorded %d events, expected 3", len(events))
	}

	if ev, ok := events[0].(StartEvent); !ok || ev.TargetHart != 0 || ev.Domain != "d" {
		t.Errorf("unexpected first event %v", events[0])
	}

	if ev, ok := events[1].(StopEvent); !ok || ev.Hart != 1 {
		t.Errorf("unexpected second event %v", events[1])
	}

	if ev, ok := events[2].(JumpEvent); !ok || ev.Hart != 1 || ev.Arg1 != 7 {
		t.Errorf("unexpected third event %v", events[2])
	}

	if len(started) != 1 || started[0] != 0 {
		t.Errorf("start hook observed %v", started)
	}

	if f := m.Hart(1).Frame(); f.A0() != 1 || f.A1() != 7 || f.MEPC != 0x80200000 {
		t.Errorf("jump entry state a0:%d a1:%d mepc:%#x", f.A0(), f.A1(), f.MEPC)
	}

	m.ClearEvents()

	if len(m.Events()) != 0 {
		t.Errorf("events not cleared")
	}
}
