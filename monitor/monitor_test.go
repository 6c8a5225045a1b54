// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/hart"
	"github.com/usbarmory/GoSBI/monitor"
	"github.com/usbarmory/GoSBI/sbi"
	"github.com/usbarmory/GoSBI/sim"
)

const (
	rootAddr   = 0x80000000
	secureAddr = 0x80200000
	secureArg  = 0x42
)

func rootPolicy() []domain.Region {
	return []domain.Region{
		{Addr: 0x00000000, R: true, W: true, X: true, A: domain.PMP_A_OFF},
		{Addr: 0x88000000 >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},
	}
}

func securePolicy() []domain.Region {
	return []domain.Region{
		{Addr: secureAddr >> 2, R: true, W: true, X: true, A: domain.PMP_A_OFF},
		{Addr: 0x80400000 >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},
	}
}

func testRoot(harts hart.Mask) *domain.Domain {
	return &domain.Domain{
		Name:          "root",
		PossibleHarts: harts,
		AssignedHarts: harts,
		BootHart:      0,
		NextAddr:      rootAddr,
		NextMode:      domain.PrivS,
		PMP:           rootPolicy(),
	}
}

func testSecure(possible, assigned hart.Mask) *domain.Domain {
	return &domain.Domain{
		Name:          "secure",
		PossibleHarts: possible,
		AssignedHarts: assigned,
		BootHart:      0,
		NextAddr:      secureAddr,
		NextMode:      domain.PrivS,
		NextArg1:      secureArg,
		CtxMgmt:       true,
		PMP:           securePolicy(),
	}
}

func testSetup(t *testing.T, harts int, dom ...*domain.Domain) (*sim.Machine, *domain.Registry, *monitor.Manager) {
	t.Helper()

	mask := hart.Mask(1<<harts - 1)

	reg, err := domain.NewRegistry(testRoot(mask))

	if err != nil {
		t.Fatal(err)
	}

	for _, d := range dom {
		if err = reg.Add(d); err != nil {
			t.Fatal(err)
		}
	}

	mach := sim.NewMachine(harts, 8)

	mgr, err := monitor.Init(reg, mach.Scratches())

	if err != nil {
		t.Fatal(err)
	}

	return mach, reg, mgr
}

func TestInitChains(t *testing.T) {
	mach, reg, mgr := testSetup(t, 1, testSecure(0b1, 0b1))

	root := reg.Root()
	secure := reg.ByName("secure")

	rootCtx := mgr.DomainContext(root, 0)
	secureCtx := mgr.DomainContext(secure, 0)

	if rootCtx == nil || secureCtx == nil {
		t.Fatal("missing context slot after init")
	}

	if ctx := mach.Scratch(0).Context(); ctx != rootCtx {
		t.Errorf("initial context %v, expected root slot", ctx.Domain())
	}

	if rootCtx.Next() != secureCtx {
		t.Errorf("root slot does not chain to secure slot")
	}

	if secureCtx.Next() != nil {
		t.Errorf("secure slot is not the chain tail")
	}

	if rootCtx.Initialized() || secureCtx.Initialized() {
		t.Errorf("fresh slots marked initialized")
	}

	if rootCtx.Domain() != root || secureCtx.Domain() != secure {
		t.Errorf("slot domain back-references are wrong")
	}

	// the root environment owns the hart
	if d := reg.HartDomain(0); d != root {
		t.Errorf("hart 0 assigned to %v, expected root", d)
	}

	if !root.AssignedHarts.IsSet(0) || !secure.AssignedHarts.Empty() {
		t.Errorf("assignment masks are wrong: root %v secure %v",
			root.AssignedHarts, secure.AssignedHarts)
	}
}

func TestInitTwice(t *testing.T) {
	mach, reg, _ := testSetup(t, 1, testSecure(0b1, 0b1))

	if _, err := monitor.Init(reg, mach.Scratches()); !errors.Is(err, sbi.ErrInvalidParam) {
		t.Errorf("second init returned %v, expected %v", err, sbi.ErrInvalidParam)
	}
}

func TestInitUnassignedBootHart(t *testing.T) {
	reg, err := domain.NewRegistry(testRoot(0b111))

	if err != nil {
		t.Fatal(err)
	}

	secure := testSecure(0b111, 0b001)
	secure.BootHart = 2

	if err = reg.Add(secure); err != nil {
		t.Fatal(err)
	}

	mach := sim.NewMachine(3, 8)

	if _, err := monitor.Init(reg, mach.Scratches()); !errors.Is(err, sbi.ErrInvalidParam) {
		t.Errorf("init returned %v, expected %v", err, sbi.ErrInvalidParam)
	}
}

func TestInitOrphanHart(t *testing.T) {
	// hart 1 belongs to no bootable domain
	reg, err := domain.NewRegistry(testRoot(0b01))

	if err != nil {
		t.Fatal(err)
	}

	if err = reg.Add(testSecure(0b11, 0b01)); err != nil {
		t.Fatal(err)
	}

	mach := sim.NewMachine(2, 8)

	if _, err := monitor.Init(reg, mach.Scratches()); !errors.Is(err, sbi.ErrInvalidParam) {
		t.Errorf("init returned %v, expected %v", err, sbi.ErrInvalidParam)
	}
}

func TestBootChainStartup(t *testing.T) {
	mach, reg, mgr := testSetup(t, 1, testSecure(0b1, 0b1))

	s := mach.Scratch(0)

	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	// the fresh secure context is started through a mode switch
	expected := []sim.Event{
		sim.JumpEvent{Hart: 0, Addr: secureAddr, Mode: domain.PrivS, Arg1: secureArg},
	}

	if diff := cmp.Diff(expected, mach.Events()); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}

	frame := mach.Hart(0).Frame()

	if frame.MEPC != secureAddr || frame.A0() != 0 || frame.A1() != secureArg {
		t.Errorf("entry state mepc:%#x a0:%d a1:%#x", frame.MEPC, frame.A0(), frame.A1())
	}

	if d := reg.HartDomain(0); d.Name != "secure" {
		t.Errorf("hart 0 assigned to %v, expected secure", d)
	}

	// the root snapshot is now resumable
	if !mgr.DomainContext(reg.Root(), 0).Initialized() {
		t.Errorf("root slot not initialized after first exit")
	}

	if diff := cmp.Diff(securePolicy(), mach.Hart(0).PMP().Enabled()); diff != "" {
		t.Errorf("PMP mismatch (-want +got):\n%s", diff)
	}
}

func TestEnterExitRoundTrip(t *testing.T) {
	mach, reg, mgr := testSetup(t, 1, testSecure(0b1, 0b1))

	s := mach.Scratch(0)
	h := mach.Hart(0)
	secure := reg.ByName("secure")

	// drive secure through its first start, then back to root
	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	if d := reg.HartDomain(0); d != reg.Root() {
		t.Fatalf("hart 0 assigned to %v, expected root", d)
	}

	// preload sentinels in the caller state
	for c := monitor.CSR(0); c < monitor.NumCSR; c++ {
		h.SetCSR(c, 0x5000+uint64(c))
	}

	for i := 1; i < 32; i++ {
		h.Frame().X[i] = 0xa500 + uint64(i)
	}

	h.Frame().MEPC = 0x801234
	h.Frame().MSTATUS = 0x8000000000141800

	caller := *h.Frame()

	if err := mgr.Enter(s, secure); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(securePolicy(), h.PMP().Enabled()); diff != "" {
		t.Errorf("PMP mismatch after enter (-want +got):\n%s", diff)
	}

	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(caller, *h.Frame()); diff != "" {
		t.Errorf("trap frame mismatch after round trip (-want +got):\n%s", diff)
	}

	for c := monitor.CSR(0); c < monitor.NumCSR; c++ {
		if v := s.CSR.Read(c); v != 0x5000+uint64(c) {
			t.Errorf("%v is %#x, expected %#x", c, v, 0x5000+uint64(c))
		}
	}

	if diff := cmp.Diff(rootPolicy(), h.PMP().Enabled()); diff != "" {
		t.Errorf("PMP mismatch after exit (-want +got):\n%s", diff)
	}
}

func TestEnterInvalid(t *testing.T) {
	mach, reg, mgr := testSetup(t, 1, testSecure(0b1, 0b1), &domain.Domain{
		Name:          "forever",
		PossibleHarts: 0b1,
		AssignedHarts: 0b1,
		NextAddr:      0x88000000,
		NextMode:      domain.PrivS,
	})

	s := mach.Scratch(0)
	frame := *mach.Hart(0).Frame()

	for _, tt := range []struct {
		name string
		dom  *domain.Domain
	}{
		{"out of range", nil},
		{"context management disabled", reg.ByName("forever")},
		{"uninitialized target", reg.ByName("secure")},
		{"current domain", reg.Root()},
	} {
		if err := mgr.Enter(s, tt.dom); !errors.Is(err, sbi.ErrInvalidParam) {
			t.Errorf("%s: enter returned %v, expected %v", tt.name, err, sbi.ErrInvalidParam)
		}
	}

	// failed enters must not switch any state
	if len(mach.Events()) != 0 {
		t.Errorf("unexpected machine events %v", mach.Events())
	}

	if d := reg.HartDomain(0); d != reg.Root() {
		t.Errorf("hart 0 assigned to %v, expected root", d)
	}

	if len(mach.Hart(0).PMP().Enabled()) != 0 {
		t.Errorf("PMP reprogrammed by failed enter")
	}

	if diff := cmp.Diff(frame, *mach.Hart(0).Frame()); diff != "" {
		t.Errorf("trap frame modified by failed enter (-want +got):\n%s", diff)
	}
}

func TestEnterPendingExternalInterrupt(t *testing.T) {
	mach, reg, mgr := testSetup(t, 1, testSecure(0b1, 0b1))

	s := mach.Scratch(0)

	// initialize the secure context
	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Exit(s); err != nil {
		t.Fatal(err)
	}

	mach.Hart(0).SetCSR(monitor.SIP, monitor.SIP_SEIP)

	if err := mgr.Enter(s, reg.ByName("secure")); !errors.Is(err, sbi.ErrDenied) {
		t.Errorf("enter returned %v, expected %v", err, sbi.ErrDenied)
	}
}

func TestExitNoSuccessor(t *testing.T) {
	// no context managed domains, the chain is empty
	mach, _, mgr := testSetup(t, 1)

	if err := mgr.Exit(mach.Scratch(0)); !errors.Is(err, sbi.ErrInvalidParam) {
		t.Errorf("exit returned %v, expected %v", err, sbi.ErrInvalidParam)
	}
}

func TestMultiHartStartup(t *testing.T) {
	mach, reg, mgr := testSetup(t, 2, testSecure(0b11, 0b01))

	s0 := mach.Scratch(0)
	s1 := mach.Scratch(1)

	// hart 0 reaches the secure context first but cannot start it
	// alone, it parks awaiting hart 1
	if err := mgr.Exit(s0); err != nil {
		t.Fatal(err)
	}

	// hart 1 completes the assignment and starts the boot hart,
	// parking itself for the secure domain to start it
	if err := mgr.Exit(s1); err != nil {
		t.Fatal(err)
	}

	expected := []sim.Event{
		sim.StopEvent{Hart: 0},
		sim.StartEvent{Hart: 1, Domain: "secure", TargetHart: 0, Addr: secureAddr, Mode: domain.PrivS, Arg1: secureArg},
		sim.StopEvent{Hart: 1},
	}

	if diff := cmp.Diff(expected, mach.Events()); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}

	secure := reg.ByName("secure")

	if !secure.AssignedHarts.IsSet(0) || !secure.AssignedHarts.IsSet(1) {
		t.Errorf("secure assigned harts %v, expected {0,1}", secure.AssignedHarts)
	}

	// once woken by the secure domain through HSM, hart 1 exits with a
	// spent chain and falls back to the root slot
	if err := mgr.Exit(s1); err != nil {
		t.Fatal(err)
	}

	if d := reg.HartDomain(1); d != reg.Root() {
		t.Errorf("hart 1 assigned to %v, expected root", d)
	}

	if ctx := s1.Context(); ctx != mgr.DomainContext(reg.Root(), 1) {
		t.Errorf("hart 1 context is not the root slot")
	}
}

func TestSlotOwnership(t *testing.T) {
	_, reg, mgr := testSetup(t, 2, testSecure(0b11, 0b01))

	seen := make(map[*monitor.Context]string)

	for _, d := range reg.Domains() {
		for h := 0; h < 2; h++ {
			ctx := mgr.DomainContext(d, h)

			if ctx == nil {
				t.Fatalf("%s has no slot for hart %d", d, h)
			}

			if prev, ok := seen[ctx]; ok {
				t.Errorf("slot shared between %s and %s", prev, d)
			}

			seen[ctx] = d.Name
		}
	}
}
