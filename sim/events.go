// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/usbarmory/GoSBI/domain"
)

// Event is a recorded machine level side effect of the Domain Context
// Manager (HSM requests and privilege mode switches).
type Event interface {
	fmt.Stringer
}

// StartEvent records an HSM hart start request.
type StartEvent struct {
	// Hart is the requesting hart index.
	Hart int
	// Domain is the name of the domain being started.
	Domain string
	// TargetHart is the hart index being started.
	TargetHart int
	// Addr is the entry program counter.
	Addr uint64
	// Mode is the entry privilege level.
	Mode int
	// Arg1 is the boot argument.
	Arg1 uint64
}

func (e StartEvent) String() string {
	return fmt.Sprintf("hart %d: start hart %d for %s addr:%#x mode:%s arg1:%#x",
		e.Hart, e.TargetHart, e.Domain, e.Addr, domain.ModeName(e.Mode), e.Arg1)
}

// StopEvent records the parking of a hart through HSM.
type StopEvent struct {
	// Hart is the parked hart index.
	Hart int
}

func (e StopEvent) String() string {
	return fmt.Sprintf("hart %d: stop", e.Hart)
}

// JumpEvent records a machine to lower privilege mode switch.
type JumpEvent struct {
	// Hart is the switching hart index.
	Hart int
	// Addr is the entry program counter.
	Addr uint64
	// Mode is the entry privilege level.
	Mode int
	// Arg1 is the boot argument.
	Arg1 uint64
}

func (e JumpEvent) String() string {
	return fmt.Sprintf("hart %d: jump addr:%#x mode:%s arg1:%#x",
		e.Hart, e.Addr, domain.ModeName(e.Mode), e.Arg1)
}
