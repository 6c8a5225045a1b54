// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor

import (
	"github.com/usbarmory/GoTEE/syscall"

	"github.com/usbarmory/GoSBI/sbi"
	"github.com/usbarmory/GoSBI/util"
)

// ConsoleOutput receives domain console output issued through putchar
// and write calls, it can be overridden to redirect or colorize logs.
var ConsoleOutput = util.BufferedStdoutLog

// Handle services an ecall trapped from the domain running on s,
// dispatching SBI extension calls, and GoTEE API calls for domains
// built against its runtime (discriminated by a zero a7).
//
// The return values are delivered to the context live on the hart once
// dispatching completes: when a DCM call switched contexts that is the
// resumed context, whose own pending call is thereby completed. A fresh
// context entered through chain startup receives nothing as the mode
// switch installed its entry state.
func (m *Manager) Handle(s *Scratch) (err error) {
	var val uint64

	frame := s.Frame
	ctx := s.ctx

	if ctx == nil {
		return sbi.ErrInvalidParam
	}

	secure := ctx.dom != m.registry.Root()

	switch frame.A7() {
	case 0:
		// GoTEE API
		switch frame.A0() {
		case syscall.SYS_WRITE:
			ConsoleOutput(byte(frame.A1()), secure)
			frame.MEPC += 4
			return
		case syscall.SYS_EXIT:
			err = m.Exit(s)
		default:
			err = sbi.ErrNotSupported
		}
	case sbi.EXT_LEGACY_PUTCHAR:
		ConsoleOutput(byte(frame.A0()), secure)
	case sbi.EXT_BASE:
		val, err = m.base(frame)
	case sbi.EXT_DCM:
		switch frame.A6() {
		case sbi.DCM_ENTER:
			err = m.Enter(s, m.registry.ByIndex(int(frame.A0())))
		case sbi.DCM_EXIT:
			err = m.Exit(s)
		default:
			err = sbi.ErrNotSupported
		}
	default:
		err = sbi.ErrNotSupported
	}

	if c := s.ctx; c != ctx && !c.initialized {
		return
	}

	frame.SetRet(sbi.Code(err), val)

	// skip the trapping ecall instruction
	frame.MEPC += 4

	return
}

// base services the SBI base extension.
func (m *Manager) base(frame *TrapRegs) (val uint64, err error) {
	switch frame.A6() {
	case sbi.BASE_GET_SPEC_VERSION:
		val = sbi.SpecVersion
	case sbi.BASE_GET_IMPL_ID:
		val = sbi.ImplID
	case sbi.BASE_GET_IMPL_VERSION:
		val = 1
	case sbi.BASE_PROBE_EXTENSION:
		switch frame.A0() {
		case sbi.EXT_BASE, sbi.EXT_LEGACY_PUTCHAR, sbi.EXT_DCM:
			val = 1
		}
	case sbi.BASE_GET_MVENDORID, sbi.BASE_GET_MARCHID, sbi.BASE_GET_MIMPID:
		// not exposed
	default:
		err = sbi.ErrNotSupported
	}

	return
}
