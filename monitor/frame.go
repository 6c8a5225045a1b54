// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package monitor

// General purpose register indices within a trap frame.
const (
	RA = 1
	SP = 2
	A0 = 10
	A1 = 11
	A6 = 16
	A7 = 17
)

// TrapRegs is a machine-mode trap frame, the saved general purpose
// register file plus mepc/mstatus used to resume an interrupted context.
//
// The live frame of a hart is located by the trap entry vector relative
// to mscratch, its contents are popped by the trap return path.
type TrapRegs struct {
	// X is the general purpose register file (X[0] is hardwired zero).
	X [32]uint64

	// MEPC is the program counter the trap return path resumes at.
	MEPC uint64

	// MSTATUS holds the privilege and interrupt state the trap return
	// path restores.
	MSTATUS uint64
}

// A0 returns function argument register a0 (x10).
func (r *TrapRegs) A0() uint64 { return r.X[A0] }

// A1 returns function argument register a1 (x11).
func (r *TrapRegs) A1() uint64 { return r.X[A1] }

// A6 returns function argument register a6 (x16), the SBI function ID.
func (r *TrapRegs) A6() uint64 { return r.X[A6] }

// A7 returns function argument register a7 (x17), the SBI extension ID.
func (r *TrapRegs) A7() uint64 { return r.X[A7] }

// SetRet sets the SBI ecall return values (a0 holds the return code, a1
// the return value).
func (r *TrapRegs) SetRet(code int64, val uint64) {
	r.X[A0] = uint64(code)
	r.X[A1] = val
}
