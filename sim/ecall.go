// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"fmt"

	"github.com/usbarmory/GoSBI/monitor"
)

// Ecall models an ecall trap raised by the context running on hart i,
// loading the SBI calling convention registers in the live trap frame
// and dispatching it to the manager.
func (m *Machine) Ecall(mgr *monitor.Manager, i int, ext, fid, a0, a1 uint64) error {
	h := m.Hart(i)

	if h == nil {
		return fmt.Errorf("invalid hart index %d", i)
	}

	h.frame.X[monitor.A7] = ext
	h.frame.X[monitor.A6] = fid
	h.frame.X[monitor.A0] = a0
	h.frame.X[monitor.A1] = a1

	return mgr.Handle(h.scratch)
}
