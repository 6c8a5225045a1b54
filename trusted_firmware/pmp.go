// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build sifive_u
// +build sifive_u

package main

import (
	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/mem"
)

const (
	fwStart = mem.FirmwareStart
	fwEnd   = mem.FirmwareStart + mem.FirmwareSize + mem.FirmwareDMASize
)

// rootPolicy grants the non-secure OS full peripheral access and its
// own RAM, while protecting the firmware and the secure payload.
func rootPolicy() []domain.Region {
	return []domain.Region{
		// grant peripheral access
		{Addr: 0x00000000, R: true, W: true, X: true, A: domain.PMP_A_OFF},
		// grant non-secure OS RAM
		{Addr: (mem.RootStart + mem.RootSize) >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},

		// TODO: IOPMP
	}
}

// securePolicy grants the secure domain full peripheral access and
// every payload region, while protecting the firmware.
func securePolicy() []domain.Region {
	return []domain.Region{
		// grant peripheral access
		{Addr: 0x00000000, R: true, W: true, X: true, A: domain.PMP_A_OFF},
		{Addr: fwStart >> 2, R: true, W: true, X: true, A: domain.PMP_A_TOR},

		// protect the firmware
		{Addr: fwStart >> 2, R: false, W: false, X: false, A: domain.PMP_A_OFF},
		{Addr: fwEnd >> 2, R: false, W: false, X: false, A: domain.PMP_A_TOR},
	}
}
