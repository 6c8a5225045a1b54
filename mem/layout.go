// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mem describes the example memory layout of the GoSBI firmware
// and its domain payloads on the QEMU sifive_u machine.
package mem

// This example memory layout reserves the top of RAM for the firmware
// itself and dedicates a region to each domain payload.
const (
	// Domain Context Manager firmware
	FirmwareStart = 0x90000000
	FirmwareSize  = 0x07f00000 // 127MB

	// Firmware DMA (relocated to avoid conflicts with domain payloads)
	FirmwareDMAStart = 0x97f00000
	FirmwareDMASize  = 0x00100000 // 1MB

	// Secure domain payload
	SecureStart = 0x88000000
	SecureSize  = 0x04000000 // 64MB

	// Non-secure OS (root domain payload)
	RootStart = 0x80000000
	RootSize  = 0x08000000 // 128MB
)
