// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build sifive_u
// +build sifive_u

package main

import (
	"fmt"
	"log"

	"github.com/usbarmory/armory-boot/exec"
	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoSBI/cmd"
	"github.com/usbarmory/GoSBI/domain"
	"github.com/usbarmory/GoSBI/mem"
	"github.com/usbarmory/GoSBI/monitor"
)

// loadPayload loads a domain payload ELF within its memory region,
// returning its entry point.
func loadPayload(name string, region *dma.Region) (entry uint64, err error) {
	elf, err := assets.ReadFile("assets/" + name)

	if err != nil {
		return 0, fmt.Errorf("missing payload %s, %v", name, err)
	}

	image := &exec.ELFImage{
		Region: region,
		ELF:    elf,
	}

	if err = image.Load(); err != nil {
		return
	}

	entry = uint64(image.Entry())

	log.Printf("DCM loaded %s addr:%#x size:%d entry:%#x", name, region.Start, len(elf), entry)

	return
}

// configure loads the domain payloads, builds the domain registry and
// initializes context management for the machine harts.
func configure() (err error) {
	rootEntry, err := loadPayload("nonsecure_os.elf", mem.RootRegion)

	if err != nil {
		return
	}

	secureEntry, err := loadPayload("secure_os.elf", mem.SecureRegion)

	if err != nil {
		return
	}

	root := &domain.Domain{
		Name:          "root",
		PossibleHarts: 1 << mHart,
		BootHart:      mHart,
		NextAddr:      rootEntry,
		NextMode:      domain.PrivS,
		PMP:           rootPolicy(),
	}

	reg, err := domain.NewRegistry(root)

	if err != nil {
		return
	}

	secure := &domain.Domain{
		Name:          "secure",
		PossibleHarts: 1 << mHart,
		AssignedHarts: 1 << mHart,
		BootHart:      mHart,
		NextAddr:      secureEntry,
		NextMode:      domain.PrivS,
		CtxMgmt:       true,
		PMP:           securePolicy(),
	}

	if err = reg.Add(secure); err != nil {
		return
	}

	harts := make([]*monitor.Scratch, mHart+1)
	harts[mHart] = newScratch(mHart)

	dcm, err := monitor.Init(reg, harts)

	if err != nil {
		return
	}

	cmd.DCM = dcm
	cmd.Harts = harts
	cmd.ConsoleHart = mHart

	return
}
