// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build sifive_u
// +build sifive_u

package main

import (
	"embed"
	"fmt"
	"log"
	"os"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/tamago/board/qemu/sifive_u"
	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/GoSBI/cmd"
	"github.com/usbarmory/GoSBI/mem"
)

// This example embeds the domain payload ELF binaries within the
// firmware executable, using Go embed package (see assets/README.md for
// their preparation).

//go:embed assets
var assets embed.FS

//go:linkname ramStart runtime/goos.RamStart
var ramStart uint64 = mem.FirmwareStart

//go:linkname ramSize runtime/goos.RamSize
var ramSize uint64 = mem.FirmwareSize

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	mem.Init()
	dma.Init(mem.FirmwareDMAStart, mem.FirmwareDMASize)

	cmd.Banner = fmt.Sprintf("%s/%s (%s) • SBI Domain Context Manager (M-mode)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func main() {
	if err := configure(); err != nil {
		log.Fatalf("DCM could not configure domains, %v", err)
	}

	cmd.SerialConsole(sifive_u.UART0)

	log.Printf("DCM says goodbye")
}
