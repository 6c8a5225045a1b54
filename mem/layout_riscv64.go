// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"github.com/usbarmory/tamago/dma"
)

var (
	SecureRegion *dma.Region
	RootRegion   *dma.Region
)

// Init reserves the domain payload regions.
func Init() {
	SecureRegion, _ = dma.NewRegion(SecureStart, SecureSize, false)
	SecureRegion.Reserve(SecureSize, 0)

	RootRegion, _ = dma.NewRegion(RootStart, RootSize, false)
	RootRegion.Reserve(RootSize, 0)
}
