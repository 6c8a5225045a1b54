// Copyright (c) The GoSBI authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package util provides console helpers shared by the GoSBI firmware
// frontends.
package util

import (
	"bytes"
	"os"

	"golang.org/x/term"
)

// Domain console output is accumulated per security tier and flushed on
// newline, avoiding interleaved logs as secure and non-secure contexts
// write simultaneously.

var secureOutput bytes.Buffer
var nonSecureOutput bytes.Buffer

const outputLimit = 1024
const flushChr = 0x0a // \n

func buffer(secure bool) *bytes.Buffer {
	if secure {
		return &secureOutput
	}

	return &nonSecureOutput
}

// BufferedStdoutLog accumulates domain console output on the standard
// output.
func BufferedStdoutLog(c byte, secure bool) {
	buf := buffer(secure)
	buf.WriteByte(c)

	if c == flushChr || buf.Len() > outputLimit {
		os.Stdout.Write(buf.Bytes())
		buf.Reset()
	}
}

// BufferedTermLog accumulates domain console output on a remote
// terminal, colored by security tier, as well as the standard output.
func BufferedTermLog(c byte, secure bool, t *term.Terminal) {
	var color []byte

	buf := buffer(secure)
	buf.WriteByte(c)

	if secure {
		color = t.Escape.Green
	} else {
		color = t.Escape.Red
	}

	if c == flushChr || buf.Len() > outputLimit {
		os.Stdout.Write(buf.Bytes())

		t.Write(color)
		t.Write(buf.Bytes())
		t.Write(t.Escape.Reset)

		buf.Reset()
	}
}
