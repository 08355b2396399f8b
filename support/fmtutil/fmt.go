// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Hex is a byte slice that renders as a hex-dumped string.
//
// It can be used for easy lazy hex dumping.
type Hex []byte

func (h Hex) String() string { return hex.Dump([]byte(h)) }

// HexSlice is a byte slice that renders as a sequence of hex bytes, instead
// of the default decimal bytes.
//
// Output as: "[4]byte{0x10, 0x20, 0x30, 0x40}"
type HexSlice []byte

func (hs HexSlice) String() string { return formatHexSlice(hs, len(hs)) }

// AbbrevHexSlice is a HexSlice that renders at most Max bytes, followed by an
// ellipsis if the slice was longer.
//
// It is used to keep log lines for whole LED frames readable.
type AbbrevHexSlice struct {
	Data []byte
	Max  int
}

func (a AbbrevHexSlice) String() string {
	limit := a.Max
	if limit <= 0 || limit > len(a.Data) {
		limit = len(a.Data)
	}
	return formatHexSlice(a.Data, limit)
}

func formatHexSlice(hs []byte, limit int) string {
	var sb bytes.Buffer
	sb.Grow((6 * limit) + 16) // 16 is more than we need for static content.
	fmt.Fprintf(&sb, "[%d]byte{", len(hs))
	for i, b := range hs[:limit] {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02X", b)
	}
	if limit < len(hs) {
		sb.WriteString(", ...")
	}
	sb.WriteString("}")
	return sb.String()
}
