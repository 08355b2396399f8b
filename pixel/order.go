// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixel

import (
	"strings"

	"github.com/pkg/errors"
)

// ChannelOrder is the order in which a device expects a pixel's colour
// channels on the wire.
//
// The numbering matches the conventional colour order enumeration:
//
//	RGB=0, RBG=1, GBR=2, GRB=3, BGR=4, BRG=5
type ChannelOrder uint8

const (
	// OrderRGB sends red, green, then blue.
	OrderRGB ChannelOrder = 0
	// OrderRBG sends red, blue, then green.
	OrderRBG ChannelOrder = 1
	// OrderGBR sends green, blue, then red.
	OrderGBR ChannelOrder = 2
	// OrderGRB sends green, red, then blue.
	OrderGRB ChannelOrder = 3
	// OrderBGR sends blue, green, then red.
	OrderBGR ChannelOrder = 4
	// OrderBRG sends blue, red, then green. This is the die's wiring.
	OrderBRG ChannelOrder = 5
)

// channelOffsets holds, for each ChannelOrder, the byte offset of the red,
// green, and blue channels within a pixel.
var channelOffsets = [...]struct {
	name             string
	red, green, blue int
}{
	OrderRGB: {"RGB", 0, 1, 2},
	OrderRBG: {"RBG", 0, 2, 1},
	OrderGBR: {"GBR", 2, 0, 1},
	OrderGRB: {"GRB", 1, 0, 2},
	OrderBGR: {"BGR", 2, 1, 0},
	OrderBRG: {"BRG", 1, 2, 0},
}

func (o ChannelOrder) String() string {
	if !o.Valid() {
		return "INVALID"
	}
	return channelOffsets[o].name
}

// Valid returns true if o is a known ChannelOrder.
func (o ChannelOrder) Valid() bool { return int(o) < len(channelOffsets) }

// ParseChannelOrder parses a channel order name such as "BRG".
func ParseChannelOrder(v string) (ChannelOrder, error) {
	v = strings.ToUpper(v)
	for i, e := range channelOffsets {
		if e.name == v {
			return ChannelOrder(i), nil
		}
	}
	return 0, errors.Errorf("unknown channel order %q", v)
}

// Set implements pflag.Value.
func (o *ChannelOrder) Set(v string) error {
	co, err := ParseChannelOrder(v)
	if err != nil {
		return err
	}
	*o = co
	return nil
}

// Type implements pflag.Value.
func (o *ChannelOrder) Type() string { return "pixel.ChannelOrder" }

func (o ChannelOrder) offsets() (r, g, b int) {
	e := channelOffsets[o]
	return e.red, e.green, e.blue
}
