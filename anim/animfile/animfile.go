// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package animfile loads animation sets from YAML documents.
//
// A document looks like:
//
//	palette: ["#000000", "#FF0000"]
//	heat_track:
//	  keyframes: [{time: 0, color: 0}, {time: 1000, color: 1}]
//	animations:
//	  - name: flash
//	    duration: 500
//	    special_color: face
//	    event: on_face
//	    tracks:
//	      - led: 0
//	        keyframes: [{time: 0, color: 1}, {time: 500, color: 0}]
package animfile

import (
	"io"
	"os"

	"github.com/danjacques/pixeldie/anim"
	"github.com/danjacques/pixeldie/pixel"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type fileKeyframe struct {
	Time  int `yaml:"time"`
	Color int `yaml:"color"`
}

type fileTrack struct {
	LED       int            `yaml:"led"`
	Keyframes []fileKeyframe `yaml:"keyframes"`
}

type fileAnimation struct {
	Name         string      `yaml:"name"`
	Duration     int         `yaml:"duration"`
	SpecialColor string      `yaml:"special_color"`
	Event        string      `yaml:"event"`
	Tracks       []fileTrack `yaml:"tracks"`
}

type fileSet struct {
	Palette    []string        `yaml:"palette"`
	HeatTrack  *fileTrack      `yaml:"heat_track"`
	Animations []fileAnimation `yaml:"animations"`
}

// Load decodes an animation set from r and validates it against a board
// with ledCount LEDs.
func Load(r io.Reader, ledCount int) (*anim.Set, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fs fileSet
	if err := dec.Decode(&fs); err != nil {
		return nil, errors.Wrap(err, "decoding animation set")
	}

	set, err := fs.toSet()
	if err != nil {
		return nil, err
	}
	if err := set.Validate(ledCount); err != nil {
		return nil, errors.Wrap(err, "invalid animation set")
	}
	return set, nil
}

// LoadFile loads an animation set from the YAML file at path.
func LoadFile(path string, ledCount int) (*anim.Set, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	set, err := Load(fd, ledCount)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	return set, nil
}

// ParseColor parses a hex colour string such as "#FF8800".
func ParseColor(v string) (pixel.P, error) {
	c, err := colorful.Hex(v)
	if err != nil {
		return pixel.Black, errors.Wrapf(err, "invalid colour %q", v)
	}
	r, g, b := c.RGB255()
	return pixel.P{Red: r, Green: g, Blue: b}, nil
}

func (fs *fileSet) toSet() (*anim.Set, error) {
	set := anim.Set{
		Palette:    make([]pixel.P, len(fs.Palette)),
		Animations: make([]*anim.Animation, len(fs.Animations)),
	}

	for i, v := range fs.Palette {
		p, err := ParseColor(v)
		if err != nil {
			return nil, errors.Wrapf(err, "palette entry %d", i)
		}
		set.Palette[i] = p
	}

	if fs.HeatTrack != nil {
		t := fs.HeatTrack.toTrack()
		set.HeatTrack = &t
	}

	for i := range fs.Animations {
		fa := &fs.Animations[i]
		a, err := fa.toAnimation()
		if err != nil {
			return nil, errors.Wrapf(err, "animation %d (%q)", i, fa.Name)
		}
		set.Animations[i] = a
	}
	return &set, nil
}

func (fa *fileAnimation) toAnimation() (*anim.Animation, error) {
	sc, err := anim.ParseSpecialColor(fa.SpecialColor)
	if err != nil {
		return nil, err
	}
	evt, err := anim.ParseEvent(fa.Event)
	if err != nil {
		return nil, err
	}

	a := anim.Animation{
		Name:         fa.Name,
		Duration:     fa.Duration,
		SpecialColor: sc,
		Event:        evt,
		Tracks:       make([]anim.Track, len(fa.Tracks)),
	}
	for i := range fa.Tracks {
		a.Tracks[i] = fa.Tracks[i].toTrack()
	}
	return &a, nil
}

func (ft *fileTrack) toTrack() anim.Track {
	t := anim.Track{
		LEDIndex:  ft.LED,
		Keyframes: make([]anim.Keyframe, len(ft.Keyframes)),
	}
	for i, kf := range ft.Keyframes {
		t.Keyframes[i] = anim.Keyframe{Time: kf.Time, ColorIndex: kf.Color}
	}
	return t
}
