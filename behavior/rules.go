// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package behavior

import (
	"io"
	"os"
	"strconv"

	"github.com/danjacques/pixeldie/anim"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A rules document looks like:
//
//	rules:
//	  - event: rolling
//	    actions:
//	      - play_animation: {index: 2, face: current}
//	      - play_sound: {clip: 0x0102}
//	  - event: on_face
//	    face: 19
//	    actions:
//	      - play_animation: {index: 5}
type fileRules struct {
	Rules []fileRule `yaml:"rules"`
}

type fileRule struct {
	Event   string       `yaml:"event"`
	Face    *faceValue   `yaml:"face"`
	Actions []fileAction `yaml:"actions"`
}

type fileAction struct {
	PlayAnimation *struct {
		Index int        `yaml:"index"`
		Face  *faceValue `yaml:"face"`
	} `yaml:"play_animation"`
	PlaySound *struct {
		Clip uint32 `yaml:"clip"`
	} `yaml:"play_sound"`
}

// faceValue is a face number, or "current"/"any" for -1.
type faceValue int

func (fv *faceValue) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "current", "any":
		*fv = -1
		return nil
	}

	v, err := strconv.Atoi(value.Value)
	if err != nil || v < 0 {
		return errors.Errorf("line %d: invalid face %q", value.Line, value.Value)
	}
	*fv = faceValue(v)
	return nil
}

func (fv *faceValue) resolve(def int) int {
	if fv == nil {
		return def
	}
	return int(*fv)
}

// LoadRules loads a rules document from r.
func LoadRules(r io.Reader) ([]Rule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fr fileRules
	if err := dec.Decode(&fr); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "decoding rules")
	}

	rules := make([]Rule, len(fr.Rules))
	for i, r := range fr.Rules {
		evt, err := anim.ParseEvent(r.Event)
		if err != nil {
			return nil, errors.Wrapf(err, "rule #%d", i)
		}
		if evt == anim.EventNone {
			return nil, errors.Errorf("rule #%d has no event", i)
		}

		rule := Rule{
			Event:   evt,
			Face:    r.Face.resolve(AnyFace),
			Actions: make([]Action, 0, len(r.Actions)),
		}
		for j, a := range r.Actions {
			switch {
			case a.PlayAnimation != nil && a.PlaySound != nil:
				return nil, errors.Errorf("rule #%d action #%d has more than one action", i, j)
			case a.PlayAnimation != nil:
				rule.Actions = append(rule.Actions, &PlayAnimation{
					Index: a.PlayAnimation.Index,
					Face:  a.PlayAnimation.Face.resolve(CurrentFace),
				})
			case a.PlaySound != nil:
				rule.Actions = append(rule.Actions, &PlaySound{ClipID: a.PlaySound.Clip})
			default:
				return nil, errors.Errorf("rule #%d action #%d is empty", i, j)
			}
		}
		rules[i] = rule
	}
	return rules, nil
}

// LoadRulesFile loads a rules document from the file at path.
func LoadRulesFile(path string) ([]Rule, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	rules, err := LoadRules(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	return rules, nil
}
