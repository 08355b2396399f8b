// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package message implements the die's packed wireless message codec and
// routes decoded messages to the die's subsystems.
//
// A message is a single type byte followed by a little-endian packed payload.
// Each message travels in its own datagram.
package message

import (
	"io"

	"github.com/danjacques/pixeldie/support/dataio"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	// MaxDataSize is the maximum size of a message's variable-length data.
	MaxDataSize = 100

	// AnyFace is the face value that matches every face in StopAnim.
	AnyFace = 0xFF
)

// Message is a general interface for a message.
type Message interface {
	// Type is the message type for this message.
	Type() Type

	// WriteContentTo writes a message's payload to w.
	//
	// WriteContentTo does not write the type byte.
	WriteContentTo(w io.Writer) error

	// LoadContentFrom reads a message's payload from r.
	//
	// LoadContentFrom does not load the type byte.
	LoadContentFrom(r io.Reader) error
}

// emptyMessage is embedded by messages with no payload.
type emptyMessage struct{}

func (emptyMessage) WriteContentTo(io.Writer) error  { return nil }
func (emptyMessage) LoadContentFrom(io.Reader) error { return nil }

// WhoAreYou asks a die to identify itself.
type WhoAreYou struct{ emptyMessage }

// Type implements Message.
func (*WhoAreYou) Type() Type { return TypeWhoAreYou }

// IAmADie is a die's reply to WhoAreYou.
type IAmADie struct {
	ID uint8
}

// Type implements Message.
func (*IAmADie) Type() Type { return TypeIAmADie }

// WriteContentTo implements Message.
func (msg *IAmADie) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *IAmADie) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// DieState reports the die's motion state and current face.
type DieState struct {
	State uint8
	Face  uint8
}

// Type implements Message.
func (*DieState) Type() Type { return TypeState }

// WriteContentTo implements Message.
func (msg *DieState) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *DieState) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// DebugLog carries a line of die log text.
//
// On the wire, Text is NULL-terminated and limited to MaxDataSize bytes,
// including the terminator. Longer text is truncated.
type DebugLog struct {
	Text string
}

// Type implements Message.
func (*DebugLog) Type() Type { return TypeDebugLog }

// WriteContentTo implements Message.
func (msg *DebugLog) WriteContentTo(w io.Writer) error {
	dw := dataio.MakeWriter(w)

	text := msg.Text
	if len(text) >= MaxDataSize {
		text = text[:MaxDataSize-1]
	}
	if _, err := dw.Write([]byte(text)); err != nil {
		return err
	}
	return dw.WriteByte(0x00)
}

// LoadContentFrom implements Message.
func (msg *DebugLog) LoadContentFrom(r io.Reader) error {
	dr := dataio.MakeReader(r)

	// Read byte-by-byte until we hit a NULL.
	text := make([]byte, 0, MaxDataSize)
	for {
		switch v, err := dr.ReadByte(); {
		case err != nil:
			return err
		case v == 0x00:
			msg.Text = string(text)
			return nil
		case len(text) == MaxDataSize-1:
			return errors.New("debug log text is not terminated")
		default:
			text = append(text, v)
		}
	}
}

// PlayAnim asks the die to play an animation by index, oriented to RemapFace.
type PlayAnim struct {
	Animation uint8
	RemapFace uint8
	// Loop is 1 to loop, 0 to play once.
	Loop uint8
}

// Type implements Message.
func (*PlayAnim) Type() Type { return TypePlayAnim }

// WriteContentTo implements Message.
func (msg *PlayAnim) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *PlayAnim) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// PlayAnimEvent asks the die to play the animation mapped to an event.
type PlayAnimEvent struct {
	Event     uint8
	RemapFace uint8
	Loop      uint8
}

// Type implements Message.
func (*PlayAnimEvent) Type() Type { return TypePlayAnimEvent }

// WriteContentTo implements Message.
func (msg *PlayAnimEvent) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *PlayAnimEvent) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// StopAnim asks the die to stop an animation. A RemapFace of AnyFace stops
// the animation on every face.
type StopAnim struct {
	Animation uint8
	RemapFace uint8
}

// Type implements Message.
func (*StopAnim) Type() Type { return TypeStopAnim }

// WriteContentTo implements Message.
func (msg *StopAnim) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *StopAnim) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// RequestState asks the die for a DieState.
type RequestState struct{ emptyMessage }

// Type implements Message.
func (*RequestState) Type() Type { return TypeRequestState }

// RequestBatteryLevel asks the die for a BatteryLevel.
type RequestBatteryLevel struct{ emptyMessage }

// Type implements Message.
func (*RequestBatteryLevel) Type() Type { return TypeRequestBatteryLevel }

// BatteryLevel reports the battery voltage.
type BatteryLevel struct {
	Level float32 `struc:",little"`
}

// Type implements Message.
func (*BatteryLevel) Type() Type { return TypeBatteryLevel }

// WriteContentTo implements Message.
func (msg *BatteryLevel) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *BatteryLevel) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// SetAllLEDsToColor lights every LED with a single 0xRRGGBB color.
type SetAllLEDsToColor struct {
	Color uint32 `struc:",little"`
}

// Type implements Message.
func (*SetAllLEDsToColor) Type() Type { return TypeSetAllLEDsToColor }

// WriteContentTo implements Message.
func (msg *SetAllLEDsToColor) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *SetAllLEDsToColor) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// PlaySound asks the connected app to play a sound clip.
type PlaySound struct {
	ClipID uint32 `struc:",little"`
}

// Type implements Message.
func (*PlaySound) Type() Type { return TypePlaySound }

// WriteContentTo implements Message.
func (msg *PlaySound) WriteContentTo(w io.Writer) error { return struc.Pack(w, msg) }

// LoadContentFrom implements Message.
func (msg *PlaySound) LoadContentFrom(r io.Reader) error { return struc.Unpack(r, msg) }

// New returns a new, empty Message for t. If t has no Message
// implementation, New returns nil.
func New(t Type) Message {
	switch t {
	case TypeWhoAreYou:
		return &WhoAreYou{}
	case TypeIAmADie:
		return &IAmADie{}
	case TypeState:
		return &DieState{}
	case TypeDebugLog:
		return &DebugLog{}
	case TypePlayAnim:
		return &PlayAnim{}
	case TypePlayAnimEvent:
		return &PlayAnimEvent{}
	case TypeStopAnim:
		return &StopAnim{}
	case TypeRequestState:
		return &RequestState{}
	case TypeRequestBatteryLevel:
		return &RequestBatteryLevel{}
	case TypeBatteryLevel:
		return &BatteryLevel{}
	case TypeSetAllLEDsToColor:
		return &SetAllLEDsToColor{}
	case TypePlaySound:
		return &PlaySound{}
	default:
		return nil
	}
}

// ReadMessage reads a Message from r.
//
// The user should use a buffered reader to support the various incremental
// reads that will need to be executed.
func ReadMessage(r io.Reader) (Message, error) {
	dr := dataio.MakeReader(r)

	typeByte, err := dr.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "while reading type byte")
	}

	t := Type(typeByte)
	msg := New(t)
	if msg == nil {
		return nil, errors.Errorf("unsupported message type %s", t)
	}

	if err := msg.LoadContentFrom(dr); err != nil {
		return nil, errors.Wrapf(err, "failed to load %s message", t)
	}
	return msg, nil
}

// WriteMessage writes msg to w.
//
// The user should use a buffered writer to support the various incremental
// writes that will need to be executed.
func WriteMessage(msg Message, w io.Writer) error {
	dw := dataio.MakeWriter(w)

	if err := dw.WriteByte(byte(msg.Type())); err != nil {
		return errors.Wrap(err, "failed to write type byte")
	}

	if err := msg.WriteContentTo(dw); err != nil {
		return errors.Wrapf(err, "failed to write %s content", msg.Type())
	}
	return nil
}
