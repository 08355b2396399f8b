// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package capture

import (
	"os"
	"path/filepath"
	"time"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// metadataVersion is a compatibility version value for our metadata file.
	metadataVersion = 2

	// metadataFileName is the name of the metadata file.
	metadataFileName = "metadata.yaml"

	// framesFileBase is the base name of the frame file. Its extension is
	// determined by its compression.
	framesFileBase = "frames"
)

// Compression is a frame file compression scheme.
type Compression string

const (
	// CompressionNone writes raw records.
	CompressionNone Compression = "none"
	// CompressionSnappy writes records through a snappy stream.
	CompressionSnappy Compression = "snappy"
)

// String implements pflag.Value.
func (c *Compression) String() string { return string(*c) }

// Set implements pflag.Value.
func (c *Compression) Set(v string) error {
	switch cv := Compression(v); cv {
	case CompressionNone, CompressionSnappy:
		*c = cv
		return nil
	default:
		return errors.Errorf("unknown compression %q", v)
	}
}

// Type implements pflag.Value.
func (c *Compression) Type() string { return "capture.Compression" }

func (c Compression) fileName() string {
	switch c {
	case CompressionSnappy:
		return framesFileBase + ".snappy"
	default:
		return framesFileBase + ".bin"
	}
}

// Metadata describes a capture.
type Metadata struct {
	// Version is the metadata format version.
	Version int `yaml:"version"`
	// Name is a user-supplied display name.
	Name string `yaml:"name,omitempty"`
	// Created is the time when the capture was started.
	Created *timestamp.Timestamp `yaml:"created"`

	// LEDCount is the number of LEDs in each frame.
	LEDCount int `yaml:"led_count"`
	// Compression is the frame file compression.
	Compression Compression `yaml:"compression"`

	// Frames is the number of frames in the capture.
	Frames int64 `yaml:"frames"`
	// Bytes is the number of uncompressed record bytes in the capture.
	Bytes int64 `yaml:"bytes"`
	// LastOffset is the offset of the last frame.
	LastOffset *duration.Duration `yaml:"last_offset"`
}

// CreatedTime returns the time when the capture was started, or the zero time
// if it is invalid.
func (md *Metadata) CreatedTime() time.Time {
	t, err := ptypes.Timestamp(md.Created)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Duration returns the capture's duration.
func (md *Metadata) Duration() time.Duration {
	d, err := ptypes.Duration(md.LastOffset)
	if err != nil {
		return 0
	}
	return d
}

func (md *Metadata) validate() error {
	switch {
	case md.Version != metadataVersion:
		return errors.Errorf("unsupported metadata version %d", md.Version)
	case md.LEDCount <= 0:
		return errors.Errorf("invalid LED count %d", md.LEDCount)
	}
	if _, err := ptypes.Timestamp(md.Created); err != nil {
		return errors.Wrap(err, "invalid creation time")
	}
	if _, err := ptypes.Duration(md.LastOffset); err != nil {
		return errors.Wrap(err, "invalid duration")
	}

	switch md.Compression {
	case CompressionNone, CompressionSnappy:
		return nil
	default:
		return errors.Errorf("unknown compression %q", md.Compression)
	}
}

func (md *Metadata) write(dir string) error {
	data, err := yaml.Marshal(md)
	if err != nil {
		return errors.Wrap(err, "marshalling metadata")
	}
	return os.WriteFile(filepath.Join(dir, metadataFileName), data, 0644)
}

// LoadMetadata loads the metadata of the capture at path.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(path, metadataFileName))
	if err != nil {
		return nil, errors.Wrap(err, "reading metadata")
	}

	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(err, "unmarshalling metadata")
	}
	if err := md.validate(); err != nil {
		return nil, err
	}
	return &md, nil
}
