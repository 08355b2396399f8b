// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package capture records the frames that a die displays and plays them back.
//
// A capture is a directory containing a YAML metadata file and a frame file.
// The frame file is a (optionally snappy-compressed) record stream in which
// each record is a single frame: a varint-prefixed protobuf Duration holding
// the offset from the first frame, followed by one RGB triple per LED in
// canonical LED order.
//
// Captures are built in a staging directory and moved into place when the
// Writer is closed, so a partially-written capture is never visible at its
// destination path.
package capture
