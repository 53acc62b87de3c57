// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package traj implements the trajectory container of spec.md §6: a
// framed sequence of object records, `#Cytosim ` … ` #end ` delimited,
// each record a one-character class tag followed by a property index,
// a numeric id, and a class-specific payload. SPEC_FULL.md §6.2 scopes
// this package to the named FrameWriter/FrameReader contract plus a
// minimal concrete binary codec sufficient for spec.md §8's round-trip
// testable property; the full per-class payload schema (fiber point
// counts, hand references, solid reference shapes, …) is left to the
// caller, which supplies a flat []float64 payload per record rather
// than this package modeling every object kind spec.md §3 names.
//
// The only third-party library a byte-framed binary codec could
// plausibly use from this retrieval pack is encoding-format-neutral
// (gofem never serializes a frame-oriented binary trajectory; its own
// Summary/state IO is out of the filtered pack). Go's `encoding/binary`
// is the direct, idiomatic answer here, matching spec.md §6's own
// "native-endian integers … IEEE-754 floats, prefixed by a signature"
// wording; `github.com/cpmech/gosl/io`'s file helpers remain the
// whole-file read/write surface (see cmd/cytosim) above this codec.
package traj

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Tag identifies a record's object class, spec.md §6's one-character
// class tags.
type Tag byte

const (
	TagFiber  Tag = 'f'
	TagBead   Tag = 'b'
	TagSolid  Tag = 'o'
	TagSphere Tag = 'p'
	TagSingle Tag = 's'
	TagCouple Tag = 'c'
)

// Record is one object's trajectory entry: a class tag, the property
// (class+parameter-set) index, a numeric object id, and a flat payload
// whose interpretation is class-specific (point coordinates for a
// fiber, a position and two hand references for a couple, …).
type Record struct {
	Tag     Tag
	PropIdx int32
	ID      int32
	Payload []float64
}

// Frame is one simulation snapshot: every object's Record, in
// deterministic (insertion) order.
type Frame struct {
	Records []Record
}

// FrameWriter appends complete frames to a trajectory.
type FrameWriter interface {
	WriteFrame(f Frame) error
}

// FrameReader reads frames back in order. ReadFrame returns io.EOF
// once no frame remains.
type FrameReader interface {
	ReadFrame() (Frame, error)
}

var (
	beginTag = []byte("#Cytosim ")
	endTag   = []byte(" #end ")
	magicLE  = uint32(0x43595430) // "CYT0" read little-endian
)

// BinaryWriter is the minimal concrete binary FrameWriter of
// SPEC_FULL.md §6.2: a 4-byte signature once at the start of the
// stream, then for each frame the `#Cytosim ` / ` #end ` ASCII
// delimiters wrapping a record count and the records themselves.
type BinaryWriter struct {
	w           *bufio.Writer
	wroteHeader bool
	err         error
}

// NewBinaryWriter wraps w for frame-at-a-time binary writes.
func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: bufio.NewWriter(w)}
}

func (bw *BinaryWriter) writeHeader() {
	if bw.wroteHeader || bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, magicLE)
	bw.wroteHeader = true
}

// WriteFrame appends one frame and flushes the underlying writer.
func (bw *BinaryWriter) WriteFrame(f Frame) error {
	bw.writeHeader()
	if bw.err != nil {
		return bw.err
	}
	write := func(v interface{}) {
		if bw.err != nil {
			return
		}
		bw.err = binary.Write(bw.w, binary.LittleEndian, v)
	}

	if _, err := bw.w.Write(beginTag); err != nil {
		return err
	}
	write(int32(len(f.Records)))
	for _, r := range f.Records {
		write(byte(r.Tag))
		write(r.PropIdx)
		write(r.ID)
		write(int32(len(r.Payload)))
		for _, v := range r.Payload {
			write(v)
		}
	}
	if bw.err != nil {
		return bw.err
	}
	if _, err := bw.w.Write(endTag); err != nil {
		return err
	}
	return bw.w.Flush()
}

// BinaryReader is the FrameReader counterpart of BinaryWriter.
type BinaryReader struct {
	r         *bufio.Reader
	readMagic bool
}

// NewBinaryReader wraps r for frame-at-a-time binary reads.
func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: bufio.NewReader(r)}
}

func (br *BinaryReader) checkMagic() error {
	if br.readMagic {
		return nil
	}
	var m uint32
	if err := binary.Read(br.r, binary.LittleEndian, &m); err != nil {
		return err
	}
	if m != magicLE {
		return fmt.Errorf("traj: unrecognized signature %#x (byte-swapped input is not supported by this codec)", m)
	}
	br.readMagic = true
	return nil
}

// ReadFrame reads and returns the next frame, or io.EOF when the
// stream is exhausted at a frame boundary.
func (br *BinaryReader) ReadFrame() (Frame, error) {
	if err := br.checkMagic(); err != nil {
		return Frame{}, err
	}

	tag := make([]byte, len(beginTag))
	if _, err := io.ReadFull(br.r, tag); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}
	if string(tag) != string(beginTag) {
		return Frame{}, fmt.Errorf("traj: expected frame header %q, got %q", beginTag, tag)
	}

	var n int32
	if err := binary.Read(br.r, binary.LittleEndian, &n); err != nil {
		return Frame{}, err
	}
	f := Frame{Records: make([]Record, n)}
	for i := range f.Records {
		var tagByte byte
		var propIdx, id, payloadLen int32
		if err := binary.Read(br.r, binary.LittleEndian, &tagByte); err != nil {
			return Frame{}, err
		}
		if err := binary.Read(br.r, binary.LittleEndian, &propIdx); err != nil {
			return Frame{}, err
		}
		if err := binary.Read(br.r, binary.LittleEndian, &id); err != nil {
			return Frame{}, err
		}
		if err := binary.Read(br.r, binary.LittleEndian, &payloadLen); err != nil {
			return Frame{}, err
		}
		payload := make([]float64, payloadLen)
		for j := range payload {
			if err := binary.Read(br.r, binary.LittleEndian, &payload[j]); err != nil {
				return Frame{}, err
			}
		}
		f.Records[i] = Record{Tag: Tag(tagByte), PropIdx: propIdx, ID: id, Payload: payload}
	}

	end := make([]byte, len(endTag))
	if _, err := io.ReadFull(br.r, end); err != nil {
		return Frame{}, err
	}
	if string(end) != string(endTag) {
		return Frame{}, fmt.Errorf("traj: expected frame trailer %q, got %q", endTag, end)
	}

	return f, nil
}

var (
	_ FrameWriter = (*BinaryWriter)(nil)
	_ FrameReader = (*BinaryReader)(nil)
)
