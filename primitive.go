// Copyright (C) 2024 The materialbin Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package materialbin

import (
	"encoding/binary"
	"unicode/utf8"
)

// cursor reads little-endian primitives out of a borrowed byte slice.
// Byte arrays returned by cursor methods are sub-slices of the original
// buffer; strings are copied out of it (see spec §9, "Borrowed versus
// owned slices").
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) need(n int) error {
	if len(c.buf)-c.pos < n {
		return errShortRead(c.pos, n, len(c.buf)-c.pos)
	}
	return nil
}

func (c *cursor) u8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) boolean() (bool, error) {
	b, err := c.u8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// bytes reads n raw bytes and returns a slice into the underlying buffer.
func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errShortRead(c.pos, n, len(c.buf)-c.pos)
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// str reads a u32-length-prefixed UTF-8 string (§4.1). This is the
// general string framing used everywhere outside the bgfx sub-format,
// which instead uses a u8 length (see bgfx.readName).
func (c *cursor) str() (string, error) {
	n, err := c.u32()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &Error{Kind: BadUTF8, At: c.pos - int(n)}
	}
	return string(b), nil
}

// lenBytes reads a u32-length-prefixed raw byte array (§4.1).
func (c *cursor) lenBytes() ([]byte, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	return c.bytes(int(n))
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.buf)
}

func (c *cursor) rewind(n int) {
	c.pos -= n
}

func (c *cursor) skip(n int) {
	c.pos += n
}

// sink accumulates an emitted CompiledMaterialDefinition (or any nested
// production) into a growable byte buffer, mirroring the append-only
// Buffer type the teacher uses for its own wire format.
type sink struct {
	buf []byte
}

func (s *sink) Bytes() []byte { return s.buf }

func (s *sink) writeU8(v uint8) {
	s.buf = append(s.buf, v)
}

func (s *sink) writeU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

func (s *sink) writeU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

func (s *sink) writeU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

func (s *sink) writeBool(v bool) {
	if v {
		s.writeU8(1)
	} else {
		s.writeU8(0)
	}
}

func (s *sink) writeRaw(b []byte) {
	s.buf = append(s.buf, b...)
}

// writeString writes the general u32-length-prefixed string framing.
func (s *sink) writeString(v string) error {
	if int64(len(v)) > 1<<32-1 {
		return &Error{Kind: IntOverflow, Which: "string length"}
	}
	s.writeU32(uint32(len(v)))
	s.writeRaw([]byte(v))
	return nil
}

// writeLenBytes writes a u32-length-prefixed raw byte array.
func (s *sink) writeLenBytes(v []byte) error {
	if int64(len(v)) > 1<<32-1 {
		return &Error{Kind: IntOverflow, Which: "byte array length"}
	}
	s.writeU32(uint32(len(v)))
	s.writeRaw(v)
	return nil
}

// writeOptionalString emits the "optional T" framing of §4.1: a
// presence byte, then the payload iff present.
func (s *sink) writeOptionalString(v *string) error {
	s.writeBool(v != nil)
	if v != nil {
		return s.writeString(*v)
	}
	return nil
}
