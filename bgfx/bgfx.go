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

// Package bgfx decodes and encodes the "bgfx shader" blob embedded as
// the opaque body of a ShaderCode entry in a CompiledMaterialDefinition.
// It is a standalone sub-format: its own magic, its own u8-length
// string framing (the one exception to the outer codec's u32-length
// strings), and its own trailing optional attribute table.
package bgfx

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/maps"
)

// Error reports a malformed bgfx blob. It is deliberately not unified
// with the outer package's error type: the two sub-formats are
// decoded independently and a caller treating the embedded blob as
// opaque bytes never sees this type at all.
type Error struct {
	Which string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("bgfx: %s: %s", e.Which, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Uniform is one entry of a Shader's uniform table.
type Uniform struct {
	Name     string
	Type     uint8
	Num      uint8
	RegIndex uint16
	RegCount uint16
}

// Shader is the decoded form of an embedded bgfx shader blob.
type Shader struct {
	Magic      uint32
	Hash       uint32
	Uniforms   []Uniform
	Code       []byte
	Terminator uint8
	// Attributes is nil when the trailing attribute table is absent
	// (either no bytes remain after the Terminator byte, or the
	// attribute count byte reads zero).
	Attributes []uint16
	StructSize uint16
}

type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) need(n int) error {
	if len(c.buf)-c.pos < n {
		return fmt.Errorf("need %d bytes at offset %d, have %d", n, c.pos, len(c.buf)-c.pos)
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

func (c *cursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// readName reads the bgfx sub-format's u8-length-prefixed string —
// the one place in the whole CMD tree that departs from the outer
// codec's u32-length strings.
func (c *cursor) readName() (string, error) {
	n, err := c.u8()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readUniform(c *cursor) (Uniform, error) {
	name, err := c.readName()
	if err != nil {
		return Uniform{}, &Error{Which: "uniform name", Err: err}
	}
	typ, err := c.u8()
	if err != nil {
		return Uniform{}, &Error{Which: "uniform type", Err: err}
	}
	num, err := c.u8()
	if err != nil {
		return Uniform{}, &Error{Which: "uniform num", Err: err}
	}
	regIndex, err := c.u16()
	if err != nil {
		return Uniform{}, &Error{Which: "uniform reg index", Err: err}
	}
	regCount, err := c.u16()
	if err != nil {
		return Uniform{}, &Error{Which: "uniform reg count", Err: err}
	}
	return Uniform{
		Name:     name,
		Type:     typ,
		Num:      num,
		RegIndex: regIndex,
		RegCount: regCount,
	}, nil
}

// Decode parses a complete bgfx shader blob, such as the opaque body
// bytes of a ShaderCode entry.
func Decode(buf []byte) (*Shader, error) {
	c := &cursor{buf: buf}

	magic, err := c.u32()
	if err != nil {
		return nil, &Error{Which: "magic", Err: err}
	}
	hash, err := c.u32()
	if err != nil {
		return nil, &Error{Which: "hash", Err: err}
	}

	uniformCount, err := c.u16()
	if err != nil {
		return nil, &Error{Which: "uniform count", Err: err}
	}

	uniforms := make([]Uniform, 0, uniformCount)
	seen := make(map[string]struct{}, uniformCount)
	for i := uint16(0); i < uniformCount; i++ {
		u, err := readUniform(c)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[u.Name]; dup {
			return nil, &Error{
				Which: "uniform table",
				Err:   fmt.Errorf("duplicate uniform name %q among %v", u.Name, maps.Keys(seen)),
			}
		}
		seen[u.Name] = struct{}{}
		uniforms = append(uniforms, u)
	}

	codeLen, err := c.u32()
	if err != nil {
		return nil, &Error{Which: "code length", Err: err}
	}
	code, err := c.bytes(int(codeLen))
	if err != nil {
		return nil, &Error{Which: "code", Err: err}
	}

	terminator, err := c.u8()
	if err != nil {
		return nil, &Error{Which: "terminator", Err: err}
	}

	s := &Shader{
		Magic:      magic,
		Hash:       hash,
		Uniforms:   uniforms,
		Code:       code,
		Terminator: terminator,
	}

	if c.pos >= len(c.buf) {
		return s, nil
	}

	attrCount, err := c.u8()
	if err != nil {
		return nil, &Error{Which: "attribute count", Err: err}
	}
	if attrCount == 0 {
		return s, nil
	}

	attrs := make([]uint16, attrCount)
	for i := range attrs {
		v, err := c.u16()
		if err != nil {
			return nil, &Error{Which: "attribute", Err: err}
		}
		attrs[i] = v
	}
	structSize, err := c.u16()
	if err != nil {
		return nil, &Error{Which: "struct size", Err: err}
	}
	s.Attributes = attrs
	s.StructSize = structSize

	return s, nil
}

type sink struct{ buf []byte }

func (s *sink) writeU8(v uint8) { s.buf = append(s.buf, v) }

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

func (s *sink) writeName(v string) error {
	if len(v) > 1<<8-1 {
		return fmt.Errorf("uniform name %q exceeds u8 length framing", v)
	}
	s.writeU8(uint8(len(v)))
	s.buf = append(s.buf, v...)
	return nil
}

// Encode re-emits a Shader to its binary form.
func Encode(sh *Shader) ([]byte, error) {
	s := &sink{}
	s.writeU32(sh.Magic)
	s.writeU32(sh.Hash)

	if len(sh.Uniforms) > 1<<16-1 {
		return nil, fmt.Errorf("bgfx: uniform count %d exceeds u16 framing", len(sh.Uniforms))
	}
	s.writeU16(uint16(len(sh.Uniforms)))
	for _, u := range sh.Uniforms {
		if err := s.writeName(u.Name); err != nil {
			return nil, err
		}
		s.writeU8(u.Type)
		s.writeU8(u.Num)
		s.writeU16(u.RegIndex)
		s.writeU16(u.RegCount)
	}

	s.writeU32(uint32(len(sh.Code)))
	s.buf = append(s.buf, sh.Code...)
	s.writeU8(sh.Terminator)

	if sh.Attributes != nil {
		if len(sh.Attributes) > 1<<8-1 {
			return nil, fmt.Errorf("bgfx: attribute count %d exceeds u8 framing", len(sh.Attributes))
		}
		s.writeU8(uint8(len(sh.Attributes)))
		for _, a := range sh.Attributes {
			s.writeU16(a)
		}
		s.writeU16(sh.StructSize)
	}

	return s.buf, nil
}
