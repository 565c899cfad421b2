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

// PropertyType is the shape of a PropertyField's payload, stored on
// the wire as a u16.
type PropertyType uint16

const (
	PropertyVec4     PropertyType = 2
	PropertyMat3     PropertyType = 3
	PropertyMat4     PropertyType = 4
	PropertyExternal PropertyType = 5
)

func readPropertyType(c *cursor) (PropertyType, error) {
	v, err := c.u16()
	if err != nil {
		return 0, err
	}
	switch PropertyType(v) {
	case PropertyVec4, PropertyMat3, PropertyMat4, PropertyExternal:
		return PropertyType(v), nil
	default:
		return 0, errInvalidTag("PropertyType", int64(v), c.pos-2)
	}
}

func (t PropertyType) encode(s *sink) { s.writeU16(uint16(t)) }

// payloadSize returns the fixed has-data body width for a type, or 0
// for External (which carries no body regardless of has-data).
func (t PropertyType) payloadSize() int {
	switch t {
	case PropertyVec4:
		return 16
	case PropertyMat3:
		return 36
	case PropertyMat4:
		return 64
	default:
		return 0
	}
}

// PropertyField is one named material property (§3, §4.3).
//
// Num is read and written only when Type is not PropertyExternal; the
// original Rust implementation read it unconditionally but only wrote
// it conditionally, an asymmetry that breaks decode(encode(x)) == x
// for any External field with a nonzero Num. This codec treats the
// field as absent on the wire for External in both directions.
type PropertyField struct {
	Type PropertyType
	Num  uint32
	// Data holds the has-data payload, sized exactly to Type's
	// payloadSize. Nil means the has-data byte was/will be false.
	Data []byte
}

func readPropertyField(c *cursor) (*PropertyField, error) {
	t, err := readPropertyType(c)
	if err != nil {
		return nil, err
	}
	f := &PropertyField{Type: t}

	if t != PropertyExternal {
		n, err := c.u32()
		if err != nil {
			return nil, err
		}
		f.Num = n
	}

	hasData, err := c.boolean()
	if err != nil {
		return nil, err
	}
	// External never carries a payload (§4.3), so its has-data bit is
	// discarded here; encode always re-emits it as false. A source file
	// with has-data=1 on an External field will not byte-for-byte
	// round-trip, but no External payload exists to lose.
	if hasData && t != PropertyExternal {
		data, err := c.bytes(t.payloadSize())
		if err != nil {
			return nil, err
		}
		f.Data = append([]byte(nil), data...)
	}
	return f, nil
}

func (f *PropertyField) encode(s *sink) error {
	f.Type.encode(s)
	if f.Type != PropertyExternal {
		s.writeU32(f.Num)
	}
	s.writeBool(f.Data != nil)
	if f.Data != nil && f.Type != PropertyExternal {
		if len(f.Data) != f.Type.payloadSize() {
			return &Error{Kind: IntOverflow, Which: "PropertyField.Data length"}
		}
		s.writeRaw(f.Data)
	}
	return nil
}
