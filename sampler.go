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

import "math"

// CustomTypeInfo describes a sampler's custom type, when present.
type CustomTypeInfo struct {
	Name string
	Size uint32
}

func readCustomTypeInfo(c *cursor) (*CustomTypeInfo, error) {
	name, err := c.str()
	if err != nil {
		return nil, err
	}
	size, err := c.u32()
	if err != nil {
		return nil, err
	}
	return &CustomTypeInfo{Name: name, Size: size}, nil
}

func (info *CustomTypeInfo) encode(s *sink) error {
	if err := s.writeString(info.Name); err != nil {
		return err
	}
	s.writeU32(info.Size)
	return nil
}

// SamplerDefinition is one texture sampler binding (§3, §4.4).
type SamplerDefinition struct {
	Register             uint16
	Access               SamplerAccess
	Precision            Precision
	AllowUnorderedAccess uint8
	Type                 SamplerType
	TextureFormat        string
	Unknown              uint32
	UnknownByte          uint8
	SamplerState         *uint8
	DefaultTexture       *string
	UnknownString        *string
	CustomType           *CustomTypeInfo
}

// decodeSamplerType undoes the on-disk shift that schemas older than
// 1.21.20 use to keep SamplerCubeArray's ordinal free (§3, §4.2).
// Schema 1.21.20 and every schema after it store the canonical
// ordinal unshifted — confirmed by scenario S4, which pins on-disk
// byte 6 to TypeStructuredBuffer at schema 1.21.110, not 1.21.20's
// shifted neighbor TypeRawBuffer. See DESIGN.md for why this reading
// was chosen over the shift-law prose's looser "schemas other than
// 1.21.20" wording.
func decodeSamplerType(version SchemaVersion, raw uint8) (SamplerType, error) {
	if version < V1_21_20 && raw >= 5 {
		raw++
	}
	if raw > uint8(maxSamplerType) {
		return 0, errInvalidTag("SamplerType", int64(raw), 0)
	}
	return SamplerType(raw), nil
}

func encodeSamplerType(version SchemaVersion, t SamplerType) (uint8, error) {
	if t == SamplerCubeArray && version != V1_21_20 {
		return 0, errCompat("SamplerType", "SamplerCubeArray can only be emitted at schema 1.21.20")
	}
	raw := uint8(t)
	if version < V1_21_20 && raw >= 5 {
		raw--
	}
	return raw, nil
}

func readSamplerDefinition(c *cursor, version SchemaVersion) (*SamplerDefinition, error) {
	d := &SamplerDefinition{}
	if version == V1_18_30 {
		reg, err := c.u8()
		if err != nil {
			return nil, err
		}
		d.Register = uint16(reg)
	} else {
		reg, err := c.u16()
		if err != nil {
			return nil, err
		}
		d.Register = reg
	}

	access, err := readSamplerAccess(c)
	if err != nil {
		return nil, err
	}
	d.Access = access

	precision, err := readPrecision(c)
	if err != nil {
		return nil, err
	}
	d.Precision = precision

	allowUA, err := c.u8()
	if err != nil {
		return nil, err
	}
	d.AllowUnorderedAccess = allowUA

	rawType, err := c.u8()
	if err != nil {
		return nil, err
	}
	sType, err := decodeSamplerType(version, rawType)
	if err != nil {
		return nil, err
	}
	d.Type = sType

	format, err := c.str()
	if err != nil {
		return nil, err
	}
	d.TextureFormat = format

	unk, err := c.u32()
	if err != nil {
		return nil, err
	}
	d.Unknown = unk

	if version == V1_18_30 {
		// The oldest schema never wrote this byte; it is
		// reconstituted from the (u8-width) register on write.
		if d.Register > math.MaxUint8 {
			return nil, &Error{Kind: IntOverflow, Which: "SamplerDefinition.Register"}
		}
		d.UnknownByte = uint8(d.Register)
	} else {
		b, err := c.u8()
		if err != nil {
			return nil, err
		}
		d.UnknownByte = b
	}

	if version == V1_21_20 {
		hasState, err := c.boolean()
		if err != nil {
			return nil, err
		}
		if hasState {
			b, err := c.u8()
			if err != nil {
				return nil, err
			}
			d.SamplerState = &b
		}
	}

	hasDefaultTexture, err := c.boolean()
	if err != nil {
		return nil, err
	}
	if hasDefaultTexture {
		s, err := c.str()
		if err != nil {
			return nil, err
		}
		d.DefaultTexture = &s
	}

	if version == V1_20_80 || version == V1_21_20 {
		hasUnknownString, err := c.boolean()
		if err != nil {
			return nil, err
		}
		if hasUnknownString {
			s, err := c.str()
			if err != nil {
				return nil, err
			}
			d.UnknownString = &s
		}
	}

	hasCustomType, err := c.boolean()
	if err != nil {
		return nil, err
	}
	if hasCustomType {
		info, err := readCustomTypeInfo(c)
		if err != nil {
			return nil, err
		}
		d.CustomType = info
	}

	return d, nil
}

func (d *SamplerDefinition) encode(s *sink, version SchemaVersion) error {
	if version == V1_18_30 {
		if d.Register > math.MaxUint8 {
			return &Error{Kind: IntOverflow, Which: "SamplerDefinition.Register"}
		}
		s.writeU8(uint8(d.Register))
	} else {
		s.writeU16(d.Register)
	}
	d.Access.encode(s)
	d.Precision.encode(s)
	s.writeU8(d.AllowUnorderedAccess)

	rawType, err := encodeSamplerType(version, d.Type)
	if err != nil {
		return err
	}
	s.writeU8(rawType)

	if err := s.writeString(d.TextureFormat); err != nil {
		return err
	}
	s.writeU32(d.Unknown)

	if version != V1_18_30 {
		s.writeU8(d.UnknownByte)
	}

	if version == V1_21_20 {
		s.writeBool(d.SamplerState != nil)
		if d.SamplerState != nil {
			s.writeU8(*d.SamplerState)
		}
	}

	if err := s.writeOptionalString(d.DefaultTexture); err != nil {
		return err
	}

	if version == V1_20_80 || version == V1_21_20 {
		if err := s.writeOptionalString(d.UnknownString); err != nil {
			return err
		}
	}

	s.writeBool(d.CustomType != nil)
	if d.CustomType != nil {
		if err := d.CustomType.encode(s); err != nil {
			return err
		}
	}
	return nil
}
