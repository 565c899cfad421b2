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
	"github.com/elliotchance/orderedmap/v3"
)

// Variant is one realized flag combination inside a Pass (§3, §4.5).
//
// Wire order is deliberate and unusual: both counts precede both
// bodies (is_supported, flag count, shader-code count, flags,
// shader-codes), not the more natural count-then-body-then-count-
// then-body interleaving. Implementations must not reorder this.
type Variant struct {
	IsSupported bool
	Flags       *orderedmap.OrderedMap[string, string]
	ShaderCodes *orderedmap.OrderedMap[PlatformShaderStage, *ShaderCode]
}

func readVariant(c *cursor) (*Variant, error) {
	supported, err := c.boolean()
	if err != nil {
		return nil, err
	}

	flagCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	shaderCodeCount, err := c.u16()
	if err != nil {
		return nil, err
	}

	flags := orderedmap.NewOrderedMap[string, string]()
	for i := uint16(0); i < flagCount; i++ {
		k, err := c.str()
		if err != nil {
			return nil, err
		}
		v, err := c.str()
		if err != nil {
			return nil, err
		}
		flags.Set(k, v)
	}

	codes := orderedmap.NewOrderedMap[PlatformShaderStage, *ShaderCode]()
	for i := uint16(0); i < shaderCodeCount; i++ {
		key, err := readPlatformShaderStage(c)
		if err != nil {
			return nil, err
		}
		code, err := readShaderCode(c)
		if err != nil {
			return nil, err
		}
		codes.Set(*key, code)
	}

	return &Variant{
		IsSupported: supported,
		Flags:       flags,
		ShaderCodes: codes,
	}, nil
}

func (v *Variant) encode(s *sink) error {
	s.writeBool(v.IsSupported)

	if v.Flags.Len() > 1<<16-1 {
		return &Error{Kind: IntOverflow, Which: "Variant.Flags count"}
	}
	if v.ShaderCodes.Len() > 1<<16-1 {
		return &Error{Kind: IntOverflow, Which: "Variant.ShaderCodes count"}
	}
	s.writeU16(uint16(v.Flags.Len()))
	s.writeU16(uint16(v.ShaderCodes.Len()))

	for pair := v.Flags.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return err
		}
		if err := s.writeString(pair.Value); err != nil {
			return err
		}
	}

	for pair := v.ShaderCodes.Front(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if err := key.encode(s); err != nil {
			return err
		}
		if err := pair.Value.encode(s); err != nil {
			return err
		}
	}
	return nil
}
