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

import "github.com/elliotchance/orderedmap/v3"

// Pass is one render-pipeline pass (§3, §4.5).
type Pass struct {
	Bitset            string
	Fallback          string
	BlendMode         *BlendMode
	DefaultFlagValues *orderedmap.OrderedMap[string, string]
	Variants          []*Variant
}

// readBitset implements the oldest schema's length-prefix tolerance
// (§4.5, Open Question 2): peek a u32, and if its low byte is 15 the
// bitset string follows normally at the current position (the u32 we
// just read back out is itself the string's own length prefix); if
// not, there is no bitset on the wire here and the cursor only
// advances by the one marker byte. We keep this exact byte-level
// peek rather than a cleaner re-derivation because real files depend
// on it.
func readBitset(c *cursor, version SchemaVersion) (string, error) {
	if version != V1_18_30 {
		return c.str()
	}

	raw, err := c.u32()
	if err != nil {
		return "", err
	}
	low := uint8(raw & 0xFF)
	c.rewind(4)
	if low == 15 {
		return c.str()
	}
	c.skip(1)
	return "", nil
}

func readPass(c *cursor, version SchemaVersion) (*Pass, error) {
	bitset, err := readBitset(c, version)
	if err != nil {
		return nil, err
	}

	fallback, err := c.str()
	if err != nil {
		return nil, err
	}

	p := &Pass{Bitset: bitset, Fallback: fallback}

	hasBlend, err := c.boolean()
	if err != nil {
		return nil, err
	}
	if hasBlend {
		b, err := readBlendMode(c)
		if err != nil {
			return nil, err
		}
		p.BlendMode = &b
	}

	flagCount, err := c.u16()
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
	p.DefaultFlagValues = flags

	variantCount, err := c.u16()
	if err != nil {
		return nil, err
	}
	variants := make([]*Variant, 0, variantCount)
	for i := uint16(0); i < variantCount; i++ {
		v, err := readVariant(c)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	p.Variants = variants

	return p, nil
}

func (p *Pass) encode(s *sink) error {
	if p.Bitset == "" {
		return errCompat("Pass.Bitset", "cannot emit a pass with an empty bitset")
	}
	if err := s.writeString(p.Bitset); err != nil {
		return err
	}
	if err := s.writeString(p.Fallback); err != nil {
		return err
	}

	s.writeBool(p.BlendMode != nil)
	if p.BlendMode != nil {
		p.BlendMode.encode(s)
	}

	if p.DefaultFlagValues.Len() > 1<<16-1 {
		return &Error{Kind: IntOverflow, Which: "Pass.DefaultFlagValues count"}
	}
	s.writeU16(uint16(p.DefaultFlagValues.Len()))
	for pair := p.DefaultFlagValues.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return err
		}
		if err := s.writeString(pair.Value); err != nil {
			return err
		}
	}

	if len(p.Variants) > 1<<16-1 {
		return &Error{Kind: IntOverflow, Which: "Pass.Variants count"}
	}
	s.writeU16(uint16(len(p.Variants)))
	for _, v := range p.Variants {
		if err := v.encode(s); err != nil {
			return err
		}
	}
	return nil
}
