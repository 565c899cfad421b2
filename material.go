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

const (
	magicValue   uint64 = 0x0A11DA1A
	bannerString        = "RenderDragon.CompiledMaterialDefinition"
)

// CompiledMaterialDefinition is the root value of a CMD file (§3, §4.7).
//
// After a successful KYPR decrypt, Encryption is reset to
// EncryptionNone: this codec has no operation that re-encrypts on
// output, so the logical, decrypted state is what Encode reproduces.
// A round-trip of an encrypted input therefore re-emits the plaintext
// tree under a NONE envelope, matching scenario S3.
type CompiledMaterialDefinition struct {
	SchemaVersion uint64
	Encryption    EncryptionVariant
	MaterialName  string
	ParentName    *string
	Samplers      *orderedmap.OrderedMap[string, *SamplerDefinition]
	Properties    *orderedmap.OrderedMap[string, *PropertyField]
	// Overrides is nil when the override section is absent for this
	// material (§4.7 step 8); a non-nil, zero-length map still emits
	// an (empty) override section when the gating rule demands one.
	Overrides *orderedmap.OrderedMap[string, string]
	Passes    *orderedmap.OrderedMap[string, *Pass]
}

// Decode parses buf as a CompiledMaterialDefinition framed for the
// given target schema. target selects which version-conditional field
// layout governs parsing; it is not inferred from the file.
func Decode(buf []byte, target SchemaVersion) (*CompiledMaterialDefinition, error) {
	c := newCursor(buf)

	if err := expectMagic(c); err != nil {
		return nil, err
	}

	banner, err := c.str()
	if err != nil {
		return nil, err
	}
	if banner != bannerString {
		return nil, &Error{Kind: BadBanner, At: c.pos - len(banner)}
	}

	version, err := c.u64()
	if err != nil {
		return nil, err
	}
	if version == 23 && target < V26_0_24 {
		return nil, &Error{Kind: WrongVersion, Why: "schema version 23 requires target 26.0.24"}
	}

	encVariant, err := readEncryptionVariant(c)
	if err != nil {
		return nil, err
	}

	body, err := resolveBody(c, encVariant)
	if err != nil {
		return nil, err
	}

	m := &CompiledMaterialDefinition{
		SchemaVersion: version,
		Encryption:    EncryptionNone,
	}

	name, err := body.str()
	if err != nil {
		return nil, err
	}
	m.MaterialName = name

	hasParent, err := body.boolean()
	if err != nil {
		return nil, err
	}
	if hasParent {
		p, err := body.str()
		if err != nil {
			return nil, err
		}
		m.ParentName = &p
	}

	samplerCount, err := body.u8()
	if err != nil {
		return nil, err
	}
	samplers := orderedmap.NewOrderedMap[string, *SamplerDefinition]()
	for i := uint8(0); i < samplerCount; i++ {
		key, err := body.str()
		if err != nil {
			return nil, err
		}
		def, err := readSamplerDefinition(body, target)
		if err != nil {
			return nil, err
		}
		samplers.Set(key, def)
	}
	m.Samplers = samplers

	propCount, err := body.u16()
	if err != nil {
		return nil, err
	}
	properties := orderedmap.NewOrderedMap[string, *PropertyField]()
	for i := uint16(0); i < propCount; i++ {
		key, err := body.str()
		if err != nil {
			return nil, err
		}
		field, err := readPropertyField(body)
		if err != nil {
			return nil, err
		}
		properties.Set(key, field)
	}
	m.Properties = properties

	if hasOverrides(target, m.MaterialName) {
		overrideCount, err := body.u16()
		if err != nil {
			return nil, err
		}
		overrides := orderedmap.NewOrderedMap[string, string]()
		for i := uint16(0); i < overrideCount; i++ {
			k, err := body.str()
			if err != nil {
				return nil, err
			}
			v, err := body.str()
			if err != nil {
				return nil, err
			}
			overrides.Set(k, v)
		}
		m.Overrides = overrides
	}

	passCount, err := body.u16()
	if err != nil {
		return nil, err
	}
	passes := orderedmap.NewOrderedMap[string, *Pass]()
	for i := uint16(0); i < passCount; i++ {
		key, err := body.str()
		if err != nil {
			return nil, err
		}
		pass, err := readPass(body, target)
		if err != nil {
			return nil, err
		}
		passes.Set(key, pass)
	}
	m.Passes = passes

	if err := expectMagic(body); err != nil {
		return nil, err
	}

	return m, nil
}

func expectMagic(c *cursor) error {
	v, err := c.u64()
	if err != nil {
		return err
	}
	if v != magicValue {
		return &Error{Kind: BadMagic, At: c.pos - 8}
	}
	return nil
}

// Encode re-emits m at the given target schema (§4.7).
func (m *CompiledMaterialDefinition) Encode(target SchemaVersion) ([]byte, error) {
	s := &sink{}
	s.writeU64(magicValue)
	if err := s.writeString(bannerString); err != nil {
		return nil, err
	}
	s.writeU64(wireVersion(target, m.SchemaVersion))

	EncryptionNone.encode(s)

	if err := s.writeString(m.MaterialName); err != nil {
		return nil, err
	}
	if err := s.writeOptionalString(m.ParentName); err != nil {
		return nil, err
	}

	if m.Samplers.Len() > 1<<8-1 {
		return nil, &Error{Kind: IntOverflow, Which: "Samplers count"}
	}
	s.writeU8(uint8(m.Samplers.Len()))
	for pair := m.Samplers.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return nil, err
		}
		if err := pair.Value.encode(s, target); err != nil {
			return nil, err
		}
	}

	if m.Properties.Len() > 1<<16-1 {
		return nil, &Error{Kind: IntOverflow, Which: "Properties count"}
	}
	s.writeU16(uint16(m.Properties.Len()))
	for pair := m.Properties.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return nil, err
		}
		if err := pair.Value.encode(s); err != nil {
			return nil, err
		}
	}

	if hasOverrides(target, m.MaterialName) {
		count := 0
		if m.Overrides != nil {
			count = m.Overrides.Len()
		}
		if count > 1<<16-1 {
			return nil, &Error{Kind: IntOverflow, Which: "Overrides count"}
		}
		s.writeU16(uint16(count))
		if m.Overrides != nil {
			for pair := m.Overrides.Front(); pair != nil; pair = pair.Next() {
				if err := s.writeString(pair.Key); err != nil {
					return nil, err
				}
				if err := s.writeString(pair.Value); err != nil {
					return nil, err
				}
			}
		}
	}

	if m.Passes.Len() > 1<<16-1 {
		return nil, &Error{Kind: IntOverflow, Which: "Passes count"}
	}
	s.writeU16(uint16(m.Passes.Len()))
	for pair := m.Passes.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return nil, err
		}
		if err := pair.Value.encode(s); err != nil {
			return nil, err
		}
	}

	s.writeU64(magicValue)
	return s.Bytes(), nil
}
