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
	"bytes"
	"testing"

	"github.com/elliotchance/orderedmap/v3"
)

func emptyMaterial(name string) *CompiledMaterialDefinition {
	return &CompiledMaterialDefinition{
		SchemaVersion: 22,
		Encryption:    EncryptionNone,
		MaterialName:  name,
		Samplers:      orderedmap.NewOrderedMap[string, *SamplerDefinition](),
		Properties:    orderedmap.NewOrderedMap[string, *PropertyField](),
		Passes:        orderedmap.NewOrderedMap[string, *Pass](),
	}
}

// TestRoundTripSameSchema covers testable property 1 via scenario S1:
// an empty-root material re-emitted at the schema it was built for
// produces byte-identical output to a second encode.
func TestRoundTripSameSchema(t *testing.T) {
	m := emptyMaterial("")
	first, err := m.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(first, V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	second, err := decoded.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round-trip mismatch:\nfirst:  %x\nsecond: %x", first, second)
	}
}

// TestIdempotentReemit covers testable property 2: re-emitting at a
// different target schema still parses cleanly and re-emits
// identically at that new target.
func TestIdempotentReemit(t *testing.T) {
	m := emptyMaterial("")
	at80, err := m.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(at80, V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	at2024First, err := decoded.Encode(V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	reDecoded, err := Decode(at2024First, V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	at2024Second, err := reDecoded.Encode(V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(at2024First, at2024Second) {
		t.Fatal("re-emit at new target is not idempotent")
	}
}

// TestMagicFraming covers testable property 3.
func TestMagicFraming(t *testing.T) {
	m := emptyMaterial("")
	buf, err := m.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}

	corrupted := append([]byte(nil), buf...)
	corrupted[0] ^= 0xFF
	if _, err := Decode(corrupted, V1_20_80); err == nil {
		t.Fatal("expected BadMagic for corrupted opening magic")
	} else if me, ok := err.(*Error); !ok || me.Kind != BadMagic {
		t.Fatalf("expected BadMagic, got %v", err)
	}

	corrupted = append([]byte(nil), buf...)
	corrupted[len(corrupted)-1] ^= 0xFF
	if _, err := Decode(corrupted, V1_20_80); err == nil {
		t.Fatal("expected BadMagic for corrupted closing magic")
	} else if me, ok := err.(*Error); !ok || me.Kind != BadMagic {
		t.Fatalf("expected BadMagic, got %v", err)
	}
}

// TestOverrideSectionGating covers testable property 7.
func TestOverrideSectionGating(t *testing.T) {
	m := emptyMaterial("Core/Builtins")
	buf, err := m.Encode(V1_21_110)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(buf, V1_21_110)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Overrides != nil {
		t.Fatal("Core/Builtins must never carry an overrides section")
	}

	m2 := emptyMaterial("Some/Material")
	buf2, err := m2.Encode(V1_21_110)
	if err != nil {
		t.Fatal(err)
	}
	decoded2, err := Decode(buf2, V1_21_110)
	if err != nil {
		t.Fatal(err)
	}
	if decoded2.Overrides == nil {
		t.Fatal("non-Core/Builtins material at 1.21.110 must carry an overrides section")
	}

	m3 := emptyMaterial("Some/Material")
	buf3, err := m3.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	decoded3, err := Decode(buf3, V1_20_80)
	if err != nil {
		t.Fatal(err)
	}
	if decoded3.Overrides != nil {
		t.Fatal("materials older than 1.21.110 must never carry an overrides section")
	}
}

// TestS2NewestSchema covers scenario S2.
func TestS2NewestSchema(t *testing.T) {
	parent := "base"
	m := emptyMaterial("Some/Material")
	m.SchemaVersion = 23
	m.ParentName = &parent

	buf, err := m.Encode(V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(buf, V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.ParentName == nil || *decoded.ParentName != "base" {
		t.Fatalf("ParentName = %v, want base", decoded.ParentName)
	}
	if decoded.Overrides == nil || decoded.Overrides.Len() != 0 {
		t.Fatal("expected a present, zero-count overrides section")
	}

	second, err := decoded.Encode(V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, second) {
		t.Fatal("S2 round-trip is not byte-identical")
	}
}

func TestWrongVersionRefusal(t *testing.T) {
	m := emptyMaterial("x")
	m.SchemaVersion = 23
	buf, err := m.Encode(V26_0_24)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(buf, V1_21_110); err == nil {
		t.Fatal("expected WrongVersion")
	} else if me, ok := err.(*Error); !ok || me.Kind != WrongVersion {
		t.Fatalf("expected WrongVersion, got %v", err)
	}
}
