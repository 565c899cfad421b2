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

// TestDetectOldestSchema covers scenario S5: a file whose sampler
// table only fits the oldest schema's narrower field layout is
// rejected by every newer schema trial before the driver reaches
// 1.18.30.
func TestDetectOldestSchema(t *testing.T) {
	m := emptyMaterial("")
	m.SchemaVersion = 22
	samplers := orderedmap.NewOrderedMap[string, *SamplerDefinition]()
	samplers.Set("Diffuse", &SamplerDefinition{
		Register:      3,
		Type:          TypeCube,
		TextureFormat: "RGBA8",
	})
	m.Samplers = samplers

	buf, err := m.Encode(V1_18_30)
	if err != nil {
		t.Fatal(err)
	}

	decoded, schema, err := Detect(buf)
	if err != nil {
		t.Fatalf("Detect: %s", err)
	}
	if schema != V1_18_30 {
		t.Fatalf("Detect matched %s, want %s", schema, V1_18_30)
	}
	reEncoded, err := decoded.Encode(V1_18_30)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reEncoded, buf) {
		t.Fatal("detected schema does not round-trip the original bytes")
	}
}

func TestDetectNoMatch(t *testing.T) {
	garbage := []byte("not a material definition at all, far too short")
	if _, _, err := Detect(garbage); err == nil {
		t.Fatal("expected an error for unrecognized input")
	}
}

func TestDetectCacheConsistency(t *testing.T) {
	m := emptyMaterial("")
	buf, err := m.Encode(V1_20_80)
	if err != nil {
		t.Fatal(err)
	}

	_, first, err := Detect(buf)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := Detect(buf)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("cached detection disagreed: %s vs %s", first, second)
	}
}
