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

// SchemaVersion identifies one of the six historical on-disk layouts
// of a CompiledMaterialDefinition. Values are totally ordered by
// release, oldest first, so plain integer comparison answers
// "is this schema older than that one".
type SchemaVersion int

const (
	V1_18_30 SchemaVersion = iota
	V1_19_60
	V1_20_80
	V1_21_20
	V1_21_110
	V26_0_24
)

func (v SchemaVersion) String() string {
	switch v {
	case V1_18_30:
		return "1.18.30"
	case V1_19_60:
		return "1.19.60"
	case V1_20_80:
		return "1.20.80"
	case V1_21_20:
		return "1.21.20"
	case V1_21_110:
		return "1.21.110"
	case V26_0_24:
		return "26.0.24"
	default:
		return "unknown"
	}
}

// wireVersion returns the on-disk schema version number written for
// a given target schema (§4.7 encode version-mapping rule).
func wireVersion(target SchemaVersion, decoded uint64) uint64 {
	switch {
	case target <= V1_21_110:
		return 22
	case target == V26_0_24:
		return 23
	default:
		return decoded
	}
}

// NewestSchemas lists every known schema, newest first. The
// auto-detect driver walks this order because most files in the wild
// are produced by a recent game client, so trying new-to-old finds
// the common case fastest and avoids a second, schema-invariant sniff
// of the magic (see spec §9, "Auto-detect cost").
var NewestSchemas = []SchemaVersion{
	V26_0_24,
	V1_21_110,
	V1_21_20,
	V1_20_80,
	V1_19_60,
	V1_18_30,
}

// hasOverrides reports whether target/name combination carries the
// uniform-overrides table (§4.7 step 8).
func hasOverrides(target SchemaVersion, name string) bool {
	return target >= V1_21_110 && name != "Core/Builtins"
}
