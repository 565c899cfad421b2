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

// Package materialbin decodes and re-encodes RenderDragon's compiled
// material/shader bundle format (CMD) across its six historical
// schema generations.
//
// A CMD file is a magic-framed tree: a material name, an optional
// parent, an ordered table of texture samplers, an ordered table of
// uniform property fields, an optional uniform-overrides table, and
// an ordered table of render passes. Decode reads one of these trees
// out of a byte slice at a caller-specified schema; Encode writes it
// back out at a caller-chosen target schema, which may differ from
// the one it was decoded at. Fields that appear, disappear, change
// width, or shift tag values between schema generations are handled
// internally; callers never see a union of every generation's layout.
//
// Decode accepts an optional AES-256-GCM "KeyPair" encryption
// envelope transparently: the returned tree is always the decrypted,
// logical material. Encode never re-encrypts; a round-tripped
// encrypted file is re-emitted unencrypted.
//
// This package does not implement a C ABI boundary, a command-line
// driver, or interpretation of the opaque per-backend shader
// bytecode each ShaderCode carries — see cmd/materialbin for a
// minimal driver, and package bgfx for the one embedded sub-format
// this module decodes (the bgfx shader blob's own header, uniform
// table and attribute trailer, still treating its compiled code as
// opaque); this package itself keeps that blob as opaque bytes.
package materialbin
