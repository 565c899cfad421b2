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

// This file holds the closed integer<->symbol tables of §4.2. Each
// decode is total over an unknown integer only in the sense that it
// always returns an *Error{Kind: InvalidTag}; encode is total over
// every declared symbol.

// SamplerAccess is the read/write access a sampler register declares.
type SamplerAccess uint8

const (
	AccessNone SamplerAccess = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

func readSamplerAccess(c *cursor) (SamplerAccess, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(AccessReadWrite) {
		return 0, errInvalidTag("SamplerAccess", int64(v), c.pos-1)
	}
	return SamplerAccess(v), nil
}

func (a SamplerAccess) encode(s *sink) { s.writeU8(uint8(a)) }

// Precision is the shading precision hint on a sampler or shader input.
type Precision uint8

const (
	PrecisionLow Precision = iota
	PrecisionMedium
	PrecisionHigh
)

func readPrecision(c *cursor) (Precision, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(PrecisionHigh) {
		return 0, errInvalidTag("Precision", int64(v), c.pos-1)
	}
	return Precision(v), nil
}

func (p Precision) encode(s *sink) { s.writeU8(uint8(p)) }

// Interpolation is the varying-interpolation mode constraint on a
// shader input.
type Interpolation uint8

const (
	InterpolationFlat Interpolation = iota
	InterpolationSmooth
	InterpolationNoPerspective
	InterpolationCentroid
)

func readInterpolation(c *cursor) (Interpolation, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(InterpolationCentroid) {
		return 0, errInvalidTag("Interpolation", int64(v), c.pos-1)
	}
	return Interpolation(v), nil
}

func (i Interpolation) encode(s *sink) { s.writeU8(uint8(i)) }

// SamplerType is the texture binding shape of a SamplerDefinition.
// SamplerCubeArray was inserted at canonical ordinal 5 in schema
// 1.21.20; see sampler.go's encodeSamplerType/decodeSamplerType for
// the on-disk shift this ordinal shift requires at schemas older than
// 1.21.20 (§3, §4.2, testable property "SamplerType shift law").
type SamplerType uint8

const (
	Type2D SamplerType = iota
	Type2DArray
	Type2DExternal
	Type3D
	TypeCube
	SamplerCubeArray
	TypeStructuredBuffer
	TypeRawBuffer
	TypeAccelerationStructure
	Type2DShadow
	Type2DArrayShadow
)

const maxSamplerType = Type2DArrayShadow

// BlendMode is a pass's default alpha-blending configuration.
type BlendMode uint16

const (
	BlendNone BlendMode = iota
	BlendReplace
	BlendAlphaBlend
	BlendColorBlendAlphaAdd
	BlendPreMultiplied
	BlendInvertColor
	BlendAdditive
	BlendAdditiveAlpha
	BlendMultiply
	BlendMultiplyBoth
	BlendInverseSrcAlpha
	BlendSrcAlpha
)

func readBlendMode(c *cursor) (BlendMode, error) {
	v, err := c.u16()
	if err != nil {
		return 0, err
	}
	if v > uint16(BlendSrcAlpha) {
		return 0, errInvalidTag("BlendMode", int64(v), c.pos-2)
	}
	return BlendMode(v), nil
}

func (b BlendMode) encode(s *sink) { s.writeU16(uint16(b)) }

// ShaderStage is the pipeline stage a compiled shader targets.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	// StageUnknown appears in material files produced by newer game
	// client builds whose stage table this codec has not resolved a
	// name for; it round-trips opaquely.
	StageUnknown
)

func readShaderStage(c *cursor) (ShaderStage, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(StageUnknown) {
		return 0, errInvalidTag("ShaderStage", int64(v), c.pos-1)
	}
	return ShaderStage(v), nil
}

func (s ShaderStage) encode(snk *sink) { snk.writeU8(uint8(s)) }

// ShaderCodePlatform is the compiled-backend target of a ShaderCode entry.
type ShaderCodePlatform uint8

const (
	PlatformDirect3DSm40 ShaderCodePlatform = iota
	PlatformDirect3DSm50
	PlatformDirect3DSm60
	PlatformDirect3DSm65
	PlatformDirect3DXB1
	PlatformDirect3DXBX
	PlatformGlsl120
	PlatformGlsl430
	PlatformEssl100
	PlatformEssl300
	PlatformEssl310
	PlatformMetal
	PlatformVulkan
	PlatformNvn
	PlatformPssl
)

func readShaderCodePlatform(c *cursor) (ShaderCodePlatform, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(PlatformPssl) {
		return 0, errInvalidTag("ShaderCodePlatform", int64(v), c.pos-1)
	}
	return ShaderCodePlatform(v), nil
}

func (p ShaderCodePlatform) encode(s *sink) { s.writeU8(uint8(p)) }

// ShaderInputType is the scalar/vector/matrix shape of one shader input.
type ShaderInputType uint8

const (
	InputFloat ShaderInputType = iota
	InputVec2
	InputVec3
	InputVec4
	InputInt
	InputInt2
	InputInt3
	InputInt4
	InputUInt
	InputUInt2
	InputUInt3
	InputUInt4
	InputMat4
)

func readShaderInputType(c *cursor) (ShaderInputType, error) {
	v, err := c.u8()
	if err != nil {
		return 0, err
	}
	if v > uint8(InputMat4) {
		return 0, errInvalidTag("ShaderInputType", int64(v), c.pos-1)
	}
	return ShaderInputType(v), nil
}

func (t ShaderInputType) encode(s *sink) { s.writeU8(uint8(t)) }

// Attribute is the vertex attribute a ShaderInput binds to. It is
// wire-encoded as an (index, sub-index) byte pair with gaps — not
// every (index, sub-index) combination is valid.
type Attribute uint8

const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrTangent
	AttrBitangent
	AttrColor0
	AttrColor1
	AttrColor2
	AttrColor3
	AttrIndices
	AttrWeights
	AttrTexCoord0
	AttrTexCoord1
	AttrTexCoord2
	AttrTexCoord3
	AttrTexCoord4
	AttrTexCoord5
	AttrTexCoord6
	AttrTexCoord7
	AttrTexCoord8
	AttrFrontFacing
)

var attributeTuples = [...][2]uint8{
	AttrPosition:    {0, 0},
	AttrNormal:      {1, 0},
	AttrTangent:     {2, 0},
	AttrBitangent:   {3, 0},
	AttrColor0:      {4, 0},
	AttrColor1:      {4, 1},
	AttrColor2:      {4, 2},
	AttrColor3:      {4, 3},
	AttrIndices:     {5, 0},
	AttrWeights:     {6, 0},
	AttrTexCoord0:   {7, 0},
	AttrTexCoord1:   {7, 1},
	AttrTexCoord2:   {7, 2},
	AttrTexCoord3:   {7, 3},
	AttrTexCoord4:   {7, 4},
	AttrTexCoord5:   {7, 5},
	AttrTexCoord6:   {7, 6},
	AttrTexCoord7:   {7, 7},
	AttrTexCoord8:   {7, 8},
	AttrFrontFacing: {9, 0},
}

func readAttribute(c *cursor) (Attribute, error) {
	index, err := c.u8()
	if err != nil {
		return 0, err
	}
	sub, err := c.u8()
	if err != nil {
		return 0, err
	}
	for a, tuple := range attributeTuples {
		if tuple[0] == index && tuple[1] == sub {
			return Attribute(a), nil
		}
	}
	return 0, errInvalidTag("Attribute", int64(index)<<8|int64(sub), c.pos-2)
}

func (a Attribute) encode(s *sink) {
	t := attributeTuples[a]
	s.writeU8(t[0])
	s.writeU8(t[1])
}

// EncryptionVariant is the envelope tag following the schema version
// field (§3, §4.8).
type EncryptionVariant uint32

const (
	EncryptionNone             EncryptionVariant = 0x4E4F4E45
	EncryptionSimplePassphrase EncryptionVariant = 0x534D504C
	EncryptionKeyPair          EncryptionVariant = 0x4B595052
)

func readEncryptionVariant(c *cursor) (EncryptionVariant, error) {
	v, err := c.u32()
	if err != nil {
		return 0, err
	}
	switch EncryptionVariant(v) {
	case EncryptionNone, EncryptionSimplePassphrase, EncryptionKeyPair:
		return EncryptionVariant(v), nil
	default:
		return 0, errInvalidTag("EncryptionVariant", int64(v), c.pos-4)
	}
}

func (e EncryptionVariant) encode(s *sink) { s.writeU32(uint32(e)) }
