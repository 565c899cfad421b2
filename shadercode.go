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

// PlatformShaderStage pairs a shader stage with the compiled backend
// it targets, each stored both as a wire-order enum and its display
// name (§3, §4.5).
type PlatformShaderStage struct {
	StageName    string
	PlatformName string
	Stage        ShaderStage
	Platform     ShaderCodePlatform
}

func readPlatformShaderStage(c *cursor) (*PlatformShaderStage, error) {
	stageName, err := c.str()
	if err != nil {
		return nil, err
	}
	platformName, err := c.str()
	if err != nil {
		return nil, err
	}
	stage, err := readShaderStage(c)
	if err != nil {
		return nil, err
	}
	platform, err := readShaderCodePlatform(c)
	if err != nil {
		return nil, err
	}
	return &PlatformShaderStage{
		StageName:    stageName,
		PlatformName: platformName,
		Stage:        stage,
		Platform:     platform,
	}, nil
}

func (p *PlatformShaderStage) encode(s *sink) error {
	if err := s.writeString(p.StageName); err != nil {
		return err
	}
	if err := s.writeString(p.PlatformName); err != nil {
		return err
	}
	p.Stage.encode(s)
	p.Platform.encode(s)
	return nil
}

// ShaderInput is one vertex-stage input binding.
type ShaderInput struct {
	InputType               ShaderInputType
	Attribute               Attribute
	IsPerInstance           bool
	PrecisionConstraint     *Precision
	InterpolationConstraint *Interpolation
}

func readShaderInput(c *cursor) (*ShaderInput, error) {
	inputType, err := readShaderInputType(c)
	if err != nil {
		return nil, err
	}
	attr, err := readAttribute(c)
	if err != nil {
		return nil, err
	}
	perInstance, err := c.boolean()
	if err != nil {
		return nil, err
	}
	in := &ShaderInput{
		InputType:     inputType,
		Attribute:     attr,
		IsPerInstance: perInstance,
	}

	hasPrecision, err := c.boolean()
	if err != nil {
		return nil, err
	}
	if hasPrecision {
		p, err := readPrecision(c)
		if err != nil {
			return nil, err
		}
		in.PrecisionConstraint = &p
	}

	hasInterp, err := c.boolean()
	if err != nil {
		return nil, err
	}
	if hasInterp {
		i, err := readInterpolation(c)
		if err != nil {
			return nil, err
		}
		in.InterpolationConstraint = &i
	}

	return in, nil
}

func (in *ShaderInput) encode(s *sink) {
	in.InputType.encode(s)
	in.Attribute.encode(s)
	s.writeBool(in.IsPerInstance)

	s.writeBool(in.PrecisionConstraint != nil)
	if in.PrecisionConstraint != nil {
		in.PrecisionConstraint.encode(s)
	}

	s.writeBool(in.InterpolationConstraint != nil)
	if in.InterpolationConstraint != nil {
		in.InterpolationConstraint.encode(s)
	}
}

// ShaderCode is one compiled shader binary together with its input
// layout, keyed by the PlatformShaderStage it was compiled for.
//
// ShaderInputs is an ordered table keyed by input name (§3: "an
// ordered table of named ShaderInputs"), not a bare list — each entry
// is a u32-length name string immediately followed by the
// ShaderInput body, and the table's own count is a u16.
type ShaderCode struct {
	ShaderInputs   *orderedmap.OrderedMap[string, *ShaderInput]
	SourceHash     uint64
	BgfxShaderData []byte
}

func readShaderCode(c *cursor) (*ShaderCode, error) {
	count, err := c.u16()
	if err != nil {
		return nil, err
	}
	inputs := orderedmap.NewOrderedMap[string, *ShaderInput]()
	for i := uint16(0); i < count; i++ {
		name, err := c.str()
		if err != nil {
			return nil, err
		}
		in, err := readShaderInput(c)
		if err != nil {
			return nil, err
		}
		inputs.Set(name, in)
	}

	hash, err := c.u64()
	if err != nil {
		return nil, err
	}

	data, err := c.lenBytes()
	if err != nil {
		return nil, err
	}

	return &ShaderCode{
		ShaderInputs:   inputs,
		SourceHash:     hash,
		BgfxShaderData: data,
	}, nil
}

func (sc *ShaderCode) encode(s *sink) error {
	if sc.ShaderInputs.Len() > 1<<16-1 {
		return &Error{Kind: IntOverflow, Which: "ShaderCode.ShaderInputs count"}
	}
	s.writeU16(uint16(sc.ShaderInputs.Len()))
	for pair := sc.ShaderInputs.Front(); pair != nil; pair = pair.Next() {
		if err := s.writeString(pair.Key); err != nil {
			return err
		}
		pair.Value.encode(s)
	}
	s.writeU64(sc.SourceHash)
	return s.writeLenBytes(sc.BgfxShaderData)
}
