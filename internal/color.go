// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package internal

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)


// Neutral gray around which contrast is applied, in linear RGB
const MidGray=float32(0.5)


// Scales CIE HCL chroma of one linear RGB pixel by the given factor.
// A perceptually uniform way of changing saturation while keeping hue and luminance.
func saturatePixel(r, g, b float32, factor float64) (float32, float32, float32) {
	col:=colorful.LinearRgb(float64(r), float64(g), float64(b))
	h, c, l:=col.Hcl()
	c=math.Max(0, c*factor)
	rr, gg, bb:=colorful.Hcl(h, c, l).Clamped().LinearRgb()
	return clamp01(float32(rr)), clamp01(float32(gg)), clamp01(float32(bb))
}

// Spreads a channel value around mid gray, then clamps
func contrastValue(v, contrast float32) float32 {
	return clamp01(MidGray + (v-MidGray)*contrast)
}


// Adjusts saturation, then contrast, and clamps the result to [0,1].
// Saturation scales HCL chroma; contrast applies mid+(v-mid)*contrast per channel.
// A factor of exactly 1 skips the respective transform.
func AdjustColors(in *ColorBuffer, saturation, contrast float32, c *Context) (*ColorBuffer, error) {
	if in==nil || in.Width<=0 || in.Height<=0 { return nil, ErrEmptyBuffer }
	if !(saturation>=0) || math.IsInf(float64(saturation), 0) {
		return nil, newParameterError("saturation", saturation, "must be >= 0 and finite")
	}
	if !(contrast>=0) || math.IsInf(float64(contrast), 0) {
		return nil, newParameterError("contrast", contrast, "must be >= 0 and finite")
	}

	doSat, doCon:=saturation!=1, contrast!=1
	sat:=float64(saturation)
	pf:=func(r, g, b float32) (float32, float32, float32) {
		r, g, b=clamp01(r), clamp01(g), clamp01(b)
		if doSat {
			r, g, b=saturatePixel(r, g, b, sat)
		}
		if doCon {
			r, g, b=contrastValue(r, contrast), contrastValue(g, contrast), contrastValue(b, contrast)
		}
		return r, g, b
	}
	return in.MapRGB(pf, c), nil
}


// Color adjustment operator
type OpColorAdjust struct {
	Active     bool     `json:"active"`
	Saturation float32  `json:"saturation"`
	Contrast   float32  `json:"contrast"`
}

func NewOpColorAdjust(saturation, contrast float32) *OpColorAdjust {
	return &OpColorAdjust{Active: true, Saturation: saturation, Contrast: contrast}
}

func (op *OpColorAdjust) String() string {
	return fmt.Sprintf("saturation %.3g contrast %.3g", op.Saturation, op.Contrast)
}

func (op *OpColorAdjust) Apply(in *ColorBuffer, c *Context) (*ColorBuffer, error) {
	if !op.Active { return in, nil }
	if op.Saturation!=1 {
		fmt.Fprintf(c.logWriter(), "Multiplying HCL chroma (saturation) by %.3g...\n", op.Saturation)
	}
	if op.Contrast!=1 {
		fmt.Fprintf(c.logWriter(), "Applying contrast %.3g around mid gray %.2g...\n", op.Contrast, MidGray)
	}
	return AdjustColors(in, op.Saturation, op.Contrast, c)
}
