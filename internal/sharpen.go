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
)


// Sharpens by adding (strength-1) times the difference of original and blurred
// back to the original, then clamps to [0,1]. Strength 1 is the identity.
func UnsharpMask(orig, blurred *ColorBuffer, strength float32, c *Context) (*ColorBuffer, error) {
	if !(strength>=0) || math.IsInf(float64(strength), 0) {
		return nil, newParameterError("sharpening_strength", strength, "must be >= 0 and finite")
	}
	out, err:=unsharpCombine(orig, blurred, strength-1, c)
	if err!=nil { return nil, err }
	clampInPlace(out, c)
	return out, nil
}

// Unclamped combination orig + amount*(orig-blurred)
func unsharpCombine(orig, blurred *ColorBuffer, amount float32, c *Context) (*ColorBuffer, error) {
	if orig==nil || blurred==nil { return nil, ErrEmptyBuffer }
	if err:=checkSameSize("unsharp mask", orig, blurred); err!=nil { return nil, err }

	out:=orig.newLike()
	o, b, d:=orig.Data, blurred.Data, out.Data
	w, l:=orig.Width, orig.Pixels()
	ParallelRows(orig.Height, c.threads(), func(lower, upper int) {
		for ch:=0; ch<3; ch++ {
			for i:=ch*l+lower*w; i<ch*l+upper*w; i++ {
				d[i]=o[i]+amount*(o[i]-b[i])
			}
		}
	})
	return out, nil
}

// Clamps a freshly allocated buffer to [0,1]. Only for buffers not yet handed on
func clampInPlace(b *ColorBuffer, c *Context) {
	data:=b.Data
	w, l:=b.Width, b.Pixels()
	ParallelRows(b.Height, c.threads(), func(lower, upper int) {
		for ch:=0; ch<3; ch++ {
			for i:=ch*l+lower*w; i<ch*l+upper*w; i++ {
				data[i]=clamp01(data[i])
			}
		}
	})
}


// Unsharp masking operator: Gaussian blur followed by the unsharp combination
type OpUnsharpMask struct {
	Active    bool     `json:"active"`
	Strength  float32  `json:"strength"`
	Sigma     float32  `json:"sigma"`
}

func NewOpUnsharpMask(strength, sigma float32) *OpUnsharpMask {
	return &OpUnsharpMask{Active: true, Strength: strength, Sigma: sigma}
}

func (op *OpUnsharpMask) String() string {
	return fmt.Sprintf("unsharp mask strength %.3g sigma %.3g", op.Strength, op.Sigma)
}

func (op *OpUnsharpMask) Apply(in *ColorBuffer, c *Context) (*ColorBuffer, error) {
	if !op.Active { return in, nil }
	fmt.Fprintf(c.logWriter(), "Blurring %s with sigma %.3g...\n", in, op.Sigma)
	blurred, err:=GaussianBlur(in, op.Sigma, c)
	if err!=nil { return nil, err }

	fmt.Fprintf(c.logWriter(), "Applying unsharp mask with strength %.3g...\n", op.Strength)
	return UnsharpMask(in, blurred, op.Strength, c)
}
