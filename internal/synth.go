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

	"github.com/valyala/fastrand"
)


// Parameters for a synthetic test chart
type SynthParams struct {
	Width  int
	Height int
	Noise  float32  // amplitude of uniform noise added to every sample
	Seed   uint32
}

func (p *SynthParams) String() string {
	return fmt.Sprintf("size %dx%d noise %.3g seed %d", p.Width, p.Height, p.Noise, p.Seed)
}

// Six color patches at moderate intensity: red, green, blue, cyan, magenta, yellow
var synthPatches=[6][3]float32{
	{0.6, 0.1, 0.1}, {0.1, 0.6, 0.1}, {0.1, 0.1, 0.6},
	{0.1, 0.6, 0.6}, {0.6, 0.1, 0.6}, {0.6, 0.6, 0.1},
}

// Renders a linear test chart: a gray ramp on the left half, color patches top right,
// and a checkerboard of hard edges bottom right. Uniform noise from a seeded generator
// is added, so equal parameters give equal charts.
func Synthesize(p SynthParams) (*ColorBuffer, error) {
	b, err:=NewColorBuffer(p.Width, p.Height)
	if err!=nil { return nil, err }
	if !(p.Noise>=0 && p.Noise<=1) {
		return nil, newParameterError("noise", p.Noise, "must be in [0,1]")
	}

	var rng fastrand.RNG
	rng.Seed(p.Seed)
	noise:=func() float32 {
		if p.Noise==0 { return 0 }
		return p.Noise*(float32(rng.Uint32n(1<<20))/float32(1<<19)-1)
	}

	half:=p.Width/2
	cell:=p.Height/8
	if cell<1 { cell=1 }
	for y:=0; y<p.Height; y++ {
		for x:=0; x<p.Width; x++ {
			var r, g, bl float32
			switch {
			case x<half:
				v:=float32(x)/float32(half)
				r, g, bl=v, v, v
			case y<p.Height/2:
				patch:=(x-half)*3/(p.Width-half) + 3*(y*2/p.Height)
				c:=synthPatches[patch%len(synthPatches)]
				r, g, bl=c[0], c[1], c[2]
			default:
				v:=float32(0.1)
				if ((x-half)/cell+y/cell)%2==0 { v=0.9 }
				r, g, bl=v, v, v
			}
			b.Set(x, y, clamp01(r+noise()), clamp01(g+noise()), clamp01(bl+noise()))
		}
	}
	return b, nil
}
