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


// Tuning for non-local means denoising. Defaults follow the common 7x7 patch and 21x21 search window
type NLMParams struct {
	H            float32  `json:"h"            yaml:"h"`             // filter strength on the [0,1] scale
	PatchRadius  int      `json:"patchRadius"  yaml:"patch_radius"`
	SearchRadius int      `json:"searchRadius" yaml:"search_radius"`
}

// Largest accepted window radii. The search window costs (2r+1)^2 patch comparisons per pixel
const (
	MaxPatchRadius  = 15
	MaxSearchRadius = 50
)

func DefaultNLMParams() NLMParams {
	return NLMParams{H: 10.0/255.0, PatchRadius: 3, SearchRadius: 10}
}

func (p NLMParams) String() string {
	return fmt.Sprintf("h %.4g patch %dx%d search %dx%d", p.H, 2*p.PatchRadius+1, 2*p.PatchRadius+1,
	                   2*p.SearchRadius+1, 2*p.SearchRadius+1)
}

func (p NLMParams) Validate() error {
	if !(p.H>0) || math.IsInf(float64(p.H), 0) {
		return newParameterError("noise_h", p.H, "must be positive and finite")
	}
	if p.PatchRadius<0 || p.PatchRadius>MaxPatchRadius {
		return newParameterError("noise_patch_radius", p.PatchRadius, fmt.Sprintf("must be in [0,%d]", MaxPatchRadius))
	}
	if p.SearchRadius<0 || p.SearchRadius>MaxSearchRadius {
		return newParameterError("noise_search_radius", p.SearchRadius, fmt.Sprintf("must be in [0,%d]", MaxSearchRadius))
	}
	return nil
}


// Reduces noise by blending the non-local means estimate with the original:
// out = (1-weight)*in + weight*denoised. Weight 0 returns an exact copy.
func ReduceNoise(in *ColorBuffer, weight float32, p NLMParams, c *Context) (*ColorBuffer, error) {
	if in==nil || in.Width<=0 || in.Height<=0 { return nil, ErrEmptyBuffer }
	if !(weight>=0 && weight<=1) {
		return nil, newParameterError("noise_reduction", weight, "must be in [0,1]")
	}
	if err:=p.Validate(); err!=nil { return nil, err }
	if weight==0 { return in.Clone(), nil }

	den:=NonLocalMeans(in, p, c)
	if weight==1 { return den, nil }

	orig:=float32(1)-weight
	for i, d:=range den.Data {
		den.Data[i]=clamp01(orig*in.Data[i] + weight*d)
	}
	return den, nil
}


// Padded planar copy of an image, so patch comparisons need no bounds checks
type paddedPlanes struct {
	pad    int
	stride int
	planes [3][]float32
}

func newPaddedPlanes(in *ColorBuffer, pad int) *paddedPlanes {
	w, h, l:=in.Width, in.Height, in.Pixels()
	pw, ph:=w+2*pad, h+2*pad
	pp:=&paddedPlanes{pad: pad, stride: pw}
	for ch:=0; ch<3; ch++ {
		src:=in.Data[ch*l:(ch+1)*l]
		dst:=make([]float32, pw*ph)
		for y:=0; y<ph; y++ {
			sy:=reflectIndex(y-pad, h)
			for x:=0; x<pw; x++ {
				dst[y*pw+x]=src[sy*w+reflectIndex(x-pad, w)]
			}
		}
		pp.planes[ch]=dst
	}
	return pp
}

// Returns the edge-preserving non-local means estimate of the image. Each output pixel is a weighted
// mean over the search window, weighted by exp(-d2/h^2) where d2 is the mean squared RGB difference
// of the surrounding patches. Rows are processed in parallel; the result does not depend on the split.
func NonLocalMeans(in *ColorBuffer, p NLMParams, c *Context) *ColorBuffer {
	out:=in.newLike()
	pr, sr:=p.PatchRadius, p.SearchRadius
	pp:=newPaddedPlanes(in, pr+sr)
	w, l:=in.Width, in.Pixels()
	invH2:=1/(float64(p.H)*float64(p.H))
	patchSamples:=float64(3*(2*pr+1)*(2*pr+1))

	ParallelRows(in.Height, c.threads(), func(lower, upper int) {
		for y:=lower; y<upper; y++ {
			for x:=0; x<w; x++ {
				var sum [3]float64
				wsum:=float64(0)
				refIdx:=(y+pp.pad)*pp.stride + x+pp.pad

				for dy:=-sr; dy<=sr; dy++ {
					for dx:=-sr; dx<=sr; dx++ {
						candIdx:=refIdx + dy*pp.stride + dx
						d2:=pp.patchDistance(refIdx, candIdx, pr)
						wt:=math.Exp(-d2/patchSamples*invH2)
						wsum+=wt
						for ch:=0; ch<3; ch++ {
							sum[ch]+=wt*float64(pp.planes[ch][candIdx])
						}
					}
				}

				i:=y*w+x
				for ch:=0; ch<3; ch++ {
					out.Data[ch*l+i]=clamp01(float32(sum[ch]/wsum))
				}
			}
		}
	})
	return out
}

// Sum of squared differences over all channels between the patches centered at a and b
func (pp *paddedPlanes) patchDistance(a, b, radius int) float64 {
	d2:=float64(0)
	for ch:=0; ch<3; ch++ {
		plane:=pp.planes[ch]
		for py:=-radius; py<=radius; py++ {
			ra:=a+py*pp.stride
			rb:=b+py*pp.stride
			for px:=-radius; px<=radius; px++ {
				d:=float64(plane[ra+px]-plane[rb+px])
				d2+=d*d
			}
		}
	}
	return d2
}


// Noise reduction operator. Inactive for weight 0, which is the identity anyway
type OpNoiseReduce struct {
	Active  bool       `json:"active"`
	Weight  float32    `json:"weight"`
	NLM     NLMParams  `json:"nlm"`
}

func NewOpNoiseReduce(weight float32, nlm NLMParams) *OpNoiseReduce {
	return &OpNoiseReduce{Active: weight>0, Weight: weight, NLM: nlm}
}

func (op *OpNoiseReduce) String() string {
	return fmt.Sprintf("noise reduction weight %.3g %s", op.Weight, op.NLM)
}

func (op *OpNoiseReduce) Apply(in *ColorBuffer, c *Context) (*ColorBuffer, error) {
	if !op.Active { return in, nil }
	fmt.Fprintf(c.logWriter(), "Reducing noise with weight %.3g, %s...\n", op.Weight, op.NLM)
	return ReduceNoise(in, op.Weight, op.NLM, c)
}
