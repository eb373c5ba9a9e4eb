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

	"gonum.org/v1/gonum/floats"
)


// Largest accepted blur standard deviation in pixels. Bounds the kernel to 6001 taps
const MaxBlurSigma=1000


// Returns a normalized 1D Gaussian kernel of length 2*radius+1, with radius=ceil(3*sigma)
func GaussianKernel(sigma float32) (kernel []float64, radius int, err error) {
	s:=float64(sigma)
	if !(s>0 && s<=MaxBlurSigma) {
		return nil, 0, newParameterError("blur_sigma", sigma, fmt.Sprintf("must be in (0,%d]", MaxBlurSigma))
	}
	radius=int(math.Ceil(3*s))
	kernel=make([]float64, 2*radius+1)
	twoSigmaSq:=2*s*s
	for k:=-radius; k<=radius; k++ {
		kernel[k+radius]=math.Exp(-float64(k*k)/twoSigmaSq)
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel, radius, nil
}


// Gaussian blur with standard deviation sigma. Separable: one horizontal, then one vertical pass.
// Borders are extended by half-sample symmetric reflection, which keeps the total energy
// of each channel unchanged. Returns a new buffer; the input is not modified.
func GaussianBlur(in *ColorBuffer, sigma float32, c *Context) (*ColorBuffer, error) {
	if in==nil || in.Width<=0 || in.Height<=0 {
		return nil, ErrEmptyBuffer
	}
	kernel, radius, err:=GaussianKernel(sigma)
	if err!=nil { return nil, err }

	tmp:=in.newLike()
	out:=in.newLike()
	w, h, l:=in.Width, in.Height, in.Pixels()
	threads:=c.threads()

	for ch:=0; ch<3; ch++ {
		src:=in.Data [ch*l:(ch+1)*l]
		mid:=tmp.Data[ch*l:(ch+1)*l]
		dst:=out.Data[ch*l:(ch+1)*l]

		ParallelRows(h, threads, func(lower, upper int) {
			blurRows(mid, src, w, lower, upper, kernel, radius)
		})
		ParallelRows(h, threads, func(lower, upper int) {
			blurColumns(dst, mid, w, h, lower, upper, kernel, radius)
		})
	}
	return out, nil
}

// Horizontal pass over rows [lower,upper)
func blurRows(dst, src []float32, width, lower, upper int, kernel []float64, radius int) {
	for y:=lower; y<upper; y++ {
		row:=src[y*width:(y+1)*width]
		out:=dst[y*width:(y+1)*width]
		for x:=0; x<width; x++ {
			sum:=float64(0)
			if x>=radius && x+radius<width {
				base:=x-radius
				for k, wt:=range kernel {
					sum+=wt*float64(row[base+k])
				}
			} else {
				for k, wt:=range kernel {
					sum+=wt*float64(row[reflectIndex(x+k-radius, width)])
				}
			}
			out[x]=float32(sum)
		}
	}
}

// Vertical pass, producing output rows [lower,upper)
func blurColumns(dst, src []float32, width, height, lower, upper int, kernel []float64, radius int) {
	acc:=make([]float64, width)
	for y:=lower; y<upper; y++ {
		for x:=range acc { acc[x]=0 }
		for k, wt:=range kernel {
			row:=src[reflectIndex(y+k-radius, height)*width:]
			for x:=0; x<width; x++ {
				acc[x]+=wt*float64(row[x])
			}
		}
		out:=dst[y*width:(y+1)*width]
		for x, a:=range acc {
			out[x]=float32(a)
		}
	}
}

