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


// A linear-light RGB image with float32 samples, nominally in [0,1].
// Data is planar: the full red plane, then green, then blue, each stored row by row.
// Buffers handed from one stage to the next are treated as read-only.
type ColorBuffer struct {
	Width  int
	Height int
	Data   []float32
}

// Allocate a new zero-valued buffer with the given dimensions
func NewColorBuffer(width, height int) (*ColorBuffer, error) {
	if width<=0 || height<=0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, width, height)
	}
	return &ColorBuffer{
		Width : width,
		Height: height,
		Data  : make([]float32, 3*width*height),
	}, nil
}

// Wrap existing planar data. The buffer takes ownership of data
func NewColorBufferFromData(width, height int, data []float32) (*ColorBuffer, error) {
	if width<=0 || height<=0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyBuffer, width, height)
	}
	if len(data)!=3*width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx3", ErrDimensionMismatch, len(data), width, height)
	}
	return &ColorBuffer{Width: width, Height: height, Data: data}, nil
}

// Number of pixels per channel plane
func (b *ColorBuffer) Pixels() int {
	return b.Width*b.Height
}

// Returns the three channel planes
func (b *ColorBuffer) Planes() (rs, gs, bs []float32) {
	l:=b.Pixels()
	return b.Data[:l], b.Data[l:2*l], b.Data[2*l:]
}

// Returns the RGB triple at the given coordinates
func (b *ColorBuffer) At(x, y int) (r, g, bl float32) {
	l, i:=b.Pixels(), y*b.Width+x
	return b.Data[i], b.Data[i+l], b.Data[i+2*l]
}

// Sets the RGB triple at the given coordinates
func (b *ColorBuffer) Set(x, y int, r, g, bl float32) {
	l, i:=b.Pixels(), y*b.Width+x
	b.Data[i], b.Data[i+l], b.Data[i+2*l]=r, g, bl
}

// Allocates an uninitialized buffer of the same size
func (b *ColorBuffer) newLike() *ColorBuffer {
	return &ColorBuffer{Width: b.Width, Height: b.Height, Data: make([]float32, len(b.Data))}
}

// Returns a deep copy
func (b *ColorBuffer) Clone() *ColorBuffer {
	c:=b.newLike()
	copy(c.Data, b.Data)
	return c
}

// Checks the buffer is non-empty, consistent, and all samples are finite
func (b *ColorBuffer) Validate() error {
	if b==nil || b.Width<=0 || b.Height<=0 {
		return ErrEmptyBuffer
	}
	if len(b.Data)!=3*b.Width*b.Height {
		return fmt.Errorf("%w: %d samples for %dx%dx3", ErrDimensionMismatch, len(b.Data), b.Width, b.Height)
	}
	for i, d:=range b.Data {
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
			return fmt.Errorf("%w: %v at sample %d", ErrNonFinite, d, i)
		}
	}
	return nil
}

// Returns a copy with all samples clamped to [0,1]
func (b *ColorBuffer) Clamped() *ColorBuffer {
	c:=b.newLike()
	for i, d:=range b.Data {
		c.Data[i]=clamp01(d)
	}
	return c
}

func (b *ColorBuffer) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}


// Clamp to [0,1]. NaN maps to 0, +Inf to 1 and -Inf to 0
func clamp01(v float32) float32 {
	if v>=1 { return 1 }
	if v>0  { return v }
	return 0   // also catches NaN, for which all comparisons are false
}

// Maps a coordinate onto [0,n) by half-sample symmetric reflection, i.e. cba|abc|cba.
// Periodic with period 2n, so offsets larger than the image are well defined.
func reflectIndex(i, n int) int {
	if i>=0 && i<n { return i }
	period:=2*n
	i%=period
	if i<0 { i+=period }
	if i>=n { i=period-1-i }
	return i
}
