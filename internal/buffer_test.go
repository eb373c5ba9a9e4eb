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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


// Returns a buffer with every sample set to v
func uniformBuffer(t *testing.T, w, h int, v float32) *ColorBuffer {
	b, err:=NewColorBuffer(w, h)
	require.NoError(t, err)
	for i:=range b.Data { b.Data[i]=v }
	return b
}

func TestNewColorBuffer(t *testing.T) {
	b, err:=NewColorBuffer(4, 3)
	require.NoError(t, err)
	assert.Equal(t, 12, b.Pixels())
	assert.Len(t, b.Data, 36)
	assert.Equal(t, "4x3", b.String())

	for _, sz:=range [][2]int{{0, 3}, {3, 0}, {-1, 2}} {
		_, err:=NewColorBuffer(sz[0], sz[1])
		assert.True(t, errors.Is(err, ErrEmptyBuffer), "size %v", sz)
	}
}

func TestNewColorBufferFromData(t *testing.T) {
	_, err:=NewColorBufferFromData(2, 2, make([]float32, 11))
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	b, err:=NewColorBufferFromData(2, 2, make([]float32, 12))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Width)
}

func TestPlanarLayout(t *testing.T) {
	b, err:=NewColorBuffer(3, 2)
	require.NoError(t, err)
	b.Set(2, 1, 0.1, 0.2, 0.3)

	rs, gs, bs:=b.Planes()
	assert.Equal(t, float32(0.1), rs[5])
	assert.Equal(t, float32(0.2), gs[5])
	assert.Equal(t, float32(0.3), bs[5])
	assert.Equal(t, float32(0.2), b.Data[6+5])

	r, g, bl:=b.At(2, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, []float32{r, g, bl})
}

func TestCloneIsDeep(t *testing.T) {
	b:=uniformBuffer(t, 2, 2, 0.25)
	c:=b.Clone()
	c.Data[0]=1
	assert.Equal(t, float32(0.25), b.Data[0])
}

func TestValidate(t *testing.T) {
	assert.NoError(t, uniformBuffer(t, 2, 2, 0.5).Validate())

	var nilBuf *ColorBuffer
	assert.True(t, errors.Is(nilBuf.Validate(), ErrEmptyBuffer))

	short:=&ColorBuffer{Width: 2, Height: 2, Data: make([]float32, 3)}
	assert.True(t, errors.Is(short.Validate(), ErrDimensionMismatch))

	for _, v:=range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
		b:=uniformBuffer(t, 2, 2, 0.5)
		b.Data[7]=v
		assert.True(t, errors.Is(b.Validate(), ErrNonFinite), "value %v", v)
	}
}

func TestClamp01(t *testing.T) {
	var tests = []struct {
		In     float32
		Expect float32
	}{
		{-0.5, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{2.5, 1},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 1},
		{float32(math.Inf(-1)), 0},
	}
	for _, tt:=range tests {
		assert.Equal(t, tt.Expect, clamp01(tt.In), "clamp01(%v)", tt.In)
	}
}

func TestClampedLeavesInput(t *testing.T) {
	b:=uniformBuffer(t, 2, 1, 0.5)
	b.Data[0], b.Data[1]=-1, 2
	c:=b.Clamped()
	assert.Equal(t, float32(0), c.Data[0])
	assert.Equal(t, float32(1), c.Data[1])
	assert.Equal(t, float32(-1), b.Data[0])
}

func TestReflectIndex(t *testing.T) {
	// n=3 extends as ... 2 1 0 | 0 1 2 | 2 1 0 | 0 1 2 ...
	var tests = []struct {
		I, N, Expect int
	}{
		{0, 3, 0}, {2, 3, 2},
		{-1, 3, 0}, {-2, 3, 1}, {-3, 3, 2}, {-4, 3, 2},
		{3, 3, 2}, {4, 3, 1}, {5, 3, 0}, {6, 3, 0},
		{-1, 1, 0}, {7, 1, 0},
	}
	for _, tt:=range tests {
		assert.Equal(t, tt.Expect, reflectIndex(tt.I, tt.N), "reflectIndex(%d,%d)", tt.I, tt.N)
	}
}
