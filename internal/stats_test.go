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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


func TestCalcBasicStats(t *testing.T) {
	s:=CalcBasicStats([]float32{4, 1, 3, 2, 5})
	assert.Equal(t, float32(1), s.Min)
	assert.Equal(t, float32(5), s.Max)
	assert.Equal(t, float32(3), s.Mean)
	assert.Equal(t, float32(3), s.Median)
	assert.InDelta(t, 1.5811, s.StdDev, 1e-4)
	assert.Equal(t, 15.0, s.Sum)

	assert.Equal(t, &BasicStats{}, CalcBasicStats(nil))
}

func TestCalcColorStatsLuminance(t *testing.T) {
	b:=uniformBuffer(t, 3, 3, 0.5)
	s:=CalcColorStats(b)
	assert.InDelta(t, 0.5, s.Y.Mean, 1e-3, "gray luminance equals its channels")
	assert.InDelta(t, 3*9*0.5, s.Energy(), 1e-9)
	assert.Contains(t, s.String(), "Y: ")
}

func TestSynthesizeDeterministic(t *testing.T) {
	p:=SynthParams{Width: 40, Height: 24, Noise: 0.05, Seed: 5}
	a, err:=Synthesize(p)
	require.NoError(t, err)
	b, err:=Synthesize(p)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)

	p.Seed=6
	c, err:=Synthesize(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data, c.Data)
	assert.NoError(t, c.Validate())
}

func TestSynthesizeLayout(t *testing.T) {
	b, err:=Synthesize(SynthParams{Width: 60, Height: 40})
	require.NoError(t, err)

	r, g, bl:=b.At(0, 0)
	assert.Equal(t, []float32{0, 0, 0}, []float32{r, g, bl}, "ramp starts black")
	r, g, bl=b.At(35, 5)
	assert.Equal(t, synthPatches[0], [3]float32{r, g, bl}, "first patch top right")
	for _, d:=range b.Data {
		assert.True(t, d>=0 && d<=1)
	}
}

func TestSynthesizeRejectsBadParams(t *testing.T) {
	_, err:=Synthesize(SynthParams{Width: 0, Height: 4})
	assert.True(t, errors.Is(err, ErrEmptyBuffer))
	_, err=Synthesize(SynthParams{Width: 4, Height: 4, Noise: 2})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestImageLevelParallelism(t *testing.T) {
	assert.Equal(t, 1, ImageLevelParallelism(1, 8, 1<<20))
	assert.Equal(t, 3, ImageLevelParallelism(3, 8, 1<<20))
	assert.Equal(t, 1, ImageLevelParallelism(10, 8, 1<<62), "memory bound")
	assert.Equal(t, 1, ImageLevelParallelism(0, 8, 0))

	small:=EstimatePeakMemory(100, 100, DefaultProcessingParameters())
	p:=DefaultProcessingParameters()
	p.NoiseReduction=0.5
	assert.Greater(t, EstimatePeakMemory(100, 100, p), small)
}
