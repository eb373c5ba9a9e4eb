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
	"bytes"
	"errors"
	"image/jpeg"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)


func TestProcessUniformGrayIsUnchanged(t *testing.T) {
	in:=uniformBuffer(t, 4, 4, 0.5)
	p:=DefaultProcessingParameters()
	p.SharpeningStrength, p.BlurSigma, p.NoiseReduction, p.Saturation, p.Contrast=1.5, 3, 0, 1.1, 1.1

	out, err:=Process(in, p, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 4, out.Height)
	for _, d:=range out.Data {
		assert.InDelta(t, 0.5, d, 1e-3)
	}
}

func TestProcessDoesNotModifyInput(t *testing.T) {
	in, err:=Synthesize(SynthParams{Width: 24, Height: 16, Noise: 0.05, Seed: 11})
	require.NoError(t, err)
	orig:=in.Clone()
	p:=DefaultProcessingParameters()
	p.NoiseReduction, p.Saturation, p.Contrast=0.5, 1.2, 1.1
	_, err=Process(in, p, nil)
	require.NoError(t, err)
	assert.Equal(t, orig.Data, in.Data)
}

func TestProcessIndependentOfThreads(t *testing.T) {
	in, err:=Synthesize(SynthParams{Width: 32, Height: 24, Noise: 0.05, Seed: 12})
	require.NoError(t, err)
	p:=DefaultProcessingParameters()
	p.NoiseReduction, p.Saturation, p.Contrast=0.6, 1.1, 1.1

	a, err:=Process(in, p, &Context{MaxThreads: 1})
	require.NoError(t, err)
	b, err:=Process(in, p, &Context{MaxThreads: 4})
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestProcessOutputInRange(t *testing.T) {
	in, err:=Synthesize(SynthParams{Width: 32, Height: 24, Noise: 0.1, Seed: 13})
	require.NoError(t, err)
	p:=DefaultProcessingParameters()
	p.SharpeningStrength, p.Saturation, p.Contrast=3, 2, 2
	out, err:=Process(in, p, nil)
	require.NoError(t, err)
	for _, d:=range out.Data {
		assert.True(t, d>=0 && d<=1, "sample %v", d)
	}
}

func TestProcessRejectsInvalidParameters(t *testing.T) {
	in:=uniformBuffer(t, 4, 4, 0.5)
	var tests = []struct {
		Mod   func(p *ProcessingParameters)
		Field string
	}{
		{func(p *ProcessingParameters) { p.SharpeningStrength=-1 }, "sharpening_strength"},
		{func(p *ProcessingParameters) { p.BlurSigma=0 }, "blur_sigma"},
		{func(p *ProcessingParameters) { p.BlurSigma=1e19 }, "blur_sigma"},
		{func(p *ProcessingParameters) { p.NoisePatchRadius=MaxPatchRadius+1 }, "noise_patch_radius"},
		{func(p *ProcessingParameters) { p.JPEGQuality=101 }, "jpeg_quality"},
		{func(p *ProcessingParameters) { p.NoiseReduction=1.5 }, "noise_reduction"},
		{func(p *ProcessingParameters) { p.Saturation=float32(math.NaN()) }, "saturation"},
		{func(p *ProcessingParameters) { p.Contrast=-0.1 }, "contrast"},
		{func(p *ProcessingParameters) { p.NoiseSearchRadius=-1 }, "noise_search_radius"},
	}
	for _, tt:=range tests {
		p:=DefaultProcessingParameters()
		tt.Mod(&p)
		out, err:=Process(in, p, nil)
		assert.Nil(t, out)
		var pe *ParameterError
		require.True(t, errors.As(err, &pe), tt.Field)
		assert.Equal(t, tt.Field, pe.Field)
	}
}

func TestProcessRejectsNonFiniteInput(t *testing.T) {
	in:=uniformBuffer(t, 4, 4, 0.5)
	in.Data[5]=float32(math.Inf(1))
	_, err:=Process(in, DefaultProcessingParameters(), nil)
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestPipelineHookSeesActiveStages(t *testing.T) {
	in:=uniformBuffer(t, 4, 4, 0.5)
	var stages []int
	pl:=NewPipeline(DefaultProcessingParameters())
	pl.Hook=func(index int, op Operator, out *ColorBuffer) error {
		stages=append(stages, index)
		return nil
	}
	_, err:=pl.Apply(in, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, stages, "noise reduction inactive at weight 0")
	assert.Contains(t, pl.String(), " -> ")
}

func TestPipelineHookErrorAborts(t *testing.T) {
	boom:=errors.New("boom")
	pl:=NewPipeline(DefaultProcessingParameters())
	pl.Hook=func(int, Operator, *ColorBuffer) error { return boom }
	out, err:=pl.Apply(uniformBuffer(t, 2, 2, 0.5), nil)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, boom))
}

func TestPipelineAllInactiveReturnsClampedCopy(t *testing.T) {
	in:=uniformBuffer(t, 2, 2, 0.5)
	in.Data[0]=1.5
	pl:=&Pipeline{Ops: []Operator{NewOpNoiseReduce(0, DefaultNLMParams())}}
	out, err:=pl.Apply(in, nil)
	require.NoError(t, err)
	assert.NotSame(t, in, out)
	assert.Equal(t, float32(1), out.Data[0])
	assert.Equal(t, float32(1.5), in.Data[0])
}


type failingEncoder struct{}

func (failingEncoder) Encode(w io.Writer, b *ColorBuffer, quality int) error {
	w.Write([]byte("partial"))
	return errors.New("encoder failed")
}

func TestRenderWritesNothingOnFailure(t *testing.T) {
	in:=uniformBuffer(t, 4, 4, 0.5)
	var buf bytes.Buffer

	err:=Render(&buf, in, DefaultProcessingParameters(), failingEncoder{}, nil)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())

	p:=DefaultProcessingParameters()
	p.BlurSigma=-1
	err=Render(&buf, in, p, JPEGEncoder{}, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Zero(t, buf.Len())
}

func TestRenderJPEG(t *testing.T) {
	in, err:=Synthesize(SynthParams{Width: 40, Height: 30, Noise: 0.02, Seed: 14})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, in, DefaultProcessingParameters(), JPEGEncoder{}, nil))

	cfg, err:=jpeg.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}
