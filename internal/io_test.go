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
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)


func TestDumpRoundtrip(t *testing.T) {
	in, err:=Synthesize(SynthParams{Width: 33, Height: 17, Noise: 0.1, Seed: 21})
	require.NoError(t, err)
	in.Data[0]=1.75  // out of range samples survive

	var buf bytes.Buffer
	require.NoError(t, WriteDump(&buf, in))
	out, err:=ReadDump(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDumpFile(t *testing.T) {
	in:=uniformBuffer(t, 3, 2, 0.25)
	fileName:=filepath.Join(t.TempDir(), "sub", "x"+DumpExt)
	require.NoError(t, WriteDumpFile(fileName, in))

	out, err:=LoadColorBuffer(fileName, TransferSRGB)  // transfer does not apply to dumps
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
}

func TestReadDumpRejectsGarbage(t *testing.T) {
	_, err:=ReadDump(bytes.NewReader([]byte("definitely not zstd")))
	assert.Error(t, err)
}

// Compresses a bare dump header claiming the given size, followed by the given number of samples
func dumpHeaderOnly(t *testing.T, width, height uint32, samples int) []byte {
	var buf bytes.Buffer
	enc, err:=zstd.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, binary.Write(enc, binary.LittleEndian, dumpMagic))
	require.NoError(t, binary.Write(enc, binary.LittleEndian, []uint32{width, height}))
	require.NoError(t, binary.Write(enc, binary.LittleEndian, make([]float32, samples)))
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestReadDumpBoundsSize(t *testing.T) {
	var tests = []struct {
		Width, Height uint32
		Samples       int
		Expect        string
	}{
		{1<<16, 1<<16, 0, "too large"},
		{1<<20, 2, 0, "too large"},
		{1<<14, 1<<13, 0, "too large"},      // sides fine, pixel count not
		{4096, 4096, 1000, "truncated"},     // accepted size, short stream
		{0, 5, 0, "empty"},
	}
	for _, tt:=range tests {
		_, err:=ReadDump(bytes.NewReader(dumpHeaderOnly(t, tt.Width, tt.Height, tt.Samples)))
		assert.ErrorContains(t, err, tt.Expect, "%dx%d", tt.Width, tt.Height)
	}

	b, err:=ReadDump(bytes.NewReader(dumpHeaderOnly(t, 300, 200, 3*300*200)))
	require.NoError(t, err)
	assert.Equal(t, "300x200", b.String())
}

func TestServedDumpUploadTooLarge(t *testing.T) {
	_, err:=DecodeColorBuffer(bytes.NewReader(dumpHeaderOnly(t, 1<<16, 1<<16, 0)), "upload"+DumpExt, TransferAuto)
	assert.ErrorContains(t, err, "too large")
}

func TestIsDumpFile(t *testing.T) {
	assert.True(t, IsDumpFile("a/b.clb.zst"))
	assert.True(t, IsDumpFile("B.CLB.ZST"))
	assert.False(t, IsDumpFile("b.zst"))
	assert.False(t, IsDumpFile("b.tif"))
}

func TestParseTransfer(t *testing.T) {
	for s, want:=range map[string]Transfer{"": TransferAuto, "auto": TransferAuto, "Linear": TransferLinear, "sRGB": TransferSRGB} {
		got, err:=ParseTransfer(s)
		require.NoError(t, err)
		assert.Equal(t, want, got, s)
		assert.NotEmpty(t, got.String())
	}
	_, err:=ParseTransfer("gamma22")
	assert.Error(t, err)
}

func TestSRGBTransferInverse(t *testing.T) {
	for _, v:=range []float64{0, 0.001, 0.01, 0.2, 0.5, 0.99, 1} {
		assert.InDelta(t, v, srgbInvOetf(srgbOetf(v)), 1e-9)
	}
	assert.Equal(t, uint8(0),   linearToSRGB8(-1))
	assert.Equal(t, uint8(255), linearToSRGB8(1))
	assert.Equal(t, uint8(255), linearToSRGB8(float32(math.Inf(1))))
	assert.Equal(t, uint8(188), linearToSRGB8(0.5))
}

func TestFromImageExpandsGray(t *testing.T) {
	img:=image.NewGray16(image.Rect(0, 0, 2, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 65535})

	b, err:=FromImage(img, true)
	require.NoError(t, err)
	r, g, bl:=b.At(1, 0)
	assert.Equal(t, []float32{1, 1, 1}, []float32{r, g, bl})
	r, g, bl=b.At(0, 0)
	assert.Equal(t, []float32{0, 0, 0}, []float32{r, g, bl})
}

func TestDecodeTransfer(t *testing.T) {
	img:=image.NewRGBA64(image.Rect(0, 0, 1, 1))
	img.SetRGBA64(0, 0, color.RGBA64{R: 0x8000, G: 0x8000, B: 0x8000, A: 0xffff})

	var tbuf bytes.Buffer
	require.NoError(t, tiff.Encode(&tbuf, img, nil))
	lin, err:=DecodeColorBuffer(bytes.NewReader(tbuf.Bytes()), "x.tif", TransferAuto)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, lin.Data[0], 1e-4, "tiff is linear by default")

	var pbuf bytes.Buffer
	require.NoError(t, png.Encode(&pbuf, img))
	srgb, err:=DecodeColorBuffer(bytes.NewReader(pbuf.Bytes()), "x.png", TransferAuto)
	require.NoError(t, err)
	assert.InDelta(t, 0.214, srgb.Data[0], 1e-3, "png is sRGB by default")

	forced, err:=DecodeColorBuffer(bytes.NewReader(pbuf.Bytes()), "x.png", TransferLinear)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, forced.Data[0], 1e-4)
}

func TestJPEGEncoderQuality(t *testing.T) {
	b:=uniformBuffer(t, 8, 8, 0.5)
	var buf bytes.Buffer
	require.NoError(t, JPEGEncoder{}.Encode(&buf, b, 0))
	assert.NotZero(t, buf.Len())

	buf.Reset()
	err:=JPEGEncoder{}.Encode(&buf, b, 101)
	var pe *ParameterError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "jpeg_quality", pe.Field)
	assert.Zero(t, buf.Len())
}

func TestMakePreview(t *testing.T) {
	b:=uniformBuffer(t, 200, 100, 0.3)
	p, err:=MakePreview(b, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Width)
	assert.Equal(t, 25, p.Height)
	for _, d:=range p.Data {
		assert.InDelta(t, 0.3, d, 1e-3)
	}

	same, err:=MakePreview(b, 400)
	require.NoError(t, err)
	assert.Same(t, b, same)
}
