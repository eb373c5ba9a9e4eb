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
	"image"
	"image/jpeg"
	"io"
	"math"
	"sync"
)


// sRGB opto-electronic transfer function, linear to display-encoded
func srgbOetf(v float64) float64 {
	if v<=0.0031308 { return 12.92*v }
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// Inverse sRGB transfer function, display-encoded to linear
func srgbInvOetf(v float64) float64 {
	if v<=0.04045 { return v/12.92 }
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Linear to 8-bit sRGB, via a 4096 entry table over [0,1]
var (
	toSRGB8Once  sync.Once
	toSRGB8Table [4097]uint8
)

func linearToSRGB8(v float32) uint8 {
	toSRGB8Once.Do(func() {
		for i:=range toSRGB8Table {
			toSRGB8Table[i]=uint8(math.Round(255*srgbOetf(float64(i)/4096)))
		}
	})
	return toSRGB8Table[int(clamp01(v)*4096+0.5)]
}


// Converts the buffer to an 8-bit sRGB image. Samples are clamped to [0,1]
func (b *ColorBuffer) ToNRGBA(c *Context) *image.NRGBA {
	img:=image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	rs, gs, bs:=b.Planes()
	w:=b.Width
	ParallelRows(b.Height, c.threads(), func(lower, upper int) {
		for y:=lower; y<upper; y++ {
			pix:=img.Pix[y*img.Stride:]
			for x:=0; x<w; x++ {
				i:=y*w+x
				pix[4*x  ]=linearToSRGB8(rs[i])
				pix[4*x+1]=linearToSRGB8(gs[i])
				pix[4*x+2]=linearToSRGB8(bs[i])
				pix[4*x+3]=255
			}
		}
	})
	return img
}


// Encodes linear buffers as baseline sRGB JPEG
type JPEGEncoder struct {
	Context *Context
}

func (e JPEGEncoder) Encode(w io.Writer, b *ColorBuffer, quality int) error {
	if quality<0 || quality>100 {
		return newParameterError("jpeg_quality", quality, "must be in [0,100]")
	}
	if err:=b.Validate(); err!=nil { return err }
	if quality<1 { quality=1 }  // lowest setting the encoder supports
	img:=b.ToNRGBA(e.Context)
	if err:=jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err!=nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}
