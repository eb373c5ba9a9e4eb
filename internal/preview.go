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
	"image"
	"image/color"

	"github.com/nfnt/resize"
)


// Converts the buffer to a 16-bit image without changing the transfer function. Samples are clamped
func (b *ColorBuffer) ToRGBA64Linear() *image.RGBA64 {
	img:=image.NewRGBA64(image.Rect(0, 0, b.Width, b.Height))
	for y:=0; y<b.Height; y++ {
		for x:=0; x<b.Width; x++ {
			r, g, bl:=b.At(x, y)
			img.SetRGBA64(x, y, color.RGBA64{
				R: uint16(clamp01(r)*65535+0.5),
				G: uint16(clamp01(g)*65535+0.5),
				B: uint16(clamp01(bl)*65535+0.5),
				A: 0xffff,
			})
		}
	}
	return img
}

// Returns a copy downscaled in linear light so that neither side exceeds maxSide.
// Buffers that already fit are returned unchanged.
func MakePreview(b *ColorBuffer, maxSide int) (*ColorBuffer, error) {
	if maxSide<=0 || (b.Width<=maxSide && b.Height<=maxSide) { return b, nil }
	thumb:=resize.Thumbnail(uint(maxSide), uint(maxSide), b.ToRGBA64Linear(), resize.Lanczos3)
	return FromImage(thumb, true)
}
