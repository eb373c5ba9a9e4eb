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
	"fmt"
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)


// Transfer function of decoded input samples
type Transfer int

const (
	TransferAuto   Transfer = iota // linear for TIFF and dumps, sRGB otherwise
	TransferLinear
	TransferSRGB
)

func ParseTransfer(s string) (Transfer, error) {
	switch strings.ToLower(s) {
	case "", "auto": return TransferAuto,   nil
	case "linear":   return TransferLinear, nil
	case "srgb":     return TransferSRGB,   nil
	default:         return TransferAuto, errors.New("Unknown transfer function " + s)
	}
}

func (t Transfer) String() string {
	switch t {
	case TransferLinear: return "linear"
	case TransferSRGB:   return "srgb"
	default:             return "auto"
	}
}

func isTIFF(fileName string) bool {
	ext:=strings.ToLower(filepath.Ext(fileName))
	return ext==".tif" || ext==".tiff"
}


// 16-bit sRGB to linear lookup table
var (
	fromSRGB16Once  sync.Once
	fromSRGB16Table []float32
)

func srgb16ToLinear(v uint32) float32 {
	fromSRGB16Once.Do(func() {
		fromSRGB16Table=make([]float32, 65536)
		for i:=range fromSRGB16Table {
			fromSRGB16Table[i]=float32(srgbInvOetf(float64(i)/65535))
		}
	})
	return fromSRGB16Table[v]
}


// Converts a decoded image to a linear color buffer. Gray images are expanded to three equal channels.
// If linear is false, samples are treated as sRGB encoded and linearized.
func FromImage(img image.Image, linear bool) (*ColorBuffer, error) {
	bounds:=img.Bounds()
	b, err:=NewColorBuffer(bounds.Dx(), bounds.Dy())
	if err!=nil { return nil, err }
	conv:=srgb16ToLinear
	if linear {
		conv=func(v uint32) float32 { return float32(v)/65535 }
	}
	for y:=0; y<b.Height; y++ {
		for x:=0; x<b.Width; x++ {
			r, g, bl, _:=img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			b.Set(x, y, conv(r), conv(g), conv(bl))
		}
	}
	return b, nil
}


// Loads an input buffer from a float dump, TIFF, PNG, JPEG or WebP file
func LoadColorBuffer(fileName string, t Transfer) (*ColorBuffer, error) {
	f, err:=os.Open(filepath.Clean(fileName))
	if err!=nil { return nil, err }
	defer f.Close()
	b, err:=DecodeColorBuffer(f, fileName, t)
	if err!=nil { return nil, fmt.Errorf("%s: %w", fileName, err) }
	return b, nil
}

// Decodes an input buffer from r. The name only selects the format by its extension
func DecodeColorBuffer(r io.Reader, name string, t Transfer) (*ColorBuffer, error) {
	if IsDumpFile(name) {
		return ReadDump(r)
	}

	var img image.Image
	var err error
	if isTIFF(name) {
		img, err=tiff.Decode(r)
	} else {
		img, _, err=image.Decode(r)
	}
	if err!=nil { return nil, err }

	linear:=t==TransferLinear || (t==TransferAuto && isTIFF(name))
	return FromImage(img, linear)
}
