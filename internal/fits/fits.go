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

package fits

import (
	"fmt"
	"strings"

	"github.com/mlnoga/medfilt/internal/stats"
)

// A FITS image.
// Standard here: https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf
// Primer here: https://fits.gsfc.nasa.gov/fits_primer.html
type Image struct {
	ID       int    // Sequential ID number, for log output. Counted upwards from 0
	FileName string // Original file name, if any, for log output.

	Header Header  // The header with all keys, values, comments, history entries etc.
	Bitpix int32   // Bits per pixel value from the header. Positive values are integral, negative floating.
	Bzero  float32 // Zero offset. True pixel value is Bzero + Bscale * Data[i].
	Bscale float32 // Value scaler. True pixel value is Bzero + Bscale * Data[i].
	Naxisn []int32 // Axis dimensions. Most quickly varying dimension first (i.e. X,Y,channel)
	Pixels int32   // Number of pixels in the image. Product of Naxisn[]

	Data []float32 // The image data, row-major, one plane per channel

	Exposure float32 // Image exposure in seconds

	Stats *stats.Stats // Basic image statistics
}

// FITS header data
type Header struct {
	Bools    map[string]bool
	Ints     map[string]int32
	Floats   map[string]float32
	Strings  map[string]string
	Dates    map[string]string
	Comments []string
	History  []string
	End      bool
	Length   int32
}

// Creates a FITS header initialized with empty maps and arrays
func NewHeader() Header {
	return Header{
		Bools:    make(map[string]bool),
		Ints:     make(map[string]int32),
		Floats:   make(map[string]float32),
		Strings:  make(map[string]string),
		Dates:    make(map[string]string),
		Comments: make([]string, 0),
		History:  make([]string, 0),
		End:      false,
	}
}

const fitsBlockSize int = 2880 // Block size of FITS header and data units
const HeaderLineSize int = 80  // Line size of a FITS header

// Creates a FITS image initialized with empty header
func NewImage() *Image {
	return &Image{
		Header: NewHeader(),
		Bscale: 1,
	}
}

// Creates a FITS image from given naxisn. Data is not copied, allocated if nil. naxisn is deep copied
func NewImageFromNaxisn(naxisn []int32, data []float32) *Image {
	numPixels := int32(1)
	for _, naxis := range naxisn {
		numPixels *= naxis
	}
	if data == nil {
		data = make([]float32, numPixels)
	}
	return &Image{
		Header: NewHeader(),
		Bitpix: -32,
		Bscale: 1,
		Naxisn: append([]int32(nil), naxisn...), // clone slice
		Pixels: numPixels,
		Data:   data,
		Stats:  stats.NewStats(data),
	}
}

// Creates a new image with the metadata of img, the given dimensions and the given data
func NewImageFromImage(img *Image, naxisn []int32, data []float32) *Image {
	res := NewImageFromNaxisn(naxisn, data)
	res.ID, res.FileName, res.Exposure = img.ID, img.FileName, img.Exposure
	res.Header.History = append(res.Header.History, img.Header.History...)
	return res
}

func (f *Image) Width() int  { return int(f.Naxisn[0]) }
func (f *Image) Height() int { return int(f.Naxisn[1]) }

// Returns the number of color channels, 1 for monochrome images
func (f *Image) Channels() int {
	if len(f.Naxisn) < 3 {
		return 1
	}
	return int(f.Naxisn[2])
}

// Returns the pixels of the given channel
func (f *Image) Channel(c int) []float32 {
	size := f.Width() * f.Height()
	return f.Data[c*size : (c+1)*size]
}

// Checks the image is a 2D monochrome or 3D multi-channel image with consistent data
func (f *Image) Validate() error {
	if len(f.Naxisn) < 2 || len(f.Naxisn) > 3 {
		return fmt.Errorf("%d: unsupported image with %d axes", f.ID, len(f.Naxisn))
	}
	pixels := 1
	for _, n := range f.Naxisn {
		if n <= 0 {
			return fmt.Errorf("%d: invalid image dimensions %s", f.ID, f.DimensionsToString())
		}
		pixels *= int(n)
	}
	if pixels != len(f.Data) {
		return fmt.Errorf("%d: image %s has %d pixels of data", f.ID, f.DimensionsToString(), len(f.Data))
	}
	return nil
}

func (f *Image) DimensionsToString() string {
	b := strings.Builder{}
	for i, naxis := range f.Naxisn {
		if i > 0 {
			fmt.Fprintf(&b, "x%d", naxis)
		} else {
			fmt.Fprintf(&b, "%d", naxis)
		}
	}
	return b.String()
}
