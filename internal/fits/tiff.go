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
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/mlnoga/medfilt/internal/stats"
	"golang.org/x/image/tiff"
)

// Write a FITS image to 16-bit TIFF, mapping [min,max] to the full range.
// Monochrome images are written as grayscale, three-channel ones as RGB.
func (f *Image) WriteTIFF16ToFile(fileName string, min, max float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := f.WriteTIFF16(writer, min, max); err != nil {
		return err
	}
	return writer.Flush()
}

// Write a FITS image to 16-bit TIFF, mapping [min,max] to the full range.
func (f *Image) WriteTIFF16(writer io.Writer, min, max float32) error {
	width, height := f.Width(), f.Height()
	rect := image.Rect(0, 0, width, height)
	scale := float32(0)
	if max > min {
		scale = 1 / (max - min)
	}
	toUint16 := func(v float32) uint16 {
		v = (v - min) * scale
		// replace NaNs with zeros for export
		if math.IsNaN(float64(v)) || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint16(math.Round(float64(v) * 65535))
	}

	var img image.Image
	switch f.Channels() {
	case 1:
		gray := image.NewGray16(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				gray.SetGray16(x, y, color.Gray16{Y: toUint16(f.Data[y*width+x])})
			}
		}
		img = gray
	case 3:
		r, g, b := f.Channel(0), f.Channel(1), f.Channel(2)
		rgb := image.NewRGBA64(rect)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				rgb.SetRGBA64(x, y, color.RGBA64{R: toUint16(r[i]), G: toUint16(g[i]), B: toUint16(b[i]), A: 65535})
			}
		}
		img = rgb
	default:
		return fmt.Errorf("%d: cannot write %d channels to TIFF", f.ID, f.Channels())
	}

	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false})
}

// Read a color or grayscale TIFF image file into a FITS image.
func (f *Image) ReadTIFFFile(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	f.FileName = fileName
	return f.ReadTIFF(bufio.NewReader(file))
}

// Read a color or grayscale TIFF image into a FITS image. Pixel values are in [0,65535].
func (f *Image) ReadTIFF(reader io.Reader) error {
	t, err := tiff.Decode(reader)
	if err != nil {
		return fmt.Errorf("%d: %w", f.ID, err)
	}

	// determine width, height, color depth and number of color channels
	bounds := t.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	bitpix, channels := colorModelToBitpixAndChannels(t.ColorModel())
	if channels == 0 {
		return fmt.Errorf("%d: unsupported TIFF color model", f.ID)
	}

	f.Bitpix = bitpix
	f.Naxisn = []int32{int32(width), int32(height), channels}
	if channels == 1 {
		f.Naxisn = f.Naxisn[:2]
	}
	f.Pixels = int32(width) * int32(height) * channels
	f.Bzero, f.Bscale = 0, 1
	f.Data = make([]float32, f.Pixels)

	size := width * height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := t.At(bounds.Min.X+x, bounds.Min.Y+y)
			i := y*width + x
			if channels == 1 {
				f.Data[i] = float32(color.Gray16Model.Convert(c).(color.Gray16).Y)
				continue
			}
			r, g, b, _ := c.RGBA()
			f.Data[i] = float32(r)
			f.Data[i+size] = float32(g)
			f.Data[i+2*size] = float32(b)
		}
	}

	f.Stats = stats.NewStats(f.Data)
	return nil
}

func colorModelToBitpixAndChannels(m color.Model) (bitpix, channels int32) {
	switch m {
	case color.RGBAModel, color.NRGBAModel:
		return 8, 3
	case color.RGBA64Model, color.NRGBA64Model:
		return 16, 3
	case color.GrayModel, color.AlphaModel:
		return 8, 1
	case color.Gray16Model, color.Alpha16Model:
		return 16, 1
	default:
		return 0, 0
	}
}
