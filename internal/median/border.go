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

package median

import (
	"math"
)

// A row-major view of width x height pixels on a flat buffer with unit stride
type view struct {
	width, height int
}

// Returns the buffer index of pixel (x,y)
func (v view) index(x, y int) int32 {
	return int32(y*v.width + x)
}

// Returns the pixels in the view
func (v view) pixels() int {
	return v.width * v.height
}

// Returns the smallest and largest values of the pixel type. Infinities for floating point types
func limits[T Pixel]() (lo, hi T) {
	half := 0.5
	if T(half) != 0 { // floating point
		inf := math.Inf(1)
		return T(-inf), T(inf)
	}
	return T(math.MinInt32), T(math.MaxInt32)
}

// Returns the chess board fill value for padded pixel (x,y): hi on even squares, lo on odd ones
func chess[T Pixel](x, y int, lo, hi T) T {
	if (x+y)&1 == 0 {
		return hi
	}
	return lo
}

// Creates a copy of the image enlarged by rx columns left and right and ry rows top and bottom.
// The padding is filled with the type limits in a chess board pattern, so each even-sized
// set of padding pixels inside a window contributes the same number of lows and highs.
// A CROP filter of the padded image yields the FILTER result for the original one
func padChess[T Pixel](input []T, src view, rx, ry int) (padded []T, pv view) {
	lo, hi := limits[T]()
	pv = view{width: src.width + 2*rx, height: src.height + 2*ry}
	padded = make([]T, pv.pixels())
	for y := 0; y < pv.height; y++ {
		row := padded[y*pv.width : (y+1)*pv.width]
		if y < ry || y >= ry+src.height {
			for x := range row {
				row[x] = chess(x, y, lo, hi)
			}
			continue
		}
		for x := 0; x < rx; x++ {
			row[x] = chess(x, y, lo, hi)
		}
		start := (y - ry) * src.width
		copy(row[rx:rx+src.width], input[start:start+src.width])
		for x := rx + src.width; x < pv.width; x++ {
			row[x] = chess(x, y, lo, hi)
		}
	}
	return padded, pv
}

// Copies the border of width rx, height ry from input to output, both in the given view
func copyBorder[T Pixel](output, input []T, v view, rx, ry int) {
	copy(output[:ry*v.width], input[:ry*v.width])                                 // top rows
	copy(output[(v.height-ry)*v.width:], input[(v.height-ry)*v.width:v.pixels()]) // bottom rows
	for y := ry; y < v.height-ry; y++ {
		start, end := y*v.width, (y+1)*v.width
		copy(output[start:start+rx], input[start:start+rx]) // left columns
		copy(output[end-rx:end], input[end-rx:end])         // right columns
	}
}
