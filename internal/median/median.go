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

// Package median implements a sliding window median filter over 2D images.
//
// For a window of radius (rx, ry), every output pixel is the median of the
// (2rx+1)x(2ry+1) input pixels centered on it. The general path keeps the window
// in a double heap (max-heap, median, min-heap) that is updated incrementally
// while the window moves over the image in serpentine order, pairing leaving
// and entering pixels via per-column sorted arrays. Radius 1x1 uses a dedicated
// heap-free path on rolling sorted column triples.
//
// Images are row-major with unit stride. Pixel values must not contain IEEE NaN.
package median

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mlnoga/medfilt/internal/qsort"
	"golang.org/x/exp/constraints"
)

// Pixel types supported by the filter
type Pixel interface {
	constraints.Float | ~int32
}

// Border handling policy for pixels where the full window does not fit into the image
type BorderMode int

const (
	// Every output pixel is the median of the window pixels available inside the image.
	// Where that number is even, the result alternates between the lower and the upper central value.
	BorderFilter BorderMode = iota
	// Border pixels are copied from the input
	BorderCopy
	// Border pixels of the output are left untouched
	BorderNop
	// Output is smaller than the input by 2rx x 2ry, border pixels are not computed
	BorderCrop
)

var borderModeNames = []string{"filter", "copy", "nop", "crop"}

func (b BorderMode) String() string {
	if b < 0 || int(b) >= len(borderModeNames) {
		return fmt.Sprintf("BorderMode(%d)", int(b))
	}
	return borderModeNames[b]
}

func (b BorderMode) MarshalText() ([]byte, error) {
	if b < 0 || int(b) >= len(borderModeNames) {
		return nil, fmt.Errorf("%w %d", ErrBorderMode, int(b))
	}
	return []byte(borderModeNames[b]), nil
}

func (b *BorderMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range borderModeNames {
		if s == name {
			*b = BorderMode(i)
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrBorderMode, string(text))
}

var (
	ErrNegativeRadius = errors.New("negative window radius")
	ErrWindowTooLarge = errors.New("window does not fit into image")
	ErrBufferSize     = errors.New("buffer size does not match image dimensions")
	ErrBorderMode     = errors.New("unknown border mode")
	ErrTooManyPixels  = errors.New("image too large")
)

// Returns the output dimensions for an input of nx x ny pixels. Only CROP shrinks the image
func OutputSize(nx, ny, rx, ry int, mode BorderMode) (ox, oy int) {
	if mode == BorderCrop {
		return nx - 2*rx, ny - 2*ry
	}
	return nx, ny
}

// Applies a median filter with window radius rx, ry to the nx x ny input image in row-major order,
// and stores the results in output. Output must not alias input, and must hold exactly
// OutputSize(nx, ny, rx, ry, mode) pixels. With BorderNop, the caller initializes the border of output.
// Input must not contain IEEE NaN.
func Filter[T Pixel](output, input []T, nx, ny, rx, ry int, mode BorderMode) error {
	if rx < 0 || ry < 0 {
		return fmt.Errorf("%w %dx%d", ErrNegativeRadius, rx, ry)
	}
	if mode < BorderFilter || mode > BorderCrop {
		return fmt.Errorf("%w %d", ErrBorderMode, int(mode))
	}
	if nx < 2*rx+1 || ny < 2*ry+1 {
		return fmt.Errorf("%w: window %dx%d, image %dx%d", ErrWindowTooLarge, 2*rx+1, 2*ry+1, nx, ny)
	}
	if int64(nx+2*rx)*int64(ny+2*ry) > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%d pixels", ErrTooManyPixels, nx, ny)
	}
	if len(input) != nx*ny {
		return fmt.Errorf("%w: input has %d pixels, want %dx%d", ErrBufferSize, len(input), nx, ny)
	}
	if ox, oy := OutputSize(nx, ny, rx, ry, mode); len(output) != ox*oy {
		return fmt.Errorf("%w: output has %d pixels, want %dx%d", ErrBufferSize, len(output), ox, oy)
	}

	switch {
	case rx == 0 && ry == 0:
		copy(output, input)
	case rx == 1 && ry == 1:
		filter3x3(output, input, nx, ny, mode)
	default:
		filterGeneral(output, input, nx, ny, rx, ry, mode)
	}
	return nil
}

// Applies the double heap filter for any border mode. FILTER is reduced to CROP on a chess padded copy
func filterGeneral[T Pixel](output, input []T, nx, ny, rx, ry int, mode BorderMode) {
	src := view{width: nx, height: ny}
	switch mode {
	case BorderCrop:
		filterHeap(output, view{width: nx - 2*rx, height: ny - 2*ry}, 0, 0, input, src, rx, ry)
	case BorderNop:
		filterHeap(output, src, rx, ry, input, src, rx, ry)
	case BorderCopy:
		filterHeap(output, src, rx, ry, input, src, rx, ry)
		copyBorder(output, input, src, rx, ry)
	case BorderFilter:
		padded, pv := padChess(input, src, rx, ry)
		filterHeap(output, src, 0, 0, padded, pv, rx, ry)
	default:
		panic(fmt.Sprintf("median: unknown border mode %d", int(mode)))
	}
}

// Calculates the median of a slice. Modifies the elements in place.
// For even lengths this is the upper of the two central values.
// Array must not contain IEEE NaN
func Median[T Pixel](a []T) T {
	switch len(a) {
	case 0:
		var zero T
		return zero
	case 9:
		return MedianSlice9(a)
	}
	return qsort.QSelectMedian(a)
}

// Calculates the median of a slice of length nine
// Modifies the elements in place
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
// See also http://ndevilla.free.fr/median/median/src/optmed.c for other sizes
// Array must not contain IEEE NaN
func MedianSlice9[T Pixel](a []T) T { // 30x min/max
	_ = a[8]
	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0]
	}
	if a[3] > a[4] {
		a[3], a[4] = a[4], a[3]
	}
	if a[6] > a[7] {
		a[6], a[7] = a[7], a[6]
	}
	if a[1] > a[2] {
		a[1], a[2] = a[2], a[1]
	}
	if a[4] > a[5] {
		a[4], a[5] = a[5], a[4]
	}
	if a[7] > a[8] {
		a[7], a[8] = a[8], a[7]
	}
	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0]
	}
	if a[3] > a[4] {
		a[3], a[4] = a[4], a[3]
	}
	if a[6] > a[7] {
		a[6], a[7] = a[7], a[6]
	}
	if a[0] > a[3] { // max(0,3)
		a[3] = a[0]
	}
	if a[3] > a[6] { // max(3,6)
		a[6] = a[3]
	}
	if a[1] > a[4] {
		a[1], a[4] = a[4], a[1]
	}
	if a[4] > a[7] { // min(4,7)
		a[4] = a[7]
	}
	if a[1] > a[4] { // max(1,4)
		a[4] = a[1]
	}
	if a[5] > a[8] { // min(5,8)
		a[5] = a[8]
	}
	if a[2] > a[5] { // min(2,5)
		a[2] = a[5]
	}
	if a[2] > a[4] {
		a[2], a[4] = a[4], a[2]
	}
	if a[4] > a[6] { // min(4,6)
		a[4] = a[6]
	}
	if a[2] > a[4] { // max(2,4)
		a[4] = a[2]
	}
	return a[4]
}
