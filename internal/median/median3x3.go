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
	"github.com/mlnoga/medfilt/internal/qsort"
)

// A column of three pixels in ascending order
type triple[T Pixel] struct {
	lo, mid, hi T
}

func sort3[T Pixel](a, b, c T) triple[T] {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return triple[T]{a, b, c}
}

func min3[T Pixel](a, b, c T) T {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3[T Pixel](a, b, c T) T {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func med3[T Pixel](a, b, c T) T {
	return sort3(a, b, c).mid
}

// Median of the nine pixels in three sorted columns: the median of the largest low, the median
// mid and the smallest high. Neither the three lowest nor the three highest values can be the median
func median9[T Pixel](a, b, c triple[T]) T {
	return med3(max3(a.lo, b.lo, c.lo), med3(a.mid, b.mid, c.mid), min3(a.hi, b.hi, c.hi))
}

// Applies a 3x3 median filter to input data of width nx and height ny, and stores results in output.
// Advances one column at a time, reusing two of the three sorted columns from the previous position.
// Border pixels are handled as per mode
func filter3x3[T Pixel](output, input []T, nx, ny int, mode BorderMode) {
	for y := 1; y < ny-1; y++ {
		up, mid, dn := input[(y-1)*nx:y*nx], input[y*nx:(y+1)*nx], input[(y+1)*nx:(y+2)*nx]
		o := y*nx + 1 // output index of pixel (1,y)
		if mode == BorderCrop {
			o = (y - 1) * (nx - 2)
		}
		a := sort3(up[0], mid[0], dn[0])
		b := sort3(up[1], mid[1], dn[1])
		for x := 1; x < nx-1; x++ {
			c := sort3(up[x+1], mid[x+1], dn[x+1])
			output[o] = median9(a, b, c)
			o++
			a, b = b, c
		}
	}

	switch mode {
	case BorderCopy:
		copyBorder(output, input, view{width: nx, height: ny}, 1, 1)
	case BorderFilter:
		filterBorder3x3(output, input, nx, ny)
	}
}

// Returns the rank, counted from 0, of the central value picked from an even number n of real
// pixels at border pixel (x,y) in FILTER mode. Upper where x+y is even, lower where it is odd,
// matching the chess board padding of the general path, where the colour of the window's
// top left pixel is in surplus
func centralRank(n, x, y int) int {
	if (x+y)&1 == 0 {
		return n >> 1
	}
	return n>>1 - 1
}

// Calculates the border pixels for FILTER mode directly from the 4 or 6 window pixels inside the
// image. The rank alternates between lower and upper central value at every step along a border run
func filterBorder3x3[T Pixel](output, input []T, nx, ny int) {
	var buf [6]T

	// corners, with the adjacent column cx and row cy
	for _, c := range [][4]int{{0, 0, 1, 1}, {nx - 1, 0, nx - 2, 1}, {0, ny - 1, 1, ny - 2}, {nx - 1, ny - 1, nx - 2, ny - 2}} {
		x, y, cx, cy := c[0], c[1], c[2], c[3]
		buf[0], buf[1] = input[y*nx+x], input[y*nx+cx]
		buf[2], buf[3] = input[cy*nx+x], input[cy*nx+cx]
		output[y*nx+x] = qsort.QSelect(buf[:4], centralRank(4, x, y)+1)
	}

	// top and bottom rows, with the adjacent row
	for _, r := range [][2]int{{0, 1}, {ny - 1, ny - 2}} {
		y, ay := r[0], r[1]
		row, adj := input[y*nx:(y+1)*nx], input[ay*nx:(ay+1)*nx]
		k := centralRank(6, 1, y)
		for x := 1; x < nx-1; x++ {
			copy(buf[:3], row[x-1:x+2])
			copy(buf[3:], adj[x-1:x+2])
			output[y*nx+x] = qsort.QSelect(buf[:], k+1)
			k = 5 - k
		}
	}

	// left and right columns, with the adjacent column
	for _, c := range [][2]int{{0, 1}, {nx - 1, nx - 2}} {
		x, ax := c[0], c[1]
		k := centralRank(6, x, 1)
		for y := 1; y < ny-1; y++ {
			buf[0], buf[1], buf[2] = input[(y-1)*nx+x], input[y*nx+x], input[(y+1)*nx+x]
			buf[3], buf[4], buf[5] = input[(y-1)*nx+ax], input[y*nx+ax], input[(y+1)*nx+ax]
			output[y*nx+x] = qsort.QSelect(buf[:], k+1)
			k = 5 - k
		}
	}
}
