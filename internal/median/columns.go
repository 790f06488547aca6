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

// Sorted column arrays: for every image column, the image indices of the rows currently covered
// by the window's vertical extent, in ascending order of pixel value
type columns[T Pixel] struct {
	data []T
	src  view
	rows int     // window height
	idx  []int32 // src.width arrays of rows entries each
}

func newColumns[T Pixel](data []T, src view, rows int) columns[T] {
	return columns[T]{
		data: data,
		src:  src,
		rows: rows,
		idx:  poolInt32.get(src.width * rows),
	}
}

// Returns the index arrays to the pool
func (c *columns[T]) release() {
	poolInt32.put(c.idx)
	c.idx = nil
}

// Returns the sorted array of column x
func (c *columns[T]) column(x int) []int32 {
	return c.idx[x*c.rows : (x+1)*c.rows]
}

// Collects the indices of column x for rows y0 to y0+rows-1 and sorts them by pixel value
func (c *columns[T]) init(x, y0 int) {
	col := c.column(x)
	for i := range col {
		col[i] = c.src.index(x, y0+i)
	}
	qsort.QSortIndices(col, c.data)
}

// Replaces the index of oldRow in column x with the index of newRow, and bubbles it left or right
// to restore the order
func (c *columns[T]) replace(x, oldRow, newRow int) {
	col := c.column(x)
	oldIdx, newIdx := c.src.index(x, oldRow), c.src.index(x, newRow)
	i := 0
	for col[i] != oldIdx {
		i++
	}
	val := c.data[newIdx]
	for i > 0 && val < c.data[col[i-1]] {
		col[i] = col[i-1]
		i--
	}
	for i < len(col)-1 && c.data[col[i+1]] < val {
		col[i] = col[i+1]
		i++
	}
	col[i] = newIdx
}
