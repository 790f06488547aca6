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
	"fmt"

	"github.com/mlnoga/medfilt/internal/qsort"
)

type traversalState int

const (
	stateInit traversalState = iota // establish double heap and column arrays over the first window
	stateScan                       // move the window by one pixel
	stateDone                       // last row finished
)

// Serpentine traversal of the image with a (2rx+1)x(2ry+1) window. The window moves by exactly
// one column or one row per step: left to right on even rows, right to left on odd ones
type traversal[T Pixel] struct {
	src      view
	wx, wy   int // window size
	heap     *doubleHeap[T]
	cols     columns[T]
	hint     direction
	output   []T
	dst      view
	ox, oy   int     // output position of the window with top left corner (0,0)
	leaving  []int32 // scratch for row steps
	entering []int32
}

// Applies the double heap median filter to all pixels of input where the full window fits.
// The window with top left corner (x,y) in src is written to (x+ox, y+oy) in dst.
// Panics if the window does not fit into the image
func filterHeap[T Pixel](output []T, dst view, ox, oy int, input []T, src view, rx, ry int) {
	wx, wy := 2*rx+1, 2*ry+1
	if rx < 0 || ry < 0 || wx*wy < 3 || wx > src.width || wy > src.height {
		panic(fmt.Sprintf("median: window %dx%d for image %dx%d", wx, wy, src.width, src.height))
	}
	if len(input) != src.pixels() || len(output) != dst.pixels() {
		panic(fmt.Sprintf("median: buffers of %d and %d pixels for images %dx%d and %dx%d",
			len(input), len(output), src.width, src.height, dst.width, dst.height))
	}
	t := traversal[T]{
		src:      src,
		wx:       wx,
		wy:       wy,
		heap:     newDoubleHeap(input, wx*wy),
		cols:     newColumns(input, src, wy),
		output:   output,
		dst:      dst,
		ox:       ox,
		oy:       oy,
		leaving:  make([]int32, wx),
		entering: make([]int32, wx),
	}
	defer t.heap.release()
	defer t.cols.release()
	t.run()
}

func (t *traversal[T]) run() {
	lastX, lastY := t.src.width-t.wx, t.src.height-t.wy
	x, y := 0, 0
	rightwards := true
	for state := stateInit; state != stateDone; {
		switch state {
		case stateInit:
			t.establish()
			state = stateScan

		case stateScan:
			switch {
			case rightwards && x < lastX:
				t.slide(x, x+t.wx)
				x++
			case !rightwards && x > 0:
				t.slide(x+t.wx-1, x-1)
				x--
			case y < lastY:
				t.descend(x, y)
				y++
				rightwards = !rightwards
			default:
				state = stateDone
				continue
			}
		}
		t.output[t.dst.index(x+t.ox, y+t.oy)] = t.heap.median()
	}
}

// Sorts the column arrays for the first wy rows, and fills the double heap with the top left window
func (t *traversal[T]) establish() {
	for x := 0; x < t.src.width; x++ {
		t.cols.init(x, 0)
	}
	indices := make([]int32, 0, t.wx*t.wy)
	for x := 0; x < t.wx; x++ {
		indices = append(indices, t.cols.column(x)...)
	}
	t.heap.establish(indices)
}

// Moves the window sideways, replacing column leaveX by column enterX. Pairs the kth smallest
// leaving pixel with the kth smallest entering one
func (t *traversal[T]) slide(leaveX, enterX int) {
	leaving, entering := t.cols.column(leaveX), t.cols.column(enterX)
	for k := range leaving {
		t.hint = t.heap.replace(entering[k], leaving[k], t.hint)
	}
}

// Moves the window with top left corner (x,y) down by one row. Updates the column arrays of all
// columns to the new vertical extent, then replaces the leaving row segment in the double heap
// with the entering one, again pairing by rank
func (t *traversal[T]) descend(x, y int) {
	newRow := y + t.wy
	for cx := 0; cx < t.src.width; cx++ {
		t.cols.replace(cx, y, newRow)
	}
	for i := 0; i < t.wx; i++ {
		t.leaving[i] = t.src.index(x+i, y)
		t.entering[i] = t.src.index(x+i, newRow)
	}
	qsort.QSortIndices(t.leaving, t.cols.data)
	qsort.QSortIndices(t.entering, t.cols.data)
	for i := range t.leaving {
		t.hint = t.heap.replace(t.entering[i], t.leaving[i], t.hint)
	}
}
