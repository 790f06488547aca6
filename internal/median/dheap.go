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

// Direction of the most recent replacement in the double heap. Used as a hint for which way
// to move the next replaced element first. Never affects correctness
type direction struct {
	larger  bool // the new element moved towards larger values
	smaller bool // the new element moved towards smaller values
}

// Order statistics for an odd number 2m+1 of window pixels. The slot array holds image indices:
// slots [0,m) are a max-heap of values below the median rooted at 0, slot m is the median,
// slots (m,2m] are a min-heap of values above the median rooted at m+1.
// The inverse map pos gives the slot of every image index currently in the window.
type doubleHeap[T Pixel] struct {
	data []T     // pixel buffer the indices refer into
	heap []int32 // slots
	pos  []int32 // inverse of heap, sized to the whole image. Entries outside the window are stale
	m    int     // slot of the median
}

// Creates a double heap for windows of the given odd size over the pixel buffer
func newDoubleHeap[T Pixel](data []T, size int) *doubleHeap[T] {
	if size < 3 || size&1 == 0 {
		panic(fmt.Sprintf("median: double heap needs an odd window size >=3, got %d", size))
	}
	return &doubleHeap[T]{
		data: data,
		heap: make([]int32, size),
		pos:  poolInt32.get(len(data)),
		m:    size >> 1,
	}
}

// Returns the inverse position map to the pool. The heap must not be used afterwards
func (h *doubleHeap[T]) release() {
	poolInt32.put(h.pos)
	h.pos = nil
}

// Fills the double heap with the given image indices in arbitrary order. Partitions them around the
// median with a quickselect, then heapifies both halves independently
func (h *doubleHeap[T]) establish(indices []int32) {
	if len(indices) != len(h.heap) {
		panic(fmt.Sprintf("median: establishing %d slots with %d indices", len(h.heap), len(indices)))
	}
	copy(h.heap, indices)
	qsort.QSelectIndices(h.heap, h.data, h.m+1)
	for k, idx := range h.heap {
		h.pos[idx] = int32(k)
	}
	for i := (h.m >> 1) - 1; i >= 0; i-- {
		h.downMax(i)
	}
	for j := (h.m >> 1) - 1; j >= 0; j-- {
		h.downMin(h.m + 1 + j)
	}
}

// Returns the current median
func (h *doubleHeap[T]) median() T {
	return h.data[h.heap[h.m]]
}

func (h *doubleHeap[T]) value(k int) T {
	return h.data[h.heap[k]]
}

func (h *doubleHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i]] = int32(i)
	h.pos[h.heap[j]] = int32(j)
}

// Replaces image index oldIdx, which must be in the window, with newIdx in the same slot, and
// restores the heap order. The hint picks the direction tried first. Returns the direction the
// new element actually moved, as hint for the next call
func (h *doubleHeap[T]) replace(newIdx, oldIdx int32, hint direction) (moved direction) {
	k := int(h.pos[oldIdx])
	h.heap[k] = newIdx
	h.pos[newIdx] = int32(k)

	switch {
	case k < h.m:
		if hint.smaller {
			if h.downMax(k) {
				moved.smaller = true
			} else if h.upMax(k) {
				moved.larger = true
			}
		} else {
			if h.upMax(k) {
				moved.larger = true
			} else if h.downMax(k) {
				moved.smaller = true
			}
		}
		if h.crossMax() {
			moved.larger = true
			h.crossMin()
		}

	case k > h.m:
		if hint.larger {
			if h.downMin(k) {
				moved.larger = true
			} else if h.upMin(k) {
				moved.smaller = true
			}
		} else {
			if h.upMin(k) {
				moved.smaller = true
			} else if h.downMin(k) {
				moved.larger = true
			}
		}
		if h.crossMin() {
			moved.smaller = true
			h.crossMax()
		}

	default:
		if h.crossMax() {
			moved.smaller = true
		} else if h.crossMin() {
			moved.larger = true
		}
	}
	return moved
}

// Swaps the max-heap root with the median if the root is larger, and restores the max-heap.
// Returns true if swapped
func (h *doubleHeap[T]) crossMax() bool {
	if !(h.value(h.m) < h.value(0)) {
		return false
	}
	h.swap(0, h.m)
	h.downMax(0)
	return true
}

// Swaps the min-heap root with the median if the root is smaller, and restores the min-heap.
// Returns true if swapped
func (h *doubleHeap[T]) crossMin() bool {
	if !(h.value(h.m+1) < h.value(h.m)) {
		return false
	}
	h.swap(h.m, h.m+1)
	h.downMin(h.m + 1)
	return true
}

// Bubbles slot i of the max-heap up while it is larger than its parent. Returns true if it moved
func (h *doubleHeap[T]) upMax(i int) bool {
	moved := false
	for i > 0 {
		p := (i - 1) >> 1
		if !(h.value(p) < h.value(i)) {
			break
		}
		h.swap(p, i)
		i, moved = p, true
	}
	return moved
}

// Bubbles slot i of the max-heap down while it is smaller than its larger child. Returns true if it moved
func (h *doubleHeap[T]) downMax(i int) bool {
	moved := false
	for {
		c := 2*i + 1
		if c >= h.m {
			break
		}
		if c+1 < h.m && h.value(c) < h.value(c+1) {
			c++
		}
		if !(h.value(i) < h.value(c)) {
			break
		}
		h.swap(i, c)
		i, moved = c, true
	}
	return moved
}

// Bubbles slot s of the min-heap up while it is smaller than its parent. Returns true if it moved
func (h *doubleHeap[T]) upMin(s int) bool {
	root := h.m + 1
	moved := false
	for s > root {
		p := root + (s-root-1)>>1
		if !(h.value(s) < h.value(p)) {
			break
		}
		h.swap(p, s)
		s, moved = p, true
	}
	return moved
}

// Bubbles slot s of the min-heap down while it is larger than its smaller child. Returns true if it moved
func (h *doubleHeap[T]) downMin(s int) bool {
	root, last := h.m+1, 2*h.m
	moved := false
	for {
		c := root + 2*(s-root) + 1
		if c > last {
			break
		}
		if c+1 <= last && h.value(c+1) < h.value(c) {
			c++
		}
		if !(h.value(c) < h.value(s)) {
			break
		}
		h.swap(s, c)
		s, moved = c, true
	}
	return moved
}
