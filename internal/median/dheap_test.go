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
	"sort"
	"testing"

	"github.com/valyala/fastrand"
)

// Verifies partition, heap order on both sides and the inverse map
func checkDoubleHeap[T Pixel](t *testing.T, h *doubleHeap[T]) {
	t.Helper()
	m := h.m
	for i := 0; i < m; i++ {
		if h.value(i) > h.value(m) {
			t.Fatalf("slot %d value %v above median %v", i, h.value(i), h.value(m))
		}
		if i > 0 && h.value((i-1)>>1) < h.value(i) {
			t.Fatalf("max-heap order violated at slot %d", i)
		}
	}
	for s := m + 1; s <= 2*m; s++ {
		if h.value(s) < h.value(m) {
			t.Fatalf("slot %d value %v below median %v", s, h.value(s), h.value(m))
		}
		if s > m+1 && h.value(m+1+(s-m-2)>>1) > h.value(s) {
			t.Fatalf("min-heap order violated at slot %d", s)
		}
	}
	for k, idx := range h.heap {
		if h.pos[idx] != int32(k) {
			t.Fatalf("inverse map pos[%d]=%d; want %d", idx, h.pos[idx], k)
		}
	}
}

func sortedMedian[T Pixel](data []T, indices []int32) T {
	values := make([]T, len(indices))
	for i, idx := range indices {
		values[i] = data[idx]
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values[len(values)>>1]
}

func TestDoubleHeapEstablish(t *testing.T) {
	rng := fastrand.RNG{}
	for size := 3; size < 60; size += 2 {
		data := randomImage[int32](&rng, size, 1, uint32(size))
		indices := make([]int32, size)
		for i := range indices {
			indices[i] = int32(i)
		}
		h := newDoubleHeap(data, size)
		h.establish(indices)
		checkDoubleHeap(t, h)
		if got, want := h.median(), sortedMedian(data, indices); got != want {
			t.Errorf("size %d median %d; want %d", size, got, want)
		}
	}
}

func TestDoubleHeapReplace(t *testing.T) {
	rng := fastrand.RNG{}
	for _, size := range []int{3, 5, 9, 15, 25, 49} {
		// window of size pixels out of a larger pool. Out of window pixels are swapped in at random
		pool := 4 * size
		data := randomImage[float32](&rng, pool, 1, []uint32{3, 1000}[size&1])
		window := make([]int32, size)
		for i := range window {
			window[i] = int32(i)
		}
		outside := make([]int32, 0, pool-size)
		for i := size; i < pool; i++ {
			outside = append(outside, int32(i))
		}

		h := newDoubleHeap(data, size)
		h.establish(window)
		var hint direction
		for step := 0; step < 2000; step++ {
			w, o := rng.Uint32n(uint32(size)), rng.Uint32n(uint32(len(outside)))
			oldIdx, newIdx := window[w], outside[o]
			hint = h.replace(newIdx, oldIdx, hint)
			window[w], outside[o] = newIdx, oldIdx
			if hint.larger && hint.smaller {
				t.Fatalf("size %d step %d: moved both ways", size, step)
			}

			checkDoubleHeap(t, h)
			if got, want := h.median(), sortedMedian(data, window); got != want {
				t.Fatalf("size %d step %d: median %v; want %v", size, step, got, want)
			}
		}
	}
}

func TestDoubleHeapReplaceDirection(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 100, -100}
	indices := []int32{0, 1, 2, 3, 4, 5, 6}
	h := newDoubleHeap(data, 7)
	h.establish(indices)

	// replacing the minimum with a huge value moves it up through the median into the min-heap
	moved := h.replace(7, 0, direction{})
	if !moved.larger || moved.smaller {
		t.Errorf("moved %+v; want larger", moved)
	}
	if h.median() != 5 {
		t.Errorf("median %v; want 5", h.median())
	}

	// and back down again with a huge negative value
	moved = h.replace(8, 7, moved)
	if !moved.smaller || moved.larger {
		t.Errorf("moved %+v; want smaller", moved)
	}
	if h.median() != 4 {
		t.Errorf("median %v; want 4", h.median())
	}
	checkDoubleHeap(t, h)
}

func TestDoubleHeapPanicsOnEvenSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("no panic for even window size")
		}
	}()
	newDoubleHeap(make([]float32, 10), 4)
}
