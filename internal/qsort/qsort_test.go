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

package qsort

import (
	"testing"

	"github.com/valyala/fastrand"
)

// Returns a random permutation of 1..n
func permutation(rng *fastrand.RNG, n int) []float32 {
	arr := make([]float32, n)
	for j := 0; j < len(arr); j++ {
		arr[j] = float32(j + 1)
	}
	for j := 0; j < len(arr); j++ {
		k := rng.Uint32n(uint32(len(arr)))
		arr[j], arr[k] = arr[k], arr[j]
	}
	return arr
}

func TestMedian(t *testing.T) {
	rng := fastrand.RNG{}
	for i := 1; i < 1000; i++ {
		arr := permutation(&rng, i)

		// upper median for even lengths
		expect := float32(i/2 + 1)
		if (i & 1) != 0 {
			expect = float32((i + 1) / 2)
		}

		res := QSelectMedian(arr)
		if res != expect {
			t.Errorf("median(1..%d) got %f expect %f", i, res, expect)
		}
	}
}

func TestSelectPartitions(t *testing.T) {
	rng := fastrand.RNG{}
	for i := 1; i < 200; i++ {
		arr := permutation(&rng, i)
		k := int(rng.Uint32n(uint32(i))) + 1
		res := QSelect(arr, k)
		if res != float32(k) {
			t.Fatalf("select(1..%d, %d) got %f", i, k, res)
		}
		for j := 0; j < k-1; j++ {
			if arr[j] > res {
				t.Fatalf("select(1..%d, %d): arr[%d]=%f left of kth", i, k, j, arr[j])
			}
		}
		for j := k; j < i; j++ {
			if arr[j] < res {
				t.Fatalf("select(1..%d, %d): arr[%d]=%f right of kth", i, k, j, arr[j])
			}
		}
	}
}

func TestSortWithDuplicates(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 0; n < 300; n++ {
		arr := make([]int32, n)
		for j := range arr {
			arr[j] = int32(rng.Uint32n(7)) - 3
		}
		QSort(arr)
		for j := 1; j < len(arr); j++ {
			if arr[j-1] > arr[j] {
				t.Fatalf("n=%d arr[%d]=%d > arr[%d]=%d", n, j-1, arr[j-1], j, arr[j])
			}
		}
	}
}

func TestIndices(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 1; n < 100; n++ {
		data := make([]float64, n)
		for j := range data {
			data[j] = float64(rng.Uint32n(11))
		}
		idx := make([]int32, n)
		for j := range idx {
			idx[j] = int32(j)
		}

		sel := append([]int32(nil), idx...)
		k := n/2 + 1
		median := data[QSelectIndices(sel, data, k)]
		if data[sel[k-1]] != median {
			t.Fatalf("n=%d selected index not at position k-1", n)
		}

		QSortIndices(idx, data)
		seen := make([]bool, n)
		for j := range idx {
			if seen[idx[j]] {
				t.Fatalf("n=%d index %d appears twice", n, idx[j])
			}
			seen[idx[j]] = true
			if j > 0 && data[idx[j-1]] > data[idx[j]] {
				t.Fatalf("n=%d not sorted at %d", n, j)
			}
		}
		if data[idx[k-1]] != median {
			t.Errorf("n=%d median %f; want %f", n, median, data[idx[k-1]])
		}
	}
}
