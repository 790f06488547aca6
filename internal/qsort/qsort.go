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
	"golang.org/x/exp/constraints"
)

// Sort an array in ascending order.
// Array must not contain IEEE NaN
func QSort[T constraints.Ordered](a []T) {
	if len(a) > 1 {
		index := QPartition(a)
		QSort(a[:index+1])
		QSort(a[index+1:])
	}
}

// Partitions an array with the middle pivot element, and returns the pivot index.
// Values less than the pivot are moved left of the pivot, those greater are moved right.
// Array must not contain IEEE NaN
func QPartition[T constraints.Ordered](a []T) int {
	pivot := a[(len(a)-1)>>1]
	l, r := -1, len(a)
	for {
		for {
			l++
			if a[l] >= pivot {
				break
			}
		}
		for {
			r--
			if a[r] <= pivot {
				break
			}
		}
		if l >= r {
			return r
		}
		a[l], a[r] = a[r], a[l]
	}
}

// Select median of an array. Partially reorders the array.
// For even lengths this is the upper of the two central values.
// Array must not contain IEEE NaN
func QSelectMedian[T constraints.Ordered](a []T) T {
	return QSelect(a, (len(a)>>1)+1)
}

// Select kth lowest element from an array, with k counted from 1. Partially reorders the array,
// such that all elements left of position k-1 are less or equal, all elements right of it greater or equal.
// Array must not contain IEEE NaN
func QSelect[T constraints.Ordered](a []T, k int) T {
	left, right := 0, len(a)-1
	for left < right {
		index := left + QPartition(a[left:right+1])
		offset := index - left + 1
		if k <= offset {
			right = index
		} else {
			left = index + 1
			k -= offset
		}
	}
	return a[left]
}

// Sort an array of indices in ascending order of the data values they refer to.
// Data must not contain IEEE NaN
func QSortIndices[T constraints.Ordered](idx []int32, data []T) {
	if len(idx) > 1 {
		index := QPartitionIndices(idx, data)
		QSortIndices(idx[:index+1], data)
		QSortIndices(idx[index+1:], data)
	}
}

// Partitions an array of indices by the data values they refer to, using the middle pivot element.
// Returns the pivot index. Data must not contain IEEE NaN
func QPartitionIndices[T constraints.Ordered](idx []int32, data []T) int {
	pivot := data[idx[(len(idx)-1)>>1]]
	l, r := -1, len(idx)
	for {
		for {
			l++
			if data[idx[l]] >= pivot {
				break
			}
		}
		for {
			r--
			if data[idx[r]] <= pivot {
				break
			}
		}
		if l >= r {
			return r
		}
		idx[l], idx[r] = idx[r], idx[l]
	}
}

// Select the index of the kth lowest data value from an array of indices, with k counted from 1.
// Partially reorders the indices like QSelect. Data must not contain IEEE NaN
func QSelectIndices[T constraints.Ordered](idx []int32, data []T, k int) int32 {
	left, right := 0, len(idx)-1
	for left < right {
		index := left + QPartitionIndices(idx[left:right+1], data)
		offset := index - left + 1
		if k <= offset {
			right = index
		} else {
			left = index + 1
			k -= offset
		}
	}
	return idx[left]
}
