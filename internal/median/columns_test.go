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
	"testing"

	"github.com/valyala/fastrand"
)

func TestColumnsReplace(t *testing.T) {
	rng := fastrand.RNG{}
	nx, ny, rows := 6, 40, 7
	data := randomImage[int32](&rng, nx, ny, 9)
	src := view{width: nx, height: ny}
	cols := newColumns(data, src, rows)
	for x := 0; x < nx; x++ {
		cols.init(x, 0)
	}

	for y := 0; y+rows < ny; y++ {
		for x := 0; x < nx; x++ {
			cols.replace(x, y, y+rows)

			// exactly rows y+1..y+rows of column x, in ascending order
			seen := make(map[int32]bool)
			col := cols.column(x)
			for i, idx := range col {
				row, cx := int(idx)/nx, int(idx)%nx
				if cx != x || row <= y || row > y+rows || seen[idx] {
					t.Fatalf("y=%d x=%d: unexpected index %d in column %v", y, x, idx, col)
				}
				seen[idx] = true
				if i > 0 && data[col[i-1]] > data[idx] {
					t.Fatalf("y=%d x=%d: column not sorted at %d", y, x, i)
				}
			}
		}
	}
}
