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
	"sync"
	"testing"
)

func TestSizedPool(t *testing.T) {
	p := &sizedPool[int32]{m: make(map[int]*sync.Pool)}
	a := p.get(17)
	if len(a) != 17 {
		t.Fatalf("got length %d", len(a))
	}
	a[3] = 42
	p.put(a[:5])
	if b := p.get(17); len(b) != 17 {
		t.Errorf("got length %d after put", len(b))
	}
	if b := p.get(4); len(b) != 4 {
		t.Errorf("got length %d", len(b))
	}
	p.clear()
	if len(p.m) != 0 {
		t.Errorf("%d pools left after clear", len(p.m))
	}
}
