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
)

// Pool of index arrays keyed by size, to reduce memory allocation overhead
// when filtering many images of the same dimensions
type sizedPool[T any] struct {
	sync.RWMutex
	m map[int]*sync.Pool
}

var poolInt32 = &sizedPool[int32]{m: make(map[int]*sync.Pool)}

// Returns the pool for arrays of the given size
func (p *sizedPool[T]) sized(size int) *sync.Pool {
	p.RLock()
	pool := p.m[size]
	p.RUnlock()
	if pool != nil {
		return pool
	}
	p.Lock()
	defer p.Unlock()
	if pool = p.m[size]; pool == nil {
		pool = &sync.Pool{
			New: func() interface{} {
				arr := make([]T, size)
				return &arr
			},
		}
		p.m[size] = pool
	}
	return pool
}

// Retrieves an array of given size from the pool. Contents are undefined
func (p *sizedPool[T]) get(size int) []T {
	return *p.sized(size).Get().(*[]T)
}

// Returns an array to the pool
func (p *sizedPool[T]) put(arr []T) {
	arr = arr[:cap(arr)]
	p.sized(len(arr)).Put(&arr)
}

// Clears the pool, releasing all arrays to the garbage collector
func (p *sizedPool[T]) clear() {
	p.Lock()
	p.m = make(map[int]*sync.Pool)
	p.Unlock()
}

// Clears all memory pools of the median filters
func ClearPools() {
	poolInt32.clear()
}
