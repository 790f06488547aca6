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

package stats

import (
	"math"
	"testing"
)

func TestNewStats(t *testing.T) {
	data := []float32{4, 1, float32(math.NaN()), 3, 2, 5}
	s := NewStats(data)
	if s.Min != 1 || s.Max != 5 || s.Mean != 3 {
		t.Errorf("min/max/mean %v; want 1, 5, 3", s)
	}
	if math.Abs(float64(s.StdDev)-math.Sqrt(2.5)) > 1e-6 {
		t.Errorf("stddev %f; want %f", s.StdDev, math.Sqrt(2.5))
	}
	if s.Median != 3 || s.MAD != 1 {
		t.Errorf("median %f mad %f; want 3 and 1", s.Median, s.MAD)
	}
}

func TestNewStatsEmpty(t *testing.T) {
	s := NewStats(nil)
	if *s != (Stats{}) {
		t.Errorf("stats of empty array %v; want zero", s)
	}
	one := NewStats([]float32{7})
	if one.Min != 7 || one.Max != 7 || one.StdDev != 0 || one.Median != 7 {
		t.Errorf("stats of single value %v", one)
	}
}

func TestNewStatsSampled(t *testing.T) {
	data := make([]float32, 4*MaxSamples)
	for i := range data {
		data[i] = 10
	}
	s := NewStats(data)
	if s.Median != 10 || s.MAD != 0 || s.StdDev != 0 {
		t.Errorf("sampled stats of constant data %v", s)
	}
}
