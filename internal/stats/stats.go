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
	"fmt"
	"math"

	"github.com/mlnoga/medfilt/internal/median"
	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// Maximum number of pixels used for the median and MAD estimates. Larger images are sampled
const MaxSamples = 1 << 16

// Basic statistics on data arrays
type Stats struct {
	Min    float32 // Minimum
	Max    float32 // Maximum
	Mean   float32 // Mean (average)
	StdDev float32 // Standard deviation (norm 2, sigma)
	Median float32 // Median, sampled for large arrays
	MAD    float32 // Median absolute deviation from the median, sampled for large arrays
}

// Pretty print basic stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g MAD %.6g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.MAD)
}

// Pretty print basic stats to CSV header
func (s *Stats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Median,MAD"
}

// Pretty print basic stats to CSV line item
func (s *Stats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g,%.6g", s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.MAD)
}

// Calculate statistics for a data array. Ignores IEEE NaNs. Returns zero stats for empty arrays
func NewStats(data []float32) *Stats {
	s := &Stats{}
	xs := make([]float64, 0, len(data))
	min, max := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, d := range data {
		if math.IsNaN(float64(d)) {
			continue
		}
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		xs = append(xs, float64(d))
	}
	if len(xs) == 0 {
		return s
	}
	s.Min, s.Max = min, max

	mean, stdDev := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		stdDev = 0
	}
	s.Mean, s.StdDev = float32(mean), float32(stdDev)

	samples := sample(xs, MaxSamples)
	med := median.Median(samples)
	for i, x := range samples {
		samples[i] = math.Abs(x - med)
	}
	s.Median, s.MAD = float32(med), float32(median.Median(samples))
	return s
}

// Returns a copy of xs, or a random sample of n elements if xs is larger
func sample(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return append([]float64(nil), xs...)
	}
	rng := fastrand.RNG{}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = xs[rng.Uint32n(uint32(len(xs)))]
	}
	return samples
}
