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

package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mlnoga/medfilt/internal/fits"
	"github.com/mlnoga/medfilt/internal/median"
	"github.com/mlnoga/medfilt/internal/ops"
)

// Applies a sliding window median filter of size (2*RadiusX+1)x(2*RadiusY+1) to each
// color channel of an image
type OpMedian struct {
	ops.OpUnaryBase
	RadiusX int               `json:"radiusX"`
	RadiusY int               `json:"radiusY"`
	Border  median.BorderMode `json:"border"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpMedianDefault() }) } // register the operator for JSON decoding

func NewOpMedianDefault() *OpMedian { return NewOpMedian(1, 1, median.BorderFilter) }

func NewOpMedian(radiusX, radiusY int, border median.BorderMode) *OpMedian {
	op := OpMedian{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "median", Active: true}},
		RadiusX:     radiusX,
		RadiusY:     radiusY,
		Border:      border,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpMedian) UnmarshalJSON(data []byte) error {
	type defaults OpMedian
	def := defaults(*NewOpMedianDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpMedian(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpMedian) Apply(f *fits.Image, c *ops.Context) (result *fits.Image, err error) {
	if !op.Active {
		return f, nil
	}
	if err = f.Validate(); err != nil {
		return nil, err
	}
	width, height := f.Width(), f.Height()
	ox, oy := median.OutputSize(width, height, op.RadiusX, op.RadiusY, op.Border)
	if ox <= 0 || oy <= 0 || op.RadiusX < 0 || op.RadiusY < 0 {
		return nil, fmt.Errorf("%d: %w: radius %dx%d, image %s",
			f.ID, median.ErrWindowTooLarge, op.RadiusX, op.RadiusY, f.DimensionsToString())
	}
	fmt.Fprintf(c.Log, "%d: Applying %dx%d median filter with border %v to %s image ...\n",
		f.ID, 2*op.RadiusX+1, 2*op.RadiusY+1, op.Border, f.DimensionsToString())
	start := time.Now()

	fill := float32(0)
	if f.Stats != nil {
		fill = f.Stats.Median
	}
	channels := f.Channels()
	data := make([]float32, ox*oy*channels)
	for ch := 0; ch < channels; ch++ {
		in, nans := replaceNaNs(f.Channel(ch), fill)
		if nans > 0 {
			fmt.Fprintf(c.Log, "%d: Warning: replaced %d NaNs in channel %d with median %.6g\n", f.ID, nans, ch, fill)
		}
		out := data[ch*ox*oy : (ch+1)*ox*oy]
		if err := median.Filter(out, in, width, height, op.RadiusX, op.RadiusY, op.Border); err != nil {
			return nil, fmt.Errorf("%d: channel %d: %w", f.ID, ch, err)
		}
	}

	naxisn := append([]int32{int32(ox), int32(oy)}, f.Naxisn[2:]...)
	result = fits.NewImageFromImage(f, naxisn, data)
	result.Header.History = append(result.Header.History,
		fmt.Sprintf("median %dx%d border %v", 2*op.RadiusX+1, 2*op.RadiusY+1, op.Border))
	fmt.Fprintf(c.Log, "%d: Median filtered to %s in %v, %v\n",
		f.ID, result.DimensionsToString(), time.Since(start).Round(time.Millisecond), result.Stats)
	return result, nil
}

// Returns data with IEEE NaNs replaced by the given value, and the number of replacements.
// Copies only if replacements were necessary
func replaceNaNs(data []float32, value float32) (res []float32, nans int) {
	res = data
	for i, d := range data {
		if !math.IsNaN(float64(d)) {
			continue
		}
		if nans == 0 {
			res = append([]float32(nil), data...)
		}
		res[i] = value
		nans++
	}
	return res, nans
}
