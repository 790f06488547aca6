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
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mlnoga/medfilt/internal/fits"
	"github.com/mlnoga/medfilt/internal/ops"
	"github.com/mlnoga/medfilt/internal/stats"
)

// Appends the statistics of each image as a line to a CSV file. Writes the header with the first image.
// Takes n inputs, produces the n unchanged inputs
type OpExportStats struct {
	ops.OpUnaryBase
	FileName string `json:"fileName"`

	mutex  sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpExportStatsDefault() }) } // register the operator for JSON decoding

func NewOpExportStatsDefault() *OpExportStats { return NewOpExportStats("stats.csv") }

func NewOpExportStats(fileName string) *OpExportStats {
	op := &OpExportStats{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "exportStats", Active: true}},
		FileName:    fileName,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpExportStats) UnmarshalJSON(data []byte) error {
	var def struct {
		ops.OpBase
		FileName string `json:"fileName"`
	}
	def.OpBase, def.FileName = NewOpExportStatsDefault().OpBase, NewOpExportStatsDefault().FileName
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	op.OpBase, op.FileName = def.OpBase, def.FileName
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpExportStats) Apply(f *fits.Image, c *ops.Context) (result *fits.Image, err error) {
	if op.FileName == "" {
		fmt.Fprintf(c.Log, "%d: exportStats empty fileName\n", f.ID)
		return f, nil
	}

	op.mutex.Lock() // lock so a single thread is active
	defer op.mutex.Unlock()

	if op.writer == nil {
		fmt.Fprintf(c.Log, "Writing statistics header to file %s ...\n", op.FileName)
		if op.file, err = os.Create(op.FileName); err != nil {
			return nil, fmt.Errorf("error creating file %s: %w", op.FileName, err)
		}
		op.writer = bufio.NewWriter(op.file)
		fmt.Fprintf(op.writer, "ID,FileName,Dimensions,%s\n", (&stats.Stats{}).ToCSVHeader())
	}
	s := f.Stats
	if s == nil {
		s = stats.NewStats(f.Data)
	}
	fmt.Fprintf(op.writer, "%d,%s,%s,%s\n", f.ID, f.FileName, f.DimensionsToString(), s.ToCSVLine())
	return f, op.writer.Flush()
}

// Closes the output file, if open
func (op *OpExportStats) Close() error {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.file == nil {
		return nil
	}
	err := op.writer.Flush()
	if cerr := op.file.Close(); err == nil {
		err = cerr
	}
	op.file, op.writer = nil, nil
	return err
}
