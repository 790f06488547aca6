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

package fits

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
)

func TestWriteRead(t *testing.T) {
	data := []float32{1, -2.5, 3, float32(math.NaN()), 5, 6}
	img := NewImageFromNaxisn([]int32{3, 2}, data)
	img.Exposure = 30
	img.Header.Strings["OBJECT"] = "M 31"
	img.Header.History = append(img.Header.History, "median 1x1 border filter")

	buf := bytes.Buffer{}
	if err := img.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len()%fitsBlockSize != 0 {
		t.Errorf("length %d is not a multiple of the block size", buf.Len())
	}

	res := NewImage()
	if err := res.Read(&buf, io.Discard); err != nil {
		t.Fatal(err)
	}
	if res.Bitpix != -32 || res.DimensionsToString() != "3x2" || res.Pixels != 6 {
		t.Errorf("got bitpix %d dims %s pixels %d", res.Bitpix, res.DimensionsToString(), res.Pixels)
	}
	if res.Exposure != 30 {
		t.Errorf("got exposure %g", res.Exposure)
	}
	if res.Header.Strings["OBJECT"] != "M 31" {
		t.Errorf("got object '%s'", res.Header.Strings["OBJECT"])
	}
	if len(res.Header.History) != 1 || res.Header.History[0] != "median 1x1 border filter" {
		t.Errorf("got history %v", res.Header.History)
	}
	want := []float32{1, -2.5, 3, 0, 5, 6}
	for i, w := range want {
		if res.Data[i] != w {
			t.Errorf("pixel %d: got %g want %g", i, res.Data[i], w)
		}
	}
	if res.Stats == nil || res.Stats.Max != 6 || res.Stats.Min != -2.5 {
		t.Errorf("got stats %v", res.Stats)
	}
}

// Builds a raw FITS header unit from the given lines
func rawHeader(lines ...string) []byte {
	sb := strings.Builder{}
	for _, l := range lines {
		sb.WriteString(truncate(l+strings.Repeat(" ", HeaderLineSize), HeaderLineSize))
	}
	if n := sb.Len() % fitsBlockSize; n > 0 {
		sb.WriteString(strings.Repeat(" ", fitsBlockSize-n))
	}
	return []byte(sb.String())
}

func TestReadInt16WithBzero(t *testing.T) {
	raw := rawHeader(
		"SIMPLE  =                    T / conforms",
		"BITPIX  =                   16",
		"NAXIS   =                    2",
		"NAXIS1  =                    2",
		"NAXIS2  =                    2",
		"BZERO   =              32768.0",
		"EXPTIME =                  1.5D0 / seconds",
		"DATE-OBS= 2020-09-21T22:10:05.123",
		"END",
	)
	// -32768, -1, 0, 1 in network byte order
	raw = append(raw, 0x80, 0x00, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01)

	img := NewImage()
	if err := img.Read(bytes.NewReader(raw), io.Discard); err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 32767, 32768, 32769}
	for i, w := range want {
		if img.Data[i] != w {
			t.Errorf("pixel %d: got %g want %g", i, img.Data[i], w)
		}
	}
	if img.Bzero != 0 || img.Bscale != 1 {
		t.Errorf("got bzero %g bscale %g", img.Bzero, img.Bscale)
	}
	if img.Exposure != 1.5 {
		t.Errorf("got exposure %g", img.Exposure)
	}
	if img.Header.Dates["DATE-OBS"] != "2020-09-21T22:10:05.123" {
		t.Errorf("got dates %v", img.Header.Dates)
	}
}

func TestReadErrors(t *testing.T) {
	noSimple := rawHeader("BITPIX  =                   16", "NAXIS   =                    0", "END")
	if err := NewImage().Read(bytes.NewReader(noSimple), io.Discard); err == nil {
		t.Error("expected error for missing SIMPLE")
	}

	badBitpix := rawHeader("SIMPLE  =                    T", "BITPIX  =                   12", "NAXIS   =                    1", "NAXIS1  =                    1", "END")
	if err := NewImage().Read(bytes.NewReader(badBitpix), io.Discard); err == nil {
		t.Error("expected error for BITPIX 12")
	}

	short := rawHeader("SIMPLE  =                    T", "BITPIX  =                    8", "NAXIS   =                    1", "NAXIS1  =                   10", "END")
	short = append(short, 1, 2, 3)
	if err := NewImage().Read(bytes.NewReader(short), io.Discard); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestTIFFRoundTrip(t *testing.T) {
	data := []float32{0, 1000, 65535, 12345, 30000, 7}
	img := NewImageFromNaxisn([]int32{3, 2}, data)
	buf := bytes.Buffer{}
	if err := img.WriteTIFF16(&buf, 0, 65535); err != nil {
		t.Fatal(err)
	}
	res := NewImage()
	if err := res.ReadTIFF(&buf); err != nil {
		t.Fatal(err)
	}
	if res.Channels() != 1 || res.Bitpix != 16 || res.DimensionsToString() != "3x2" {
		t.Fatalf("got bitpix %d dims %s", res.Bitpix, res.DimensionsToString())
	}
	for i, d := range data {
		if res.Data[i] != d {
			t.Errorf("pixel %d: got %g want %g", i, res.Data[i], d)
		}
	}
}

func TestValidate(t *testing.T) {
	img := NewImageFromNaxisn([]int32{3, 2, 3}, nil)
	if err := img.Validate(); err != nil {
		t.Error(err)
	}
	if img.Channels() != 3 || len(img.Channel(2)) != 6 {
		t.Errorf("got %d channels", img.Channels())
	}
	img.Data = img.Data[:5]
	if err := img.Validate(); err == nil {
		t.Error("expected error for short data")
	}
}

func TestWriteReadFileGzip(t *testing.T) {
	fileName := t.TempDir() + "/test.fits.gz"
	img := NewImageFromNaxisn([]int32{2, 2}, []float32{1, 2, 3, 4})
	if err := img.WriteFile(fileName); err != nil {
		t.Fatal(err)
	}
	res, err := NewImageFromFile(fileName, 7, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.ID != 7 || res.FileName != fileName || res.Stats.Mean != 2.5 {
		t.Errorf("got id %d file %s stats %v", res.ID, res.FileName, res.Stats)
	}
}
