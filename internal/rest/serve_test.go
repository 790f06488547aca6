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

package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/medfilt/internal/fits"
)

func init() { gin.SetMode(gin.TestMode) }

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// Changes into a fresh temporary directory holding a 5x4 test image "in.fits"
func chdirTemp(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	data := make([]float32, 20)
	for i := range data {
		data[i] = float32(i)
	}
	if err := fits.NewImageFromNaxisn([]int32{5, 4}, data).WriteFile("in.fits"); err != nil {
		t.Fatal(err)
	}
}

func TestPing(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter(1).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pong") {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}

func TestIndex(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter(1).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/v1/median") {
		t.Errorf("got %d", w.Code)
	}
}

func TestPostMedian(t *testing.T) {
	chdirTemp(t)
	w := post(NewRouter(2), "/api/v1/median",
		`{"filePatterns":["*.fits"],"median":{"radiusX":1,"radiusY":1,"border":"crop"},"save":"out.fits"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Done.") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	res, err := fits.NewImageFromFile("out.fits", 0, os.Stderr)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{6, 7, 8, 11, 12, 13}
	if res.DimensionsToString() != "3x2" {
		t.Fatalf("got dimensions %s", res.DimensionsToString())
	}
	for i, v := range want {
		if res.Data[i] != v {
			t.Errorf("pixel %d: got %g want %g", i, res.Data[i], v)
		}
	}
}

func TestPostMedianBadRequest(t *testing.T) {
	w := post(NewRouter(1), "/api/v1/median", `{"median":{"border":"sideways"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}

func TestPostStats(t *testing.T) {
	chdirTemp(t)
	w := post(NewRouter(1), "/api/v1/stats", `{"filePatterns":["in.fits"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	var res []imageStats
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Dimensions != "5x4" || res[0].Stats.Max != 19 || res[0].Stats.Mean != 9.5 {
		t.Errorf("got %s", w.Body.String())
	}
}

func TestPostJob(t *testing.T) {
	chdirTemp(t)
	job := `{"type":"seq","active":true,"steps":[
		{"type":"loadMany","active":true,"filePatterns":["in.fits"]},
		{"type":"median","radiusX":2,"radiusY":1,"border":"copy"},
		{"type":"save","active":true,"filePattern":"out%d.fits"}]}`
	w := post(NewRouter(1), "/api/v1/job", job)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Done.") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat("out0.fits"); err != nil {
		t.Error(err)
	}

	w = post(NewRouter(1), "/api/v1/job", `{"type":"unknown"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}
