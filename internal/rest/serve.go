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
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/medfilt/internal/fits"
	"github.com/mlnoga/medfilt/internal/ops"
	"github.com/mlnoga/medfilt/internal/ops/filter"
	"github.com/mlnoga/medfilt/internal/stats"
	"github.com/mlnoga/medfilt/web"
)

// Listens and serves the API on the given port, processing up to maxThreads images concurrently
func Serve(port, maxThreads int) error {
	return NewRouter(maxThreads).Run(fmt.Sprintf(":%d", port))
}

// Creates the API router
func NewRouter(maxThreads int) *gin.Engine {
	s := &server{maxThreads: maxThreads}
	r := gin.Default()
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/stats", s.postStats)
			v1.POST("/median", s.postMedian)
			v1.POST("/job", s.postJob)
		}
	}
	return r
}

type server struct {
	maxThreads int
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Serializes writes from concurrently materializing promises, flushing after each one
type lockedWriter struct {
	mutex sync.Mutex
	w     gin.ResponseWriter
}

func (lw *lockedWriter) Write(p []byte) (n int, err error) {
	lw.mutex.Lock()
	defer lw.mutex.Unlock()
	n, err = lw.w.Write(p)
	lw.w.Flush()
	return n, err
}

// Starts a plain text response which streams the log
func startLog(c *gin.Context) io.Writer {
	c.Header("Content-Type", "text/plain")
	c.Status(http.StatusOK)
	return &lockedWriter{w: c.Writer}
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Runs the given operator and materializes its results, discarding the images
func (s *server) run(op ops.Operator, logWriter io.Writer) {
	c := ops.NewContext(logWriter, s.maxThreads)
	promises, err := op.MakePromises(nil, c)
	if err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		return
	}
	if _, err = ops.MaterializeAll(promises, c.MaxThreads, true); err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
		return
	}
	fmt.Fprintf(logWriter, "Done.\n")
}

type postMedianArgs struct {
	FilePatterns []string         `json:"filePatterns" binding:"required"`
	Median       *filter.OpMedian `json:"median"`
	Save         string           `json:"save" binding:"required"`
}

func (s *server) postMedian(c *gin.Context) {
	var args postMedianArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.Median == nil {
		args.Median = filter.NewOpMedianDefault()
	}

	logWriter := startLog(c)
	if err := printArgs(logWriter, "Arguments:\n", "\n", args); err != nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}
	s.run(ops.NewOpSequence(
		ops.NewOpLoadMany(args.FilePatterns),
		args.Median,
		ops.NewOpSave(args.Save),
	), logWriter)
}

// Runs an operator graph given as JSON, streaming the log
func (s *server) postJob(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, err := ops.UnmarshalOperator(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.run(op, startLog(c))
}

type postStatsArgs struct {
	FilePatterns []string `json:"filePatterns" binding:"required"`
}

type imageStats struct {
	ID         int          `json:"id"`
	FileName   string       `json:"fileName"`
	Dimensions string       `json:"dimensions"`
	Stats      *stats.Stats `json:"stats"`
}

// Returns per-image statistics as JSON
func (s *server) postStats(c *gin.Context) {
	var args postStatsArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := ops.NewContext(io.Discard, s.maxThreads)
	promises, err := ops.NewOpLoadMany(args.FilePatterns).MakePromises(nil, ctx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	images, err := ops.MaterializeAll(promises, ctx.MaxThreads, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toImageStats(images))
}

func toImageStats(images []*fits.Image) []imageStats {
	res := make([]imageStats, len(images))
	for i, f := range images {
		res[i] = imageStats{ID: f.ID, FileName: f.FileName, Dimensions: f.DimensionsToString(), Stats: f.Stats}
	}
	return res
}
