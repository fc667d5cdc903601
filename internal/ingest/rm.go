package ingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/roach88/graphomotor/internal/ir"
	"github.com/roach88/graphomotor/internal/pipeline"
)

// reMarkable .lines headers. Both are padded to HeaderLen bytes.
const (
	HeaderV3  = "reMarkable .lines file, version=3          "
	HeaderV5  = "reMarkable .lines file, version=5          "
	HeaderLen = 43
)

// Tablet page geometry in device units.
const (
	RMWidth  = 1404
	RMHeight = 1872
)

// RMSampleIntervalMs is the synthetic spacing between samples. Pages do
// not record time, so strokes are laid end to end at the digitizer rate.
const RMSampleIntervalMs = 16

// Brush types that remove ink rather than add it.
const (
	brushEraser    = 6
	brushEraseArea = 8
)

// maxRMCount bounds layer, line and point counts read from a page.
const maxRMCount = 1 << 20

// Page is a decoded reMarkable page.
type Page struct {
	Version int
	Strokes [][]ir.RawPoint
	Canvas  ir.CanvasSize
}

// rmLine mirrors the on-disk line header.
type rmLine struct {
	BrushType  uint32
	BrushColor uint32
	Padding    uint32
	BrushSize  float32
}

// rmPoint mirrors the on-disk point record.
type rmPoint struct {
	X         float32
	Y         float32
	Speed     float32
	Direction float32
	Width     float32
	Pressure  float32
}

// DecodeRM parses a version 3 or 5 page. Layers are flattened in file
// order, eraser strokes are skipped, and pressure is clamped to [0,1].
func DecodeRM(data []byte) (Page, error) {
	r := rmReader{Reader: bytes.NewReader(data)}
	if err := r.checkHeader(); err != nil {
		return Page{}, err
	}

	page := Page{
		Version: r.version,
		Strokes: [][]ir.RawPoint{},
		Canvas:  ir.CanvasSize{Width: RMWidth, Height: RMHeight},
	}

	nbLayers, err := r.readCount("layer count")
	if err != nil {
		return Page{}, err
	}

	var t int64
	for i := uint32(0); i < nbLayers; i++ {
		nbLines, err := r.readCount(fmt.Sprintf("layer %d line count", i))
		if err != nil {
			return Page{}, err
		}
		for j := uint32(0); j < nbLines; j++ {
			line, points, err := r.readLine()
			if err != nil {
				return Page{}, fmt.Errorf("layer %d line %d: %w", i, j, err)
			}
			if line.BrushType == brushEraser || line.BrushType == brushEraseArea || len(points) == 0 {
				continue
			}

			stroke := make([]ir.RawPoint, len(points))
			for k, p := range points {
				stroke[k] = ir.RawPoint{
					X:        float64(p.X),
					Y:        float64(p.Y),
					Pressure: clampPressure(float64(p.Pressure)),
					T:        t,
				}
				t += RMSampleIntervalMs
			}
			page.Strokes = append(page.Strokes, stroke)
		}
	}

	if r.Len() != 0 {
		return Page{}, ir.NewInvalidInput("", "rm: %d trailing bytes after last layer", r.Len())
	}
	return page, nil
}

// Input converts the page into a pipeline input for taskID.
// The elapsed time is the synthetic span of the page.
func (p Page) Input(taskID string) pipeline.Input {
	var elapsed int64
	if n := len(p.Strokes); n > 0 {
		last := p.Strokes[n-1]
		elapsed = last[len(last)-1].T
	}
	return pipeline.Input{
		TaskID:    taskID,
		Strokes:   p.Strokes,
		Canvas:    p.Canvas,
		ElapsedMs: elapsed,
	}
}

type rmReader struct {
	*bytes.Reader
	version int
}

func (r *rmReader) checkHeader() error {
	buf := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return ir.NewInvalidInput("", "rm: short header")
	}

	switch string(buf) {
	case HeaderV3:
		r.version = 3
	case HeaderV5:
		r.version = 5
	default:
		if strings.Contains(string(buf), "version=6") {
			return ir.NewInvalidInput("", "rm: version 6 pages are not supported")
		}
		return ir.NewInvalidInput("", "rm: unknown header")
	}
	return nil
}

func (r *rmReader) readCount(what string) (uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, ir.NewInvalidInput("", "rm: reading %s: %v", what, err)
	}
	if n > maxRMCount {
		return 0, ir.NewInvalidInput("", "rm: %s %d out of range", what, n)
	}
	return n, nil
}

func (r *rmReader) readLine() (rmLine, []rmPoint, error) {
	var line rmLine
	if err := binary.Read(r, binary.LittleEndian, &line); err != nil {
		return line, nil, ir.NewInvalidInput("", "rm: failed to read line: %v", err)
	}

	// v5 added a float after the brush size.
	if r.version == 5 {
		var unknown float32
		if err := binary.Read(r, binary.LittleEndian, &unknown); err != nil {
			return line, nil, ir.NewInvalidInput("", "rm: failed to read line: %v", err)
		}
	}

	nbPoints, err := r.readCount("point count")
	if err != nil {
		return line, nil, err
	}
	if int64(nbPoints)*24 > int64(r.Len()) {
		return line, nil, ir.NewInvalidInput("", "rm: %d points exceed remaining data", nbPoints)
	}

	points := make([]rmPoint, nbPoints)
	if err := binary.Read(r, binary.LittleEndian, points); err != nil {
		return line, nil, ir.NewInvalidInput("", "rm: failed to read points: %v", err)
	}
	return line, points, nil
}

func clampPressure(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
