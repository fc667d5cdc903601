package ingest

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/graphomotor/internal/ir"
)

type testLine struct {
	brush  uint32
	points [][3]float32 // x, y, pressure
}

// encodeRM writes a page in the .lines layout.
func encodeRM(t *testing.T, header string, layers ...[]testLine) []byte {
	t.Helper()
	var b bytes.Buffer
	b.WriteString(header)
	w := func(v any) { require.NoError(t, binary.Write(&b, binary.LittleEndian, v)) }

	w(uint32(len(layers)))
	for _, lines := range layers {
		w(uint32(len(lines)))
		for _, l := range lines {
			w(rmLine{BrushType: l.brush, BrushColor: 0, BrushSize: 2})
			if header == HeaderV5 {
				w(float32(0))
			}
			w(uint32(len(l.points)))
			for _, p := range l.points {
				w(rmPoint{X: p[0], Y: p[1], Speed: 1, Direction: 0, Width: 2, Pressure: p[2]})
			}
		}
	}
	return b.Bytes()
}

func TestDecodeRM_V5(t *testing.T) {
	data := encodeRM(t, HeaderV5,
		[]testLine{
			{brush: 17, points: [][3]float32{{100, 200, 0.5}, {110, 205, 1.5}}},
			{brush: brushEraser, points: [][3]float32{{100, 200, 0.5}}},
		},
		[]testLine{
			{brush: 15, points: [][3]float32{{300, 400, -0.25}}},
			{brush: 15},
		},
	)

	page, err := DecodeRM(data)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Version)
	assert.Equal(t, ir.CanvasSize{Width: RMWidth, Height: RMHeight}, page.Canvas)
	require.Len(t, page.Strokes, 2, "eraser and empty lines are skipped")

	assert.Equal(t, []ir.RawPoint{
		{X: 100, Y: 200, Pressure: 0.5, T: 0},
		{X: 110, Y: 205, Pressure: 1, T: 16},
	}, page.Strokes[0])
	assert.Equal(t, []ir.RawPoint{{X: 300, Y: 400, Pressure: 0, T: 32}}, page.Strokes[1])

	in := page.Input("copy_square")
	assert.Equal(t, "copy_square", in.TaskID)
	assert.Equal(t, int64(32), in.ElapsedMs)
}

func TestDecodeRM_V3(t *testing.T) {
	data := encodeRM(t, HeaderV3, []testLine{{brush: 2, points: [][3]float32{{1, 2, 0.3}}}})
	page, err := DecodeRM(data)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Version)
	require.Len(t, page.Strokes, 1)
	assert.InDelta(t, 0.3, page.Strokes[0][0].Pressure, 1e-6)
}

func TestDecodeRM_EmptyPage(t *testing.T) {
	page, err := DecodeRM(encodeRM(t, HeaderV5))
	require.NoError(t, err)
	assert.NotNil(t, page.Strokes)
	assert.Empty(t, page.Strokes)
	assert.Equal(t, int64(0), page.Input("").ElapsedMs)
}

func TestDecodeRM_Errors(t *testing.T) {
	valid := encodeRM(t, HeaderV5, []testLine{{brush: 17, points: [][3]float32{{1, 1, 0.5}, {2, 2, 0.5}}}})
	v6 := []byte("reMarkable .lines file, version=6          ")

	tests := map[string][]byte{
		"empty":          nil,
		"short header":   []byte("reMarkable"),
		"unknown header": bytes.Repeat([]byte("x"), HeaderLen+4),
		"version 6":      v6,
		"truncated":      valid[:len(valid)-5],
		"trailing bytes": append(append([]byte{}, valid...), 0, 0),
		"no layer count": []byte(HeaderV5),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRM(data)
			require.Error(t, err)
			assert.True(t, ir.IsInvalidInput(err), "got %v", err)
		})
	}
}

func TestDecodeRM_HugeCountRejected(t *testing.T) {
	var b bytes.Buffer
	b.WriteString(HeaderV5)
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(1)))
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(1)))
	require.NoError(t, binary.Write(&b, binary.LittleEndian, rmLine{BrushType: 17}))
	require.NoError(t, binary.Write(&b, binary.LittleEndian, float32(0)))
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(5000)))

	_, err := DecodeRM(b.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed remaining data")
}
