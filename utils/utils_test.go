package utils

import (
	"bytes"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtils_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(float32(-1.5), Min(float32(-1.5), 0))
	assert.Equal(0, Clamp(-4, 0, 10))
	assert.Equal(10, Clamp(14, 0, 10))
	assert.Equal(7, Clamp(7, 0, 10))
}

func TestUtils_HexToRGBA(t *testing.T) {
	tests := []struct {
		hex  string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 0xff, A: 0xff}},
		{"00ff00", color.RGBA{G: 0xff, A: 0xff}},
		{"#0000ff80", color.RGBA{B: 0xff, A: 0x80}},
		{"#fff", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := HexToRGBA(tt.hex)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		_, err := HexToRGBA(bad)
		assert.Error(t, err, bad)
	}
}

func TestUtils_FormatTime(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1.50s", FormatTime(1500*time.Millisecond))
	assert.Equal("2m 5.00s", FormatTime(125*time.Second))
	assert.Equal("1h 1m 1.00s", FormatTime(time.Hour+time.Minute+time.Second))
}

func TestUtils_DecorateText(t *testing.T) {
	assert.Equal(t, SuccessColor+"ok"+DefaultColor, DecorateText("ok", SuccessMessage))
	assert.Equal(t, "ok", DecorateText("ok", MessageType(42)))
}

func TestUtils_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "debug", NoColor: true, Output: &buf})
	require.NoError(t, err)

	logger.WithField("stage", 2).Debug("stage done")
	assert.Contains(t, buf.String(), "stage done")
	assert.Contains(t, buf.String(), "stage:2")

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestUtils_Spinner(t *testing.T) {
	var buf syncBuffer
	s := NewSpinnerTo(&buf, "working", time.Millisecond, false)
	s.StopMsg = "done\n"

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.SetMessage("still working")
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "working")
	assert.Contains(t, out, "still working")
	assert.Contains(t, out, "done\n")
}

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
