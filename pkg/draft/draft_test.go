package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name    string
		subject string
		width   uint64
	}{
		{"single", "a", 7},
		{"short", "hi", 14},
		{"full line", "abcdefghijklmnop", 112},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := New(tc.subject)
			require.Equal(t, tc.width, d.Width)
			require.Equal(t, uint64(13), d.Height)
			require.Len(t, d.PixelData, int(d.Width*d.Height))
		})
	}
}

func TestNewDrawsGlyphs(t *testing.T) {
	d := New("#")
	var lit int
	for _, b := range d.PixelData {
		if b != 0 {
			lit++
		}
	}
	require.NotZero(t, lit)
	require.True(t, lit < len(d.PixelData))

	blank := New(" ")
	for _, b := range blank.PixelData {
		require.Zero(t, b)
	}
}
