package ipc

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionBounds(t *testing.T) {
	testCases := []struct {
		name  string
		start uint64
		size  uint64
		ok    bool
	}{
		{"whole", 0, 16, true},
		{"empty at end", 16, 0, true},
		{"tail", 12, 4, true},
		{"one past", 12, 5, false},
		{"start past end", 17, 0, false},
		{"wrapping size", 1, ^uint64(0), false},
		{"wrapping start", ^uint64(0), 2, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegion("test", 16)
			err := r.ReadWrite().CopyIn(tc.start, make([]byte, 0))
			if tc.size == 0 {
				require.Equal(t, tc.ok, err == nil)
			}
			data, err := r.ReadOnly().CopyOut(tc.start, tc.size)
			if tc.ok {
				require.NoError(t, err)
				require.Len(t, data, int(tc.size))
				return
			}
			require.Nil(t, data)
			var berr *BoundsError
			require.True(t, errors.As(err, &berr))
			require.Equal(t, "test", berr.Region)
			require.Equal(t, 16, berr.Capacity)
		})
	}
}

func TestRegionCopy(t *testing.T) {
	r := NewRegion("test", 8)
	rw, ro := r.ReadWrite(), r.ReadOnly()
	require.NoError(t, rw.CopyIn(2, []byte("abc")))
	data, err := ro.CopyOut(2, 3)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), data)

	// copies are owned by the reader.
	data[0] = 'z'
	again, err := ro.CopyOut(2, 1)
	require.NoError(t, err)
	require.Equal(t, []byte("a"), again)

	err = rw.CopyIn(6, []byte("abc"))
	require.Error(t, err)
	untouched, _ := ro.CopyOut(6, 2)
	require.Equal(t, []byte{0, 0}, untouched)
}

func TestMapRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	w, err := MapRegion("out", path, 4096, true)
	require.NoError(t, err)
	defer w.Close()
	r, err := MapRegion("in", path, 4096, false)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, 4096, r.Size())

	require.NoError(t, w.ReadWrite().CopyIn(100, []byte("shared")))
	data, err := r.ReadOnly().CopyOut(100, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("shared"), data)

	require.Equal(t, ErrReadOnlyRegion, r.ReadWrite().CopyIn(0, []byte{1}))

	_, err = MapRegion("in", filepath.Join(t.TempDir(), "missing", "region"), 4096, false)
	require.Error(t, err)
}
