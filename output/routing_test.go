package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUID(t *testing.T) {
	cases := []struct {
		id   string
		want int64
	}{
		{"n5", ((5 << 2) + 0) << 1},
		{"w7", ((7 << 2) + 2) << 1},
		{"r3", ((3 << 2) + 3) << 1},
	}
	for _, c := range cases {
		got, err := UID(c.id)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestUIDInvalid(t *testing.T) {
	_, err := UID("")
	require.Error(t, err)
	_, err = UID("x5")
	require.Error(t, err)
	_, err = UID("nabc")
	require.Error(t, err)
}

func TestUIDDistinctTypesDistinctIDs(t *testing.T) {
	n, err := UID("n1")
	require.NoError(t, err)
	w, err := UID("w1")
	require.NoError(t, err)
	r, err := UID("r1")
	require.NoError(t, err)
	require.NotEqual(t, n, w)
	require.NotEqual(t, w, r)
	require.NotEqual(t, n, r)
}
