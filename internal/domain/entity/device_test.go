package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDevice(t *testing.T) {
	d, err := ParseDevice("cpu")
	require.NoError(t, err)
	require.Equal(t, Device{Kind: DeviceCPU}, d)

	d, err = ParseDevice("CUDA")
	require.NoError(t, err)
	require.Equal(t, "cuda:0", d.String())

	d, err = ParseDevice("cuda:1")
	require.NoError(t, err)
	require.Equal(t, 1, d.Index)

	for _, bad := range []string{"", "tpu", "cpu:0", "cuda:x", "cuda:-1"} {
		_, err := ParseDevice(bad)
		require.Error(t, err, bad)
	}
}
