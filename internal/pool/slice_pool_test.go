package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat32Slice(t *testing.T) {
	t.Run("returns slice with correct size", func(t *testing.T) {
		slice, release := GetFloat32Slice(100)
		defer release()

		require.Len(t, slice, 100)
		require.GreaterOrEqual(t, cap(slice), 100)
	})

	t.Run("grows when pooled capacity is insufficient", func(t *testing.T) {
		_, release := GetFloat32Slice(10)
		release()

		slice, release2 := GetFloat32Slice(1000)
		defer release2()

		require.Len(t, slice, 1000)
	})

	t.Run("zero size", func(t *testing.T) {
		slice, release := GetFloat32Slice(0)
		defer release()

		require.Empty(t, slice)
	})
}
