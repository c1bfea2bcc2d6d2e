package status

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("string code", func(t *testing.T) {
		for _, code := range KnownCodes {
			require.Equal(t, strconv.Itoa(int(code)), StringCode(code))
		}
	})

	t.Run("every known code has a text", func(t *testing.T) {
		for _, code := range KnownCodes {
			require.NotEqual(t, Status("Unknown Status Code"), Text(code), "code %d", code)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		require.Equal(t, Status("Unknown Status Code"), Text(599))
	})
}
