package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	const size = 48

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		s, err := RandomString(size)
		require.NoError(t, err)
		assert.Len(t, s, size, "la longitud coincide con la pedida")
		assert.NotContains(t, seen, s, "los tokens no se repiten")
		for _, c := range s {
			assert.Contains(
				t,
				"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_",
				string(c),
				"solo caracteres seguros en URL",
			)
		}

		seen[s] = struct{}{}
	}
}
