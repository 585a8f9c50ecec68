package tokens_test

import (
	"strings"
	"testing"

	"timely/internal/apperrors"
	"timely/internal/tokens"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	s, err := tokens.Generate(8)
	require.NoError(t, err)
	assert.Len(t, s, 16)
	assert.NoError(t, tokens.ValidateFormat(strings.Repeat(s, 8)))

	_, err = tokens.Generate(0)
	assert.Error(t, err)
}

func TestNewSecret(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := tokens.NewSecret()
		require.NoError(t, err)
		assert.Len(t, s, tokens.SecretLength)
		assert.NoError(t, tokens.ValidateFormat(s))

		prefix := tokens.Prefix(s)
		assert.Len(t, prefix, tokens.PrefixLength)
		assert.False(t, seen[prefix], "prefix repeated")
		seen[prefix] = true
	}
}

func TestValidateFormat(t *testing.T) {
	valid := strings.Repeat("ab", 64)
	cases := map[string]string{
		"empty":       "",
		"short":       "short",
		"127 chars":   valid[:127],
		"129 chars":   valid + "a",
		"one non-hex": valid[:127] + "g",
		"0x prefixed": "0x" + valid[:126],
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tokens.ValidateFormat(in), apperrors.ErrMalformedInput)
		})
	}

	assert.NoError(t, tokens.ValidateFormat(valid))
	assert.NoError(t, tokens.ValidateFormat(strings.ToUpper(valid)))
}
