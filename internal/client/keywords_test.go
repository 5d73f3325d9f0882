package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeywords(t *testing.T) {
	got, err := ValidateKeywords([]string{" a ", "", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	_, err = ValidateKeywords(nil)
	assert.ErrorIs(t, err, ErrInvalidKeywords)

	many := make([]string, MaxKeywords+1)
	for i := range many {
		many[i] = "k"
	}
	_, err = ValidateKeywords(many)
	assert.ErrorIs(t, err, ErrInvalidKeywords)

	_, err = ValidateKeywords([]string{strings.Repeat("x", MaxKeywordLength+1)})
	assert.ErrorIs(t, err, ErrInvalidKeywords)

	_, err = ValidateKeywords([]string{strings.Repeat("é", MaxKeywordLength)})
	assert.NoError(t, err)

	_, err = ValidateKeywords([]string{"bad\x00word"})
	assert.ErrorIs(t, err, ErrInvalidKeywords)
}
