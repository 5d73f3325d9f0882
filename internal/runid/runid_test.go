package runid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "canonical", input: "550e8400-e29b-41d4-a716-446655440000", ok: true},
		{name: "uppercase", input: "550E8400-E29B-41D4-A716-446655440000", ok: true},
		{name: "mixed case", input: "550e8400-E29B-41d4-a716-446655440000", ok: true},
		{name: "not a uuid", input: "not-a-uuid"},
		{name: "empty", input: ""},
		{name: "no hyphens", input: "550e8400e29b41d4a716446655440000"},
		{name: "braced", input: "{550e8400-e29b-41d4-a716-446655440000}"},
		{name: "urn", input: "urn:uuid:550e8400-e29b-41d4-a716-446655440000"},
		{name: "non hex", input: "550e8400-e29b-41d4-a716-44665544000g"},
		{name: "misplaced hyphen", input: "550e840-0e29b-41d4-a716-446655440000"},
		{name: "path traversal", input: "../../../../etc/passwd-aaaaaaaaaaaaaa"},
		{name: "trailing space", input: "550e8400-e29b-41d4-a716-44665544000 "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.ok {
				require.NoError(t, err)
				assert.True(t, Valid(tc.input))
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.False(t, Valid(tc.input))
		})
	}
}

func TestValidateGeneratedIDs(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := uuid.NewString()
		require.NoError(t, Validate(id), id)
		require.NoError(t, Validate(strings.ToUpper(id)), id)
	}
}
