package passwd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Validate(t *testing.T) {
	t.Parallel()

	p := Default()

	cases := []struct {
		name     string
		password string
		attrs    []string
		want     error
	}{
		{"empty", "", nil, ErrEmptyPassword},
		{"short", "12345", nil, ErrTooShort},
		{"numeric", "9876543210123", nil, ErrNumeric},
		{"common", "password", nil, ErrCommon},
		{"common any case", "PassWord123", nil, ErrCommon},
		{"looks like email", "johnsmith42", []string{"johnsmith42@example.com"}, ErrTooSimilar},
		{"contains local part", "xx-johnsmith-xx", []string{"johnsmith@example.com"}, ErrTooSimilar},
		{"ok", "dcwsdcwsqfdwe", []string{"user@example.com"}, nil},
		{"short attr ignored", "dcwsdcwsqfdwe", []string{"dc@x.io"}, nil},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := p.Validate(tc.password, tc.attrs...)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
