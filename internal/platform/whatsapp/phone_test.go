package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mobile 11 digits", "31999999999", "5531999999999"},
		{"landline 10 digits", "3133334444", "553133334444"},
		{"formatted input", "(31) 99999-9999", "5531999999999"},
		{"already prefixed 13 digits", "5531999999999", "5531999999999"},
		{"already prefixed 12 digits", "553133334444", "553133334444"},
		{"plus and spaces", "+55 31 99999-9999", "5531999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhonePrependsCountryCodeOnce(t *testing.T) {
	got, err := NormalizePhone("31999999999")
	require.NoError(t, err)
	again, err := NormalizePhone(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestNormalizePhoneRejectsShortNumbers(t *testing.T) {
	for _, in := range []string{"", "999", "99999-999", "55 1234"} {
		_, err := NormalizePhone(in)
		assert.Error(t, err, "input %q", in)
	}
}
