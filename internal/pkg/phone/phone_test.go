package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"local format", "0912345678", true},
		{"country code", "84912345678", true},
		{"plus country code", "+84912345678", true},
		{"too short", "091234567", false},
		{"too long", "09123456789", false},
		{"no prefix", "912345678", false},
		{"letters", "091234567a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already local", "0912345678", "0912345678"},
		{"country code", "84912345678", "0912345678"},
		{"plus country code", "+84912345678", "0912345678"},
		{"with spaces", " 0912345678 ", "0912345678"},
		{"invalid passes through", "12345", "12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"0912345678", "84912345678", "+84912345678"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}
