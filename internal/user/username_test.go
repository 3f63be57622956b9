package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "foo@example.com", NormalizeEmail(" Foo@EXample.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "maria", "maria"},
		{"uppercase", "Maria", "maria"},
		{"accents", "Jürgen Müller", "jurgenmuller"},
		{"separators_kept", "john.doe_99-x", "john.doe_99-x"},
		{"separators_trimmed", "__maria__", "maria"},
		{"spaces_dropped", "mary jane", "maryjane"},
		{"non_latin_dropped", "Анна", ""},
		{"empty", "", ""},
		{"only_separators", "._-", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeUsername(tc.in))
		})
	}
}
