package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigits(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"123.456.789-00", "12345678900"},
		{"12345678900", "12345678900"},
		{"  33.995/218-806 ", "33995218806"},
		{"", ""},
		{"abc", ""},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, Digits(test.in))
		// canonicalization is idempotent
		require.Equal(t, Digits(test.in), Digits(Digits(test.in)))
	}
}

func TestCleanCell(t *testing.T) {
	require.Equal(t, "Ana Souza", CleanCell("  Ana\nSouza \r"))
	require.Equal(t, "E-mail:", CleanCell("E-mail:\n"))
	require.Equal(t, "", CleanCell(" \n\r "))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "anasouza", NormalizeName(" Ana  Souza \n"))
	require.Equal(t, NormalizeName("ANA SOUZA"), NormalizeName("ana souza"))
	require.Equal(t, "", NormalizeName(" \n\t "))
}

func TestDatePart(t *testing.T) {
	require.Equal(t, "03/02/2024", DatePart("03/02/2024 14:22:01"))
	require.Equal(t, "03/02/2024", DatePart(" 03/02/2024 "))
	require.Equal(t, "", DatePart(""))
}
