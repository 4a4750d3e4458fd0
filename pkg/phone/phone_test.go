package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"0712345678":       "+254712345678",
		"254712345678":     "+254712345678",
		"+254712345678":    "+254712345678",
		" 0712 345 678 ":   "+254712345678",
		"+254 712 345 678": "+254712345678",
		"":                 "",
		"   ":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeWithCode(t *testing.T) {
	assert.Equal(t, "+255712345678", NormalizeWithCode("0712345678", "+255"))
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"0712345678", "+254712345678"}, Candidates("0712345678"))
	assert.Equal(t, []string{"+254712345678"}, Candidates("+254712345678"))
	assert.Nil(t, Candidates(" "))
}
