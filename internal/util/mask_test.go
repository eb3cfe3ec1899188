package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "a***@example.com",
		" b@x.fr ":          "b***@x.fr",
		"nobody":            "n***",
		"@x.com":            "@***",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}
