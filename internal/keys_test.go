package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		given string
		want  string
	}{
		{given: "", want: ""},
		{given: "abc_123", want: "abc_123"},
		{
			given: "https://m.media-amazon.com/images/I/51abc.jpg",
			want:  "https___m_media_amazon_com_images_I_51abc_jpg",
		},
		{given: "日本", want: "__"},
	}

	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeKey(tt.given))
		})
	}
}

func TestEscapeKeyLong(t *testing.T) {
	t.Parallel()

	prefix := "https://example.com/" + strings.Repeat("a", 200)
	a := EscapeKey(prefix + "/one.jpg")
	b := EscapeKey(prefix + "/two.jpg")

	assert.LessOrEqual(t, len(a), 167)
	assert.LessOrEqual(t, len(b), 167)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a[:150], b[:150])
	assert.Equal(t, byte('#'), a[150])

	// Stable across calls.
	assert.Equal(t, a, EscapeKey(prefix+"/one.jpg"))
}

func TestBinaryPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image-cache/ht/https___a_b_c.bin", BinaryPath("https://a.b/c"))
	assert.Equal(t, "image-cache/x/x.bin", BinaryPath("x"))
}
