package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=ABC123", "https://www.youtube.com/embed/ABC123", true},
		{"https://youtu.be/ABC123", "https://www.youtube.com/embed/ABC123", true},
		{"https://youtu.be/ABC123?t=42", "https://www.youtube.com/embed/ABC123", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ&list=x", "https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/ABC123", "https://www.youtube.com/embed/ABC123", true},
		{"https://youtube.com/shorts/ABC123", "https://www.youtube.com/embed/ABC123", true},
		{"  https://vimeo.com/76979871 ", "https://player.vimeo.com/video/76979871", true},
		{"https://player.vimeo.com/video/76979871", "https://player.vimeo.com/video/76979871", true},
		{"not a url", "", false},
		{"", "", false},
		{"https://www.youtube.com/watch", "", false},
		{"https://youtu.be/", "", false},
		{"https://example.com/watch?v=ABC123", "", false},
		{"javascript:alert(1)", "", false},
		{"https://vimeo.com/channels/staff", "", false},
	}
	for _, tt := range tests {
		got, ok := EmbedURL(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
