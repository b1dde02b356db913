package ytdata

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoId(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"wrong host", "https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"id too short", "https://youtu.be/short", ""},
		{"no video id", "https://www.youtube.com/feed/subscriptions", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, extractVideoId(u))
		})
	}
}

func TestResolveRejectsUnclassifiableReferences(t *testing.T) {
	resolver := NewResolver()
	ctx := context.Background()

	for _, raw := range []string{
		"https://example.com/some/page",
		"https://www.youtube.com/feed/subscriptions",
		"not-eleven",
		"",
	} {
		_, err := resolver.Resolve(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidReference, "url: %q", raw)
	}
}

func TestThumbnailUrlFallback(t *testing.T) {
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", thumbnailUrl("dQw4w9WgXcQ"))
}
