package mediakind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uploadkit/uploadkit/pkg/mediakind"
)

func TestIsImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/svg+xml", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"application/pdf", false},
		{"video/mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, mediakind.IsImage(tt.kind))
		})
	}
}

func TestFromLocator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		locator string
		want    string
	}{
		{"png url", "https://bucket.example.com/photos/a.png", "image/png"},
		{"jpeg alias", "https://bucket.example.com/b.jpeg", "image/jpeg"},
		{"query ignored", "https://bucket.example.com/c.pdf?sig=abc", "application/pdf"},
		{"uppercase extension", "https://bucket.example.com/D.PNG", "image/png"},
		{"no extension", "https://bucket.example.com/raw", mediakind.Unknown},
		{"unknown extension", "https://bucket.example.com/x.qzx", mediakind.Unknown},
		{"bare path", "files/report.csv", "text/csv"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, mediakind.FromLocator(tt.locator))
		})
	}
}

func TestExtFromKind(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".png", mediakind.ExtFromKind("image/png"))
	require.Equal(t, ".jpg", mediakind.ExtFromKind("image/jpeg"))
	require.Equal(t, ".mp3", mediakind.ExtFromKind("audio/mpeg; charset=binary"))
	require.Empty(t, mediakind.ExtFromKind("application/x-never-seen"))
}
