// ABOUTME: Tests for metadata title formatting
// ABOUTME: Verifies placeholders, MPRIS arrays, fallbacks, and cleanup options
package metadata

import (
	"encoding/json"
	"testing"

	"github.com/harper/snapmeta/internal/domain/notification"
)

func TestFormatter_Title(t *testing.T) {
	tests := []struct {
		name string
		cfg  BuildConfig
		md   notification.Metadata
		want string
	}{
		{
			name: "default format",
			md:   notification.Metadata{"artist": []any{"Test Artist"}, "title": "Test Song"},
			want: "Test Artist - Test Song",
		},
		{
			name: "multiple artists",
			md:   notification.Metadata{"artist": []any{"A", "B"}, "title": "Duet"},
			want: "A, B - Duet",
		},
		{
			name: "missing artist",
			md:   notification.Metadata{"title": "Only Title"},
			want: "Only Title",
		},
		{
			name: "custom format with numbers",
			cfg:  BuildConfig{Format: "{title} ({trackNumber})"},
			md:   notification.Metadata{"title": "Song", "trackNumber": json.Number("3")},
			want: "Song (3)",
		},
		{
			name: "nested fallback",
			cfg: BuildConfig{
				Format:           "{artist} - {title}",
				FallbackKeyOrder: []string{"now.secondLine.title", "now.firstLine.title"},
			},
			md: notification.Metadata{"now": map[string]any{
				"firstLine": map[string]any{"title": "First"},
			}},
			want: "First",
		},
		{
			name: "strip quotes and normalize",
			cfg:  BuildConfig{StripSingleQuotes: true, NormalizeWhitespace: true},
			md:   notification.Metadata{"artist": []any{"Guns N'   Roses"}, "title": "Don't  Cry"},
			want: "Guns N Roses - Dont Cry",
		},
		{
			name: "nothing resolves",
			md:   notification.Metadata{"album": "X"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFormatter(tt.cfg).Title(tt.md)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatter_ArtURL(t *testing.T) {
	f := NewFormatter(BuildConfig{})
	md := notification.Metadata{"artUrl": "http://snapserver:1780/__image_cache?name=abc.png"}

	if got := f.ArtURL(md); got != "http://snapserver:1780/__image_cache?name=abc.png" {
		t.Errorf("unexpected art url %q", got)
	}
	if got := f.ArtURL(notification.Metadata{}); got != "" {
		t.Errorf("expected empty art url, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	md := map[string]any{
		"a":    map[string]any{"b": "deep"},
		"flag": true,
		"obj":  map[string]any{"x": 1},
	}

	tests := map[string]string{
		"a.b":     "deep",
		"a.c":     "",
		"flag":    "true",
		"flag.x":  "",
		"obj":     "",
		"missing": "",
	}
	for path, want := range tests {
		if got := Lookup(md, path); got != want {
			t.Errorf("Lookup(%q) = %q, want %q", path, got, want)
		}
	}
}
