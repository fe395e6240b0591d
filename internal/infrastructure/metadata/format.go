// ABOUTME: Renders Snapcast now-playing metadata into ICY title strings
// ABOUTME: Template placeholders resolve dotted paths; arrays join with commas
package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/harper/snapmeta/internal/domain/notification"
)

// DefaultFormat matches the MPRIS fields Snapcast stream plugins report.
const DefaultFormat = "{artist} - {title}"

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

type BuildConfig struct {
	Format              string
	StripSingleQuotes   bool
	NormalizeWhitespace bool
	FallbackKeyOrder    []string
}

type Formatter struct {
	cfg BuildConfig
}

func NewFormatter(cfg BuildConfig) *Formatter {
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return &Formatter{cfg: cfg}
}

// Title renders md through the format template. When every placeholder is
// empty the first non-empty fallback path wins.
func (f *Formatter) Title(md notification.Metadata) string {
	resolved := false
	result := placeholder.ReplaceAllStringFunc(f.cfg.Format, func(m string) string {
		v := Lookup(md, m[1:len(m)-1])
		if v != "" {
			resolved = true
		}
		return v
	})

	if !resolved {
		result = ""
		for _, path := range f.cfg.FallbackKeyOrder {
			if v := Lookup(md, path); v != "" {
				result = v
				break
			}
		}
	}

	if f.cfg.StripSingleQuotes {
		result = strings.ReplaceAll(result, "'", "")
	}

	if f.cfg.NormalizeWhitespace {
		result = strings.Join(strings.Fields(result), " ")
	}

	// Drop separators left dangling by an empty placeholder.
	return strings.Trim(result, " -")
}

// ArtURL returns the artwork URL Snapcast reports under artUrl, if any.
func (f *Formatter) ArtURL(md notification.Metadata) string {
	return Lookup(md, "artUrl")
}

// Lookup resolves a dotted path such as "album" or "meta.title" and renders
// the value as text.
func Lookup(md map[string]any, path string) string {
	var cur any = md
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	return stringify(cur)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
