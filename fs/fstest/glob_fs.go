package fstest

import (
	"context"
	"path"
	"slices"
	"testing"

	"github.com/amphancm/olmocr/fs/core"
)

// TestGlobFSWithConfig tests pattern expansion, including "**".
func TestGlobFSWithConfig(t *testing.T, b core.Backend, root string, config FSTestConfig) {
	ctx := context.Background()
	base := path.Join(root, "glob")
	seedFixtures(t, b, base, "a.json", "b.json", "c.txt", "sub/d.json", "sub/deep/e.json")
	at := func(names ...string) []string {
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = path.Join(base, n)
		}
		return out
	}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"Star", "*.json", at("a.json", "b.json")},
		{"Question", "?.txt", at("c.txt")},
		{"Class", "[ac].*", at("a.json", "c.txt")},
		{"StarIncludesDirs", "*", at("a.json", "b.json", "c.txt", "sub")},
		{"DoubleStar", "**/*.json", at("a.json", "b.json", "sub/d.json", "sub/deep/e.json")},
		{"NestedStar", "*/*.json", at("sub/d.json")},
		{"Literal", "c.txt", at("c.txt")},
		{"LiteralMissing", "nope.txt", nil},
		{"NoMatch", "*.csv", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if config.skip(t, "GlobFS/"+tt.name) {
				return
			}
			pattern := path.Join(base, tt.pattern)
			got, err := b.Glob(ctx, pattern)
			if err != nil {
				t.Fatalf("Glob(%q): got error %v, want nil", pattern, err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Glob(%q) = %v, want %v", pattern, got, tt.want)
			}
		})
	}
}
