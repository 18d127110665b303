package paginate

import (
	"path/filepath"
	"testing"
)

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.FromSlash("/out")

	tests := []struct {
		name          string
		src           string
		nodirs        bool
		transliterate bool
		suffix        string
		want          string
	}{
		{"single file", "chapter.xml", false, false, "", "/out/chapter.xml"},
		{"extension replaced", "chapter.pfx", false, false, "", "/out/chapter.xml"},
		{"directories kept", "part 1/chapter.xml", false, false, "", "/out/part 1/chapter.xml"},
		{"directories dropped", "part 1/chapter.xml", true, false, "", "/out/chapter.xml"},
		{"suffix", "chapter.xml", false, false, "_paged", "/out/chapter_paged.xml"},
		{"transliterated", "Part 1/Caf\u00e9 Noir.xml", false, true, "", "/out/part-1/cafe-noir.xml"},
		{"transliterated with suffix", "Chapter One.xml", true, true, " Paged", "/out/chapter-one-paged.xml"},
		{"leading dots", ".chapter.xml", false, false, "", "/out/chapter.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := setupTestEnv(t)
			env.NoDirs = tt.nodirs
			env.Cfg.Output.FileNameTransliterate = tt.transliterate
			env.Cfg.Output.FileNameSuffix = tt.suffix

			got := buildOutputPath(filepath.FromSlash(tt.src), dst, env)
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("buildOutputPath(%q) = %q, want %q", tt.src, got, want)
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	_, env := setupTestEnv(t)
	conf := &env.Cfg.Output

	if got := cleanPathSegment("..", conf); got != "_unnamed_" {
		t.Errorf("cleanPathSegment(..) = %q", got)
	}
	if got := cleanPathSegment("a:b", conf); got != "a_b" {
		t.Errorf("cleanPathSegment(a:b) = %q", got)
	}
}
