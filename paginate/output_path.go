package paginate

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"pageflow/config"
	"pageflow/state"
)

const outputExt = ".xml"

// buildOutputPath returns output file path for document src, which is
// relative to the processed source (base name for single files). Source
// directory structure is kept under dst unless NoDirs is requested.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(src, dst, env), buildFileName(src, &env.Cfg.Output))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	dir := filepath.Dir(filepath.FromSlash(src))
	if dir == "." {
		return dst
	}
	parts := strings.Split(dir, string(filepath.Separator))
	for i, part := range parts {
		parts[i] = cleanPathSegment(part, &env.Cfg.Output)
	}
	return filepath.Join(append([]string{dst}, parts...)...)
}

func buildFileName(src string, conf *config.OutputConfig) string {
	base := filepath.Base(filepath.FromSlash(src))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return cleanPathSegment(base+conf.FileNameSuffix, conf) + outputExt
}

func cleanPathSegment(segment string, conf *config.OutputConfig) string {
	if conf.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.SafeName(segment)
}
