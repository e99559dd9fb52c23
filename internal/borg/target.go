package borg

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"
)

// Label returns the value used for the `repository` metric label: the last
// element of the cleaned path. Paths without a usable last element (empty,
// root, "." or "..") are rejected.
func Label(path string) (string, error) {
	if path == "" {
		return "", errs.Newf(errs.Label, path, "empty path")
	}

	base := filepath.Base(filepath.Clean(path))
	switch base {
	case string(filepath.Separator), ".", "..":
		return "", errs.Newf(errs.Label, path, "path has no final element")
	}

	if !utf8.ValidString(base) {
		return "", errs.Newf(errs.Label, path, "invalid utf-8 in repository name")
	}
	return base, nil
}
