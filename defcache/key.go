package defcache

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Key returns the canonical form of path: absolute, cleaned, with symlinks
// resolved when the file exists. On platforms whose default filesystem is
// case-insensitive the key is lower-cased as well. A case-sensitive volume
// mounted there can then map two distinct files to one key.
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if foldsCase(runtime.GOOS) {
		abs = strings.ToLower(abs)
	}
	return abs, nil
}

func foldsCase(goos string) bool {
	switch goos {
	case "windows", "darwin", "ios":
		return true
	}
	return false
}
