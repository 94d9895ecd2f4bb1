package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend kinds accepted by OpenBackend.
const (
	KindAuto   = "auto"
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// appDir is the directory name under the XDG data home.
const appDir = "zk-spaced"

// OpenBackend opens the snapshot backend of the given kind at path.
// KindAuto picks SQLite for .db, .sqlite and .sqlite3 files and JSON otherwise.
func OpenBackend(kind, path string) (Backend, error) {
	if kind == "" || kind == KindAuto {
		kind = kindForPath(path)
	}
	switch kind {
	case KindJSON:
		return NewFileBackend(path), nil
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", kind)
	}
}

func kindForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// fileName returns the default snapshot file name for a backend kind.
func fileName(kind string) string {
	if kind == KindSQLite {
		return "db.sqlite"
	}
	return "db.json"
}

// DefaultPath resolves the snapshot path in priority order:
// 1. ZKSPACED_DB environment variable
// 2. $XDG_DATA_HOME/zk-spaced/<file>
// 3. ~/.local/share/zk-spaced/<file>
// where <file> is db.sqlite for the SQLite backend and db.json otherwise.
func DefaultPath(kind string) (string, error) {
	if p := os.Getenv("ZKSPACED_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, appDir, fileName(kind))
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
