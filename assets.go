package bramble

import (
	"io/fs"
	"path"
)

// AssetSource supplies raw asset bytes per element key.
type AssetSource interface {
	Asset(key string) ([]byte, error)
}

// AssetFunc adapts a function to AssetSource.
type AssetFunc func(key string) ([]byte, error)

// Asset calls f(key).
func (f AssetFunc) Asset(key string) ([]byte, error) { return f(key) }

// DirAssetSource reads "<Dir>/<key><Ext>" from a file system. Ext defaults
// to ".svg".
type DirAssetSource struct {
	FS  fs.FS
	Dir string
	Ext string
}

// Asset implements AssetSource.
func (s DirAssetSource) Asset(key string) ([]byte, error) {
	ext := s.Ext
	if ext == "" {
		ext = ".svg"
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return fs.ReadFile(s.FS, path.Join(dir, key+ext))
}
