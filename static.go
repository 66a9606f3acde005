package prerender

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// staticFiles serves files from a directory under a URL prefix.
type staticFiles struct {
	fs          http.FileSystem
	prefix      string
	development bool
}

func newStaticFiles(dir, prefix string, development bool) *staticFiles {
	if dir == "" {
		return nil
	}
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &staticFiles{fs: http.Dir(dir), prefix: prefix, development: development}
}

// relPath returns a sanitized relative path for a static file request. It
// rejects traversal and absolute-path tricks.
func (s *staticFiles) relPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" {
		return "", false
	}

	// NUL can arrive as %00; backslashes are platform dependent.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}

	// "/static//etc/passwd" strips to "/etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so they cannot be cleaned away.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

// serve writes the file for r and reports whether one existed. Requests
// other than GET and HEAD are never served.
func (s *staticFiles) serve(w http.ResponseWriter, r *http.Request) bool {
	if s == nil || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return false
	}
	rel, ok := s.relPath(r.URL.Path)
	if !ok {
		return false
	}

	f, err := s.fs.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	s.cacheHeaders(w, rel)
	http.ServeContent(w, r, rel, info.ModTime(), f)
	return true
}

func (s *staticFiles) cacheHeaders(w http.ResponseWriter, rel string) {
	switch {
	case s.development:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case isFingerprinted(rel):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// as in "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
