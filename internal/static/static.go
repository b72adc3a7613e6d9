// Package static serves the pre-built site from memory. Every file under the
// site directory is read once at startup.
package static

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".xml":  "application/rss+xml; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".jpeg": "image/jpeg",
}

// File is a static file held in memory.
type File struct {
	ContentType string
	Contents    []byte
}

// Site is the set of files making up the built site, keyed by their path
// relative to the site root.
type Site struct {
	files map[string]File
}

// Load reads every regular file under dir.
func Load(dir string) (*Site, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every regular file in fsys.
func LoadFS(fsys fs.FS) (*Site, error) {
	s := &Site{files: make(map[string]File)}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		s.files[p] = File{ContentType: contentType(p), Contents: b}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading static site: %w", err)
	}
	log.Infof("[static] loaded %d files", len(s.files))
	return s, nil
}

func contentType(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Lookup maps a request path to a file: "/" is index.html and paths without
// an extension get ".html" appended.
func (s *Site) Lookup(reqPath string) (File, bool) {
	f, ok := s.files[filePath(reqPath)]
	return f, ok
}

// Get returns the file stored at the exact relative path name.
func (s *Site) Get(name string) (File, bool) {
	f, ok := s.files[name]
	return f, ok
}

func filePath(reqPath string) string {
	if len(reqPath) < 2 {
		return "index.html"
	}
	p := path.Clean(reqPath)
	if path.Ext(p) == "" {
		p += ".html"
	}
	return strings.TrimPrefix(p, "/")
}

// Slugs lists the blog posts in the site, taken from blog/*.html.
func (s *Site) Slugs() []string {
	var slugs []string
	for name := range s.files {
		dir, file := path.Split(name)
		if dir != "blog/" || path.Ext(file) != ".html" {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(file, ".html"))
	}
	sort.Strings(slugs)
	return slugs
}

// Len is the number of loaded files.
func (s *Site) Len() int {
	return len(s.files)
}
