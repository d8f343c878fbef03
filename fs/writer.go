// Package fs provides file-based output for filtered pages and exports.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/serpblock"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// URLToPath converts a search results URL to a relative file path with the
// given extension. The host becomes a directory and the query is folded
// into the file name, since every results page shares the same path.
// Example: https://www.google.com/search?q=go+modules → www.google.com/search_q-go-modules.html
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", serpblock.Errorf(serpblock.EINVALID, "invalid URL %q", rawURL)
	}

	if u.Scheme == "file" || u.Scheme == "" {
		name := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		if name == "" || name == "." || name == "/" {
			name = "index"
		}
		return clean(name) + ext, nil
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		path = "index"
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "." || s == ".." {
			return "", serpblock.Errorf(serpblock.EINVALID, "path traversal in URL %q", rawURL)
		}
		segments[i] = clean(s)
	}
	name := strings.Join(segments, "/")

	if u.RawQuery != "" {
		q, err := url.QueryUnescape(u.RawQuery)
		if err != nil {
			q = u.RawQuery
		}
		name += "_" + clean(q)
	}

	return filepath.Join(clean(u.Hostname()), filepath.FromSlash(name)) + ext, nil
}

func clean(s string) string {
	s = unsafePathChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 120 {
		s = s[:120]
	}
	if s == "" {
		return "_"
	}
	return s
}

// WriteFile writes data to path atomically: the content goes to a
// temporary file in the same directory which is then renamed over path.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Ensure Writer implements serpblock.PageStore at compile time.
var _ serpblock.PageStore = (*Writer)(nil)

// Writer collects filtered pages into a single file. Nothing is written
// until Commit, which replaces the file atomically.
type Writer struct {
	path  string
	pages []string
}

// NewWriter creates a Writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Save(ctx context.Context, page *serpblock.FilteredPage) error {
	w.pages = append(w.pages, page.Content)
	return nil
}

func (w *Writer) Commit() error {
	return WriteFile(w.path, []byte(strings.Join(w.pages, "\n")))
}

func (w *Writer) Abort() error {
	w.pages = nil
	return nil
}
