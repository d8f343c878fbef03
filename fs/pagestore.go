package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/serpblock"
)

// Ensure FileStore implements serpblock.PageStore at compile time.
var _ serpblock.PageStore = (*FileStore)(nil)

// FileStore implements serpblock.PageStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
	ext     string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name and
// ext the file extension of saved pages (e.g. ".html").
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name, ext string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
		ext:     ext,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *FileStore) Save(ctx context.Context, page *serpblock.FilteredPage) error {
	relPath, err := URLToPath(page.URL, s.ext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)

	// Create parent directories
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	content := page.Content
	if s.ext == ".md" {
		content = FormatPage(page, time.Now())
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}

// FormatPage formats a markdown page with YAML frontmatter.
func FormatPage(page *serpblock.FilteredPage, filtered time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	fmt.Fprintf(&b, "\nresults: %d", page.Results)
	fmt.Fprintf(&b, "\nremoved: %d", page.Removed)
	b.WriteString("\nfiltered: ")
	b.WriteString(filtered.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(page.Content)
	return b.String()
}

func (s *FileStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Nothing saved: leave an empty output directory
	if _, err := os.Stat(s.tempDir()); os.IsNotExist(err) {
		return os.MkdirAll(s.finalDir(), 0755)
	}

	// Atomically rename temp to final
	if err := os.Rename(s.tempDir(), s.finalDir()); err != nil {
		return err
	}

	return nil
}

func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
