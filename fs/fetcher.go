package fs

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/fwojciec/serpblock"
)

// Ensure Fetcher implements serpblock.Fetcher at compile time.
var _ serpblock.Fetcher = (*Fetcher)(nil)

// Fetcher reads saved results pages from disk. Local paths and file://
// URLs are read directly; anything else is passed to Next.
type Fetcher struct {
	Next serpblock.Fetcher
}

// IsLocal reports whether target names a local file rather than a web page.
func IsLocal(target string) bool {
	if strings.HasPrefix(target, "file://") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	return u.Scheme != "http" && u.Scheme != "https"
}

func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	if !IsLocal(target) {
		if f.Next == nil {
			return "", serpblock.Errorf(serpblock.EINVALID, "no fetcher for %s", target)
		}
		return f.Next.Fetch(ctx, target)
	}

	path := target
	if strings.HasPrefix(target, "file://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", serpblock.Errorf(serpblock.EINVALID, "invalid file URL %q", target)
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", serpblock.Errorf(serpblock.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *Fetcher) Close() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.Close()
}
