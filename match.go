package serpblock

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// redirectRegex recognises links routed through an intermediate redirector,
	// e.g. https://translate.example/translate?u=http://example.com. The last
	// group is the embedded target; it must contain a dot to be taken as a URL.
	redirectRegex = regexp.MustCompile(
		`^(https?://[a-z0-9.-]+)?/` +
			`[a-z_-]*[?]((img)?u|.*&(img)?u)(rl)?=([^&]*[.][^&]*).*$`)

	hostRegex = regexp.MustCompile(`^https?://(www[.])?([0-9a-zA-Z.-]+).*$`)

	personalizationOffRegex = regexp.MustCompile(`(&|[?])pws=0`)
)

// UnwrapRedirect returns the target URL embedded in a redirector link, or the
// link itself when it is not a redirect.
func UnwrapRedirect(rawURL string) string {
	m := redirectRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	target := m[6]
	if unescaped, err := url.QueryUnescape(target); err == nil {
		target = unescaped
	}
	return target
}

// ExtractHost returns the bare, lower-cased host of an http(s) URL with any
// leading "www." removed. Relative or malformed URLs yield "".
func ExtractHost(rawURL string) string {
	m := hostRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[2])
}

// ResultHost resolves the domain a result link points to, following redirector links.
func ResultHost(href string) string {
	return ExtractHost(UnwrapRedirect(href))
}

// FindBlockPattern returns the first pattern contained in host, or "" if none.
//
// Containment is a plain substring test, so "example.com" also matches
// "example.com.evil.net" and "notexample.com".
func FindBlockPattern(patterns []string, host string) string {
	if host == "" {
		return ""
	}
	for _, p := range patterns {
		if p != "" && strings.Contains(host, p) {
			return p
		}
	}
	return ""
}

// SubDomains lists the domain suffixes of host from the shortest to the full
// host: "a.b.c.d" → ["c.d", "b.c.d", "a.b.c.d"].
func SubDomains(host string) []string {
	parts := strings.Split(host, ".")
	var subdomains []string
	for i := len(parts) - 2; i >= 0; i-- {
		subdomains = append(subdomains, strings.Join(parts[i:], "."))
	}
	return subdomains
}

// PersonalizationDisabled reports whether a search page URL explicitly turned
// personalized results off (pws=0). The matcher leaves such pages alone.
func PersonalizationDisabled(pageURL string) bool {
	return personalizationOffRegex.MatchString(pageURL)
}
