package serpblock

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// validHostRegex accepts dotted host names without protocol, path, port or
// characters that cannot appear in a host. The last label must have 2-63 characters.
var validHostRegex = regexp.MustCompile(`^([^.:;/*!?'" ()#$@<>]+[.])+[^.:;/*!?'" ()#$@<>]{2,63}$`)

var (
	leadingProtocolRegex = regexp.MustCompile(`^https?://`)
	repeatedDotsRegex    = regexp.MustCompile(`\.+`)
)

// ValidateHost reports whether host is acceptable as a blocklist pattern.
func ValidateHost(host string) bool {
	return validHostRegex.MatchString(host)
}

// NormalizePattern lower-cases pattern and trims surrounding whitespace.
// Hosts are compared lower-case, so stored patterns must be too.
func NormalizePattern(pattern string) string {
	return strings.ToLower(strings.TrimSpace(pattern))
}

// SanitizePattern turns user input such as "https://www.example.com:8080/path"
// into a bare pattern ("example.com"). Returns EINVALID if nothing usable remains.
func SanitizePattern(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if i := strings.IndexFunc(candidate, isSpace); i != -1 {
		candidate = candidate[:i]
	}
	candidate = leadingProtocolRegex.ReplaceAllString(candidate, "")
	candidate = strings.TrimPrefix(candidate, "www.")
	if i := strings.IndexByte(candidate, '/'); i != -1 {
		candidate = candidate[:i]
	}
	if i := strings.IndexByte(candidate, ':'); i != -1 {
		candidate = candidate[:i]
	}

	host, err := normalizeHost(candidate)
	if err != nil || !ValidateHost(host) {
		return "", Errorf(EINVALID, "invalid pattern %q", raw)
	}
	return host, nil
}

// SanitizePatterns sanitizes every entry and returns the valid ones in input order.
// Invalid entries are dropped.
func SanitizePatterns(raw []string) []string {
	patterns := make([]string, 0, len(raw))
	for _, r := range raw {
		p, err := SanitizePattern(r)
		if err != nil {
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// SplitPattern divides a pattern into its editable sub-domain part and its
// registrable domain, e.g. "shop.example.co.uk" → ("shop", "example.co.uk").
// Patterns without a known public suffix are returned whole as the domain.
func SplitPattern(pattern string) (subdomain, domain string) {
	domain, err := publicsuffix.EffectiveTLDPlusOne(pattern)
	if err != nil || domain == pattern {
		return "", pattern
	}
	return strings.TrimSuffix(strings.TrimSuffix(pattern, domain), "."), domain
}

// AssemblePattern joins a sub-domain and a domain after cleaning stray dots
// and whitespace from the sub-domain.
func AssemblePattern(subdomain, domain string) string {
	sd := strings.Trim(strings.TrimSpace(subdomain), ".")
	sd = repeatedDotsRegex.ReplaceAllString(sd, ".")
	if sd == "" {
		return domain
	}
	return sd + "." + domain
}

// normalizeHost lower-cases ASCII hosts and converts internationalized hosts
// to their ASCII (punycode) form.
func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(host, ".")
	if isASCII(host) {
		return strings.ToLower(host), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", err
	}
	return strings.ToLower(ascii), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
