// Package serpblock provides a personal blocklist that hides unwanted domains
// from search-engine result pages. A blocklist store persists the patterns and
// answers request/response messages; a page matcher scans a result page,
// extracts the domain of every result and hides the ones that match.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package serpblock
