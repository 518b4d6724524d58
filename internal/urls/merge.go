// Package urls joins site-relative paths onto the catalog base address.
package urls

import (
	"net/url"
	"strings"
)

// Merge joins base and relative with exactly one slash between them.
//
// A lone "/" relative means "no path" and yields "". An empty base returns
// relative and an empty relative returns base unchanged.
func Merge(base, relative string) string {
	if relative == "/" {
		return ""
	}
	if base == "" {
		return relative
	}
	if relative == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(relative, "/")
}

// SameSite reports whether rawURL points at a host containing domainKeyword,
// which covers every mirror of the catalog.
func SameSite(rawURL, domainKeyword string) bool {
	if domainKeyword == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.Contains(u.Hostname(), domainKeyword)
}

// Base builds the catalog root address for the first mirror extension.
func Base(scheme, domainKeyword, extension string) string {
	if scheme == "" {
		scheme = "https"
	}
	host := domainKeyword
	if extension != "" {
		host += "." + extension
	}
	return scheme + "://" + host + "/"
}

// Resolve returns the address to fetch for a submission link and the
// site-relative path identifying it. Absolute links keep their mirror host;
// relative ones are merged onto base.
func Resolve(base, ref string) (target, path string) {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() && u.Host != "" {
		return ref, u.RequestURI()
	}
	return Merge(base, ref), ref
}
