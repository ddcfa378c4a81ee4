package service

import "strings"

// ResolveLink turns a path returned by the service into an absolute URL.
// Absolute http(s) URLs are returned unchanged; relative paths are joined to
// origin with exactly one slash between them. An empty path yields ("", false).
func ResolveLink(origin, path string) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path, true
	}
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return origin + path, true
}

// FileName is the last segment of a link, or def when there is none.
func FileName(link, def string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	seg := link
	if i := strings.LastIndex(link, "/"); i >= 0 {
		seg = link[i+1:]
	}
	if seg == "" || strings.Contains(seg, ":") {
		return def
	}
	return seg
}
