// Package filex contains helpers for working with device-local file
// references. Captured media is identified by a local URI such as
// "file:///var/.../p.jpg"; these helpers translate that into filesystem
// operations.
package filex

import (
	"fmt"
	"os"
	"strings"
)

// LocalPath converts a local URI into a filesystem path.
// A "file://" scheme prefix is stripped; anything else is returned as-is.
func LocalPath(uri string) string {
	if after, ok := strings.CutPrefix(uri, "file://"); ok {
		return after
	}
	return uri
}

// ReadLocalFile reads the file referenced by a local URI.
func ReadLocalFile(uri string) ([]byte, error) {
	data, err := os.ReadFile(LocalPath(uri))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return data, nil
}

// BaseName returns the last path segment of a URI, or fallback when the
// segment is empty or has no extension.
func BaseName(uri string, fallback string) string {
	trimmed := strings.TrimRight(uri, "/\\")
	idx := strings.LastIndexAny(trimmed, "/\\")
	last := trimmed
	if idx >= 0 {
		last = trimmed[idx+1:]
	}
	if last == "" || !strings.Contains(last, ".") {
		return fallback
	}
	return last
}

// Ext returns the lower-cased extension of a URI including the dot,
// or "" when there is none.
func Ext(uri string) string {
	name := BaseName(uri, "")
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx:])
}
