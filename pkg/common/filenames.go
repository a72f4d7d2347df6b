// This file contains helpers turning disk file names into host file names.
package common

import (
	"fmt"
	"strings"
)

// maxFileNameLength caps generated host names well below common filesystem limits
const maxFileNameLength = 64

// CleanFileName maps a decoded disk file name onto characters that are safe on
// every host filesystem. Reserved characters become '_' and surrounding spaces
// and dots are dropped. An empty result is replaced by "unnamed".
func CleanFileName(fileName string) string {
	var sb strings.Builder
	for _, b := range []byte(fileName) {
		switch {
		case b < 0x20 || b >= 0x7F:
			sb.WriteByte('_')
		case strings.IndexByte(`<>:"|?*\/`, b) >= 0:
			sb.WriteByte('_')
		default:
			sb.WriteByte(b)
		}
	}

	name := strings.Trim(sb.String(), " .")
	if len(name) > maxFileNameLength {
		name = name[:maxFileNameLength]
	}
	if name == "" {
		return "unnamed"
	}
	return name
}

// IsValidFileName checks if a filename contains only characters CleanFileName keeps
func IsValidFileName(fileName string) bool {
	if len(fileName) == 0 || len(fileName) > maxFileNameLength {
		return false
	}
	return CleanFileName(fileName) == fileName
}

// UniqueFileName returns base+ext, or base_N+ext when that name is already taken.
// The returned name is recorded in taken. Names are compared case-insensitively.
func UniqueFileName(base, ext string, taken map[string]bool) string {
	name := base + ext
	for n := 2; taken[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	taken[strings.ToLower(name)] = true
	return name
}
