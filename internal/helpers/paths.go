// Package helpers provides small filesystem and path utilities shared by the
// download and archive packages.
package helpers

import (
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

const sanRegexStr = `[<>:"/\\|?*]`

var sanRegex = regexp.MustCompile(sanRegexStr)

// DefaultMaxNameBytes caps folder and file name length. 200 bytes leaves
// headroom under common 255-byte filesystem limits for the date prefix and
// id suffix added by callers.
const DefaultMaxNameBytes = 200

// Sanitize strips filesystem-unsafe characters and truncates the result so
// its UTF-8 encoding fits maxBytes. Truncation never splits a code point;
// trailing whitespace left by the cut is stripped.
func Sanitize(s string, maxBytes int) string {
	san := sanRegex.ReplaceAllString(s, "")
	if len(san) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(san[cut]) {
			cut--
		}
		san = strings.TrimRight(san[:cut], " \t\n\r")
	}
	return san
}

// SanitizeName applies Sanitize with the default byte limit.
func SanitizeName(s string) string {
	return Sanitize(s, DefaultMaxNameBytes)
}

// MakeDirs creates directories recursively.
func MakeDirs(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file (not directory) exists at the given path.
func FileExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return !f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DirExists checks if a directory exists at the given path.
func DirExists(path string) (bool, error) {
	f, err := os.Stat(path)
	if err == nil {
		return f.IsDir(), nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
