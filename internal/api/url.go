package api

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsePostURL extracts the author handle and post id from a public post
// link of the form https://boosty.to/<author>/posts/<id>.
func ParsePostURL(raw string) (author, postID string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("bad post url %q: %w", raw, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "boosty.to" {
		return "", "", fmt.Errorf("bad post url %q: not a boosty.to link", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || parts[1] != "posts" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("bad post url %q: expected boosty.to/<author>/posts/<id>", raw)
	}
	return parts[0], parts[2], nil
}
