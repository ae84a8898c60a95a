// Package external shells out to yt-dlp for videos hosted off-platform.
// Posts routinely embed YouTube or Vimeo players; those never have direct
// media URLs, so the heavy lifting goes to the dedicated tool when it is
// installed.
package external

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "yt-dlp"

// supportedHosts are the embed sources worth handing to yt-dlp. Anything
// else is recorded as a link in the rendered document instead.
var supportedHosts = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
}

// SupportedURL reports whether the URL points at a host yt-dlp is used for.
func SupportedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, h := range supportedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Client wraps the yt-dlp binary. The run hook exists so tests can observe
// invocations without the binary installed.
type Client struct {
	binary string
	run    func(cmd *exec.Cmd) error
}

// New returns a Client using the default binary name.
func New() *Client {
	return &Client{
		binary: DefaultBinary,
		run:    func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

// NewWithRunner returns a Client with a custom binary and run hook.
func NewWithRunner(binary string, run func(cmd *exec.Cmd) error) *Client {
	return &Client{binary: binary, run: run}
}

// Available reports whether the binary can be found on PATH.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Download fetches the video into dir using yt-dlp's own filename template.
// yt-dlp cleans up its own partial files on failure.
func (c *Client) Download(ctx context.Context, videoURL, dir string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary,
		"--no-playlist",
		"--no-progress",
		"--paths", dir,
		"--output", "%(title)s [%(id)s].%(ext)s",
		videoURL,
	)
	cmd.Stderr = &stderr
	if err := c.run(cmd); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("yt-dlp failed for %s: %w\n%s", videoURL, err, stderr.String())
	}
	return nil
}
