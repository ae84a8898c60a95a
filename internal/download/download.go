// Package download fetches remote media to local files. Writes go through a
// temp file that is removed on any failure, so a cancelled or broken transfer
// never leaves a partial file behind.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/boosty-tools/boosty-dl/internal/helpers"
)

// copyChunkSize is the transfer buffer size. Small enough that progress
// callbacks and cancellation checks stay responsive.
const copyChunkSize = 8 * 1024

// tempSuffix marks in-flight files so an interrupted run is recognizable.
const tempSuffix = ".part"

// Error reports a download that failed at the HTTP layer.
type Error struct {
	URL    string
	Status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("download failed [%d]: %s", e.Status, e.URL)
}

// Status carries one progress snapshot for the callback.
type Status struct {
	Name    string
	Total   int64 // -1 when the server did not send a length
	Written int64
	Delta   int64
}

// ProgressFunc receives transfer snapshots. Called once per chunk.
type ProgressFunc func(Status)

// Request describes one file to fetch.
type Request struct {
	URL      string
	Dir      string
	Filename string // without extension when GuessExt is set
	GuessExt bool   // derive the extension from the response Content-Type
	Progress ProgressFunc
}

// Downloader fetches files over HTTP. The client is expected to carry the
// session cookie jar and no global timeout; large media takes as long as
// it takes and cancellation comes from the context. Requests go out with
// the same User-Agent and Authorization header as the API session, so
// subscriber-only media resolves the same way the listing did.
type Downloader struct {
	client     *http.Client
	userAgent  string
	authHeader string
}

// New returns a Downloader using the given client and session headers.
func New(client *http.Client, userAgent, authHeader string) *Downloader {
	return &Downloader{client: client, userAgent: userAgent, authHeader: authHeader}
}

func (d *Downloader) setHeaders(req *http.Request) {
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if d.authHeader != "" {
		req.Header.Set("Authorization", d.authHeader)
	}
}

// Download fetches req.URL into req.Dir and returns the final filename.
// A non-200 response maps to *Error. On any error, including context
// cancellation mid-transfer, no file is left in req.Dir.
func (d *Downloader) Download(ctx context.Context, req Request) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", err
	}
	d.setHeaders(httpReq)
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: req.URL, Status: resp.StatusCode}
	}

	name := req.Filename
	if req.GuessExt {
		// A recognized content type wins over whatever extension the remote
		// name carried; otherwise the original extension stays.
		if ext := guessExtension(resp.Header.Get("Content-Type")); ext != "" {
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
		}
	}
	name = helpers.SanitizeName(name)
	finalPath := filepath.Join(req.Dir, name)
	tempPath := finalPath + tempSuffix

	if err := d.writeBody(ctx, tempPath, name, resp, req.Progress); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", err
	}
	return name, nil
}

// writeBody streams the response body to tempPath in fixed-size chunks,
// checking the context between chunks.
func (d *Downloader) writeBody(ctx context.Context, tempPath, name string, resp *http.Response, progress ProgressFunc) error {
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	total := resp.ContentLength
	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			written += int64(n)
			if progress != nil {
				progress(Status{Name: name, Total: total, Written: written, Delta: int64(n)})
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return f.Sync()
			}
			return readErr
		}
	}
}

// guessExtension maps a Content-Type onto a file extension. Unknown or
// missing types yield no extension rather than a wrong one.
func guessExtension(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	// The registry order of ExtensionsByType is unstable; prefer the
	// conventional ones for the types Boosty actually serves.
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg":
		return ".mp3"
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	ext := exts[0]
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
