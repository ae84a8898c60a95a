// Package testutil provides shared test helpers: a fake Boosty API server
// and small environment shims.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// CaptureStdout captures stdout during fn() and returns the output.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = orig
		_ = w.Close()
		_ = r.Close()
	}()

	fn()

	_ = w.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

// ChdirTemp changes to a temp directory and restores cwd on cleanup.
func ChdirTemp(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("failed to chdir temp: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(orig)
	})
	return tmp
}

// TextContent encodes s in the wire format text chunks use for their
// content field: a JSON array of [text, modifier, style runs].
func TextContent(s string) string {
	b, _ := json.Marshal([]any{s, "unstyled", []any{}})
	return string(b)
}

// StyledContent is TextContent with explicit style runs
// ([code, offset, length] triples).
func StyledContent(s string, runs ...[3]int) string {
	styles := make([]any, 0, len(runs))
	for _, r := range runs {
		styles = append(styles, []int{r[0], r[1], r[2]})
	}
	b, _ := json.Marshal([]any{s, "unstyled", styles})
	return string(b)
}

// Page is one canned pagination response for the fake API.
type Page struct {
	Posts  []map[string]any
	Offset string
	IsLast bool
}

// NewBoostyServer serves canned post pages for one author, keyed by the
// offset query parameter (first page has key ""). Unknown authors get 404.
func NewBoostyServer(t *testing.T, author string, pages map[string]Page) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(fmt.Sprintf("/blog/%s/post/", author), func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Query().Get("offset")]
		if !ok {
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		posts := page.Posts
		if posts == nil {
			posts = []map[string]any{}
		}
		resp := map[string]any{
			"data": posts,
			"extra": map[string]any{
				"offset": page.Offset,
				"isLast": page.IsLast,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// PostRecord builds a minimal raw post map for the fake server; chunks go
// into the data array as-is.
func PostRecord(id, title string, createdAt, updatedAt int64, hasAccess bool, chunks ...map[string]any) map[string]any {
	if chunks == nil {
		chunks = []map[string]any{}
	}
	return map[string]any{
		"id":          id,
		"title":       title,
		"createdAt":   createdAt,
		"updatedAt":   updatedAt,
		"hasAccess":   hasAccess,
		"signedQuery": "?sign=test",
		"data":        chunks,
	}
}
