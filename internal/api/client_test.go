package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pageJSON(ids []string, offset string, isLast bool) string {
	posts := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, map[string]any{
			"id": id, "title": "t-" + id,
			"createdAt": 1700000000, "updatedAt": 1700000001,
			"hasAccess": true, "signedQuery": "?sign=x",
			"data": []any{},
		})
	}
	b, _ := json.Marshal(map[string]any{
		"data":  posts,
		"extra": map[string]any{"offset": offset, "isLast": isLast},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL+"/", "Bearer test", MinRequestDelay)
}

func TestGetAuthorPostsDecodesPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/blog/someone/post/", r.URL.Path)
		require.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		fmt.Fprint(w, pageJSON([]string{"p1", "p2"}, "cur", false))
	})
	page, err := c.GetAuthorPosts(context.Background(), "someone", 3, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.Equal(t, "p1", page.Posts[0].ID)
	require.Equal(t, "cur", page.Extra.Offset)
	require.False(t, page.Extra.IsLast)
}

func TestGetAuthorPostsErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusNotFound, func(t *testing.T, err error) {
			var e *NoUsernameError
			require.ErrorAs(t, err, &e)
			require.Equal(t, "ghost", e.Author)
		}},
		{http.StatusUnauthorized, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnauthorized)
		}},
		{http.StatusTeapot, func(t *testing.T, err error) {
			var e *UnknownError
			require.ErrorAs(t, err, &e)
			require.Equal(t, http.StatusTeapot, e.Status)
		}},
	}
	for _, tc := range cases {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.GetAuthorPosts(context.Background(), "ghost", 5, "")
		require.Error(t, err)
		tc.check(t, err)
	}
}

func TestGetAuthorPostsBadBodyIsValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": "x", "data": [{"type": "hologram"}]}], "extra": {}}`)
	})
	_, err := c.GetAuthorPosts(context.Background(), "someone", 5, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestIterateWalksAllPagesInOrder(t *testing.T) {
	pages := map[string]string{
		"":   pageJSON([]string{"a"}, "o1", false),
		"o1": pageJSON([]string{"b"}, "o2", false),
		"o2": pageJSON([]string{"c"}, "", true),
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pages[r.URL.Query().Get("offset")])
	})

	var seen []string
	var pageNums []int
	err := c.Iterate(context.Background(), "someone", 1, func(page *PostsResponse, pageNum int) error {
		pageNums = append(pageNums, pageNum)
		for _, p := range page.Posts {
			seen = append(seen, p.ID)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, seen)
	require.Equal(t, []int{1, 2, 3}, pageNums)
}

func TestIterateStopsOnCallbackError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageJSON([]string{"a"}, "next", false))
	})
	boom := errors.New("boom")
	err := c.Iterate(context.Background(), "someone", 1, func(*PostsResponse, int) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestIterateHonoursCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageJSON([]string{"a"}, "next", false))
	})
	ctx, cancel := context.WithCancel(context.Background())
	err := c.Iterate(ctx, "someone", 1, func(*PostsResponse, int) error {
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClientClampsDelay(t *testing.T) {
	c := NewClient(http.DefaultClient, "", "", 10*time.Millisecond)
	// One token per MinRequestDelay at least; the limiter must not allow a
	// burst faster than the floor.
	require.LessOrEqual(t, float64(c.limiter.Limit()), 1.0/MinRequestDelay.Seconds()+0.001)
}

func TestIsTransient(t *testing.T) {
	require.False(t, isTransient(nil))
	require.False(t, isTransient(context.Canceled))
	require.True(t, isTransient(&net.DNSError{Err: "no such host", IsNotFound: true}))
}
