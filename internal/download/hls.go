package download

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/grafov/m3u8"
)

// manifestBase splits a playlist URL into its directory base and query
// string so relative variant URIs can be resolved against it.
func manifestBase(manifestURL string) (string, string, error) {
	u, err := url.Parse(manifestURL)
	if err != nil {
		return "", "", err
	}
	p := u.Path
	lastSlash := strings.LastIndex(p, "/")
	base := u.Scheme + "://" + u.Host + p[:lastSlash+1]
	query := ""
	if u.RawQuery != "" {
		query = "?" + u.RawQuery
	}
	return base, query, nil
}

// ResolveHLSVariant fetches an HLS master playlist and returns the URL of
// its highest-bandwidth variant. Used for platform videos that only expose
// adaptive streams.
func (d *Downloader) ResolveHLSVariant(ctx context.Context, masterURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, masterURL, nil)
	if err != nil {
		return "", err
	}
	d.setHeaders(req)
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: masterURL, Status: resp.StatusCode}
	}

	playlist, _, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return "", err
	}
	master, ok := playlist.(*m3u8.MasterPlaylist)
	if !ok {
		return "", errors.New("expected HLS master playlist but got media playlist")
	}
	if len(master.Variants) == 0 {
		return "", errors.New("HLS master playlist has no variants")
	}
	sort.Slice(master.Variants, func(x, y int) bool {
		return master.Variants[x].Bandwidth > master.Variants[y].Bandwidth
	})
	variantURI := master.Variants[0].URI
	if strings.HasPrefix(variantURI, "http://") || strings.HasPrefix(variantURI, "https://") {
		return variantURI, nil
	}
	base, query, err := manifestBase(masterURL)
	if err != nil {
		return "", err
	}
	return base + variantURI + query, nil
}
