package external

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupportedURL(t *testing.T) {
	require.True(t, SupportedURL("https://www.youtube.com/watch?v=abc"))
	require.True(t, SupportedURL("https://youtu.be/abc"))
	require.True(t, SupportedURL("https://vimeo.com/12345"))
	require.True(t, SupportedURL("https://player.vimeo.com/video/1"))

	require.False(t, SupportedURL("https://rutube.ru/video/x"))
	require.False(t, SupportedURL("https://notyoutube.com/watch"))
	require.False(t, SupportedURL("::bad::"))
}

func TestDownloadBuildsInvocation(t *testing.T) {
	var got []string
	c := NewWithRunner("yt-dlp", func(cmd *exec.Cmd) error {
		got = cmd.Args
		return nil
	})
	err := c.Download(context.Background(), "https://youtu.be/abc", "/tmp/videos")
	require.NoError(t, err)
	require.Equal(t, "yt-dlp", got[0])
	require.Contains(t, got, "--paths")
	require.Contains(t, got, "/tmp/videos")
	require.Equal(t, "https://youtu.be/abc", got[len(got)-1])
}

func TestDownloadWrapsFailure(t *testing.T) {
	c := NewWithRunner("yt-dlp", func(cmd *exec.Cmd) error {
		cmd.Stderr.Write([]byte("no formats found"))
		return errors.New("exit status 1")
	})
	err := c.Download(context.Background(), "https://youtu.be/abc", t.TempDir())
	require.ErrorContains(t, err, "yt-dlp failed")
	require.ErrorContains(t, err, "no formats found")
}

func TestDownloadPrefersContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewWithRunner("yt-dlp", func(cmd *exec.Cmd) error {
		return errors.New("signal: killed")
	})
	err := c.Download(ctx, "https://youtu.be/abc", t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
