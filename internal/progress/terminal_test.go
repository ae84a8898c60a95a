package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/boosty-tools/boosty-dl/internal/ui"
)

func TestTerminalTaskLifecycle(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.renderInterval = 0

	id := term.CreateTask("page 1", 2, 0)
	term.UpdateTask(id, 1, -1, "")
	term.UpdateTask(id, 1, -1, "")
	term.CompleteTask(id)

	out := ui.StripAnsiCodes(buf.String())
	require.Contains(t, out, "page 1")
	require.Contains(t, out, "100%")
}

func TestTerminalCountTasksAreNotByteFormatted(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.renderInterval = 0

	id := term.CreateTask("Page 1", 2, 0)
	term.UpdateTask(id, 1, -1, "")

	out := ui.StripAnsiCodes(buf.String())
	require.Contains(t, out, "[50% 1/2]")
	require.NotContains(t, out, " B]", "post counts must not render as bytes")
}

func TestTerminalFileTasksAreByteFormatted(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.renderInterval = 0

	id := term.CreateTask("clip.mp4", 2048, fileTaskIndent)
	term.UpdateTask(id, 1024, -1, "")

	out := ui.StripAnsiCodes(buf.String())
	require.Contains(t, out, "[50% 1.0 kB/2.0 kB]")
}

func TestTerminalIndentsByLevel(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.CreateTask("file.bin", TotalUnknown, 2)
	require.True(t, strings.HasPrefix(ui.StripAnsiCodes(buf.String()), "    "),
		"file-level tasks indent two levels")
}

func TestTerminalIgnoresCompletedAndUnknownTasks(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	term.renderInterval = 0

	id := term.CreateTask("t", 1, 0)
	term.CompleteTask(id)
	before := buf.Len()
	term.UpdateTask(id, 1, -1, "")
	term.UpdateTask(TaskID(999), 1, -1, "")
	term.CompleteTask(TaskID(999))
	require.Equal(t, before, buf.Len())
}

func TestTerminalConcurrentUpdatesDoNotTear(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := term.CreateTask("task", 100, 1)
			for j := 0; j < 50; j++ {
				term.UpdateTask(id, 2, -1, "")
			}
			term.CompleteTask(id)
			term.Info("done")
		}(i)
	}
	wg.Wait()

	for _, line := range strings.Split(ui.StripAnsiCodes(buf.String()), "\n") {
		require.False(t, strings.Contains(line, "task") && strings.Contains(line, "done"),
			"torn line: %q", line)
	}
}

func TestNullReporterIsSafe(t *testing.T) {
	var r Reporter = NewNull()
	id := r.CreateTask("x", 1, 0)
	r.UpdateTask(id, 1, -1, "y")
	r.CompleteTask(id)
	r.Info("i")
	r.Error("e")
}
