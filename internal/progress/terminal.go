package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/boosty-tools/boosty-dl/internal/ui"
)

// DefaultRenderInterval is the minimum time between redraws of the same
// task line. Keeps chunked downloads from flooding the terminal.
const DefaultRenderInterval = 200 * time.Millisecond

type task struct {
	description string
	total       int64
	done        int64
	indent      int
	completed   bool
	lastRender  time.Time
}

// Terminal renders tasks as indented log lines. A single mutex serializes
// all task state and all writes, so concurrent producers never tear output.
type Terminal struct {
	mu             sync.Mutex
	out            io.Writer
	nextID         TaskID
	tasks          map[TaskID]*task
	renderInterval time.Duration
}

// NewTerminal returns a Reporter writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:            out,
		tasks:          make(map[TaskID]*task),
		renderInterval: DefaultRenderInterval,
	}
}

func indentPrefix(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("  ", level)
}

// CreateTask registers and announces a new task.
func (t *Terminal) CreateTask(description string, total int64, indent int) TaskID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.tasks[id] = &task{description: description, total: total, indent: indent}
	fmt.Fprintf(t.out, "%s%s%s%s %s\n",
		indentPrefix(indent), ui.ColorCyan, ui.SymbolDownload, ui.ColorReset, description)
	return id
}

// UpdateTask advances the task and redraws its progress line, throttled to
// the render interval. Completed or unknown tasks are ignored.
func (t *Terminal) UpdateTask(id TaskID, advance int64, total int64, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok || tk.completed {
		return
	}
	tk.done += advance
	if total >= 0 {
		tk.total = total
	}
	if description != "" {
		tk.description = description
	}
	now := time.Now()
	if now.Sub(tk.lastRender) < t.renderInterval {
		return
	}
	tk.lastRender = now
	fmt.Fprintf(t.out, "%s%s%s\n", indentPrefix(tk.indent), ui.ColorGray, t.formatLine(tk)+ui.ColorReset)
}

// fileTaskIndent marks the indent level of per-file transfer tasks. Those
// measure bytes; page and post tasks above them count items.
const fileTaskIndent = 2

func (t *Terminal) formatLine(tk *task) string {
	desc := ui.TruncateWithEllipsis(tk.description, ui.GetTermWidth()-24)
	inBytes := tk.indent >= fileTaskIndent
	if tk.total <= 0 {
		if inBytes {
			return fmt.Sprintf("%s [%s]", desc, humanize.Bytes(uint64(max64(tk.done, 0))))
		}
		return fmt.Sprintf("%s [%d]", desc, tk.done)
	}
	pct := tk.done * 100 / tk.total
	if pct > 100 {
		pct = 100
	}
	if inBytes {
		return fmt.Sprintf("%s [%d%% %s/%s]", desc, pct,
			humanize.Bytes(uint64(max64(tk.done, 0))), humanize.Bytes(uint64(tk.total)))
	}
	return fmt.Sprintf("%s [%d%% %d/%d]", desc, pct, tk.done, tk.total)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// CompleteTask finishes the task and prints its final line.
func (t *Terminal) CompleteTask(id TaskID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tk, ok := t.tasks[id]
	if !ok || tk.completed {
		return
	}
	tk.completed = true
	fmt.Fprintf(t.out, "%s%s%s%s %s\n",
		indentPrefix(tk.indent), ui.ColorGreen, ui.SymbolCheck, ui.ColorReset, tk.description)
	delete(t.tasks, id)
}

// Message-level operations share the serialization lock so they never land
// inside a task line.

func (t *Terminal) Info(msg string) { t.printMsg(ui.ColorBlue, ui.SymbolInfo, msg) }

func (t *Terminal) Warning(msg string) {
	t.mu.Lock()
	ui.RunWarningCount++
	t.mu.Unlock()
	t.printMsg(ui.ColorYellow, ui.SymbolWarning, msg)
}

// Error also bumps the run error counter so the exit code reflects posts
// that were given up on.
func (t *Terminal) Error(msg string) {
	t.mu.Lock()
	ui.RunErrorCount++
	t.mu.Unlock()
	t.printMsg(ui.ColorRed, ui.SymbolCross, msg)
}

func (t *Terminal) Success(msg string) { t.printMsg(ui.ColorGreen, ui.SymbolCheck, msg) }

func (t *Terminal) Notice(msg string) { t.printMsg(ui.ColorGray, ui.SymbolNotice, msg) }

func (t *Terminal) Wait(msg string) { t.printMsg(ui.ColorGray, ui.SymbolWait, msg) }

func (t *Terminal) printMsg(color, symbol, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s%s%s %s\n", color, symbol, ui.ColorReset, msg)
}
