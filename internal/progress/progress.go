// Package progress implements the hierarchical task reporter used while
// crawling an author. Tasks form an implicit tree by indent level
// (page=0, post=1, file=2); every operation is safe for concurrent use.
package progress

// TaskID identifies one task created by a Reporter.
type TaskID int64

// TotalUnknown marks a task whose total is not known up front
// (e.g. a download without Content-Length).
const TotalUnknown int64 = -1

// Reporter is the narrow interface the use cases talk to. Implementations
// serialize updates internally; rendering is output-only.
type Reporter interface {
	// CreateTask registers a new task. total may be TotalUnknown.
	CreateTask(description string, total int64, indent int) TaskID
	// UpdateTask advances a task. A negative total leaves the stored total
	// unchanged; an empty description keeps the current one.
	UpdateTask(id TaskID, advance int64, total int64, description string)
	// CompleteTask marks the task finished. Further updates are ignored.
	CompleteTask(id TaskID)

	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Success(msg string)
	Notice(msg string)
	Wait(msg string)
}

// Null is a no-op Reporter for tests and quiet runs.
type Null struct{}

// NewNull returns a Reporter that swallows everything.
func NewNull() *Null { return &Null{} }

func (*Null) CreateTask(string, int64, int) TaskID           { return 0 }
func (*Null) UpdateTask(TaskID, int64, int64, string)        {}
func (*Null) CompleteTask(TaskID)                            {}
func (*Null) Info(string)                                    {}
func (*Null) Warning(string)                                 {}
func (*Null) Error(string)                                   {}
func (*Null) Success(string)                                 {}
func (*Null) Notice(string)                                  {}
func (*Null) Wait(string)                                    {}
