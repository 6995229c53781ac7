package workflow

import (
	"time"

	"github.com/usestring/labelscan/pkg/types"
)

// State is the single active state of the workflow. It is one of Idle,
// FileSelected, Uploading, Succeeded, Failed or TransportError.
type State interface {
	Name() string
	state()
}

// Idle holds nothing.
type Idle struct{}

// FileSelected holds a document ready to submit.
type FileSelected struct {
	File types.File
}

// Uploading is an attempt in flight. Prior is the state it started from.
type Uploading struct {
	File      types.File
	AttemptID string
	Started   time.Time
	Prior     State
}

// Succeeded holds a validated extraction.
type Succeeded struct {
	File      types.File
	AttemptID string
	Result    *types.Ok
}

// Failed holds the output of a service that answered but could not
// structure the document.
type Failed struct {
	File      types.File
	AttemptID string
	Result    *types.ServiceError
}

// TransportError is an attempt whose call failed. Prior is the state the
// attempt started from, kept so its result stays on screen.
type TransportError struct {
	File      types.File
	AttemptID string
	Message   string
	Err       error
	Prior     State
}

func (Idle) Name() string           { return "idle" }
func (FileSelected) Name() string   { return "file_selected" }
func (Uploading) Name() string      { return "uploading" }
func (Succeeded) Name() string      { return "succeeded" }
func (Failed) Name() string         { return "failed" }
func (TransportError) Name() string { return "transport_error" }

func (Idle) state()           {}
func (FileSelected) state()   {}
func (Uploading) state()      {}
func (Succeeded) state()      {}
func (Failed) state()         {}
func (TransportError) state() {}

// FileOf returns the document held by s.
func FileOf(s State) (types.File, bool) {
	switch st := s.(type) {
	case FileSelected:
		return st.File, true
	case Uploading:
		return st.File, true
	case Succeeded:
		return st.File, true
	case Failed:
		return st.File, true
	case TransportError:
		return st.File, true
	default:
		return types.File{}, false
	}
}

// Busy reports whether s is an attempt in flight.
func Busy(s State) bool {
	_, ok := s.(Uploading)
	return ok
}

// Terminal reports whether s ends an attempt.
func Terminal(s State) bool {
	switch s.(type) {
	case Succeeded, Failed, TransportError:
		return true
	default:
		return false
	}
}

// Transition is one state change as seen by observers.
type Transition struct {
	From State
	To   State
	At   time.Time
}
