// Package workflow drives one extraction attempt at a time: choosing a
// document, submitting it, and settling on the outcome.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/usestring/labelscan/internal/cache"
	"github.com/usestring/labelscan/internal/schema"
	"github.com/usestring/labelscan/pkg/types"
)

var (
	// ErrNoFile is returned when an operation needs a document and none is
	// selected.
	ErrNoFile = errors.New("no file selected, choose a PDF first")

	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("a submission is already in progress")

	// ErrNotSucceeded is returned when a successful result is required.
	ErrNotSucceeded = errors.New("no successful extraction to export")
)

// Submitter sends a document to the extraction service.
type Submitter interface {
	Submit(ctx context.Context, file types.File) (types.Result, error)
}

// Validator checks a successful result before it is accepted.
type Validator interface {
	ValidateOk(ok *types.Ok) *schema.ValidationResult
}

// Observer is called for every transition, in order. It must not call
// back into the Machine synchronously.
type Observer func(Transition)

// Machine owns the workflow state. All methods are safe for concurrent use.
type Machine struct {
	mu     sync.Mutex
	emitMu sync.Mutex
	state  State

	// inflight has weight 1: holding it is the right to run an attempt.
	inflight *semaphore.Weighted

	submitter Submitter
	validator Validator
	history   *cache.History
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithValidator checks every successful result; a result that fails is
// treated as a transport failure.
func WithValidator(v Validator) Option {
	return func(m *Machine) {
		m.validator = v
	}
}

// WithHistory records every finished attempt.
func WithHistory(h *cache.History) Option {
	return func(m *Machine) {
		m.history = h
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		m.observers = append(m.observers, o)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a Machine in the Idle state.
func New(submitter Submitter, opts ...Option) *Machine {
	m := &Machine{
		state:     Idle{},
		inflight:  semaphore.NewWeighted(1),
		submitter: submitter,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Select makes file the document to submit, discarding any previous
// result. It is rejected while a submission is in flight.
func (m *Machine) Select(file types.File) error {
	if file.IsZero() {
		return fmt.Errorf("%w: %w", ErrNoFile, types.ErrEmptyFile)
	}

	m.mu.Lock()
	if Busy(m.state) {
		m.mu.Unlock()
		return ErrBusy
	}
	m.transitionLocked(FileSelected{File: file})
	return nil
}

// Clear returns to Idle. It is rejected while a submission is in flight.
func (m *Machine) Clear() error {
	m.mu.Lock()
	if Busy(m.state) {
		m.mu.Unlock()
		return ErrBusy
	}
	m.transitionLocked(Idle{})
	return nil
}

// Submit starts an attempt for the selected document and returns at once.
// The returned channel receives the terminal state and is then closed.
//
// With no document selected it returns ErrNoFile and nothing happens. While
// another attempt is in flight it returns ErrBusy and nothing happens.
// Attempts are not cancellable: cancelling ctx does not stop the upload.
func (m *Machine) Submit(ctx context.Context) (<-chan State, error) {
	m.mu.Lock()

	if !m.inflight.TryAcquire(1) {
		m.mu.Unlock()
		return nil, ErrBusy
	}

	file, ok := FileOf(m.state)
	if !ok {
		m.inflight.Release(1)
		m.mu.Unlock()
		return nil, ErrNoFile
	}

	prior := m.state
	if te, ok := prior.(TransportError); ok {
		prior = te.Prior
	}

	up := Uploading{
		File:      file,
		AttemptID: uuid.NewString(),
		Started:   m.now(),
		Prior:     prior,
	}
	m.transitionLocked(up)

	done := make(chan State, 1)
	go m.run(context.WithoutCancel(ctx), up, done)
	return done, nil
}

// Succeeded returns the result of the current state when it is Succeeded.
func (m *Machine) Succeeded() (*types.Ok, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.state.(Succeeded); ok {
		return s.Result, nil
	}
	return nil, ErrNotSucceeded
}

func (m *Machine) run(ctx context.Context, up Uploading, done chan<- State) {
	res, err := m.call(ctx, up.File)
	next := m.settle(up, res, err)
	m.record(up, next)

	m.mu.Lock()
	// release while holding mu so the next Submit sees the terminal state
	m.inflight.Release(1)
	m.transitionLocked(next)

	done <- next
	close(done)
}

// call invokes the submitter, turning a panic into an error so an attempt
// always settles.
func (m *Machine) call(ctx context.Context, file types.File) (res types.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("submission panicked: %v", r)
		}
	}()
	return m.submitter.Submit(ctx, file)
}

func (m *Machine) settle(up Uploading, res types.Result, err error) State {
	if err != nil {
		return TransportError{File: up.File, AttemptID: up.AttemptID, Message: err.Error(), Err: err, Prior: up.Prior}
	}

	switch r := res.(type) {
	case *types.Ok:
		if r == nil {
			break
		}
		if m.validator != nil {
			if verr := m.validator.ValidateOk(r).Err(); verr != nil {
				err := fmt.Errorf("service returned a malformed result: %w", verr)
				return TransportError{File: up.File, AttemptID: up.AttemptID, Message: err.Error(), Err: err, Prior: up.Prior}
			}
		}
		return Succeeded{File: up.File, AttemptID: up.AttemptID, Result: r}
	case *types.ServiceError:
		if r != nil {
			return Failed{File: up.File, AttemptID: up.AttemptID, Result: r}
		}
	}

	err = errors.New("service returned no result")
	return TransportError{File: up.File, AttemptID: up.AttemptID, Message: err.Error(), Err: err, Prior: up.Prior}
}

func (m *Machine) record(up Uploading, next State) {
	if m.history == nil {
		return
	}

	a := cache.Attempt{
		ID:       up.AttemptID,
		File:     up.File.Name,
		Started:  up.Started,
		Finished: m.now(),
	}
	switch st := next.(type) {
	case Succeeded:
		a.Outcome = cache.OutcomeSucceeded
	case Failed:
		a.Outcome = cache.OutcomeFailed
		a.Detail = st.Result.Raw
	case TransportError:
		a.Outcome = cache.OutcomeTransportError
		a.Detail = st.Message
	}
	m.history.Record(a)
}

// transitionLocked sets the new state and notifies observers. It must be
// called with mu held and returns with mu released. emitMu is taken before
// mu is released so observers see transitions in the order they happened.
func (m *Machine) transitionLocked(next State) {
	tr := Transition{From: m.state, To: next, At: m.now()}
	m.state = next

	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	m.logger.Info("workflow.transition",
		"from", tr.From.Name(),
		"to", tr.To.Name(),
	)
	for _, o := range m.observers {
		o(tr)
	}
}
