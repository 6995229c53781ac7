package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/usestring/labelscan/internal/workflow"
	"github.com/usestring/labelscan/pkg/client"
	"github.com/usestring/labelscan/pkg/types"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeBusy         = "BUSY"
	ErrCodeServiceError = "SERVICE_ERROR"
	ErrCodeTransport    = "TRANSPORT_ERROR"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapWorkflowError converts workflow, client and context errors to a coded
// error.
func WrapWorkflowError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *client.APIError
	var netErr net.Error

	coded := &CodedError{Code: ErrCodeTransport, Message: "upload failed", Cause: err}
	switch {
	case errors.Is(err, workflow.ErrBusy):
		coded = &CodedError{Code: ErrCodeBusy, Message: "wait for the current extraction to finish"}
	case errors.Is(err, workflow.ErrNotSucceeded):
		coded = &CodedError{Code: ErrCodeNotFound, Message: "no successful extraction yet, call labelscan_extract first"}
	case errors.Is(err, workflow.ErrNoFile), errors.Is(err, types.ErrEmptyFile), errors.Is(err, types.ErrNotPDF):
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: err.Error()}
	case errors.As(err, &apiErr):
		coded = &CodedError{Code: ErrCodeServiceError, Message: apiErr.Message, Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	}

	slog.Warn("tool error",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)

	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
