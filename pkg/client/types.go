package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UploadPath is the service endpoint documents are posted to.
const UploadPath = "/upload"

// UploadField is the multipart form field that carries the document.
const UploadField = "file"

// APIError represents a non-2xx response from the extraction service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Message)
}

// errorResponse covers both error bodies the service may send: FastAPI's
// {"detail": ...} and a plain {"error": "..."}.
type errorResponse struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func (r errorResponse) message() string {
	if r.Error != "" {
		return r.Error
	}
	if len(r.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(r.Detail, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(r.Detail))
}

// TransportFailure is returned by Submit for every failure of the call
// itself: bad input, network errors, non-2xx statuses and bodies that
// cannot be decoded. Its message is meant to be shown to the user.
type TransportFailure struct {
	Op  string
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}
