package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResult is returned when an upload response cannot be turned
// into a Result.
var ErrMalformedResult = errors.New("malformed extraction result")

// Result is the outcome the extraction service reports for one document.
// It is either *Ok or *ServiceError.
type Result interface {
	result()
}

// Ok is a structured extraction. Allergen and nutrient keys keep the order
// the service produced them in.
type Ok struct {
	Allergens Mapping `json:"allergens"`
	Nutrition Mapping `json:"nutrition_per_100g"`
	Preview   string  `json:"preview"`
}

// ServiceError is returned by the service when it answered but could not
// structure the document. Raw is its unparsed output.
type ServiceError struct {
	Raw    string
	Reason string
}

func (*Ok) result()           {}
func (*ServiceError) result() {}

// UploadResponse is the JSON envelope returned by POST /upload.
type UploadResponse struct {
	Extracted json.RawMessage `json:"extracted"`
	Preview   string          `json:"preview"`
}

// errorMembers picks out the members that mark a service-side parse failure.
type errorMembers struct {
	Error json.RawMessage `json:"error"`
	Raw   json.RawMessage `json:"raw"`
}

// DecodeResult turns an envelope into a Result. An extracted object whose
// error member is truthy is a *ServiceError; anything else must decode as
// *Ok.
func DecodeResult(resp *UploadResponse) (Result, error) {
	if resp == nil || isNull(resp.Extracted) {
		return nil, fmt.Errorf("%w: missing extracted object", ErrMalformedResult)
	}

	var head errorMembers
	if err := json.Unmarshal(resp.Extracted, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}

	if isErrorFlag(head.Error) {
		return &ServiceError{
			Raw:    jsonText(head.Raw),
			Reason: reason(head.Error),
		}, nil
	}

	var ok Ok
	if err := json.Unmarshal(resp.Extracted, &ok); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	ok.Preview = resp.Preview
	return &ok, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// isErrorFlag reports whether the error member is set to a truthy value:
// anything but null, false, 0 and "".
func isErrorFlag(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

// jsonText returns a JSON string's content, or the raw JSON text for any
// other value.
func jsonText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// reason keeps the error member only when it carries a message.
func reason(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
