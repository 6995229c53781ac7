// Package export turns a successful extraction into a downloadable file.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/usestring/labelscan/pkg/types"
)

// Suggested file names and media types.
const (
	JSONFilename = "extracted_data.json"
	JSONMIMEType = "application/json"

	XLSXFilename = "extracted_data.xlsx"
	XLSXMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrNoResult is returned when there is nothing to export.
var ErrNoResult = errors.New("no result to export")

// Artifact is a serialized result ready to be saved.
type Artifact struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Format names a serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Serializer converts a result to an Artifact.
type Serializer func(ok *types.Ok) (Artifact, error)

// For returns the serializer for f.
func For(f Format) (Serializer, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatJSON, "":
		return Serialize, nil
	case FormatXLSX:
		return SerializeXLSX, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want json or xlsx)", f)
	}
}

// Serialize encodes the result as two-space indented JSON. Allergen and
// nutrient keys keep the order they were received in, so decoding the
// artifact yields a value equal to ok.
func Serialize(ok *types.Ok) (Artifact, error) {
	if ok == nil {
		return Artifact{}, ErrNoResult
	}
	data, err := json.MarshalIndent(ok, "", "  ")
	if err != nil {
		return Artifact{}, fmt.Errorf("encoding result: %w", err)
	}
	return Artifact{
		Data:     append(data, '\n'),
		Filename: JSONFilename,
		MIMEType: JSONMIMEType,
	}, nil
}
