package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/usestring/labelscan/pkg/contenttype"
	"github.com/usestring/labelscan/pkg/types"
)

// Submit uploads file to the extraction service and returns the result it
// reports. Each call is one independent attempt: no retries are made.
// Every error returned is a *TransportFailure.
func (c *Client) Submit(ctx context.Context, file types.File) (types.Result, error) {
	if file.IsZero() {
		return nil, &TransportFailure{Op: "upload", Err: types.ErrEmptyFile}
	}

	body, contentType, err := encodeUpload(file)
	if err != nil {
		return nil, &TransportFailure{Op: "upload", Err: err}
	}

	c.logger.Info("submitting document",
		"file", file.Name,
		"bytes", file.Size(),
		"url", c.baseURL+UploadPath,
	)

	var envelope types.UploadResponse
	if err := c.post(ctx, UploadPath, body, contentType, &envelope); err != nil {
		return nil, &TransportFailure{Op: "upload", Err: err}
	}

	res, err := types.DecodeResult(&envelope)
	if err != nil {
		return nil, &TransportFailure{Op: "upload", Err: err}
	}
	return res, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeUpload builds a multipart body with the document as its only field.
// The part carries the document's own content type; the service rejects
// parts that are not application/pdf.
func encodeUpload(file types.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ct := file.ContentType
	if ct == "" {
		ct = contenttype.PDFMediaType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadField, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("writing form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
