package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usestring/labelscan/pkg/contenttype"
)

var (
	// ErrEmptyFile is returned for a document with no content.
	ErrEmptyFile = errors.New("file is empty")

	// ErrNotPDF is returned for a document that is not a PDF.
	ErrNotPDF = errors.New("only PDF files are supported")
)

// File is a document selected for extraction.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// NewFile builds a File from raw content. The content must be a non-empty
// PDF, recognised by its header or by a .pdf name.
func NewFile(name string, content []byte) (File, error) {
	if len(content) == 0 {
		return File{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	if contenttype.Classify(contenttype.Detect(name, content)) != contenttype.PDF {
		return File{}, fmt.Errorf("%s: %w", name, ErrNotPDF)
	}
	return File{
		Name:        name,
		ContentType: contenttype.PDFMediaType,
		Content:     content,
	}, nil
}

// LoadFile reads path from disk and returns it as a File.
func LoadFile(path string) (File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewFile(filepath.Base(path), content)
}

// IsZero reports whether no document is held.
func (f File) IsZero() bool {
	return len(f.Content) == 0
}

// Size returns the content length in bytes.
func (f File) Size() int {
	return len(f.Content)
}
