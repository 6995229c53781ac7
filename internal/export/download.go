package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Download saves a into dir under its suggested name, replacing any file
// already there. The data goes to a temporary file first; that file is
// closed and removed on every path, so repeated or failed exports leave
// nothing behind.
func Download(dir string, a Artifact) (string, error) {
	if a.Filename == "" {
		return "", fmt.Errorf("artifact has no file name")
	}
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+a.Filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(a.Data); err != nil {
		return "", fmt.Errorf("writing %s: %w", a.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", a.Filename, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("setting mode on %s: %w", a.Filename, err)
	}

	dest := filepath.Join(dir, a.Filename)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("saving %s: %w", a.Filename, err)
	}
	committed = true

	slog.Info("export.saved",
		"path", dest,
		"bytes", len(a.Data),
		"mime", a.MIMEType,
	)
	return dest, nil
}
