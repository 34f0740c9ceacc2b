package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// IndexFile is the artifact name inside a dated report directory
const IndexFile = "index.html"

// OutputPath returns {dir}/{end}/index.html
func OutputPath(dir, end string) string {
	return filepath.Join(dir, end, IndexFile)
}

// WriteReport writes html to OutputPath(dir, end) and returns the path.
// The file is written to a temp name and renamed so readers never see a
// partial report.
func WriteReport(dir, end string, html []byte) (string, error) {
	path := OutputPath(dir, end)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return path, nil
}
