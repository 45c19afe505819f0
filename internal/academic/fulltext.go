package academic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// ExtractPDFText pulls the plain text out of a PDF file. Scanned documents
// without a text layer yield ErrNoExtractableText.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	text := util.SanitizeText(buf.String())
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

// ReadPDFItem turns a PDF file into a full-text item. The file's SHA-256 is
// kept in the meta data as a stable fingerprint across re-imports.
func ReadPDFItem(path, projectID string) (models.GenericItem, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return models.GenericItem{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.GenericItem{}, fmt.Errorf("open pdf for fingerprint: %w", err)
	}
	defer f.Close()
	fingerprint, err := util.SHA256HexFromReader(f)
	if err != nil {
		return models.GenericItem{}, fmt.Errorf("fingerprint pdf: %w", err)
	}

	return models.GenericItem{
		ProjectID: projectID,
		Text:      text,
		Meta: map[string]any{
			"filename": filepath.Base(path),
			"_sha256":  fingerprint,
		},
	}, nil
}
