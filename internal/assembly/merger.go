package assembly

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// File is one resolved document entering a merge.
type File struct {
	Name string
	Data []byte
}

// Merger combines resolved document files into a single PDF. Implementations
// either produce the complete output or fail; there is no partial result.
type Merger interface {
	Merge(ctx context.Context, files []File) ([]byte, error)
}

type pdfMerger struct {
	conf *model.Configuration
}

// NewMerger creates the pdfcpu-backed merger. PDF inputs are appended
// page-wise; image inputs are wrapped into single-page PDFs first.
func NewMerger() Merger {
	return &pdfMerger{conf: model.NewDefaultConfiguration()}
}

func (m *pdfMerger) Merge(ctx context.Context, files []File) ([]byte, error) {
	if len(files) == 0 {
		return nil, ErrEmptySelection
	}

	readers := make([]io.ReadSeeker, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pdf, err := m.asPDF(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMergeFailed, f.Name, err)
		}
		readers = append(readers, bytes.NewReader(pdf))
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, m.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}

	return out.Bytes(), nil
}

// asPDF passes PDF content through and converts images into a one-page PDF.
func (m *pdfMerger) asPDF(f File) ([]byte, error) {
	contentType := http.DetectContentType(f.Data)

	switch {
	case contentType == "application/pdf":
		return f.Data, nil
	case strings.HasPrefix(contentType, "image/"):
		var out bytes.Buffer
		if err := api.ImportImages(nil, &out, []io.Reader{bytes.NewReader(f.Data)}, nil, m.conf); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported content type %s", contentType)
	}
}
