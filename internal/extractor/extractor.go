package extractor

import (
	"context"
	"path/filepath"
	"strings"
)

// Extractor turns file bytes into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Func adapts a plain function to Extractor.
type Func func(ctx context.Context, data []byte) (string, error)

func (f Func) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

var (
	PDF  Extractor = Func(func(_ context.Context, data []byte) (string, error) { return ExtractPDF(data) })
	DOCX Extractor = Func(func(_ context.Context, data []byte) (string, error) { return ExtractDOCX(data) })
	TXT  Extractor = Func(func(_ context.Context, data []byte) (string, error) { return ExtractTXT(data) })
)

// Registry picks an Extractor from the file extension of a stored path.
// Paths with an unknown extension go to the fallback.
type Registry struct {
	byExt    map[string]Extractor
	fallback Extractor
}

// NewRegistry returns a registry for .pdf, .docx and .txt with PDF as fallback.
func NewRegistry() *Registry {
	return &Registry{
		byExt: map[string]Extractor{
			".pdf":  PDF,
			".docx": DOCX,
			".txt":  TXT,
		},
		fallback: PDF,
	}
}

// Register binds ext (with or without the leading dot) to e.
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.byExt[ext] = e
}

func (r *Registry) SetFallback(e Extractor) {
	r.fallback = e
}

func (r *Registry) ForPath(path string) Extractor {
	if e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return e
	}
	return r.fallback
}
