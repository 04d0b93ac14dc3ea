// Package extractors converts source file formats into normalised plain
// text. Extraction routines are selected purely by file extension; the
// registry applies whitespace normalisation to every result.
package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry builds a registry from the given extractors. A later extractor
// claiming an already-registered extension wins.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byExt: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// Supports reports whether an extension has a registered extractor.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Extract runs the extension's routine and normalises the output.
// Unrecognised extensions fail with domain.ErrUnsupportedFormat. The result
// may be empty; the caller decides whether that is an error.
func (r *Registry) Extract(ctx context.Context, data []byte, ext string) (string, error) {
	extractor, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		return "", err
	}

	return Normalise(text), nil
}
