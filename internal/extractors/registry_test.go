package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grounder-ai/grounder/internal/core/domain"
)

// stubExtractor returns canned text for a set of extensions.
type stubExtractor struct {
	exts []string
	text string
	err  error
}

func (s *stubExtractor) Extensions() []string {
	return s.exts
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

func TestRegistry_Dispatch(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{exts: []string{".pdf"}, text: "from pdf"},
		&stubExtractor{exts: []string{".docx", ".doc"}, text: "from word"},
	)

	ctx := context.Background()

	text, err := r.Extract(ctx, nil, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	text, err = r.Extract(ctx, nil, ".DOC")
	require.NoError(t, err)
	assert.Equal(t, "from word", text)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	r := NewRegistry(&stubExtractor{exts: []string{".pdf"}})

	_, err := r.Extract(context.Background(), nil, ".exe")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	assert.False(t, r.Supports(".exe"))
	assert.True(t, r.Supports(".PDF"))
}

func TestRegistry_NormalisesOutput(t *testing.T) {
	r := NewRegistry(&stubExtractor{
		exts: []string{".pdf"},
		text: "  lots\t\tof    space\n\n\n\n\nnext  block  ",
	})

	text, err := r.Extract(context.Background(), nil, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "lots of space\n\nnext block", text)
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses whitespace runs",
			input:    "a \t  b",
			expected: "a b",
		},
		{
			name:     "collapses blank line runs",
			input:    "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "keeps single blank line",
			input:    "a\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "trims",
			input:    "\n  text  \n",
			expected: "text",
		},
		{
			name:     "empty stays empty",
			input:    "   \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalise(tt.input))
		})
	}
}
