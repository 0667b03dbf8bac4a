package pdfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/logx"
	"advisor/pkg/tokens"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	counter, err := tokens.NewCounter()
	require.NoError(t, err)
	return NewExtractor(counter, 100, logx.NewLogger("test"))
}

func TestIsPDFChecksMagic(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7 rest of file")))
	assert.False(t, IsPDF([]byte("<html>not a pdf</html>")))
	assert.False(t, IsPDF(nil))
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.ExtractText([]byte("plain text file"))
	assert.Error(t, err)
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := newTestExtractor(t)
	_, err := e.ExtractText([]byte("%PDF-1.4 but the rest is garbage"))
	assert.Error(t, err)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalizeWhitespace("  a\n\n b\t c  "))
	assert.Equal(t, "", normalizeWhitespace(" \n\t "))
}
