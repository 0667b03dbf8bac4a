// Package pdfx extracts plain text from uploaded PDF documents and
// trims it to a prompt token budget.
package pdfx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"advisor/pkg/logx"
	"advisor/pkg/tokens"
)

// MaxUploadBytes caps accepted uploads.
const MaxUploadBytes = 10 << 20

// IsPDF checks the file magic. Uploads are rejected on anything else.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// Extractor pulls text out of PDF bytes.
type Extractor struct {
	counter    *tokens.Counter
	tokenLimit int
	log        *logx.Logger
}

func NewExtractor(counter *tokens.Counter, tokenLimit int, log *logx.Logger) *Extractor {
	if tokenLimit <= 0 {
		tokenLimit = 2000
	}
	return &Extractor{
		counter:    counter,
		tokenLimit: tokenLimit,
		log:        log.WithComponent("pdfx"),
	}
}

// ExtractText parses the document and returns its text, truncated to
// the extractor's token budget.
func (e *Extractor) ExtractText(data []byte) (string, error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("not a PDF document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := normalizeWhitespace(string(raw))
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}

	truncated := e.counter.Truncate(text, e.tokenLimit)
	if len(truncated) < len(text) {
		e.log.Info("truncated document from %d to %d tokens", e.counter.Count(text), e.tokenLimit)
	}
	return truncated, nil
}

// normalizeWhitespace collapses runs of whitespace to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
