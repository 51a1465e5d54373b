package intake

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxExtractedText bounds how much text is handed to the detector.
const maxExtractedText = 4 << 20

// TextExtractor renders file contents as plain text on a best-effort basis.
// Extract never fails: unreadable content yields an empty or partial string.
type TextExtractor interface {
	Supports(contentType string) bool
	Extract(ctx context.Context, data []byte) string
}

// ExtractorSet dispatches to the first extractor supporting the content type.
type ExtractorSet struct {
	extractors []TextExtractor
}

func NewExtractorSet(extractors ...TextExtractor) *ExtractorSet {
	return &ExtractorSet{extractors: extractors}
}

// DefaultExtractors handles text-like files and PDFs. Images fall through to
// NoopExtractor until an OCR backend is wired in.
func DefaultExtractors() *ExtractorSet {
	return NewExtractorSet(PlainTextExtractor{}, PDFExtractor{}, NoopExtractor{})
}

func (s *ExtractorSet) Extract(ctx context.Context, contentType string, data []byte) string {
	mediaType := normalizeContentType(contentType)
	for _, e := range s.extractors {
		if e.Supports(mediaType) {
			return e.Extract(ctx, data)
		}
	}
	return ""
}

type PlainTextExtractor struct{}

func (PlainTextExtractor) Supports(contentType string) bool {
	switch contentType {
	case "application/json", "application/xml", "application/rtf":
		return true
	}
	return strings.HasPrefix(contentType, "text/")
}

func (PlainTextExtractor) Extract(_ context.Context, data []byte) string {
	if len(data) > maxExtractedText {
		data = data[:maxExtractedText]
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), " ")
	}
	return string(data)
}

type PDFExtractor struct{}

func (PDFExtractor) Supports(contentType string) bool {
	return contentType == "application/pdf"
}

func (PDFExtractor) Extract(_ context.Context, data []byte) (text string) {
	// the parser panics on some malformed documents
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return ""
	}

	out, _ := io.ReadAll(io.LimitReader(plain, maxExtractedText))
	return string(out)
}

// NoopExtractor stands in for OCR on image-only and unknown formats.
type NoopExtractor struct{}

func (NoopExtractor) Supports(string) bool { return true }

func (NoopExtractor) Extract(context.Context, []byte) string { return "" }

func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// SniffContentType reconciles the uploader's declared type with the bytes.
// The sniffed type wins whenever it is specific and disagrees, so a file
// cannot dodge scanning or stamping by being mislabelled. Text subtypes the
// sniffer cannot tell apart (json, csv, markdown) keep their declared type.
func SniffContentType(declared string, data []byte) string {
	detected := normalizeContentType(http.DetectContentType(data))
	mediaType := normalizeContentType(declared)

	switch {
	case detected == "application/octet-stream", detected == mediaType:
		return declared
	case strings.HasPrefix(detected, "text/") && (PlainTextExtractor{}).Supports(mediaType):
		return declared
	}

	return detected
}
