package intake

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorSet_Extract(t *testing.T) {
	set := DefaultExtractors()
	ctx := context.Background()

	assert.Equal(t, "hello", set.Extract(ctx, "text/plain; charset=utf-8", []byte("hello")))
	assert.Equal(t, `{"a":1}`, set.Extract(ctx, "application/json", []byte(`{"a":1}`)))
	assert.Empty(t, set.Extract(ctx, "image/png", []byte("\x89PNG")))
	assert.Empty(t, set.Extract(ctx, "application/octet-stream", []byte("founder@startup.io")))
}

func TestPDFExtractor_MalformedInputYieldsEmptyText(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, PDFExtractor{}.Extract(ctx, []byte("%PDF-1.4 not really a pdf")))
	assert.Empty(t, PDFExtractor{}.Extract(ctx, nil))
}

func TestPlainTextExtractor_InvalidUTF8(t *testing.T) {
	got := PlainTextExtractor{}.Extract(context.Background(), []byte("a\xffb"))
	assert.Equal(t, "a b", got)
}

func TestSniffContentType(t *testing.T) {
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, solidImage(8, 8)))

	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
	}{
		{"matching type keeps parameters", "text/plain; charset=utf-8", []byte("hello"), "text/plain; charset=utf-8"},
		{"text labelled binary", "application/octet-stream", []byte("hello there"), "text/plain"},
		{"json stays json", "application/json", []byte(`{"a":1}`), "application/json"},
		{"png labelled pdf", "application/pdf", img.Bytes(), "image/png"},
		{"unknown bytes keep declared", "application/vnd.ms-powerpoint", []byte{0xd0, 0xcf, 0x11, 0xe0, 0x00, 0x01}, "application/vnd.ms-powerpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffContentType(tt.declared, tt.data))
		})
	}
}
