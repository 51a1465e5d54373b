package intake

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mark identifies the pitch and its owner on every published copy.
type Mark struct {
	PitchID string
	OwnerID string
}

func (m Mark) Text() string {
	return fmt.Sprintf("VentureLink • pitch %s • owner %s", m.PitchID, m.OwnerID)
}

// asciiText is Text for fonts without the bullet glyph.
func (m Mark) asciiText() string {
	return strings.ReplaceAll(m.Text(), "•", "|")
}

// Watermarker stamps a Mark onto file contents of the formats it supports.
type Watermarker interface {
	Supports(contentType string) bool
	Apply(ctx context.Context, data []byte, mark Mark) ([]byte, error)
}

// WatermarkerSet dispatches to the first watermarker supporting the content type.
type WatermarkerSet struct {
	watermarkers []Watermarker
}

func NewWatermarkerSet(watermarkers ...Watermarker) *WatermarkerSet {
	return &WatermarkerSet{watermarkers: watermarkers}
}

func DefaultWatermarkers() *WatermarkerSet {
	return NewWatermarkerSet(ImageWatermarker{}, NewPDFWatermarker(), PassthroughWatermarker{})
}

func (s *WatermarkerSet) Apply(ctx context.Context, contentType string, data []byte, mark Mark) ([]byte, error) {
	mediaType := normalizeContentType(contentType)
	for _, w := range s.watermarkers {
		if w.Supports(mediaType) {
			return w.Apply(ctx, data, mark)
		}
	}
	return data, nil
}

// ImageWatermarker tiles the mark across PNG and JPEG images and re-encodes
// them in their original format.
type ImageWatermarker struct{}

func (ImageWatermarker) Supports(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/jpg":
		return true
	}
	return false
}

var (
	markInk    = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 110})
	markShadow = image.NewUniform(color.NRGBA{R: 0, G: 0, B: 0, A: 90})
)

func (ImageWatermarker) Apply(_ context.Context, data []byte, mark Mark) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)

	text := mark.asciiText()
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	stepX := width + 48
	stepY := face.Height * 6

	drawer := &font.Drawer{Dst: dst, Face: face}
	for row, y := 0, bounds.Min.Y+face.Ascent+8; y < bounds.Max.Y; row, y = row+1, y+stepY {
		// stagger alternate rows
		x0 := bounds.Min.X - (row%2)*(stepX/2)
		for x := x0; x < bounds.Max.X; x += stepX {
			drawer.Src = markShadow
			drawer.Dot = fixed.P(x+1, y+1)
			drawer.DrawString(text)

			drawer.Src = markInk
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(text)
		}
	}

	var out bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&out, dst)
	case "jpeg":
		err = jpeg.Encode(&out, dst, &jpeg.Options{Quality: 90})
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", format, err)
	}

	return out.Bytes(), nil
}

const pdfStampDescription = "fontname:Helvetica, points:18, rotation:45, opacity:0.3, scalefactor:0.8 rel"

var disablePDFConfigDir sync.Once

// PDFWatermarker stamps the mark diagonally across every page.
type PDFWatermarker struct{}

func NewPDFWatermarker() PDFWatermarker {
	disablePDFConfigDir.Do(api.DisableConfigDir)
	return PDFWatermarker{}
}

func (PDFWatermarker) Supports(contentType string) bool {
	return contentType == "application/pdf"
}

func (PDFWatermarker) Apply(_ context.Context, data []byte, mark Mark) ([]byte, error) {
	// Core fonts are WinAnsi encoded, so the stamp sticks to ASCII.
	wm, err := api.TextWatermark(mark.asciiText(), pdfStampDescription, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build pdf stamp: %w", err)
	}

	var out bytes.Buffer
	err = api.AddWatermarks(bytes.NewReader(data), &out, nil, wm, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to stamp pdf: %w", err)
	}
	return out.Bytes(), nil
}

// PassthroughWatermarker publishes formats without a stamping strategy unchanged.
type PassthroughWatermarker struct{}

func (PassthroughWatermarker) Supports(string) bool { return true }

func (PassthroughWatermarker) Apply(_ context.Context, data []byte, _ Mark) ([]byte, error) {
	return data, nil
}
