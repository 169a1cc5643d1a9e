package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"docxml/wml"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

const testSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10" width="20" height="10">
  <rect width="20" height="10" fill="red"/>
</svg>`

func TestLoad_PNG(t *testing.T) {
	data := pngBytes(t, 96, 48)
	img, err := Load("dot.png", data, Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.MimeType != "image/png" || img.Ext != "png" {
		t.Errorf("type = %s/%s, want image/png png", img.MimeType, img.Ext)
	}
	if img.Width != 96 || img.Height != 48 {
		t.Errorf("size = %dx%d, want 96x48", img.Width, img.Height)
	}
	if !bytes.Equal(img.Data, data) {
		t.Error("unchanged image data was re-encoded")
	}
	if img.IsSVG() || img.Fallback != nil {
		t.Error("png reported as svg")
	}
	if !strings.HasPrefix(img.Target(), "media/") || !strings.HasSuffix(img.Target(), ".png") {
		t.Errorf("Target() = %s", img.Target())
	}
}

func TestLoad_Downscale(t *testing.T) {
	img, err := Load("wide.png", pngBytes(t, 400, 100), Options{MaxWidth: 200}, testLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Width != 200 || img.Height != 50 {
		t.Errorf("size = %dx%d, want 200x50", img.Width, img.Height)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("re-encoded data does not decode: %v", err)
	}
	if format != "png" || cfg.Width != 200 {
		t.Errorf("re-encoded = %s %d px wide, want png 200", format, cfg.Width)
	}
}

func TestLoad_SVG(t *testing.T) {
	img, err := Load("shape.svg", []byte(testSVG), Options{}, testLogger(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !img.IsSVG() || img.MimeType != "image/svg+xml" {
		t.Errorf("type = %s, want svg", img.MimeType)
	}
	if img.Fallback == nil || img.Fallback.Ext != "png" {
		t.Fatal("svg has no png fallback")
	}
	if img.Width != 20 || img.Height != 10 {
		t.Errorf("size = %dx%d, want 20x10", img.Width, img.Height)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(img.Fallback.Data)); err != nil || format != "png" {
		t.Errorf("fallback format = %s, err = %v", format, err)
	}
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load("notes.txt", []byte("plain text, not an image"), Options{}, testLogger(t))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Load(text) error = %v, want ErrUnsupported", err)
	}
	if _, err := Load("empty", nil, Options{}, testLogger(t)); err == nil {
		t.Error("Load(nil) error = nil")
	}
}

func TestRasterizeSVG_Sizes(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "intrinsic", wantW: 20, wantH: 10},
		{name: "by width", w: 40, wantW: 40, wantH: 20},
		{name: "by height", h: 5, wantW: 10, wantH: 5},
		{name: "fit box", w: 100, h: 10, wantW: 20, wantH: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeSVG([]byte(testSVG), tt.w, tt.h)
			if err != nil {
				t.Fatalf("RasterizeSVG() error = %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	log := testLogger(t)
	rels := wml.NewRelationships()
	rels.Add(wml.Relationship{ID: "rId1", Type: wml.RelTypeNumbering, Target: "numbering.xml"})
	reg := NewRegistry()

	raster, err := Load("a.png", pngBytes(t, 96, 192), Options{}, log)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := reg.Add(raster, rels); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	info := raster.Drawing()
	if info.ID != 1 || info.RelID != "rId2" || info.SVGRelID != "" {
		t.Errorf("drawing = %+v, want id 1 rel rId2", info)
	}
	if info.CX != EMUPerInch || info.CY != 2*EMUPerInch {
		t.Errorf("extent = %dx%d, want one by two inches", info.CX, info.CY)
	}
	if err := reg.Add(raster, rels); err == nil {
		t.Error("second Add() of the same image error = nil")
	}

	vector, err := Load("b.svg", []byte(testSVG), Options{DPI: 72}, log)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := reg.Add(vector, rels); err != nil {
		t.Fatalf("Add(svg) error = %v", err)
	}
	info = vector.Drawing()
	if info.ID != 2 || info.RelID != "rId3" || info.SVGRelID != "rId4" {
		t.Errorf("svg drawing = %+v, want id 2 rels rId3/rId4", info)
	}
	if info.CX != 20*EMUPerInch/72 {
		t.Errorf("svg cx = %d, want %d", info.CX, 20*EMUPerInch/72)
	}

	if reg.Len() != 2 || len(reg.Files()) != 3 {
		t.Errorf("registry has %d drawings and %d files, want 2 and 3", reg.Len(), len(reg.Files()))
	}
	if got, ok := reg.Get("rId3"); !ok || got != vector.Fallback {
		t.Error("Get(rId3) is not svg fallback")
	}
	if rel, ok := rels.Get("rId4"); !ok || rel.Target != vector.Target() {
		t.Errorf("relationship rId4 = %+v, want svg target", rel)
	}

	p := wml.NewParagraph(wml.ParagraphOptions{})
	if p.AddImage(vector) == nil {
		t.Errorf("AddImage() failed: %v", p.Err())
	}
}

func TestRegistry_NaturalOrder(t *testing.T) {
	log := testLogger(t)
	rels := wml.NewRelationships()
	reg := NewRegistry()
	for i := range 11 {
		img, err := Load("img", pngBytes(t, i+1, 1), Options{}, log)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if err := reg.Add(img, rels); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	dump := reg.String()
	if i2, i10 := strings.Index(dump, "rId2:"), strings.Index(dump, "rId10:"); i2 < 0 || i10 < 0 || i2 > i10 {
		t.Errorf("registry dump is not in natural order:\n%s", dump)
	}
}
