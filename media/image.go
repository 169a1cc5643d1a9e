// Package media prepares images for placement into documents: detects their
// type, normalizes size and provides drawing extents.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// EMUPerInch is number of English Metric Units in an inch.
	EMUPerInch = 914400

	DefaultDPI         = 96
	DefaultJPEGQuality = 85
)

// Options control image normalization. Zero values select defaults, zero
// MaxWidth disables downscaling.
type Options struct {
	MaxWidth    int
	DPI         int
	JPEGQuality int
	// SVGWidth is pixel width SVG fallback raster is produced with, zero keeps
	// intrinsic viewBox size.
	SVGWidth int
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return DefaultDPI
	}
	return o.DPI
}

func (o Options) quality() int {
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		return DefaultJPEGQuality
	}
	return o.JPEGQuality
}

var ErrUnsupported = errors.New("unsupported image type")

// Image is a prepared image ready to be written into media folder.
type Image struct {
	Name        string
	Description string
	MimeType    string
	Ext         string
	Data        []byte
	Width       int
	Height      int
	// Fallback is PNG raster of SVG image, nil for raster images.
	Fallback *Image

	dpi       int
	drawingID int
	relID     string
}

// IsSVG reports whether image is vector.
func (img *Image) IsSVG() bool {
	return img.Ext == "svg"
}

// Target is content addressed file name under media folder.
func (img *Image) Target() string {
	return "media/" + uuid.NewSHA1(uuid.NameSpaceOID, img.Data).String() + "." + img.Ext
}

// Load detects image type and normalizes raster images according to options.
// SVG images are kept intact and get PNG fallback.
func Load(name string, data []byte, opts Options, log *zap.Logger) (*Image, error) {
	log = log.Named("media").With(zap.String("image", name))

	if len(data) == 0 {
		return nil, fmt.Errorf("image %s: %w: no data", name, ErrUnsupported)
	}

	if isSVG(data) {
		return loadSVG(name, data, opts, log)
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("image %s: unable to detect type: %w", name, err)
	}
	if kind == filetype.Unknown || kind.MIME.Type != "image" {
		return nil, fmt.Errorf("image %s: %w: %q", name, ErrUnsupported, kind.MIME.Value)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image %s: unable to decode %s: %w", name, kind.Extension, err)
	}

	out := &Image{
		Name:     name,
		MimeType: kind.MIME.Value,
		Ext:      kind.Extension,
		Data:     data,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		dpi:      opts.dpi(),
	}
	log.Debug("Image detected", zap.String("type", format), zap.Int("width", out.Width), zap.Int("height", out.Height))

	changed := false
	if opts.MaxWidth > 0 && out.Width > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
		log.Debug("Image downscaled", zap.Int("from", out.Width), zap.Int("to", img.Bounds().Dx()))
		out.Width, out.Height = img.Bounds().Dx(), img.Bounds().Dy()
		changed = true
	}

	// Word processors read png, jpeg and gif natively, others are converted
	switch format {
	case "png", "jpeg", "gif":
	default:
		log.Debug("Image type is not widely supported, converting to png", zap.String("type", format))
		format = "png"
		changed = true
	}

	if !changed {
		return out, nil
	}
	if out.Data, err = encode(img, format, opts); err != nil {
		return nil, fmt.Errorf("image %s: %w", name, err)
	}
	out.MimeType, out.Ext = mimeOf(format)
	return out, nil
}

func encode(img image.Image, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case "gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	default:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func mimeOf(format string) (mimeType, ext string) {
	switch format {
	case "jpeg":
		return "image/jpeg", "jpg"
	case "gif":
		return "image/gif", "gif"
	case "svg":
		return "image/svg+xml", "svg"
	}
	return "image/png", "png"
}

// isSVG sniffs for svg root element near the beginning of the data.
func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimPrefix(head, []byte("\xEF\xBB\xBF"))
	s := strings.ToLower(strings.TrimSpace(string(head)))
	if !strings.HasPrefix(s, "<") {
		return false
	}
	return strings.Contains(s, "<svg")
}
