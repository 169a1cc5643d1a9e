package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// defaultSVGSize is used when SVG viewBox has no size.
const defaultSVGSize = 1024

// maxRasterDim limits pixel dimension of rasterized SVG, huge viewBox values
// would otherwise allocate gigabytes for RGBA buffer.
var maxRasterDim = 8192

func loadSVG(name string, data []byte, opts Options, log *zap.Logger) (*Image, error) {
	raster, err := RasterizeSVG(data, opts.SVGWidth, 0)
	if err != nil {
		return nil, fmt.Errorf("image %s: unable to rasterize svg: %w", name, err)
	}
	fallback, err := encode(raster, "png", opts)
	if err != nil {
		return nil, fmt.Errorf("image %s: svg fallback: %w", name, err)
	}

	w, h := raster.Bounds().Dx(), raster.Bounds().Dy()
	log.Debug("SVG rasterized", zap.Int("width", w), zap.Int("height", h), zap.Int("png", len(fallback)))

	svgMime, svgExt := mimeOf("svg")
	pngMime, pngExt := mimeOf("png")
	return &Image{
		Name:     name,
		MimeType: svgMime,
		Ext:      svgExt,
		Data:     data,
		Width:    w,
		Height:   h,
		dpi:      opts.dpi(),
		Fallback: &Image{
			Name:     name,
			MimeType: pngMime,
			Ext:      pngExt,
			Data:     fallback,
			Width:    w,
			Height:   h,
			dpi:      opts.dpi(),
		},
	}, nil
}

// RasterizeSVG renders SVG on white background.
//
// Rules:
//   - if targetW == 0 && targetH == 0: use SVG viewBox dimensions
//   - if only one of targetW/targetH is > 0: scale by that dimension keeping aspect ratio
//   - if both targetW and targetH are > 0: fit into that box keeping aspect ratio
func RasterizeSVG(svgData []byte, targetW, targetH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w, h := intrW, intrH
	switch {
	case targetW <= 0 && targetH <= 0:
	case targetH <= 0:
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case targetW <= 0:
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	w = max(w, 1)
	h = max(h, 1)

	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}
