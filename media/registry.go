package media

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/maruel/natural"

	"docxml/wml"
)

// Drawing converts image into placement parameters. Image must be added to
// a registry first, otherwise it has no relationship.
func (img *Image) Drawing() wml.DrawingInfo {
	info := wml.DrawingInfo{
		ID:          img.drawingID,
		Name:        img.Name,
		Description: img.Description,
		RelID:       img.relID,
	}
	if img.Fallback != nil {
		info.RelID = img.Fallback.relID
		info.SVGRelID = img.relID
	}
	info.CX, info.CY = pixelsToEMU(img.Width, img.dpi), pixelsToEMU(img.Height, img.dpi)
	return info
}

// pixelsToEMU returns zero when result does not fit, which makes drawing
// invalid.
func pixelsToEMU(px, dpi int) int64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	v, err := safecast.Round[int64](float64(px) * EMUPerInch / float64(dpi))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Registry keeps images placed into a document by relationship id.
type Registry struct {
	images map[string]*Image
	count  int
}

func NewRegistry() *Registry {
	return &Registry{images: make(map[string]*Image)}
}

// Add assigns drawing id and relationship ids to the image and declares its
// parts in rels. SVG images get two relationships: raster fallback and
// vector original.
func (r *Registry) Add(img *Image, rels *wml.Relationships) error {
	if img == nil {
		return fmt.Errorf("nothing to register")
	}
	if img.relID != "" {
		return fmt.Errorf("image %s is already registered as %s", img.Name, img.relID)
	}

	files := []*Image{img}
	if img.Fallback != nil {
		files = []*Image{img.Fallback, img}
	}
	for _, f := range files {
		id := rels.NextID()
		rels.Add(wml.Relationship{ID: id, Type: wml.RelTypeImage, Target: f.Target()})
		if _, ok := rels.Get(id); !ok {
			return fmt.Errorf("image %s: unable to declare relationship %s: %w", img.Name, id, rels.Err())
		}
		f.relID = id
		r.images[id] = f
	}
	r.count++
	img.drawingID = r.count
	return nil
}

// Len is number of registered drawings.
func (r *Registry) Len() int {
	return r.count
}

// Get returns image by relationship id.
func (r *Registry) Get(relID string) (*Image, bool) {
	img, ok := r.images[relID]
	return img, ok
}

// Files returns every file to be written keyed by target, SVG fallbacks
// included.
func (r *Registry) Files() map[string][]byte {
	out := make(map[string][]byte, len(r.images))
	for _, img := range r.images {
		out[img.Target()] = img.Data
	}
	return out
}

func (r *Registry) ids() []string {
	keys := make([]string, 0, len(r.images))
	for k := range r.images {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

// String dumps registry in relationship id order.
func (r *Registry) String() string {
	var b strings.Builder
	for _, id := range r.ids() {
		img := r.images[id]
		fmt.Fprintf(&b, "%s: %s %s %dx%d %d bytes\n", id, img.Target(), img.MimeType, img.Width, img.Height, len(img.Data))
	}
	return b.String()
}
