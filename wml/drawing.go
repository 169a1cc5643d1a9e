package wml

import (
	"strconv"

	"docxml/xmltree"
)

const (
	nsDrawingML  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPicture    = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsSVG        = "http://schemas.microsoft.com/office/drawing/2016/SVG/main"
	svgBlipExtID = "{96DAC541-7B7A-43D3-8B79-37D633B846F1}"
)

// DrawingInfo is everything needed to place an image inline. Sizes are in
// EMU, ID must be unique among drawings of the document.
type DrawingInfo struct {
	ID          int
	Name        string
	Description string
	RelID       string
	// SVGRelID, when set, references vector original while RelID is its
	// raster fallback.
	SVGRelID string
	CX       int64
	CY       int64
}

// Picture is an image which could be placed into paragraph.
type Picture interface {
	Drawing() DrawingInfo
}

// PictureRun is a run holding single inline drawing.
type PictureRun struct {
	*Run
	info DrawingInfo
}

func NewPictureRun(p Picture) (*PictureRun, error) {
	if p == nil {
		return nil, invalid("picture is nil")
	}
	info := p.Drawing()
	if info.ID < 1 {
		return nil, invalid("drawing id %d must be positive", info.ID)
	}
	if info.RelID == "" {
		return nil, invalid("drawing %d has no relationship id", info.ID)
	}
	if info.CX <= 0 || info.CY <= 0 {
		return nil, invalid("drawing %d has empty extent %dx%d", info.ID, info.CX, info.CY)
	}
	if info.Name == "" {
		info.Name = "Picture " + strconv.Itoa(info.ID)
	}

	r := NewRun()
	r.root.Append(xmltree.New("w:drawing").Append(inline(info)))
	return &PictureRun{Run: r, info: info}, nil
}

func (r *PictureRun) XMLNode() *xmltree.Node {
	if r == nil {
		return nil
	}
	return r.Run.XMLNode()
}

// Info returns drawing parameters the run was built from.
func (r *PictureRun) Info() DrawingInfo {
	return r.info
}

func emu(v int64) string {
	return strconv.FormatInt(v, 10)
}

func inline(info DrawingInfo) *xmltree.Node {
	n := xmltree.New("wp:inline").
		SetIntAttr("distT", 0).SetIntAttr("distB", 0).
		SetIntAttr("distL", 0).SetIntAttr("distR", 0)

	n.Append(xmltree.New("wp:extent").SetAttr("cx", emu(info.CX)).SetAttr("cy", emu(info.CY)))
	n.Append(xmltree.New("wp:effectExtent").
		SetIntAttr("l", 0).SetIntAttr("t", 0).SetIntAttr("r", 0).SetIntAttr("b", 0))
	n.Append(xmltree.New("wp:docPr").
		SetIntAttr("id", info.ID).
		SetAttr("name", info.Name).
		SetAttr("descr", info.Description))
	n.Append(xmltree.New("wp:cNvGraphicFramePr").Append(
		xmltree.New("a:graphicFrameLocks").SetAttr("xmlns:a", nsDrawingML).SetBoolAttr("noChangeAspect", true)))

	blip := xmltree.New("a:blip").SetAttr("r:embed", info.RelID)
	if info.SVGRelID != "" {
		blip.Append(xmltree.New("a:extLst").Append(
			xmltree.New("a:ext").SetAttr("uri", svgBlipExtID).Append(
				xmltree.New("asvg:svgBlip").SetAttr("xmlns:asvg", nsSVG).SetAttr("r:embed", info.SVGRelID))))
	}

	pic := xmltree.New("pic:pic").SetAttr("xmlns:pic", nsPicture)
	pic.Append(xmltree.New("pic:nvPicPr").
		Append(xmltree.New("pic:cNvPr").SetIntAttr("id", 0).SetAttr("name", info.Name)).
		Append(xmltree.New("pic:cNvPicPr")))
	pic.Append(xmltree.New("pic:blipFill").
		Append(blip).
		Append(xmltree.New("a:stretch").Append(xmltree.New("a:fillRect"))))
	pic.Append(xmltree.New("pic:spPr").
		Append(xmltree.New("a:xfrm").
			Append(xmltree.New("a:off").SetIntAttr("x", 0).SetIntAttr("y", 0)).
			Append(xmltree.New("a:ext").SetAttr("cx", emu(info.CX)).SetAttr("cy", emu(info.CY)))).
		Append(xmltree.New("a:prstGeom").SetAttr("prst", "rect").Append(xmltree.New("a:avLst"))))

	graphic := xmltree.New("a:graphic").SetAttr("xmlns:a", nsDrawingML).Append(
		xmltree.New("a:graphicData").SetAttr("uri", nsPicture).Append(pic))
	return n.Append(graphic)
}
