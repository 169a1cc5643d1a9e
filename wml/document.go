package wml

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"docxml/xmltree"
)

const (
	NamespaceW  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceWP = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
)

// PageSetup describes section page size and margins in twips.
type PageSetup struct {
	Width  int
	Height int
	Top    int
	Right  int
	Bottom int
	Left   int
	Header int
	Footer int
	Gutter int
}

// DefaultPageSetup is A4 portrait with one inch margins.
func DefaultPageSetup() PageSetup {
	return PageSetup{
		Width:  11906,
		Height: 16838,
		Top:    1440,
		Right:  1440,
		Bottom: 1440,
		Left:   1440,
		Header: 708,
		Footer: 708,
	}
}

func newSectionProperties(ps PageSetup) (*xmltree.Node, error) {
	if ps.Width <= 0 || ps.Height <= 0 {
		return nil, invalid("page size %dx%d must be positive", ps.Width, ps.Height)
	}
	for _, m := range []int{ps.Right, ps.Left, ps.Header, ps.Footer, ps.Gutter} {
		if m < 0 {
			return nil, invalid("page margin %d is negative", m)
		}
	}

	size := xmltree.New("w:pgSz").SetIntAttr("w:w", ps.Width).SetIntAttr("w:h", ps.Height)
	if ps.Width > ps.Height {
		size.SetAttr("w:orient", "landscape")
	}
	margins := xmltree.New("w:pgMar").
		SetIntAttr("w:top", ps.Top).
		SetIntAttr("w:right", ps.Right).
		SetIntAttr("w:bottom", ps.Bottom).
		SetIntAttr("w:left", ps.Left).
		SetIntAttr("w:header", ps.Header).
		SetIntAttr("w:footer", ps.Footer).
		SetIntAttr("w:gutter", ps.Gutter)
	return xmltree.New("w:sectPr").Append(size).Append(margins), nil
}

// Document is main document part: w:document with a single body. Section
// properties always stay the last child of the body.
type Document struct {
	root       *xmltree.Node
	body       *xmltree.Node
	sect       *xmltree.Node
	paragraphs []*Paragraph
	err        error
}

func NewDocument() *Document {
	d := &Document{
		root: xmltree.New("w:document").
			SetAttr("xmlns:w", NamespaceW).
			SetAttr("xmlns:r", NamespaceR).
			SetAttr("xmlns:wp", NamespaceWP),
		body: xmltree.New("w:body"),
	}
	d.sect, _ = newSectionProperties(DefaultPageSetup())
	d.body.Append(d.sect)
	d.root.Append(d.body)
	return d
}

func (d *Document) XMLNode() *xmltree.Node {
	if d == nil {
		return nil
	}
	return d.root
}

// AddParagraph appends paragraph before section properties.
func (d *Document) AddParagraph(p *Paragraph) *Document {
	if p == nil {
		return d
	}
	d.body.InsertAt(d.body.Len()-1, p)
	d.paragraphs = append(d.paragraphs, p)
	return d
}

// CreateParagraph creates, appends and returns new paragraph.
func (d *Document) CreateParagraph(content ParagraphContent) *Paragraph {
	p := NewParagraph(content)
	d.AddParagraph(p)
	return p
}

// Paragraphs returns linked paragraphs in document order.
func (d *Document) Paragraphs() []*Paragraph {
	out := make([]*Paragraph, len(d.paragraphs))
	copy(out, d.paragraphs)
	return out
}

// PageSetup replaces section page size and margins.
func (d *Document) PageSetup(ps PageSetup) *Document {
	sect, err := newSectionProperties(ps)
	if multierr.AppendInto(&d.err, err) {
		return d
	}
	d.body.Replace(d.sect, sect)
	d.sect = sect
	return d
}

func (d *Document) Err() error {
	faults := make([]faulty, 0, len(d.paragraphs))
	for _, p := range d.paragraphs {
		faults = append(faults, p)
	}
	return linkedErrors(d.err, faults)
}

// WriteTo serializes document part with standalone declaration. Documents
// with recorded errors are refused.
func (d *Document) WriteTo(w io.Writer, opts ...xmltree.Option) (int64, error) {
	return writePart(w, "document", d, opts)
}

type part interface {
	xmltree.Element
	faulty
}

func writePart(w io.Writer, name string, p part, opts []xmltree.Option) (int64, error) {
	if err := p.Err(); err != nil {
		return 0, fmt.Errorf("%s part is invalid: %w", name, err)
	}
	opts = append([]xmltree.Option{xmltree.WithDeclaration(true)}, opts...)
	n, err := xmltree.NewSerializer(opts...).WriteTo(w, p)
	if err != nil {
		return n, fmt.Errorf("unable to write %s part: %w", name, err)
	}
	return n, nil
}

// WriteTo serializes numbering part.
func (n *Numbering) WriteTo(w io.Writer, opts ...xmltree.Option) (int64, error) {
	return writePart(w, "numbering", n, opts)
}
