package wml

import (
	"go.uber.org/multierr"

	"docxml/xmltree"
)

// faulty is implemented by builders which record errors instead of failing
// immediately.
type faulty interface {
	Err() error
}

// linkedErrors combines errors reported by builders linked into a tree.
func linkedErrors(own error, linked []faulty) error {
	err := own
	for _, f := range linked {
		err = multierr.Append(err, f.Err())
	}
	return err
}

// Properties collects formatting leaves under a single node (w:pPr, w:rPr).
// It does not deduplicate: when the same property kind is pushed several
// times all copies stay in the tree and consumers apply the last one.
type Properties struct {
	root   *xmltree.Node
	linked []faulty
}

func NewProperties(tag string) *Properties {
	return &Properties{root: xmltree.New(tag)}
}

func (p *Properties) XMLNode() *xmltree.Node {
	if p == nil {
		return nil
	}
	return p.root
}

// Push appends property element in call order. Elements containing the
// properties node itself are ignored.
func (p *Properties) Push(el xmltree.Element) *Properties {
	if el == nil || el.XMLNode() == nil || el.XMLNode().Contains(p.root) {
		return p
	}
	p.root.Append(el)
	if f, ok := el.(faulty); ok {
		p.linked = append(p.linked, f)
	}
	return p
}

// Len is the number of pushed properties.
func (p *Properties) Len() int {
	return p.root.Len()
}

// Find returns first pushed property with the tag.
func (p *Properties) Find(tag string) *xmltree.Node {
	return p.root.Find(tag)
}

// Effective returns the property a renderer would apply: the last one pushed
// with the tag.
func (p *Properties) Effective(tag string) *xmltree.Node {
	return p.root.Last(tag)
}

func (p *Properties) Err() error {
	return linkedErrors(nil, p.linked)
}

// ParagraphProperties is w:pPr with lazily created paragraph border.
type ParagraphProperties struct {
	*Properties
	border *Border
}

func NewParagraphProperties() *ParagraphProperties {
	return &ParagraphProperties{Properties: NewProperties("w:pPr")}
}

func (p *ParagraphProperties) XMLNode() *xmltree.Node {
	if p == nil {
		return nil
	}
	return p.Properties.XMLNode()
}

// Border returns paragraph border or nil if it was never created.
func (p *ParagraphProperties) Border() *Border {
	return p.border
}

// CreateBorder returns paragraph border creating and pushing it on first call.
func (p *ParagraphProperties) CreateBorder() *Border {
	if p.border == nil {
		p.border = NewParagraphBorder()
		p.Push(p.border)
	}
	return p.border
}

// RunProperties is w:rPr.
type RunProperties struct {
	*Properties
}

func NewRunProperties() *RunProperties {
	return &RunProperties{Properties: NewProperties("w:rPr")}
}

func (p *RunProperties) XMLNode() *xmltree.Node {
	if p == nil {
		return nil
	}
	return p.Properties.XMLNode()
}
