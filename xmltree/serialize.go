package xmltree

import (
	"bytes"
	"errors"
	"io"

	"github.com/beevik/etree"
)

// Serializer converts node tree into XML. It never changes the tree and keeps
// no state between calls, so the same tree always produces the same bytes.
type Serializer struct {
	indent      int
	declaration bool
	standalone  bool
}

// Option configures Serializer.
type Option func(*Serializer)

// WithIndent requests indented output using given number of spaces per
// level. Zero (default) produces compact output. Whitespace inside text only
// elements is preserved.
func WithIndent(spaces int) Option {
	return func(s *Serializer) {
		s.indent = max(spaces, 0)
	}
}

// WithDeclaration adds XML declaration, optionally marked as standalone.
func WithDeclaration(standalone bool) Option {
	return func(s *Serializer) {
		s.declaration = true
		s.standalone = standalone
	}
}

// WithoutDeclaration suppresses XML declaration.
func WithoutDeclaration() Option {
	return func(s *Serializer) {
		s.declaration = false
		s.standalone = false
	}
}

func NewSerializer(opts ...Option) *Serializer {
	s := &Serializer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ErrNoRoot is returned when there is nothing to serialize.
var ErrNoRoot = errors.New("no root element to serialize")

// Document converts tree into a fresh etree document walking it depth first
// in stored order. Text and attribute values are escaped by etree when the
// document is written, characters outside of XML range are replaced with
// U+FFFD. Elements without children are written self-closed.
func (s *Serializer) Document(root Element) (*etree.Document, error) {
	n := nodeOf(root)
	if n == nil {
		return nil, ErrNoRoot
	}

	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if s.declaration {
		inst := `version="1.0" encoding="UTF-8"`
		if s.standalone {
			inst += ` standalone="yes"`
		}
		doc.CreateProcInst("xml", inst)
		if s.indent == 0 {
			doc.CreateText("\n")
		}
	}
	doc.SetRoot(toElement(n))

	if s.indent > 0 {
		doc.IndentWithSettings(&etree.IndentSettings{
			Spaces:                 s.indent,
			PreserveLeafWhitespace: true,
		})
	}
	return doc, nil
}

// WriteTo writes serialized tree to w.
func (s *Serializer) WriteTo(w io.Writer, root Element) (int64, error) {
	doc, err := s.Document(root)
	if err != nil {
		return 0, err
	}
	return doc.WriteTo(w)
}

// Bytes returns serialized tree.
func (s *Serializer) Bytes(root Element) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal serializes tree compactly with standalone XML declaration, which is
// what WordprocessingML parts normally carry.
func Marshal(root Element) ([]byte, error) {
	return NewSerializer(WithDeclaration(true)).Bytes(root)
}

func toElement(n *Node) *etree.Element {
	el := etree.NewElement(n.tag)
	for _, a := range n.attrs {
		el.CreateAttr(a.Name, a.Value)
	}
	for _, c := range n.children {
		switch v := c.(type) {
		case *Node:
			el.AddChild(toElement(v))
		case Text:
			if len(v) > 0 {
				el.CreateText(string(v))
			}
		}
	}
	return el
}
