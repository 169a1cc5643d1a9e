// Package xmltree implements the element tree every document part is built
// on: a tagged node with ordered attributes and ordered children, and a
// serializer producing deterministic XML from it.
//
// Nodes are not safe for concurrent mutation. A tree is expected to be built
// by a single owner and then serialized.
package xmltree

import (
	"strconv"
	"strings"
)

// Token is a child of a Node: either another *Node or a Text leaf.
type Token interface {
	token()
}

// Text is a terminal character data leaf.
type Text string

func (Text) token() {}

// Int returns numeric leaf.
func Int(v int) Text {
	return Text(strconv.Itoa(v))
}

// Attr is a single attribute. Names are kept as given, including namespace
// prefix ("w:val").
type Attr struct {
	Name  string
	Value string
}

// Element is anything which could be linked into a tree. Composite builders
// return their root node, so a builder inserted into a parent keeps being
// usable for further mutation.
type Element interface {
	XMLNode() *Node
}

// Node is a tagged element with ordered attributes and ordered children.
type Node struct {
	tag      string
	attrs    []Attr
	children []Token
}

func (*Node) token() {}

// New creates empty node with the given (possibly prefixed) tag.
func New(tag string) *Node {
	return &Node{tag: tag}
}

// XMLNode makes *Node an Element.
func (n *Node) XMLNode() *Node {
	return n
}

func (n *Node) Tag() string {
	return n.tag
}

// Append adds child to the end of the children sequence. Position of the
// child among its siblings is fixed at this point. Nil elements and elements
// which contain n (n itself or any of its ancestors) are ignored, the tree
// stays acyclic.
func (n *Node) Append(child Element) *Node {
	if c := n.linkable(child); c != nil {
		n.children = append(n.children, c)
	}
	return n
}

// AppendText adds character data leaf. Empty strings are ignored.
func (n *Node) AppendText(s string) *Node {
	if len(s) > 0 {
		n.children = append(n.children, Text(s))
	}
	return n
}

// AppendToken adds arbitrary token to the end of the children sequence.
func (n *Node) AppendToken(t Token) *Node {
	switch v := t.(type) {
	case nil:
	case *Node:
		n.Append(v)
	case Text:
		n.AppendText(string(v))
	}
	return n
}

// InsertAt inserts child at the given position shifting the rest. Index is
// clamped: negative values insert at the front, values past the end append.
// Elements which contain n are ignored as in Append.
func (n *Node) InsertAt(index int, child Element) *Node {
	c := n.linkable(child)
	if c == nil {
		return n
	}
	index = max(0, min(index, len(n.children)))
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = c
	return n
}

// Replace puts child in place of old keeping its position. Returns false and
// leaves node untouched when old is not a direct child.
func (n *Node) Replace(old, child Element) bool {
	c := n.linkable(child)
	if c == nil {
		return false
	}
	i := n.Index(old)
	if i < 0 {
		return false
	}
	n.children[i] = c
	return true
}

// SetAttr overwrites attribute value if it is present, otherwise adds new
// attribute after existing ones.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	return n
}

func (n *Node) SetIntAttr(name string, value int) *Node {
	return n.SetAttr(name, strconv.Itoa(value))
}

// SetBoolAttr uses WordprocessingML on/off spelling ("1"/"0") which is valid
// for xsd:boolean as well.
func (n *Node) SetBoolAttr(name string, value bool) *Node {
	if value {
		return n.SetAttr(name, "1")
	}
	return n.SetAttr(name, "0")
}

// Attr returns attribute value and whether attribute is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns copy of attributes in insertion order.
func (n *Node) Attrs() []Attr {
	if len(n.attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Len returns number of children (nodes and text leaves).
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns child at index or nil when index is out of range.
func (n *Node) Child(i int) Token {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns copy of children sequence.
func (n *Node) Children() []Token {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]Token, len(n.children))
	copy(out, n.children)
	return out
}

// Elements returns child nodes skipping text leaves.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if e, ok := c.(*Node); ok {
			out = append(out, e)
		}
	}
	return out
}

// Find returns first direct child with the given tag.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.children {
		if e, ok := c.(*Node); ok && e.tag == tag {
			return e
		}
	}
	return nil
}

// FindAll returns all direct children with the given tag in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if e, ok := c.(*Node); ok && e.tag == tag {
			out = append(out, e)
		}
	}
	return out
}

// Last returns last direct child with the given tag. This is the one
// consumers following "last element wins" convention will apply.
func (n *Node) Last(tag string) *Node {
	for i := len(n.children) - 1; i >= 0; i-- {
		if e, ok := n.children[i].(*Node); ok && e.tag == tag {
			return e
		}
	}
	return nil
}

// Index returns position of element among children or -1.
func (n *Node) Index(el Element) int {
	c := nodeOf(el)
	if c == nil {
		return -1
	}
	for i, t := range n.children {
		if e, ok := t.(*Node); ok && e == c {
			return i
		}
	}
	return -1
}

// Text returns concatenation of all text leaves under the node in document
// order.
func (n *Node) Text() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.children {
		switch v := c.(type) {
		case Text:
			b.WriteString(string(v))
		case *Node:
			v.collectText(b)
		}
	}
}

// Contains reports whether el is n or one of its descendants.
func (n *Node) Contains(el Element) bool {
	target := nodeOf(el)
	if target == nil {
		return false
	}
	if n == target {
		return true
	}
	for _, c := range n.children {
		if child, ok := c.(*Node); ok && child.Contains(target) {
			return true
		}
	}
	return false
}

// linkable returns node of child unless linking it under n would close a
// cycle.
func (n *Node) linkable(child Element) *Node {
	c := nodeOf(child)
	if c == nil || c.Contains(n) {
		return nil
	}
	return c
}

func nodeOf(el Element) *Node {
	if el == nil {
		return nil
	}
	return el.XMLNode()
}
