package wml

import (
	"go.uber.org/multierr"

	"docxml/xmltree"
)

// BorderSide names border element inside w:pBdr. Values follow the order the
// elements must appear in.
type BorderSide int

const (
	BorderTop BorderSide = iota
	BorderLeft
	BorderBottom
	BorderRight
	BorderBetween
	BorderBar
)

var borderSideTags = [...]string{"w:top", "w:left", "w:bottom", "w:right", "w:between", "w:bar"}

func (s BorderSide) Tag() string {
	if !s.IsValid() {
		return ""
	}
	return borderSideTags[s]
}

func (s BorderSide) IsValid() bool { return s >= BorderTop && s <= BorderBar }

// BorderOptions describe single border line. Size is in eighths of a point
// (2-96), Space is distance from text in points (0-31). Empty Color means
// auto, zero Size is not written.
type BorderOptions struct {
	Style BorderStyle
	Size  int
	Space int
	Color string
}

// NewBorder creates single side border leaf.
func NewBorder(side BorderSide, opts BorderOptions) (*xmltree.Node, error) {
	if !side.IsValid() {
		return nil, invalid("border side %d", int(side))
	}
	if !opts.Style.IsValid() {
		return nil, invalid("border style %d", int(opts.Style))
	}
	if opts.Size != 0 && (opts.Size < 2 || opts.Size > 96) {
		return nil, invalid("border size %d out of range [2, 96]", opts.Size)
	}
	if opts.Space < 0 || opts.Space > 31 {
		return nil, invalid("border space %d out of range [0, 31]", opts.Space)
	}
	color := "auto"
	if opts.Color != "" {
		c, err := checkColor(opts.Color)
		if err != nil {
			return nil, err
		}
		color = c
	}

	n := xmltree.New(side.Tag()).
		SetAttr("w:color", color).
		SetIntAttr("w:space", opts.Space).
		SetAttr("w:val", opts.Style.String())
	if opts.Size != 0 {
		n.SetIntAttr("w:sz", opts.Size)
	}
	return n, nil
}

// Border is w:pBdr. Every side is set at most once, setting it again replaces
// previous value in place.
type Border struct {
	root  *xmltree.Node
	sides [len(borderSideTags)]*xmltree.Node
	err   error
}

func NewParagraphBorder() *Border {
	return &Border{root: xmltree.New("w:pBdr")}
}

func (b *Border) XMLNode() *xmltree.Node {
	if b == nil {
		return nil
	}
	return b.root
}

func (b *Border) Err() error {
	return b.err
}

// Set defines one side of the border.
func (b *Border) Set(side BorderSide, opts BorderOptions) *Border {
	n, err := NewBorder(side, opts)
	if multierr.AppendInto(&b.err, err) {
		return b
	}
	if old := b.sides[side]; old != nil {
		b.root.Replace(old, n)
	} else {
		pos := 0
		for s := range side {
			if b.sides[s] != nil {
				pos++
			}
		}
		b.root.InsertAt(pos, n)
	}
	b.sides[side] = n
	return b
}

// Side returns current element for the side or nil.
func (b *Border) Side(side BorderSide) *xmltree.Node {
	if !side.IsValid() {
		return nil
	}
	return b.sides[side]
}

func (b *Border) Top(opts BorderOptions) *Border     { return b.Set(BorderTop, opts) }
func (b *Border) Left(opts BorderOptions) *Border    { return b.Set(BorderLeft, opts) }
func (b *Border) Bottom(opts BorderOptions) *Border  { return b.Set(BorderBottom, opts) }
func (b *Border) Right(opts BorderOptions) *Border   { return b.Set(BorderRight, opts) }
func (b *Border) Between(opts BorderOptions) *Border { return b.Set(BorderBetween, opts) }
