package wml

import (
	"go.uber.org/multierr"

	"docxml/xmltree"
)

// ListParagraphStyle is paragraph style every numbered or bulleted paragraph
// gets.
const ListParagraphStyle = "ListParagraph"

// ParagraphContent is initial content of a paragraph: either ParagraphText or
// ParagraphOptions.
type ParagraphContent interface {
	paragraphContent()
}

// ParagraphText creates paragraph with a single text run.
type ParagraphText string

func (ParagraphText) paragraphContent() {}

// ParagraphOptions lists formatting applied when paragraph is created. Every
// set field results in exactly one property push, in field order, and Text
// (if any) becomes the first run.
type ParagraphOptions struct {
	Text              string
	HeadingLevel      HeadingLevel
	OutlineLevel      *int
	Alignment         AlignmentType
	Bidirectional     bool
	KeepLines         bool
	KeepNext          bool
	ContextualSpacing *bool
	Spacing           *SpacingProperties
	PageBreakBefore   bool
	ThematicBreak     bool
	Style             string
}

func (ParagraphOptions) paragraphContent() {}

// NumberingReference is numbering instance paragraph could be attached to.
type NumberingReference interface {
	NumberingID() int
}

// Paragraph is w:p. Its properties are always the first child, content
// follows in call order. Mutators never fail: invalid arguments are recorded
// and reported by Err, and nothing is linked for the failed call.
type Paragraph struct {
	root   *xmltree.Node
	props  *ParagraphProperties
	err    error
	linked []faulty
}

func NewParagraph(content ParagraphContent) *Paragraph {
	p := &Paragraph{root: xmltree.New("w:p"), props: NewParagraphProperties()}
	p.root.Append(p.props)

	switch c := content.(type) {
	case ParagraphText:
		p.AddRun(NewTextRun(string(c)))
	case ParagraphOptions:
		p.apply(c)
	case *ParagraphOptions:
		if c != nil {
			p.apply(*c)
		}
	}
	return p
}

func (p *Paragraph) apply(o ParagraphOptions) {
	if o.HeadingLevel != HeadingNone {
		p.Heading(o.HeadingLevel)
	}
	if o.OutlineLevel != nil {
		p.OutlineLevel(*o.OutlineLevel)
	}
	if o.Alignment != AlignmentNone {
		p.Align(o.Alignment)
	}
	if o.Bidirectional {
		p.Bidirectional()
	}
	if o.KeepLines {
		p.KeepLines()
	}
	if o.KeepNext {
		p.KeepNext()
	}
	if o.ContextualSpacing != nil {
		p.ContextualSpacing(*o.ContextualSpacing)
	}
	if o.Spacing != nil {
		p.Spacing(*o.Spacing)
	}
	if o.PageBreakBefore {
		p.PageBreakBefore()
	}
	if o.ThematicBreak {
		p.ThematicBreak()
	}
	if o.Style != "" {
		p.Style(o.Style)
	}
	if o.Text != "" {
		p.AddRun(NewTextRun(o.Text))
	}
}

func (p *Paragraph) XMLNode() *xmltree.Node {
	if p == nil {
		return nil
	}
	return p.root
}

// Properties returns w:pPr aggregator.
func (p *Paragraph) Properties() *ParagraphProperties {
	return p.props
}

// Borders returns paragraph border, nil until CreateBorder is called.
func (p *Paragraph) Borders() *Border {
	return p.props.Border()
}

func (p *Paragraph) CreateBorder() *Paragraph {
	p.props.CreateBorder()
	return p
}

// Err returns all errors recorded by this paragraph and by builders linked
// into it.
func (p *Paragraph) Err() error {
	return linkedErrors(multierr.Append(p.err, p.props.Err()), p.linked)
}

// property pushes leaf unless its construction failed.
func (p *Paragraph) property(n *xmltree.Node, err error) *Paragraph {
	if multierr.AppendInto(&p.err, err) {
		return p
	}
	p.props.Push(n)
	return p
}

func (p *Paragraph) track(el xmltree.Element) {
	if f, ok := el.(faulty); ok {
		p.linked = append(p.linked, f)
	}
}

// linkable reports whether el can become paragraph content, paragraph
// itself or anything containing it cannot.
func (p *Paragraph) linkable(el xmltree.Element) bool {
	return el != nil && el.XMLNode() != nil && !el.XMLNode().Contains(p.root)
}

// AddRun appends content (run, field, drawing) after existing content.
func (p *Paragraph) AddRun(run xmltree.Element) *Paragraph {
	if !p.linkable(run) {
		return p
	}
	p.root.Append(run)
	p.track(run)
	return p
}

func (p *Paragraph) AddHyperLink(h *Hyperlink) *Paragraph {
	return p.AddRun(h)
}

// AddBookmark links bookmark start, text and end as three consecutive
// children.
func (p *Paragraph) AddBookmark(b *Bookmark) *Paragraph {
	if b == nil || !p.linkable(b.Text) {
		return p
	}
	p.root.Append(b.Start)
	p.root.Append(b.Text)
	p.root.Append(b.End)
	p.track(b.Text)
	return p
}

// AddRunToFront puts content before any other content, right after
// properties.
func (p *Paragraph) AddRunToFront(run xmltree.Element) *Paragraph {
	if !p.linkable(run) {
		return p
	}
	p.root.InsertAt(1, run)
	p.track(run)
	return p
}

// CreateTextRun appends new text run and returns it for further formatting.
func (p *Paragraph) CreateTextRun(text string) *TextRun {
	r := NewTextRun(text)
	p.AddRun(r)
	return r
}

// AddImage appends picture run and returns it. On invalid picture error is
// recorded and nil returned.
func (p *Paragraph) AddImage(pic Picture) *PictureRun {
	r, err := NewPictureRun(pic)
	if multierr.AppendInto(&p.err, err) {
		return nil
	}
	p.AddRun(r)
	return r
}

func (p *Paragraph) Heading(level HeadingLevel) *Paragraph {
	if !level.IsValid() {
		return p.property(nil, invalid("heading level %d", int(level)))
	}
	return p.property(NewStyle(level.StyleID()))
}

func (p *Paragraph) Heading1() *Paragraph { return p.Heading(Heading1) }
func (p *Paragraph) Heading2() *Paragraph { return p.Heading(Heading2) }
func (p *Paragraph) Heading3() *Paragraph { return p.Heading(Heading3) }
func (p *Paragraph) Heading4() *Paragraph { return p.Heading(Heading4) }
func (p *Paragraph) Heading5() *Paragraph { return p.Heading(Heading5) }
func (p *Paragraph) Heading6() *Paragraph { return p.Heading(Heading6) }
func (p *Paragraph) Title() *Paragraph    { return p.Heading(HeadingTitle) }

func (p *Paragraph) Align(a AlignmentType) *Paragraph {
	return p.property(NewAlignment(a))
}

func (p *Paragraph) Center() *Paragraph     { return p.Align(AlignmentCenter) }
func (p *Paragraph) Left() *Paragraph       { return p.Align(AlignmentLeft) }
func (p *Paragraph) Right() *Paragraph      { return p.Align(AlignmentRight) }
func (p *Paragraph) Start() *Paragraph      { return p.Align(AlignmentStart) }
func (p *Paragraph) End() *Paragraph        { return p.Align(AlignmentEnd) }
func (p *Paragraph) Distribute() *Paragraph { return p.Align(AlignmentDistribute) }
func (p *Paragraph) Justified() *Paragraph  { return p.Align(AlignmentBoth) }

func (p *Paragraph) ThematicBreak() *Paragraph {
	return p.property(NewThematicBreak(), nil)
}

// PageBreak appends page break run to the content.
func (p *Paragraph) PageBreak() *Paragraph {
	return p.AddRun(NewPageBreakRun())
}

func (p *Paragraph) PageBreakBefore() *Paragraph {
	return p.property(NewPageBreakBefore(), nil)
}

func (p *Paragraph) MaxRightTabStop(leader LeaderType) *Paragraph {
	return p.property(NewMaxRightTabStop(leader))
}

func (p *Paragraph) LeftTabStop(position int, leader LeaderType) *Paragraph {
	return p.property(NewTabStop(TabStopLeft, position, leader))
}

func (p *Paragraph) RightTabStop(position int, leader LeaderType) *Paragraph {
	return p.property(NewTabStop(TabStopRight, position, leader))
}

func (p *Paragraph) CenterTabStop(position int, leader LeaderType) *Paragraph {
	return p.property(NewTabStop(TabStopCenter, position, leader))
}

// Bullet attaches paragraph to the default bullet list (numbering id 1).
func (p *Paragraph) Bullet(indentLevel int) *Paragraph {
	return p.numbering(DefaultBulletNumID, indentLevel)
}

func (p *Paragraph) SetNumbering(num NumberingReference, indentLevel int) *Paragraph {
	if num == nil {
		return p.property(nil, invalid("numbering reference is nil"))
	}
	return p.numbering(num.NumberingID(), indentLevel)
}

func (p *Paragraph) SetCustomNumbering(numID, indentLevel int) *Paragraph {
	return p.numbering(numID, indentLevel)
}

// numbering always pushes list style followed by numbering reference, even if
// paragraph is numbered already.
func (p *Paragraph) numbering(numID, indentLevel int) *Paragraph {
	style, err := NewStyle(ListParagraphStyle)
	if err != nil {
		return p.property(nil, err)
	}
	ref, err := NewNumberProperties(numID, indentLevel)
	if err != nil {
		return p.property(nil, err)
	}
	return p.property(style, nil).property(ref, nil)
}

func (p *Paragraph) Style(styleID string) *Paragraph {
	return p.property(NewStyle(styleID))
}

func (p *Paragraph) Indent(attrs IndentAttributes) *Paragraph {
	return p.property(NewIndent(attrs))
}

func (p *Paragraph) Spacing(sp SpacingProperties) *Paragraph {
	return p.property(NewSpacing(sp))
}

func (p *Paragraph) ContextualSpacing(value bool) *Paragraph {
	return p.property(NewContextualSpacing(value), nil)
}

func (p *Paragraph) KeepNext() *Paragraph {
	return p.property(NewKeepNext(), nil)
}

func (p *Paragraph) KeepLines() *Paragraph {
	return p.property(NewKeepLines(), nil)
}

func (p *Paragraph) Bidirectional() *Paragraph {
	return p.property(NewBidirectional(), nil)
}

func (p *Paragraph) OutlineLevel(level int) *Paragraph {
	return p.property(NewOutlineLevel(level))
}

// ReferenceFootnote appends footnote reference run.
func (p *Paragraph) ReferenceFootnote(id int) *Paragraph {
	r, err := NewFootnoteReferenceRun(id)
	if multierr.AppendInto(&p.err, err) {
		return p
	}
	return p.AddRun(r)
}

// AddSequentialIdentifier appends SEQ field counting items named name.
func (p *Paragraph) AddSequentialIdentifier(name string) *Paragraph {
	r, err := NewSequentialIdentifier(name)
	if multierr.AppendInto(&p.err, err) {
		return p
	}
	return p.AddRun(r)
}
