package wml

import (
	"strings"
	"unicode"

	"go.uber.org/multierr"
	"golang.org/x/text/language"

	"docxml/xmltree"
)

// Run is w:r: run properties followed by content in call order.
type Run struct {
	root  *xmltree.Node
	props *RunProperties
	err   error
}

func NewRun() *Run {
	r := &Run{root: xmltree.New("w:r"), props: NewRunProperties()}
	r.root.Append(r.props)
	return r
}

func (r *Run) XMLNode() *xmltree.Node {
	if r == nil {
		return nil
	}
	return r.root
}

// Properties returns w:rPr aggregator of the run.
func (r *Run) Properties() *RunProperties {
	return r.props
}

func (r *Run) Err() error {
	return multierr.Append(r.err, r.props.Err())
}

func (r *Run) push(n *xmltree.Node, err error) *Run {
	if multierr.AppendInto(&r.err, err) {
		return r
	}
	r.props.Push(n)
	return r
}

func (r *Run) Bold() *Run {
	r.props.Push(xmltree.New("w:b"))
	r.props.Push(xmltree.New("w:bCs"))
	return r
}

func (r *Run) Italics() *Run {
	r.props.Push(xmltree.New("w:i"))
	r.props.Push(xmltree.New("w:iCs"))
	return r
}

// Underline adds w:u, empty color is not written.
func (r *Run) Underline(kind UnderlineType, color string) *Run {
	if !kind.IsValid() {
		return r.push(nil, invalid("underline %d", int(kind)))
	}
	n := xmltree.New("w:u").SetAttr("w:val", kind.String())
	if color != "" {
		c, err := checkColor(color)
		if err != nil {
			return r.push(nil, err)
		}
		n.SetAttr("w:color", c)
	}
	return r.push(n, nil)
}

func (r *Run) Strike() *Run {
	return r.push(xmltree.New("w:strike"), nil)
}

func (r *Run) DoubleStrike() *Run {
	return r.push(xmltree.New("w:dstrike"), nil)
}

func (r *Run) SmallCaps() *Run {
	return r.push(xmltree.New("w:smallCaps"), nil)
}

func (r *Run) AllCaps() *Run {
	return r.push(xmltree.New("w:caps"), nil)
}

func (r *Run) Superscript() *Run {
	return r.push(xmltree.New("w:vertAlign").SetAttr("w:val", "superscript"), nil)
}

func (r *Run) Subscript() *Run {
	return r.push(xmltree.New("w:vertAlign").SetAttr("w:val", "subscript"), nil)
}

// Size sets font size in half points for both regular and complex scripts.
func (r *Run) Size(halfPoints int) *Run {
	if halfPoints <= 0 {
		return r.push(nil, invalid("font size %d must be positive", halfPoints))
	}
	r.props.Push(xmltree.New("w:sz").SetIntAttr("w:val", halfPoints))
	r.props.Push(xmltree.New("w:szCs").SetIntAttr("w:val", halfPoints))
	return r
}

func (r *Run) Color(color string) *Run {
	c, err := checkColor(color)
	if err != nil {
		return r.push(nil, err)
	}
	return r.push(xmltree.New("w:color").SetAttr("w:val", c), nil)
}

// Font sets the same font for every script slot.
func (r *Run) Font(name string) *Run {
	return r.push(newFonts(name))
}

func newFonts(name string) (*xmltree.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("font name is empty")
	}
	return xmltree.New("w:rFonts").
		SetAttr("w:ascii", name).
		SetAttr("w:hAnsi", name).
		SetAttr("w:eastAsia", name).
		SetAttr("w:cs", name), nil
}

// Language sets w:lang from BCP 47 tag, tag is written canonicalized.
func (r *Run) Language(tag string) *Run {
	t, err := language.Parse(tag)
	if err != nil {
		return r.push(nil, invalid("language %q: %v", tag, err))
	}
	return r.push(xmltree.New("w:lang").SetAttr("w:val", t.String()), nil)
}

// Style references character style.
func (r *Run) Style(styleID string) *Run {
	if err := checkStyleID(styleID); err != nil {
		return r.push(nil, err)
	}
	return r.push(xmltree.New("w:rStyle").SetAttr("w:val", styleID), nil)
}

// Text appends text element preserving whitespace.
func (r *Run) Text(s string) *Run {
	r.root.Append(newText(s))
	return r
}

// Break appends line break.
func (r *Run) Break() *Run {
	r.root.Append(xmltree.New("w:br"))
	return r
}

func (r *Run) Tab() *Run {
	r.root.Append(xmltree.New("w:tab"))
	return r
}

func newText(s string) *xmltree.Node {
	return xmltree.New("w:t").SetAttr("xml:space", "preserve").AppendText(s)
}

// TextRun is a run created with text content. It stays usable for
// formatting after it was linked into a paragraph.
type TextRun struct {
	*Run
}

func NewTextRun(text string) *TextRun {
	r := NewRun()
	r.Text(text)
	return &TextRun{Run: r}
}

func (r *TextRun) XMLNode() *xmltree.Node {
	if r == nil {
		return nil
	}
	return r.Run.XMLNode()
}

// NewFootnoteReferenceRun references footnote by id, ids 0 and -1 are
// reserved for separators.
func NewFootnoteReferenceRun(id int) (*Run, error) {
	if id < 1 {
		return nil, invalid("footnote id %d must be positive", id)
	}
	r := NewRun().Style("FootnoteReference")
	r.root.Append(xmltree.New("w:footnoteReference").SetIntAttr("w:id", id))
	return r, nil
}

// NewSequentialIdentifier is a complex SEQ field numbering captions with the
// given name ("Figure", "Table").
func NewSequentialIdentifier(name string) (*Run, error) {
	if name == "" || strings.ContainsFunc(name, unicode.IsSpace) {
		return nil, invalid("sequence identifier %q must be a single word", name)
	}
	r := NewRun()
	r.root.Append(fieldChar("begin").SetBoolAttr("w:dirty", true))
	r.root.Append(xmltree.New("w:instrText").SetAttr("xml:space", "preserve").AppendText("SEQ " + name))
	r.root.Append(fieldChar("separate"))
	r.root.Append(fieldChar("end"))
	return r, nil
}

func fieldChar(kind string) *xmltree.Node {
	return xmltree.New("w:fldChar").SetAttr("w:fldCharType", kind)
}

// NewPageBreakRun is a run with hard page break.
func NewPageBreakRun() *Run {
	r := NewRun()
	r.root.Append(xmltree.New("w:br").SetAttr("w:type", "page"))
	return r
}
