package wml

import (
	"slices"

	"go.uber.org/multierr"

	"docxml/xmltree"
)

// DefaultBulletNumID is numbering instance Bullet refers to. It is defined by
// DefaultNumbering.
const DefaultBulletNumID = 1

// LevelOptions define single level of an abstract numbering. Zero Start
// means 1, nil Indent produces default indentation growing with the level.
type LevelOptions struct {
	Level     int
	Format    NumberFormat
	Text      string
	Alignment AlignmentType
	Start     int
	Indent    *IndentAttributes
	Font      string
}

// AbstractNumbering is w:abstractNum: numbering formats for every list
// level.
type AbstractNumbering struct {
	root   *xmltree.Node
	id     int
	levels []int
	err    error
}

func NewAbstractNumbering(id int) (*AbstractNumbering, error) {
	if id < 0 {
		return nil, invalid("abstract numbering id %d is negative", id)
	}
	root := xmltree.New("w:abstractNum").SetIntAttr("w:abstractNumId", id)
	root.Append(xmltree.New("w:multiLevelType").SetAttr("w:val", "hybridMultilevel"))
	return &AbstractNumbering{root: root, id: id}, nil
}

func (a *AbstractNumbering) XMLNode() *xmltree.Node {
	if a == nil {
		return nil
	}
	return a.root
}

func (a *AbstractNumbering) ID() int {
	return a.id
}

func (a *AbstractNumbering) Err() error {
	return a.err
}

// Levels returns defined levels in definition order.
func (a *AbstractNumbering) Levels() []int {
	return slices.Clone(a.levels)
}

// CreateLevel adds w:lvl. Every level could be defined once.
func (a *AbstractNumbering) CreateLevel(opts LevelOptions) *AbstractNumbering {
	lvl, err := newLevel(opts)
	if err == nil && slices.Contains(a.levels, opts.Level) {
		err = invalid("abstract numbering %d: level %d is already defined", a.id, opts.Level)
	}
	if multierr.AppendInto(&a.err, err) {
		return a
	}
	a.root.Append(lvl)
	a.levels = append(a.levels, opts.Level)
	return a
}

func newLevel(opts LevelOptions) (*xmltree.Node, error) {
	if opts.Level < 0 || opts.Level > maxListLevel {
		return nil, invalid("list level %d out of range [0, %d]", opts.Level, maxListLevel)
	}
	if !opts.Format.IsValid() {
		return nil, invalid("number format %d", int(opts.Format))
	}
	if opts.Start < 0 {
		return nil, invalid("list start %d is negative", opts.Start)
	}
	start := opts.Start
	if start == 0 {
		start = 1
	}
	align := opts.Alignment
	if align == AlignmentNone {
		align = AlignmentStart
	}
	jc, err := NewAlignment(align)
	if err != nil {
		return nil, err
	}
	indent := opts.Indent
	if indent == nil {
		indent = &IndentAttributes{Left: Twips(720 * (opts.Level + 1)), Hanging: Twips(360)}
	}
	ind, err := NewIndent(*indent)
	if err != nil {
		return nil, err
	}

	lvl := xmltree.New("w:lvl").SetIntAttr("w:ilvl", opts.Level)
	lvl.Append(xmltree.New("w:start").SetIntAttr("w:val", start))
	lvl.Append(xmltree.New("w:numFmt").SetAttr("w:val", opts.Format.String()))
	lvl.Append(xmltree.New("w:lvlText").SetAttr("w:val", opts.Text))
	lvl.Append(jc)
	lvl.Append(xmltree.New("w:pPr").Append(ind))
	if opts.Font != "" {
		fonts, err := newFonts(opts.Font)
		if err != nil {
			return nil, err
		}
		lvl.Append(xmltree.New("w:rPr").Append(fonts))
	}
	return lvl, nil
}

// Num is w:num: numbering instance paragraphs refer to.
type Num struct {
	root       *xmltree.Node
	id         int
	abstractID int
}

func NewNum(id, abstractID int) (*Num, error) {
	if id < 1 {
		return nil, invalid("numbering id %d must be positive", id)
	}
	if abstractID < 0 {
		return nil, invalid("abstract numbering id %d is negative", abstractID)
	}
	root := xmltree.New("w:num").SetIntAttr("w:numId", id)
	root.Append(xmltree.New("w:abstractNumId").SetIntAttr("w:val", abstractID))
	return &Num{root: root, id: id, abstractID: abstractID}, nil
}

func (n *Num) XMLNode() *xmltree.Node {
	if n == nil {
		return nil
	}
	return n.root
}

func (n *Num) NumberingID() int {
	return n.id
}

func (n *Num) AbstractID() int {
	return n.abstractID
}

// Numbering is numbering part root. All abstract numberings precede all
// numbering instances.
type Numbering struct {
	root      *xmltree.Node
	abstracts []*AbstractNumbering
	nums      []*Num
	err       error
}

func NewNumbering() *Numbering {
	return &Numbering{root: xmltree.New("w:numbering").SetAttr("xmlns:w", NamespaceW)}
}

// DefaultNumbering defines bullet list used by Paragraph.Bullet: abstract
// numbering 0 and instance DefaultBulletNumID.
func DefaultNumbering() *Numbering {
	n := NewNumbering()
	a := n.CreateAbstractNumbering()
	bullets := []string{"●", "○", "■"}
	for lvl := range maxListLevel + 1 {
		a.CreateLevel(LevelOptions{
			Level:  lvl,
			Format: NumberFormatBullet,
			Text:   bullets[lvl%len(bullets)],
		})
	}
	n.CreateNum(a)
	return n
}

func (n *Numbering) XMLNode() *xmltree.Node {
	if n == nil {
		return nil
	}
	return n.root
}

// Empty reports whether nothing is defined.
func (n *Numbering) Empty() bool {
	return len(n.abstracts) == 0 && len(n.nums) == 0
}

// AddAbstractNumbering links abstract numbering after already linked ones and
// before every instance. Duplicate ids are rejected.
func (n *Numbering) AddAbstractNumbering(a *AbstractNumbering) *Numbering {
	if a == nil {
		return n
	}
	if n.Abstract(a.id) != nil {
		multierr.AppendInto(&n.err, invalid("abstract numbering %d is already defined", a.id))
		return n
	}
	n.root.InsertAt(len(n.abstracts), a)
	n.abstracts = append(n.abstracts, a)
	return n
}

// AddNum links numbering instance. Referenced abstract numbering must be
// defined first.
func (n *Numbering) AddNum(num *Num) *Numbering {
	if num == nil {
		return n
	}
	var err error
	switch {
	case n.Num(num.id) != nil:
		err = invalid("numbering %d is already defined", num.id)
	case n.Abstract(num.abstractID) == nil:
		err = invalid("numbering %d refers to undefined abstract numbering %d", num.id, num.abstractID)
	}
	if multierr.AppendInto(&n.err, err) {
		return n
	}
	n.root.Append(num)
	n.nums = append(n.nums, num)
	return n
}

// CreateAbstractNumbering links abstract numbering with the next free id.
func (n *Numbering) CreateAbstractNumbering() *AbstractNumbering {
	id := 0
	for _, a := range n.abstracts {
		id = max(id, a.id+1)
	}
	a, _ := NewAbstractNumbering(id)
	n.AddAbstractNumbering(a)
	return a
}

// CreateNum links instance of abstract numbering with the next free id.
func (n *Numbering) CreateNum(a *AbstractNumbering) *Num {
	if a == nil {
		return nil
	}
	id := 1
	for _, num := range n.nums {
		id = max(id, num.id+1)
	}
	num, _ := NewNum(id, a.id)
	n.AddNum(num)
	return num
}

func (n *Numbering) Abstract(id int) *AbstractNumbering {
	for _, a := range n.abstracts {
		if a.id == id {
			return a
		}
	}
	return nil
}

func (n *Numbering) Num(id int) *Num {
	for _, num := range n.nums {
		if num.id == id {
			return num
		}
	}
	return nil
}

func (n *Numbering) Err() error {
	faults := make([]faulty, 0, len(n.abstracts))
	for _, a := range n.abstracts {
		faults = append(faults, a)
	}
	return linkedErrors(n.err, faults)
}
