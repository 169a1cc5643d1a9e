package wml

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"docxml/xmltree"
)

const maxBookmarkName = 40

// Bookmark marks named range. The three parts must be linked contiguously in
// Start, Text, End order.
type Bookmark struct {
	Start *xmltree.Node
	Text  *TextRun
	End   *xmltree.Node
}

// NewBookmark creates bookmark around text. Ids must be unique within
// document and are supplied by the caller.
func NewBookmark(id int, name, text string) (*Bookmark, error) {
	if id < 0 {
		return nil, invalid("bookmark id %d is negative", id)
	}
	if err := checkBookmarkName(name); err != nil {
		return nil, err
	}
	return &Bookmark{
		Start: xmltree.New("w:bookmarkStart").SetIntAttr("w:id", id).SetAttr("w:name", name),
		Text:  NewTextRun(text),
		End:   xmltree.New("w:bookmarkEnd").SetIntAttr("w:id", id),
	}, nil
}

func checkBookmarkName(name string) error {
	switch {
	case name == "":
		return invalid("bookmark name is empty")
	case utf8.RuneCountInString(name) > maxBookmarkName:
		return invalid("bookmark name %q is longer than %d characters", name, maxBookmarkName)
	case strings.ContainsFunc(name, unicode.IsSpace):
		return invalid("bookmark name %q contains whitespace", name)
	}
	return nil
}

// Hyperlink is w:hyperlink pointing either to a bookmark in the same
// document or to external target through relationship id.
type Hyperlink struct {
	root *xmltree.Node
	runs []*Run
}

// NewInternalHyperlink links text to a bookmark.
func NewInternalHyperlink(anchor, text string) (*Hyperlink, error) {
	if err := checkBookmarkName(anchor); err != nil {
		return nil, err
	}
	return newHyperlink(xmltree.New("w:hyperlink").SetAttr("w:anchor", anchor), text), nil
}

// NewExternalHyperlink links text to relationship relID which must be
// declared in document relationships with external target mode.
func NewExternalHyperlink(relID, text string) (*Hyperlink, error) {
	if strings.TrimSpace(relID) == "" {
		return nil, invalid("hyperlink relationship id is empty")
	}
	return newHyperlink(xmltree.New("w:hyperlink").SetAttr("r:id", relID), text), nil
}

func newHyperlink(root *xmltree.Node, text string) *Hyperlink {
	root.SetBoolAttr("w:history", true)
	h := &Hyperlink{root: root}
	if text != "" {
		h.AddRun(NewTextRun(text).Style("Hyperlink"))
	}
	return h
}

func (h *Hyperlink) XMLNode() *xmltree.Node {
	if h == nil {
		return nil
	}
	return h.root
}

// AddRun appends run into the link.
func (h *Hyperlink) AddRun(r *Run) *Hyperlink {
	if r == nil {
		return h
	}
	h.root.Append(r)
	h.runs = append(h.runs, r)
	return h
}

func (h *Hyperlink) Err() error {
	faults := make([]faulty, 0, len(h.runs))
	for _, r := range h.runs {
		faults = append(faults, r)
	}
	return linkedErrors(nil, faults)
}
