package wml

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"docxml/xmltree"
)

// ErrInvalidValue is wrapped by every validation failure of leaf node
// constructors.
var ErrInvalidValue = errors.New("invalid value")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

const (
	// MaxTabPosition is the right edge of text area for A4 with default
	// margins, used by max right tab stop.
	MaxTabPosition = 9026

	maxOutlineLevel = 9
	maxListLevel    = 8
)

// Twips returns pointer to the value, handy for optional measurements.
func Twips(v int) *int {
	return &v
}

// SpacingProperties describe w:spacing. Measurements are in twentieths of a
// point, Line is in 240ths of a line when LineRule is auto. Nil fields are
// not written.
type SpacingProperties struct {
	Before   *int
	After    *int
	Line     *int
	LineRule LineRule
}

// IndentAttributes describe w:ind, all values in twips. Hanging and
// FirstLine are mutually exclusive.
type IndentAttributes struct {
	Left      *int
	Right     *int
	Start     *int
	End       *int
	Hanging   *int
	FirstLine *int
}

// NewStyle references paragraph style by id.
func NewStyle(styleID string) (*xmltree.Node, error) {
	if err := checkStyleID(styleID); err != nil {
		return nil, err
	}
	return xmltree.New("w:pStyle").SetAttr("w:val", styleID), nil
}

func checkStyleID(styleID string) error {
	if strings.TrimSpace(styleID) == "" {
		return invalid("style id is empty")
	}
	if strings.ContainsFunc(styleID, unicode.IsSpace) {
		return invalid("style id %q contains whitespace", styleID)
	}
	return nil
}

func NewAlignment(a AlignmentType) (*xmltree.Node, error) {
	if !a.IsValid() {
		return nil, invalid("alignment %d", int(a))
	}
	return xmltree.New("w:jc").SetAttr("w:val", a.String()), nil
}

func NewSpacing(sp SpacingProperties) (*xmltree.Node, error) {
	if sp.Before != nil && *sp.Before < 0 {
		return nil, invalid("spacing before %d is negative", *sp.Before)
	}
	if sp.After != nil && *sp.After < 0 {
		return nil, invalid("spacing after %d is negative", *sp.After)
	}
	if sp.Line != nil && *sp.Line <= 0 {
		return nil, invalid("line spacing %d must be positive", *sp.Line)
	}
	if !sp.LineRule.IsValid() {
		return nil, invalid("line rule %d", int(sp.LineRule))
	}
	if sp.LineRule != LineRuleNone && sp.Line == nil {
		return nil, invalid("line rule %s requires line value", sp.LineRule)
	}

	n := xmltree.New("w:spacing")
	if sp.Before != nil {
		n.SetIntAttr("w:before", *sp.Before)
	}
	if sp.After != nil {
		n.SetIntAttr("w:after", *sp.After)
	}
	if sp.Line != nil {
		n.SetIntAttr("w:line", *sp.Line)
	}
	if sp.LineRule != LineRuleNone {
		n.SetAttr("w:lineRule", sp.LineRule.String())
	}
	return n, nil
}

func NewIndent(ind IndentAttributes) (*xmltree.Node, error) {
	if ind.Hanging != nil && ind.FirstLine != nil {
		return nil, invalid("indent hanging and first line are mutually exclusive")
	}
	if ind.Hanging != nil && *ind.Hanging < 0 {
		return nil, invalid("hanging indent %d is negative", *ind.Hanging)
	}
	if ind.FirstLine != nil && *ind.FirstLine < 0 {
		return nil, invalid("first line indent %d is negative", *ind.FirstLine)
	}

	n := xmltree.New("w:ind")
	for _, a := range []struct {
		name  string
		value *int
	}{
		{"w:left", ind.Left},
		{"w:right", ind.Right},
		{"w:start", ind.Start},
		{"w:end", ind.End},
		{"w:hanging", ind.Hanging},
		{"w:firstLine", ind.FirstLine},
	} {
		if a.value != nil {
			n.SetIntAttr(a.name, *a.value)
		}
	}
	return n, nil
}

func NewContextualSpacing(value bool) *xmltree.Node {
	return xmltree.New("w:contextualSpacing").SetBoolAttr("w:val", value)
}

func NewKeepNext() *xmltree.Node {
	return xmltree.New("w:keepNext")
}

func NewKeepLines() *xmltree.Node {
	return xmltree.New("w:keepLines")
}

func NewPageBreakBefore() *xmltree.Node {
	return xmltree.New("w:pageBreakBefore")
}

func NewBidirectional() *xmltree.Node {
	return xmltree.New("w:bidi")
}

// NewOutlineLevel creates w:outlineLvl, levels are zero based 0-9 where 9
// means body text.
func NewOutlineLevel(level int) (*xmltree.Node, error) {
	if level < 0 || level > maxOutlineLevel {
		return nil, invalid("outline level %d out of range [0, %d]", level, maxOutlineLevel)
	}
	return xmltree.New("w:outlineLvl").SetIntAttr("w:val", level), nil
}

// NewNumberProperties references numbering instance numID at indentLevel.
func NewNumberProperties(numID, indentLevel int) (*xmltree.Node, error) {
	if numID < 0 {
		return nil, invalid("numbering id %d is negative", numID)
	}
	if indentLevel < 0 || indentLevel > maxListLevel {
		return nil, invalid("indent level %d out of range [0, %d]", indentLevel, maxListLevel)
	}
	n := xmltree.New("w:numPr")
	n.Append(xmltree.New("w:ilvl").SetIntAttr("w:val", indentLevel))
	n.Append(xmltree.New("w:numId").SetIntAttr("w:val", numID))
	return n, nil
}

// NewTabStop creates single tab stop wrapped into its own w:tabs element.
func NewTabStop(kind TabStopType, position int, leader LeaderType) (*xmltree.Node, error) {
	if !kind.IsValid() {
		return nil, invalid("tab stop type %d", int(kind))
	}
	if !leader.IsValid() {
		return nil, invalid("tab leader %d", int(leader))
	}
	tab := xmltree.New("w:tab").SetAttr("w:val", kind.String()).SetIntAttr("w:pos", position)
	if leader != LeaderNone {
		tab.SetAttr("w:leader", leader.String())
	}
	return xmltree.New("w:tabs").Append(tab), nil
}

// NewMaxRightTabStop is right aligned tab stop at the right text margin.
func NewMaxRightTabStop(leader LeaderType) (*xmltree.Node, error) {
	return NewTabStop(TabStopRight, MaxTabPosition, leader)
}

// NewThematicBreak is horizontal line under the paragraph.
func NewThematicBreak() *xmltree.Node {
	bottom := xmltree.New("w:bottom").
		SetAttr("w:color", "auto").
		SetIntAttr("w:space", 1).
		SetAttr("w:val", BorderSingle.String()).
		SetIntAttr("w:sz", 6)
	return xmltree.New("w:pBdr").Append(bottom)
}

var hexColorRe = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// checkColor accepts RRGGBB and "auto", returns wire form.
func checkColor(color string) (string, error) {
	if strings.EqualFold(color, "auto") {
		return "auto", nil
	}
	c := strings.TrimPrefix(color, "#")
	if !hexColorRe.MatchString(c) {
		return "", invalid("color %q is not RRGGBB or auto", color)
	}
	return strings.ToUpper(c), nil
}
