package wml

import (
	"fmt"
	"strings"
)

// Enumerations are kept as integers inside builders and mapped to their wire
// spelling only when a leaf node is constructed. Zero value of every
// enumeration means "not set".

// enumNames maps enumeration value to wire string; index 0 is unset.
type enumNames []string

func (e enumNames) name(v int) string {
	if v <= 0 || v >= len(e) {
		return ""
	}
	return e[v]
}

func (e enumNames) parse(kind, s string) (int, error) {
	for i := 1; i < len(e); i++ {
		if strings.EqualFold(e[i], s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: unknown value %q (supported: %s)", kind, s, strings.Join(e[1:], ", "))
}

// HeadingLevel identifies built-in heading styles. The wire form is a style
// id.
type HeadingLevel int

const (
	HeadingNone HeadingLevel = iota
	Heading1
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
	HeadingTitle
)

var headingNames = enumNames{"", "Heading1", "Heading2", "Heading3", "Heading4", "Heading5", "Heading6", "Title"}

func (h HeadingLevel) String() string { return headingNames.name(int(h)) }

// StyleID returns paragraph style id for the level.
func (h HeadingLevel) StyleID() string { return h.String() }

func (h HeadingLevel) IsValid() bool { return h > HeadingNone && h <= HeadingTitle }

// ParseHeadingLevel accepts style ids ("Heading2", "title") and bare level
// numbers ("2").
func ParseHeadingLevel(s string) (HeadingLevel, error) {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '6' {
		return HeadingLevel(s[0] - '0'), nil
	}
	v, err := headingNames.parse("heading level", s)
	return HeadingLevel(v), err
}

// AlignmentType is paragraph justification (w:jc).
type AlignmentType int

const (
	AlignmentNone AlignmentType = iota
	AlignmentStart
	AlignmentEnd
	AlignmentCenter
	AlignmentBoth
	AlignmentDistribute
	AlignmentLeft
	AlignmentRight
)

var alignmentNames = enumNames{"", "start", "end", "center", "both", "distribute", "left", "right"}

func (a AlignmentType) String() string { return alignmentNames.name(int(a)) }

func (a AlignmentType) IsValid() bool { return a > AlignmentNone && a <= AlignmentRight }

func ParseAlignmentType(s string) (AlignmentType, error) {
	if strings.EqualFold(s, "justify") || strings.EqualFold(s, "justified") {
		return AlignmentBoth, nil
	}
	v, err := alignmentNames.parse("alignment", s)
	return AlignmentType(v), err
}

// LeaderType is a tab stop fill. LeaderNone omits w:leader attribute
// completely.
type LeaderType int

const (
	LeaderNone LeaderType = iota
	LeaderDot
	LeaderHyphen
	LeaderUnderscore
	LeaderHeavy
	LeaderMiddleDot
)

var leaderNames = enumNames{"", "dot", "hyphen", "underscore", "heavy", "middleDot"}

func (l LeaderType) String() string { return leaderNames.name(int(l)) }

func (l LeaderType) IsValid() bool { return l >= LeaderNone && l <= LeaderMiddleDot }

func ParseLeaderType(s string) (LeaderType, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return LeaderNone, nil
	}
	v, err := leaderNames.parse("tab leader", s)
	return LeaderType(v), err
}

// TabStopType is w:tab w:val.
type TabStopType int

const (
	TabStopNone TabStopType = iota
	TabStopLeft
	TabStopRight
	TabStopCenter
	TabStopBar
	TabStopClear
	TabStopDecimal
	TabStopEnd
	TabStopNum
	TabStopStart
)

var tabStopNames = enumNames{"", "left", "right", "center", "bar", "clear", "decimal", "end", "num", "start"}

func (t TabStopType) String() string { return tabStopNames.name(int(t)) }

func (t TabStopType) IsValid() bool { return t > TabStopNone && t <= TabStopStart }

func ParseTabStopType(s string) (TabStopType, error) {
	v, err := tabStopNames.parse("tab stop", s)
	return TabStopType(v), err
}

// LineRule defines how w:spacing w:line is interpreted.
type LineRule int

const (
	LineRuleNone LineRule = iota
	LineRuleAuto
	LineRuleExact
	LineRuleAtLeast
)

var lineRuleNames = enumNames{"", "auto", "exact", "atLeast"}

func (l LineRule) String() string { return lineRuleNames.name(int(l)) }

func (l LineRule) IsValid() bool { return l >= LineRuleNone && l <= LineRuleAtLeast }

func ParseLineRule(s string) (LineRule, error) {
	if s == "" {
		return LineRuleNone, nil
	}
	v, err := lineRuleNames.parse("line rule", s)
	return LineRule(v), err
}

// BorderStyle is w:val of border elements. Only commonly used subset.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderDouble
	BorderDotted
	BorderDashed
	BorderThick
	BorderNil
	BorderWave
	BorderDotDash
)

var borderNames = enumNames{"", "single", "double", "dotted", "dashed", "thick", "nil", "wave", "dotDash"}

func (b BorderStyle) String() string { return borderNames.name(int(b)) }

func (b BorderStyle) IsValid() bool { return b > BorderNone && b <= BorderDotDash }

func ParseBorderStyle(s string) (BorderStyle, error) {
	v, err := borderNames.parse("border style", s)
	return BorderStyle(v), err
}

// UnderlineType is w:u w:val.
type UnderlineType int

const (
	UnderlineNone UnderlineType = iota
	UnderlineSingle
	UnderlineWords
	UnderlineDouble
	UnderlineThick
	UnderlineDotted
	UnderlineDash
	UnderlineWave
)

var underlineNames = enumNames{"", "single", "words", "double", "thick", "dotted", "dash", "wave"}

func (u UnderlineType) String() string { return underlineNames.name(int(u)) }

func (u UnderlineType) IsValid() bool { return u > UnderlineNone && u <= UnderlineWave }

func ParseUnderlineType(s string) (UnderlineType, error) {
	v, err := underlineNames.parse("underline", s)
	return UnderlineType(v), err
}

// NumberFormat is w:numFmt of a numbering level.
type NumberFormat int

const (
	NumberFormatNone NumberFormat = iota
	NumberFormatDecimal
	NumberFormatUpperRoman
	NumberFormatLowerRoman
	NumberFormatUpperLetter
	NumberFormatLowerLetter
	NumberFormatBullet
	NumberFormatOrdinal
)

var numberFormatNames = enumNames{"", "decimal", "upperRoman", "lowerRoman", "upperLetter", "lowerLetter", "bullet", "ordinal"}

func (f NumberFormat) String() string { return numberFormatNames.name(int(f)) }

func (f NumberFormat) IsValid() bool { return f > NumberFormatNone && f <= NumberFormatOrdinal }

func ParseNumberFormat(s string) (NumberFormat, error) {
	v, err := numberFormatNames.parse("number format", s)
	return NumberFormat(v), err
}
