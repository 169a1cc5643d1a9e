package wml

import (
	"errors"
	"testing"

	"docxml/xmltree"
)

func render(t *testing.T, el xmltree.Element) string {
	t.Helper()
	data, err := xmltree.NewSerializer().Bytes(el)
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	return string(data)
}

func TestLeafConstructors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*xmltree.Node, error)
		want  string
	}{
		{
			name:  "style",
			build: func() (*xmltree.Node, error) { return NewStyle("Heading1") },
			want:  `<w:pStyle w:val="Heading1"/>`,
		},
		{
			name:  "alignment",
			build: func() (*xmltree.Node, error) { return NewAlignment(AlignmentCenter) },
			want:  `<w:jc w:val="center"/>`,
		},
		{
			name: "spacing full",
			build: func() (*xmltree.Node, error) {
				return NewSpacing(SpacingProperties{Before: Twips(0), After: Twips(120), Line: Twips(276), LineRule: LineRuleAuto})
			},
			want: `<w:spacing w:before="0" w:after="120" w:line="276" w:lineRule="auto"/>`,
		},
		{
			name:  "spacing after only",
			build: func() (*xmltree.Node, error) { return NewSpacing(SpacingProperties{After: Twips(200)}) },
			want:  `<w:spacing w:after="200"/>`,
		},
		{
			name: "indent",
			build: func() (*xmltree.Node, error) {
				return NewIndent(IndentAttributes{Left: Twips(720), Hanging: Twips(360)})
			},
			want: `<w:ind w:left="720" w:hanging="360"/>`,
		},
		{
			name:  "outline level",
			build: func() (*xmltree.Node, error) { return NewOutlineLevel(0) },
			want:  `<w:outlineLvl w:val="0"/>`,
		},
		{
			name:  "number properties",
			build: func() (*xmltree.Node, error) { return NewNumberProperties(1, 2) },
			want:  `<w:numPr><w:ilvl w:val="2"/><w:numId w:val="1"/></w:numPr>`,
		},
		{
			name:  "tab stop without leader",
			build: func() (*xmltree.Node, error) { return NewTabStop(TabStopLeft, 1440, LeaderNone) },
			want:  `<w:tabs><w:tab w:val="left" w:pos="1440"/></w:tabs>`,
		},
		{
			name:  "tab stop with leader",
			build: func() (*xmltree.Node, error) { return NewTabStop(TabStopCenter, 4513, LeaderDot) },
			want:  `<w:tabs><w:tab w:val="center" w:pos="4513" w:leader="dot"/></w:tabs>`,
		},
		{
			name:  "max right tab stop",
			build: func() (*xmltree.Node, error) { return NewMaxRightTabStop(LeaderHyphen) },
			want:  `<w:tabs><w:tab w:val="right" w:pos="9026" w:leader="hyphen"/></w:tabs>`,
		},
		{
			name:  "thematic break",
			build: func() (*xmltree.Node, error) { return NewThematicBreak(), nil },
			want:  `<w:pBdr><w:bottom w:color="auto" w:space="1" w:val="single" w:sz="6"/></w:pBdr>`,
		},
		{
			name:  "contextual spacing",
			build: func() (*xmltree.Node, error) { return NewContextualSpacing(true), nil },
			want:  `<w:contextualSpacing w:val="1"/>`,
		},
		{
			name:  "keep next",
			build: func() (*xmltree.Node, error) { return NewKeepNext(), nil },
			want:  `<w:keepNext/>`,
		},
		{
			name: "border",
			build: func() (*xmltree.Node, error) {
				return NewBorder(BorderTop, BorderOptions{Style: BorderDouble, Size: 4, Space: 2, Color: "#ff0000"})
			},
			want: `<w:top w:color="FF0000" w:space="2" w:val="double" w:sz="4"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.build()
			if err != nil {
				t.Fatalf("constructor error = %v", err)
			}
			if got := render(t, n); got != tt.want {
				t.Errorf("rendered = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLeafConstructors_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*xmltree.Node, error)
	}{
		{"empty style", func() (*xmltree.Node, error) { return NewStyle("") }},
		{"style with space", func() (*xmltree.Node, error) { return NewStyle("List Paragraph") }},
		{"unknown alignment", func() (*xmltree.Node, error) { return NewAlignment(AlignmentType(42)) }},
		{"unset alignment", func() (*xmltree.Node, error) { return NewAlignment(AlignmentNone) }},
		{"negative before", func() (*xmltree.Node, error) { return NewSpacing(SpacingProperties{Before: Twips(-1)}) }},
		{"zero line", func() (*xmltree.Node, error) { return NewSpacing(SpacingProperties{Line: Twips(0)}) }},
		{"rule without line", func() (*xmltree.Node, error) { return NewSpacing(SpacingProperties{LineRule: LineRuleExact}) }},
		{"hanging and first line", func() (*xmltree.Node, error) {
			return NewIndent(IndentAttributes{Hanging: Twips(1), FirstLine: Twips(1)})
		}},
		{"outline level too big", func() (*xmltree.Node, error) { return NewOutlineLevel(10) }},
		{"outline level negative", func() (*xmltree.Node, error) { return NewOutlineLevel(-1) }},
		{"negative numbering id", func() (*xmltree.Node, error) { return NewNumberProperties(-1, 0) }},
		{"negative indent level", func() (*xmltree.Node, error) { return NewNumberProperties(1, -1) }},
		{"indent level too big", func() (*xmltree.Node, error) { return NewNumberProperties(1, 9) }},
		{"unknown tab type", func() (*xmltree.Node, error) { return NewTabStop(TabStopNone, 0, LeaderNone) }},
		{"unknown leader", func() (*xmltree.Node, error) { return NewTabStop(TabStopLeft, 0, LeaderType(-1)) }},
		{"border without style", func() (*xmltree.Node, error) { return NewBorder(BorderTop, BorderOptions{}) }},
		{"border bad size", func() (*xmltree.Node, error) {
			return NewBorder(BorderTop, BorderOptions{Style: BorderSingle, Size: 100})
		}},
		{"border bad color", func() (*xmltree.Node, error) {
			return NewBorder(BorderTop, BorderOptions{Style: BorderSingle, Color: "red"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.build()
			if err == nil {
				t.Fatalf("constructor error = nil, want error")
			}
			if !errors.Is(err, ErrInvalidValue) {
				t.Errorf("error = %v, want wrapped ErrInvalidValue", err)
			}
			if n != nil {
				t.Errorf("constructor returned node %v together with error", n.Tag())
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	if h, err := ParseHeadingLevel("3"); err != nil || h != Heading3 {
		t.Errorf("ParseHeadingLevel(3) = %v, %v; want Heading3", h, err)
	}
	if h, err := ParseHeadingLevel("title"); err != nil || h != HeadingTitle {
		t.Errorf("ParseHeadingLevel(title) = %v, %v; want Title", h, err)
	}
	if a, err := ParseAlignmentType("justify"); err != nil || a != AlignmentBoth {
		t.Errorf("ParseAlignmentType(justify) = %v, %v; want both", a, err)
	}
	if l, err := ParseLeaderType(""); err != nil || l != LeaderNone {
		t.Errorf("ParseLeaderType(\"\") = %v, %v; want none", l, err)
	}
	if l, err := ParseLeaderType("middledot"); err != nil || l != LeaderMiddleDot {
		t.Errorf("ParseLeaderType(middledot) = %v, %v; want middleDot", l, err)
	}
	if _, err := ParseNumberFormat("cardinalText"); err == nil {
		t.Error("ParseNumberFormat(cardinalText) error = nil, want error")
	}
	if got := Heading2.StyleID(); got != "Heading2" {
		t.Errorf("Heading2.StyleID() = %q, want Heading2", got)
	}
	if got := AlignmentType(99).String(); got != "" {
		t.Errorf("String() of unknown alignment = %q, want empty", got)
	}
}

func TestBorder(t *testing.T) {
	b := NewParagraphBorder()
	b.Bottom(BorderOptions{Style: BorderSingle}).
		Top(BorderOptions{Style: BorderDouble}).
		Between(BorderOptions{Style: BorderDotted}).
		Left(BorderOptions{Style: BorderDashed})
	// replacing keeps the position
	b.Top(BorderOptions{Style: BorderThick, Size: 12})

	var got []string
	for _, n := range b.XMLNode().Elements() {
		v, _ := n.Attr("w:val")
		got = append(got, n.Tag()+"="+v)
	}
	want := []string{"w:top=thick", "w:left=dashed", "w:bottom=single", "w:between=dotted"}
	if len(got) != len(want) {
		t.Fatalf("border sides = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("side %d = %s, want %s", i, got[i], want[i])
		}
	}
	if b.Err() != nil {
		t.Errorf("Err() = %v, want nil", b.Err())
	}

	b.Right(BorderOptions{Style: BorderSingle, Space: 40})
	if b.Err() == nil {
		t.Error("Err() = nil after invalid side")
	}
	if b.Side(BorderRight) != nil {
		t.Error("invalid side was linked")
	}
}
