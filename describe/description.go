// Package describe turns declarative document descriptions (YAML or TOML)
// into WordprocessingML parts.
package describe

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown description format")

type (
	// Description is the whole document: numbering definitions, images it
	// refers to and paragraphs in body order.
	Description struct {
		Title      string            `yaml:"title,omitempty" toml:"title"`
		Vars       map[string]string `yaml:"vars,omitempty" toml:"vars"`
		Page       *Page             `yaml:"page,omitempty" toml:"page"`
		Stylesheet string            `yaml:"stylesheet,omitempty" toml:"stylesheet"`
		Numbering  []List            `yaml:"numbering,omitempty" toml:"numbering"`
		Images     []ImageRef        `yaml:"images,omitempty" toml:"images"`
		Paragraphs []Paragraph       `yaml:"paragraphs" toml:"paragraphs"`
	}

	// Page overrides configured page setup. Lengths are in twips.
	Page struct {
		Size      string `yaml:"size,omitempty" toml:"size"`
		Landscape bool   `yaml:"landscape,omitempty" toml:"landscape"`
		Width     int    `yaml:"width,omitempty" toml:"width"`
		Height    int    `yaml:"height,omitempty" toml:"height"`
		Margin    *int   `yaml:"margin,omitempty" toml:"margin"`
		Top       *int   `yaml:"top,omitempty" toml:"top"`
		Right     *int   `yaml:"right,omitempty" toml:"right"`
		Bottom    *int   `yaml:"bottom,omitempty" toml:"bottom"`
		Left      *int   `yaml:"left,omitempty" toml:"left"`
	}

	// List is named numbering definition, level index is position in Levels.
	List struct {
		Name   string      `yaml:"name" toml:"name"`
		Levels []ListLevel `yaml:"levels" toml:"levels"`
	}

	ListLevel struct {
		Format  string `yaml:"format" toml:"format"`
		Text    string `yaml:"text" toml:"text"`
		Align   string `yaml:"align,omitempty" toml:"align"`
		Start   int    `yaml:"start,omitempty" toml:"start"`
		Indent  int    `yaml:"indent,omitempty" toml:"indent"`
		Hanging int    `yaml:"hanging,omitempty" toml:"hanging"`
		Font    string `yaml:"font,omitempty" toml:"font"`
	}

	// ImageRef names image file, path is relative to description.
	ImageRef struct {
		Name        string `yaml:"name" toml:"name"`
		Path        string `yaml:"path" toml:"path"`
		Description string `yaml:"description,omitempty" toml:"description"`
	}

	Paragraph struct {
		Text            string          `yaml:"text,omitempty" toml:"text"`
		Heading         int             `yaml:"heading,omitempty" toml:"heading"`
		Title           bool            `yaml:"title,omitempty" toml:"title"`
		Style           string          `yaml:"style,omitempty" toml:"style"`
		Class           string          `yaml:"class,omitempty" toml:"class"`
		CSS             string          `yaml:"css,omitempty" toml:"css"`
		Align           string          `yaml:"align,omitempty" toml:"align"`
		Outline         *int            `yaml:"outline,omitempty" toml:"outline"`
		Bidi            bool            `yaml:"bidi,omitempty" toml:"bidi"`
		KeepNext        bool            `yaml:"keep_next,omitempty" toml:"keep_next"`
		KeepLines       bool            `yaml:"keep_lines,omitempty" toml:"keep_lines"`
		PageBreakBefore bool            `yaml:"page_break_before,omitempty" toml:"page_break_before"`
		ThematicBreak   bool            `yaml:"thematic_break,omitempty" toml:"thematic_break"`
		Bullet          *int            `yaml:"bullet,omitempty" toml:"bullet"`
		List            *ListRef        `yaml:"list,omitempty" toml:"list"`
		Borders         map[string]Edge `yaml:"borders,omitempty" toml:"borders"`
		Tabs            []Tab           `yaml:"tabs,omitempty" toml:"tabs"`
		Bookmark        string          `yaml:"bookmark,omitempty" toml:"bookmark"`
		Items           []Item          `yaml:"items,omitempty" toml:"items"`
	}

	ListRef struct {
		Name  string `yaml:"name" toml:"name"`
		Level int    `yaml:"level,omitempty" toml:"level"`
	}

	// Edge is border side, Size is in eighths of a point.
	Edge struct {
		Style string `yaml:"style" toml:"style"`
		Size  int    `yaml:"size,omitempty" toml:"size"`
		Space int    `yaml:"space,omitempty" toml:"space"`
		Color string `yaml:"color,omitempty" toml:"color"`
	}

	// Tab is tab stop, type "max" places right aligned stop at maximum
	// position.
	Tab struct {
		Type     string `yaml:"type" toml:"type"`
		Position int    `yaml:"position,omitempty" toml:"position"`
		Leader   string `yaml:"leader,omitempty" toml:"leader"`
	}

	// Item is paragraph content element, exactly one kind must be set. Front
	// moves the element in front of all already added content.
	Item struct {
		Run       *Run      `yaml:"run,omitempty" toml:"run"`
		Link      *Link     `yaml:"link,omitempty" toml:"link"`
		Bookmark  *Bookmark `yaml:"bookmark,omitempty" toml:"bookmark"`
		Image     string    `yaml:"image,omitempty" toml:"image"`
		Footnote  int       `yaml:"footnote,omitempty" toml:"footnote"`
		Seq       string    `yaml:"seq,omitempty" toml:"seq"`
		PageBreak bool      `yaml:"page_break,omitempty" toml:"page_break"`
		Front     bool      `yaml:"front,omitempty" toml:"front"`
	}

	// Run is formatted text, Size is in points.
	Run struct {
		Text           string  `yaml:"text" toml:"text"`
		Bold           bool    `yaml:"bold,omitempty" toml:"bold"`
		Italic         bool    `yaml:"italic,omitempty" toml:"italic"`
		Underline      string  `yaml:"underline,omitempty" toml:"underline"`
		UnderlineColor string  `yaml:"underline_color,omitempty" toml:"underline_color"`
		Strike         bool    `yaml:"strike,omitempty" toml:"strike"`
		DoubleStrike   bool    `yaml:"double_strike,omitempty" toml:"double_strike"`
		SmallCaps      bool    `yaml:"small_caps,omitempty" toml:"small_caps"`
		Caps           bool    `yaml:"caps,omitempty" toml:"caps"`
		Superscript    bool    `yaml:"superscript,omitempty" toml:"superscript"`
		Subscript      bool    `yaml:"subscript,omitempty" toml:"subscript"`
		Size           float64 `yaml:"size,omitempty" toml:"size"`
		Color          string  `yaml:"color,omitempty" toml:"color"`
		Font           string  `yaml:"font,omitempty" toml:"font"`
		Lang           string  `yaml:"lang,omitempty" toml:"lang"`
		Style          string  `yaml:"style,omitempty" toml:"style"`
		Tab            bool    `yaml:"tab,omitempty" toml:"tab"`
		Break          bool    `yaml:"break,omitempty" toml:"break"`
	}

	// Link is internal when Anchor is set and external when URL is set.
	Link struct {
		Text   string `yaml:"text" toml:"text"`
		Anchor string `yaml:"anchor,omitempty" toml:"anchor"`
		URL    string `yaml:"url,omitempty" toml:"url"`
	}

	// Bookmark wraps Text, empty Name is generated from text.
	Bookmark struct {
		Name string `yaml:"name,omitempty" toml:"name"`
		Text string `yaml:"text" toml:"text"`
	}
)

// Supported reports whether file name has description extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// Load decodes description, format is selected by file name extension.
// Unknown keys are errors in both formats.
func Load(name string, data []byte) (*Description, error) {
	d := &Description{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(d); err != nil {
			return nil, fmt.Errorf("failed to decode description %s: %w", name, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(d)
		if err != nil {
			return nil, fmt.Errorf("failed to decode description %s: %w", name, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("failed to decode description %s: unknown keys %s", name, strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return d, nil
}

// Marshal encodes description as YAML.
func (d *Description) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal description to yaml: %w", err)
	}
	return data, nil
}

// usesNumbering reports whether numbering part is needed.
func (d *Description) usesNumbering() bool {
	if len(d.Numbering) > 0 {
		return true
	}
	for _, p := range d.Paragraphs {
		if p.Bullet != nil || p.List != nil {
			return true
		}
	}
	return false
}

func (it *Item) kind() (string, error) {
	var kinds []string
	if it.Run != nil {
		kinds = append(kinds, "run")
	}
	if it.Link != nil {
		kinds = append(kinds, "link")
	}
	if it.Bookmark != nil {
		kinds = append(kinds, "bookmark")
	}
	if it.Image != "" {
		kinds = append(kinds, "image")
	}
	if it.Footnote != 0 {
		kinds = append(kinds, "footnote")
	}
	if it.Seq != "" {
		kinds = append(kinds, "seq")
	}
	if it.PageBreak {
		kinds = append(kinds, "page_break")
	}
	switch len(kinds) {
	case 0:
		return "", errors.New("item is empty")
	case 1:
	default:
		return "", fmt.Errorf("item mixes %s", strings.Join(kinds, ", "))
	}
	if it.Front && kinds[0] == "bookmark" {
		return "", errors.New("bookmark cannot be moved to front")
	}
	return kinds[0], nil
}
