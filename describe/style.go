package describe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"docxml/css"
	"docxml/wml"
)

// lineUnit is single line spacing in 240ths of a line.
const lineUnit = 240

// cssElement is the selector element paragraph is matched by.
func cssElement(p *Paragraph) string {
	switch {
	case p.Title:
		return "title"
	case p.Heading > 0:
		return fmt.Sprintf("h%d", p.Heading)
	}
	return "p"
}

// applyCSS maps declarations onto paragraph mutators. Margins and text indent
// are collected into single spacing and indent properties.
func applyCSS(para *wml.Paragraph, props css.Properties, log *zap.Logger) error {
	if len(props) == 0 {
		return nil
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		spacing    wml.SpacingProperties
		hasSpacing bool
		indent     wml.IndentAttributes
		hasIndent  bool
	)
	for _, name := range names {
		v := props[name]
		switch name {
		case "text-align":
			a, err := cssAlignment(v.Keyword)
			if err != nil {
				return err
			}
			para.Align(a)
		case "margin-top", "margin-bottom":
			tw, err := cssLength(name, v)
			if err != nil {
				return err
			}
			if name == "margin-top" {
				spacing.Before = wml.Twips(tw)
			} else {
				spacing.After = wml.Twips(tw)
			}
			hasSpacing = true
		case "line-height":
			line, rule, err := cssLineHeight(v)
			if err != nil {
				return err
			}
			spacing.Line, spacing.LineRule = wml.Twips(line), rule
			hasSpacing = true
		case "text-indent":
			tw, err := cssLength(name, v)
			if err != nil {
				return err
			}
			if tw < 0 {
				indent.Hanging = wml.Twips(-tw)
			} else {
				indent.FirstLine = wml.Twips(tw)
			}
			hasIndent = true
		case "margin-left", "margin-right":
			tw, err := cssLength(name, v)
			if err != nil {
				return err
			}
			if name == "margin-left" {
				indent.Left = wml.Twips(tw)
			} else {
				indent.Right = wml.Twips(tw)
			}
			hasIndent = true
		case "page-break-before", "break-before":
			if v.Keyword == "always" || v.Keyword == "page" {
				para.PageBreakBefore()
			}
		case "page-break-after", "break-after":
			if v.Keyword == "avoid" || v.Keyword == "avoid-page" {
				para.KeepNext()
			}
		case "page-break-inside", "break-inside":
			if v.Keyword == "avoid" || v.Keyword == "avoid-page" {
				para.KeepLines()
			}
		case "direction":
			if v.Keyword == "rtl" {
				para.Bidirectional()
			}
		default:
			log.Debug("CSS property ignored", zap.String("property", name), zap.String("value", v.Raw))
		}
	}
	if hasSpacing {
		para.Spacing(spacing)
	}
	if hasIndent {
		para.Indent(indent)
	}
	return nil
}

func cssAlignment(keyword string) (wml.AlignmentType, error) {
	switch strings.ToLower(keyword) {
	case "justify":
		return wml.AlignmentBoth, nil
	case "left", "right", "center", "start", "end":
		return wml.ParseAlignmentType(keyword)
	}
	return wml.AlignmentNone, fmt.Errorf("css text-align: unsupported value %q", keyword)
}

func cssLength(name string, v css.Value) (int, error) {
	tw, ok := v.Twips(css.DefaultFontSize)
	if !ok {
		return 0, fmt.Errorf("css %s: %q is not a length", name, v.Raw)
	}
	return tw, nil
}

// cssLineHeight converts unitless multipliers and percentages to auto rule,
// lengths to exact rule.
func cssLineHeight(v css.Value) (int, wml.LineRule, error) {
	var factor float64
	switch {
	case v.Keyword == "normal":
		factor = 1
	case v.Unit == "%":
		factor = v.Value / 100
	case v.Unit == "" && v.IsNumeric():
		factor = v.Value
	default:
		tw, ok := v.Twips(css.DefaultFontSize)
		if !ok {
			return 0, wml.LineRuleNone, fmt.Errorf("css line-height: unsupported value %q", v.Raw)
		}
		return tw, wml.LineRuleExact, nil
	}
	line, err := safecast.Round[int](math.Abs(factor) * lineUnit)
	if err != nil {
		return 0, wml.LineRuleNone, fmt.Errorf("css line-height: %q: %w", v.Raw, err)
	}
	return line, wml.LineRuleAuto, nil
}
