package describe

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"fortio.org/safecast"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docxml/css"
	"docxml/media"
	"docxml/wml"
)

// Options control how descriptions are turned into document parts.
type Options struct {
	// Templates enables text/template expansion of every text.
	Templates bool
	// Normalize converts all texts to NFC.
	Normalize bool
	// AutoBookmarks wraps heading text into generated bookmark.
	AutoBookmarks  bool
	BookmarkPrefix string
	Page           wml.PageSetup
	Images         media.Options
	// Stylesheet is applied before description own stylesheet.
	Stylesheet []byte
	// Files resolves image paths, nil means description has no images.
	Files fs.FS
}

// Result is everything needed to write document parts.
type Result struct {
	Document      *wml.Document
	Numbering     *wml.Numbering // nil when no paragraph is a list item
	Relationships *wml.Relationships
	Media         *media.Registry
	Bookmarks     []string
}

// picture places registered image under drawing id allocated by builder, the
// same image could be placed several times.
type picture wml.DrawingInfo

func (p picture) Drawing() wml.DrawingInfo { return wml.DrawingInfo(p) }

type builder struct {
	opts Options
	log  *zap.Logger
	res  *Result

	text      *textExpander
	sheet     *css.Stylesheet
	parser    *css.Parser
	names     *bookmarkNames
	lists     map[string]wml.NumberingReference
	images    map[string]*media.Image
	links     map[string]string
	anchors   []string
	bookmarks int
	drawings  int
}

// Build produces document parts from description. It allocates bookmark,
// drawing and relationship ids. All problems found are reported together.
func Build(d *Description, opts Options, log *zap.Logger) (*Result, error) {
	if d == nil {
		return nil, errors.New("no description")
	}
	log = log.Named("describe")

	b := &builder{
		opts:   opts,
		log:    log,
		text:   newTextExpander(opts.Templates, opts.Normalize, d),
		parser: css.NewParser(log),
		names:  newBookmarkNames(opts.BookmarkPrefix),
		lists:  make(map[string]wml.NumberingReference),
		images: make(map[string]*media.Image),
		links:  make(map[string]string),
		res: &Result{
			Document:      wml.NewDocument(),
			Relationships: wml.NewRelationships(),
			Media:         media.NewRegistry(),
		},
	}

	var errs error
	b.sheet = b.parser.Parse(append(append([]byte{}, opts.Stylesheet...), "\n"+d.Stylesheet...), "stylesheet")
	for _, w := range b.sheet.Warnings {
		log.Warn("Stylesheet", zap.String("warning", w))
	}

	multierr.AppendInto(&errs, b.page(d.Page))
	if d.usesNumbering() {
		multierr.AppendInto(&errs, b.numbering(d.Numbering))
	}
	multierr.AppendInto(&errs, b.loadImages(d.Images))

	// names of explicit bookmarks are reserved first so generated ones
	// never take them
	reserve := func(i int, name string) {
		if !b.names.reserve(name) {
			multierr.AppendInto(&errs, fmt.Errorf("paragraph %d: bookmark %q is defined twice", i+1, name))
		}
	}
	for i, p := range d.Paragraphs {
		if p.Bookmark != "" {
			reserve(i, p.Bookmark)
		}
		for _, it := range p.Items {
			if it.Bookmark != nil && it.Bookmark.Name != "" {
				reserve(i, it.Bookmark.Name)
			}
		}
	}

	for i := range d.Paragraphs {
		b.text.values.Paragraph = i + 1
		para, err := b.paragraph(&d.Paragraphs[i])
		if err == nil {
			err = para.Err()
		}
		if err != nil {
			multierr.AppendInto(&errs, fmt.Errorf("paragraph %d: %w", i+1, err))
			continue
		}
		b.res.Document.AddParagraph(para)
	}

	known := make(map[string]bool, len(b.res.Bookmarks))
	for _, name := range b.res.Bookmarks {
		known[name] = true
	}
	for _, a := range b.anchors {
		if !known[a] {
			log.Warn("Link refers to unknown bookmark", zap.String("anchor", a))
		}
	}

	for _, part := range []interface{ Err() error }{b.res.Document, b.res.Relationships} {
		multierr.AppendInto(&errs, part.Err())
	}
	if b.res.Numbering != nil {
		multierr.AppendInto(&errs, b.res.Numbering.Err())
	}
	if errs != nil {
		return nil, errs
	}

	log.Debug("Description built",
		zap.Int("paragraphs", len(b.res.Document.Paragraphs())),
		zap.Int("relationships", b.res.Relationships.Len()),
		zap.Int("drawings", b.drawings),
		zap.Int("bookmarks", len(b.res.Bookmarks)))
	return b.res, nil
}

var pageSizes = map[string][2]int{
	"a4":     {11906, 16838},
	"a5":     {8391, 11906},
	"letter": {12240, 15840},
	"legal":  {12240, 20160},
}

func (b *builder) page(p *Page) error {
	ps := b.opts.Page
	if ps.Width == 0 || ps.Height == 0 {
		ps = wml.DefaultPageSetup()
	}
	ps, err := p.Apply(ps)
	if err != nil {
		return err
	}
	b.res.Document.PageSetup(ps)
	return nil
}

// Apply overrides page setup with values set in p, nil p changes nothing.
func (p *Page) Apply(ps wml.PageSetup) (wml.PageSetup, error) {
	if p == nil {
		return ps, nil
	}
	if p.Size != "" {
		size, ok := pageSizes[strings.ToLower(p.Size)]
		if !ok {
			return ps, fmt.Errorf("page: unknown size %q", p.Size)
		}
		ps.Width, ps.Height = size[0], size[1]
	}
	if p.Width > 0 {
		ps.Width = p.Width
	}
	if p.Height > 0 {
		ps.Height = p.Height
	}
	if p.Landscape && ps.Width < ps.Height {
		ps.Width, ps.Height = ps.Height, ps.Width
	}
	if p.Margin != nil {
		ps.Top, ps.Right, ps.Bottom, ps.Left = *p.Margin, *p.Margin, *p.Margin, *p.Margin
	}
	for _, m := range []struct {
		v   *int
		dst *int
	}{{p.Top, &ps.Top}, {p.Right, &ps.Right}, {p.Bottom, &ps.Bottom}, {p.Left, &ps.Left}} {
		if m.v != nil {
			*m.dst = *m.v
		}
	}
	return ps, nil
}

// numbering defines default bullets and every named list and declares
// numbering part relationship.
func (b *builder) numbering(lists []List) error {
	var errs error

	n := wml.DefaultNumbering()
	for _, l := range lists {
		if l.Name == "" {
			multierr.AppendInto(&errs, errors.New("numbering: list without name"))
			continue
		}
		if _, ok := b.lists[l.Name]; ok {
			multierr.AppendInto(&errs, fmt.Errorf("numbering: list %q is defined twice", l.Name))
			continue
		}
		a := n.CreateAbstractNumbering()
		for lvl, def := range l.Levels {
			opts, err := levelOptions(lvl, def)
			if err != nil {
				multierr.AppendInto(&errs, fmt.Errorf("numbering: list %q level %d: %w", l.Name, lvl, err))
				continue
			}
			a.CreateLevel(opts)
		}
		b.lists[l.Name] = n.CreateNum(a)
	}

	b.res.Numbering = n
	b.res.Relationships.Add(wml.Relationship{
		ID:     b.res.Relationships.NextID(),
		Type:   wml.RelTypeNumbering,
		Target: "numbering.xml",
	})
	return errs
}

func levelOptions(lvl int, def ListLevel) (wml.LevelOptions, error) {
	opts := wml.LevelOptions{Level: lvl, Text: def.Text, Start: def.Start, Font: def.Font}
	var err error
	if opts.Format, err = wml.ParseNumberFormat(def.Format); err != nil {
		return opts, err
	}
	if def.Align != "" {
		if opts.Alignment, err = wml.ParseAlignmentType(def.Align); err != nil {
			return opts, err
		}
	}
	if def.Indent != 0 || def.Hanging != 0 {
		opts.Indent = &wml.IndentAttributes{Left: wml.Twips(def.Indent), Hanging: wml.Twips(def.Hanging)}
	}
	return opts, nil
}

// loadImages prepares every declared image. Images are registered when first
// placed, unused ones are not written.
func (b *builder) loadImages(refs []ImageRef) error {
	var errs error
	for _, ref := range refs {
		if ref.Name == "" {
			ref.Name = path.Base(ref.Path)
		}
		if _, ok := b.images[ref.Name]; ok {
			multierr.AppendInto(&errs, fmt.Errorf("image %q is declared twice", ref.Name))
			continue
		}
		if b.opts.Files == nil {
			multierr.AppendInto(&errs, fmt.Errorf("image %q: no files to load it from", ref.Name))
			continue
		}
		data, err := fs.ReadFile(b.opts.Files, path.Clean(ref.Path))
		if err != nil {
			multierr.AppendInto(&errs, fmt.Errorf("image %q: %w", ref.Name, err))
			continue
		}
		img, err := media.Load(ref.Name, data, b.opts.Images, b.log)
		if err != nil {
			multierr.AppendInto(&errs, err)
			continue
		}
		img.Description = ref.Description
		b.images[ref.Name] = img
	}
	return errs
}

func (b *builder) paragraph(d *Paragraph) (*wml.Paragraph, error) {
	text, err := b.text.expand(d.Text)
	if err != nil {
		return nil, err
	}

	opts := wml.ParagraphOptions{
		OutlineLevel:    d.Outline,
		Bidirectional:   d.Bidi,
		KeepLines:       d.KeepLines,
		KeepNext:        d.KeepNext,
		PageBreakBefore: d.PageBreakBefore,
		ThematicBreak:   d.ThematicBreak,
		Style:           d.Style,
	}
	switch {
	case d.Title:
		opts.HeadingLevel = wml.HeadingTitle
	case d.Heading != 0:
		if opts.HeadingLevel = wml.HeadingLevel(d.Heading); !opts.HeadingLevel.IsValid() || opts.HeadingLevel == wml.HeadingTitle {
			return nil, fmt.Errorf("heading level %d out of range [1, 6]", d.Heading)
		}
	}
	if d.Align != "" {
		if opts.Alignment, err = wml.ParseAlignmentType(d.Align); err != nil {
			return nil, err
		}
	}

	bookmark := d.Bookmark
	if bookmark == "" && text != "" && b.opts.AutoBookmarks && opts.HeadingLevel != wml.HeadingNone {
		bookmark = b.names.generate(text)
	}
	if bookmark == "" {
		opts.Text = text
	}

	para := wml.NewParagraph(opts)

	props := b.sheet.Resolve(cssElement(d), d.Class)
	for name, v := range b.parser.ParseInline(d.CSS) {
		props[name] = v
	}
	if err := applyCSS(para, props, b.log); err != nil {
		return nil, err
	}

	if err := borders(para, d.Borders); err != nil {
		return nil, err
	}
	if err := tabs(para, d.Tabs); err != nil {
		return nil, err
	}

	switch {
	case d.Bullet != nil && d.List != nil:
		return nil, errors.New("paragraph cannot be both bullet and list item")
	case d.Bullet != nil:
		para.Bullet(*d.Bullet)
	case d.List != nil:
		ref, ok := b.lists[d.List.Name]
		if !ok {
			return nil, fmt.Errorf("unknown list %q", d.List.Name)
		}
		para.SetNumbering(ref, d.List.Level)
	}

	if bookmark != "" {
		bm, err := b.bookmark(bookmark, text)
		if err != nil {
			return nil, err
		}
		para.AddBookmark(bm)
	}

	for i := range d.Items {
		if err := b.item(para, &d.Items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return para, nil
}

var borderSides = map[string]wml.BorderSide{
	"top":     wml.BorderTop,
	"left":    wml.BorderLeft,
	"bottom":  wml.BorderBottom,
	"right":   wml.BorderRight,
	"between": wml.BorderBetween,
	"bar":     wml.BorderBar,
}

func borders(para *wml.Paragraph, edges map[string]Edge) error {
	if len(edges) == 0 {
		return nil
	}
	para.CreateBorder()
	for name, e := range edges {
		side, ok := borderSides[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unknown border side %q", name)
		}
		style, err := wml.ParseBorderStyle(e.Style)
		if err != nil {
			return err
		}
		para.Borders().Set(side, wml.BorderOptions{Style: style, Size: e.Size, Space: e.Space, Color: e.Color})
	}
	return nil
}

func tabs(para *wml.Paragraph, stops []Tab) error {
	for _, t := range stops {
		leader, err := wml.ParseLeaderType(t.Leader)
		if err != nil {
			return err
		}
		switch strings.ToLower(t.Type) {
		case "max":
			para.MaxRightTabStop(leader)
		case "left":
			para.LeftTabStop(t.Position, leader)
		case "right":
			para.RightTabStop(t.Position, leader)
		case "center":
			para.CenterTabStop(t.Position, leader)
		default:
			return fmt.Errorf("unsupported tab stop type %q", t.Type)
		}
	}
	return nil
}

// bookmark allocates next bookmark id, empty name is generated from text.
func (b *builder) bookmark(name, text string) (*wml.Bookmark, error) {
	if name == "" {
		name = b.names.generate(text)
	}
	bm, err := wml.NewBookmark(b.bookmarks, name, text)
	if err != nil {
		return nil, err
	}
	b.bookmarks++
	b.res.Bookmarks = append(b.res.Bookmarks, name)
	return bm, nil
}

func (b *builder) item(para *wml.Paragraph, it *Item) error {
	kind, err := it.kind()
	if err != nil {
		return err
	}

	place := para.AddRun
	if it.Front {
		place = para.AddRunToFront
	}

	switch kind {
	case "run":
		r, err := b.run(it.Run)
		if err != nil {
			return err
		}
		place(r)
	case "link":
		h, err := b.link(it.Link)
		if err != nil {
			return err
		}
		place(h)
	case "bookmark":
		text, err := b.text.expand(it.Bookmark.Text)
		if err != nil {
			return err
		}
		bm, err := b.bookmark(it.Bookmark.Name, text)
		if err != nil {
			return err
		}
		para.AddBookmark(bm)
	case "image":
		pr, err := b.image(it.Image)
		if err != nil {
			return err
		}
		place(pr)
	case "footnote":
		r, err := wml.NewFootnoteReferenceRun(it.Footnote)
		if err != nil {
			return err
		}
		place(r)
	case "seq":
		r, err := wml.NewSequentialIdentifier(it.Seq)
		if err != nil {
			return err
		}
		place(r)
	case "page_break":
		place(wml.NewPageBreakRun())
	}
	return nil
}

func (b *builder) run(d *Run) (*wml.Run, error) {
	text, err := b.text.expand(d.Text)
	if err != nil {
		return nil, err
	}

	r := wml.NewRun()
	if d.Style != "" {
		r.Style(d.Style)
	}
	if d.Bold {
		r.Bold()
	}
	if d.Italic {
		r.Italics()
	}
	if d.Underline != "" {
		kind, err := wml.ParseUnderlineType(d.Underline)
		if err != nil {
			return nil, err
		}
		r.Underline(kind, d.UnderlineColor)
	}
	if d.Strike {
		r.Strike()
	}
	if d.DoubleStrike {
		r.DoubleStrike()
	}
	if d.SmallCaps {
		r.SmallCaps()
	}
	if d.Caps {
		r.AllCaps()
	}
	if d.Superscript {
		r.Superscript()
	}
	if d.Subscript {
		r.Subscript()
	}
	if d.Size != 0 {
		half, err := safecast.Round[int](d.Size * 2)
		if err != nil {
			return nil, fmt.Errorf("run size %v: %w", d.Size, err)
		}
		r.Size(half)
	}
	if d.Color != "" {
		r.Color(d.Color)
	}
	if d.Font != "" {
		r.Font(d.Font)
	}
	if d.Lang != "" {
		r.Language(d.Lang)
	}
	if d.Tab {
		r.Tab()
	}
	if text != "" {
		r.Text(text)
	}
	if d.Break {
		r.Break()
	}
	return r, r.Err()
}

// link declares external target once per distinct url.
func (b *builder) link(d *Link) (*wml.Hyperlink, error) {
	text, err := b.text.expand(d.Text)
	if err != nil {
		return nil, err
	}
	switch {
	case d.Anchor != "" && d.URL != "":
		return nil, errors.New("link has both anchor and url")
	case d.Anchor != "":
		b.anchors = append(b.anchors, d.Anchor)
		return wml.NewInternalHyperlink(d.Anchor, text)
	case d.URL != "":
		target, err := normalizeURL(d.URL)
		if err != nil {
			return nil, err
		}
		id, ok := b.links[target]
		if !ok {
			id = b.res.Relationships.NextID()
			b.res.Relationships.Add(wml.Relationship{ID: id, Type: wml.RelTypeHyperlink, Target: target, External: true})
			if _, ok := b.res.Relationships.Get(id); !ok {
				return nil, fmt.Errorf("link %q: unable to declare relationship: %w", target, b.res.Relationships.Err())
			}
			b.links[target] = id
		}
		return wml.NewExternalHyperlink(id, text)
	}
	return nil, errors.New("link has neither anchor nor url")
}

// image registers image on first placement and allocates drawing id for
// every placement.
func (b *builder) image(name string) (*wml.PictureRun, error) {
	img, ok := b.images[name]
	if !ok {
		return nil, fmt.Errorf("unknown image %q", name)
	}
	if _, registered := b.res.Media.Get(img.Drawing().RelID); !registered {
		if err := b.res.Media.Add(img, b.res.Relationships); err != nil {
			return nil, err
		}
	}
	b.drawings++
	info := img.Drawing()
	info.ID = b.drawings
	return wml.NewPictureRun(picture(info))
}
