package wml

import (
	"strings"
	"testing"
)

func TestNewBookmark_Validation(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		bmName  string
		wantErr bool
	}{
		{name: "valid", id: 1, bmName: "_Toc1"},
		{name: "zero id", id: 0, bmName: "x"},
		{name: "negative id", id: -1, bmName: "x", wantErr: true},
		{name: "empty name", id: 1, bmName: "", wantErr: true},
		{name: "whitespace", id: 1, bmName: "a b", wantErr: true},
		{name: "forty chars", id: 1, bmName: strings.Repeat("n", 40)},
		{name: "too long", id: 1, bmName: strings.Repeat("n", 41), wantErr: true},
		{name: "forty runes", id: 1, bmName: strings.Repeat("ж", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBookmark(tt.id, tt.bmName, "text")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBookmark() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.Text.XMLNode().Text() != "text" {
				t.Errorf("bookmark text = %q, want text", b.Text.XMLNode().Text())
			}
		})
	}
}

func TestHyperlink(t *testing.T) {
	internal, err := NewInternalHyperlink("chapter1", "Chapter 1")
	if err != nil {
		t.Fatalf("NewInternalHyperlink() error = %v", err)
	}
	want := `<w:hyperlink w:anchor="chapter1" w:history="1"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr>` +
		`<w:t xml:space="preserve">Chapter 1</w:t></w:r></w:hyperlink>`
	if got := render(t, internal); got != want {
		t.Errorf("rendered =\n%s\nwant\n%s", got, want)
	}

	external, err := NewExternalHyperlink("rId7", "")
	if err != nil {
		t.Fatalf("NewExternalHyperlink() error = %v", err)
	}
	external.AddRun(NewTextRun("site").Bold()).AddRun(nil)
	if got := render(t, external); !strings.HasPrefix(got, `<w:hyperlink r:id="rId7" w:history="1"><w:r><w:rPr><w:b/>`) {
		t.Errorf("rendered = %s", got)
	}

	if _, err := NewExternalHyperlink(" ", "x"); err == nil {
		t.Error("NewExternalHyperlink with empty id error = nil")
	}
	if _, err := NewInternalHyperlink("has space", "x"); err == nil {
		t.Error("NewInternalHyperlink with invalid anchor error = nil")
	}

	p := NewParagraph(ParagraphOptions{}).AddHyperLink(external)
	external.AddRun(NewRun().Color("nope"))
	if p.Err() == nil {
		t.Error("paragraph does not report error of linked hyperlink run")
	}
}
