package describe

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// maxBookmarkName is the longest bookmark name word processors accept.
const maxBookmarkName = 40

// Values is what text templates could refer to.
type Values struct {
	Title     string
	Vars      map[string]string
	Paragraph int
}

type textExpander struct {
	templates bool
	normalize bool
	funcs     template.FuncMap
	values    Values
}

func newTextExpander(templates, normalize bool, d *Description) *textExpander {
	return &textExpander{
		templates: templates,
		normalize: normalize,
		funcs:     textFuncs(),
		values:    Values{Title: d.Title, Vars: d.Vars},
	}
}

// textFuncs is sprig without access to process environment: descriptions
// may come from untrusted archives.
func textFuncs() template.FuncMap {
	funcs := sprig.FuncMap()
	delete(funcs, "env")
	delete(funcs, "expandenv")
	return funcs
}

// expand runs text through template (only when it has actions) and NFC
// normalization.
func (e *textExpander) expand(s string) (string, error) {
	if e.templates && strings.Contains(s, "{{") {
		tmpl, err := template.New("text").Funcs(e.funcs).Option("missingkey=error").Parse(s)
		if err != nil {
			return "", fmt.Errorf("unable to parse text template: %w", err)
		}
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, e.values); err != nil {
			return "", fmt.Errorf("unable to expand text template: %w", err)
		}
		s = buf.String()
	}
	if e.normalize && !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return s, nil
}

// bookmarkNames hands out unique bookmark names.
type bookmarkNames struct {
	prefix string
	taken  map[string]struct{}
}

func newBookmarkNames(prefix string) *bookmarkNames {
	return &bookmarkNames{prefix: prefix, taken: make(map[string]struct{})}
}

// reserve claims explicit name, false when it is already used.
func (n *bookmarkNames) reserve(name string) bool {
	if _, ok := n.taken[name]; ok {
		return false
	}
	n.taken[name] = struct{}{}
	return true
}

// generate makes name from text: prefix followed by transliterated text with
// underscores, cut to allowed length and made unique with numeric suffix.
func (n *bookmarkNames) generate(text string) string {
	base := strings.ReplaceAll(slug.Make(text), "-", "_")
	if base == "" {
		base = "bookmark"
	}
	base = truncateRunes(n.prefix+base, maxBookmarkName)

	name := base
	for i := 2; ; i++ {
		if n.reserve(name) {
			return name
		}
		suffix := "_" + strconv.Itoa(i)
		name = truncateRunes(base, maxBookmarkName-len(suffix)) + suffix
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// normalizeURL validates external link target and converts international
// host name to its ASCII form.
func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("bad link url %q: %w", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		if u.Host == "" {
			return "", fmt.Errorf("bad link url %q: no host", raw)
		}
	case "mailto", "file":
		return u.String(), nil
	default:
		return "", fmt.Errorf("bad link url %q: unsupported scheme %q", raw, u.Scheme)
	}

	host, port := u.Hostname(), u.Port()
	if strings.Contains(host, ":") {
		// IPv6 literal
		return u.String(), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("bad link url %q: host %q: %w", raw, host, err)
	}
	if port != "" {
		ascii += ":" + port
	}
	u.Host = ascii
	return u.String(), nil
}
