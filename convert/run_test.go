package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"docxml/config"
	"docxml/describe"
	"docxml/state"
)

const sampleYAML = `title: Report
paragraphs:
  - text: Overview
    heading: 1
  - items:
      - run: {text: World, bold: true}
  - text: Point
    bullet: 0
`

const imageYAML = `title: Pictures
images:
  - {name: logo, path: images/logo.png}
paragraphs:
  - items:
      - image: logo
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func writeZip(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	zipFile, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for name, data := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Failed to write %s to zip: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize zip file: %v", err)
	}
	if err := zipFile.Close(); err != nil {
		t.Fatalf("Failed to close zip file: %v", err)
	}
}

// readPart parses written part.
func readPart(t *testing.T, path string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		t.Fatalf("part %s is not readable: %v", path, err)
	}
	return doc
}

func readerForEncoding(t *testing.T, data []byte, enc srcEncoding) *bytes.Reader {
	t.Helper()
	var encoded []byte
	switch enc {
	case encUnknown:
		encoded = data
	case encUTF8:
		encoded = append([]byte{0xEF, 0xBB, 0xBF}, data...)
	case encUTF16BigEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder())
	case encUTF16LittleEndian:
		encoded = encodeWithTransformer(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())
	case encUTF32BigEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder())
	case encUTF32LittleEndian:
		encoded = encodeWithTransformer(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder())
	default:
		t.Fatalf("unsupported encoding: %v", enc)
	}
	return bytes.NewReader(encoded)
}

func encodeWithTransformer(t *testing.T, data []byte, encoder transform.Transformer) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}

func buildSample(t *testing.T, text string, opts describe.Options) *describe.Result {
	t.Helper()
	d, err := describe.Load("sample.yaml", []byte(text))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	res, err := describe.Build(d, opts, testLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return res
}

// TestProcess_NonExistentPath tests process with non-existent path
func TestProcess_NonExistentPath(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	err := process(ctx, "/nonexistent/path/file.yaml", t.TempDir(), testLogger(t))
	if err == nil {
		t.Fatal("Expected error for non-existent path, got nil")
	}
	expectedMsg := "input source was not found"
	if !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("Expected error containing '%s', got: %v", expectedMsg, err)
	}
}

// TestProcess_CancelledContext tests process with cancelled context
func TestProcess_CancelledContext(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	tmpDir := t.TempDir()
	err := process(cancelCtx, tmpDir, tmpDir, testLogger(t))
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

// TestProcess_SingleFile tests that all parts are written for a single
// description
func TestProcess_SingleFile(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	testFile := filepath.Join(srcDir, "report.yaml")
	writeFile(t, testFile, []byte(sampleYAML))

	if err := process(ctx, testFile, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	parts := filepath.Join(dstDir, "report", "word")
	doc := readPart(t, filepath.Join(parts, "document.xml"))
	paras := doc.FindElements("/document/body/p")
	if len(paras) != 3 {
		t.Fatalf("paragraphs = %d, want 3", len(paras))
	}
	if got := paras[1].FindElement("r/t"); got == nil || got.Text() != "World" {
		t.Errorf("second paragraph text = %v, want World", got)
	}
	if doc.FindElement("/document/body/sectPr/pgSz") == nil {
		t.Error("section properties are missing")
	}

	numbering := readPart(t, filepath.Join(parts, "numbering.xml"))
	if len(numbering.FindElements("/numbering/num")) == 0 {
		t.Error("numbering part has no num")
	}

	rels := readPart(t, filepath.Join(parts, "_rels", "document.xml.rels"))
	rel := rels.FindElement("/Relationships/Relationship")
	if rel == nil || rel.SelectAttrValue("Target", "") != "numbering.xml" {
		t.Errorf("numbering relationship is missing")
	}
}

// TestProcess_WithoutNumbering tests that numbering part is written only
// when used
func TestProcess_WithoutNumbering(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	testFile := filepath.Join(srcDir, "plain.toml")
	writeFile(t, testFile, []byte("title = \"Plain\"\n\n[[paragraphs]]\ntext = \"Hello\"\n"))

	if err := process(ctx, testFile, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	parts := filepath.Join(dstDir, "plain", "word")
	if _, err := os.Stat(filepath.Join(parts, "numbering.xml")); !os.IsNotExist(err) {
		t.Errorf("numbering.xml should not exist, stat error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(parts, "document.xml")); err != nil {
		t.Errorf("document.xml is missing: %v", err)
	}
}

// TestProcess_Image tests image resolution next to description
func TestProcess_Image(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	testFile := filepath.Join(srcDir, "pictures.yaml")
	writeFile(t, testFile, []byte(imageYAML))
	writeFile(t, filepath.Join(srcDir, "images", "logo.png"), pngData(t))

	if err := process(ctx, testFile, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	parts := filepath.Join(dstDir, "pictures", "word")
	rels := readPart(t, filepath.Join(parts, "_rels", "document.xml.rels"))
	rel := rels.FindElement("/Relationships/Relationship")
	if rel == nil {
		t.Fatal("image relationship is missing")
	}
	target := rel.SelectAttrValue("Target", "")
	if !strings.HasPrefix(target, "media/") {
		t.Errorf("target = %q, want media/ prefix", target)
	}
	if _, err := os.Stat(filepath.Join(parts, filepath.FromSlash(target))); err != nil {
		t.Errorf("media file is missing: %v", err)
	}
}

// TestProcess_Directory tests that source structure is kept on output
func TestProcess_Directory(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a", "one.yaml"), []byte(sampleYAML))
	writeFile(t, filepath.Join(srcDir, "b", "two.yml"), []byte(sampleYAML))
	writeFile(t, filepath.Join(srcDir, "notes.txt"), []byte("ignored"))

	if err := process(ctx, srcDir, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	for _, p := range []string{
		filepath.Join(dstDir, "a", "one", "word", "document.xml"),
		filepath.Join(dstDir, "b", "two", "word", "document.xml"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected output %s: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dstDir, "notes")); !os.IsNotExist(err) {
		t.Error("text file should not be processed")
	}
}

// TestProcess_DirectoryNoDirs tests flat output
func TestProcess_DirectoryNoDirs(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.NoDirs = true

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a", "one.yaml"), []byte(sampleYAML))

	if err := process(ctx, srcDir, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "one", "word", "document.xml")); err != nil {
		t.Errorf("expected flat output: %v", err)
	}
}

// TestProcess_DirectoryWithTail tests process with directory path that has a tail
func TestProcess_DirectoryWithTail(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "subdir")
	if err := os.MkdirAll(invalidPath, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	err := process(ctx, filepath.Join(invalidPath, "nonexistent.yaml"), tmpDir, testLogger(t))
	if err == nil {
		t.Fatal("Expected error for directory with tail, got nil")
	}
}

// TestProcess_ArchiveWithPath tests that only descriptions under requested
// path are processed and images are resolved inside archive
func TestProcess_ArchiveWithPath(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	zipPath := filepath.Join(srcDir, "docs.zip")
	writeZip(t, zipPath, map[string][]byte{
		"book/pictures.yaml":    []byte(imageYAML),
		"book/images/logo.png":  pngData(t),
		"other/report.yaml":     []byte(sampleYAML),
		"book/readme.txt":       []byte("ignored"),
		"book/nested/plain.yml": []byte("paragraphs:\n  - text: nested\n"),
	})

	if err := process(ctx, filepath.Join(zipPath, "book"), dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dstDir, "book", "pictures", "word", "media")); err != nil {
		t.Errorf("image from archive was not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "book", "nested", "plain", "word", "document.xml")); err != nil {
		t.Errorf("nested description was not processed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "other")); !os.IsNotExist(err) {
		t.Error("description outside of requested path should not be processed")
	}
}

// TestProcess_ArchiveInDirectory tests archive found while walking directory
func TestProcess_ArchiveInDirectory(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeZip(t, filepath.Join(srcDir, "sub", "docs.zip"), map[string][]byte{
		"report.yaml": []byte(sampleYAML),
	})

	if err := process(ctx, srcDir, dstDir, testLogger(t)); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "sub", "report", "word", "document.xml")); err != nil {
		t.Errorf("description from archive was not processed: %v", err)
	}
}

// TestProcess_NotDescription tests that other files are rejected
func TestProcess_NotDescription(t *testing.T) {
	ctx, _ := setupTestEnv(t)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "notes.txt")
	writeFile(t, testFile, []byte("some text"))

	err := process(ctx, testFile, tmpDir, testLogger(t))
	if err == nil || !strings.Contains(err.Error(), "not recognized") {
		t.Errorf("process() error = %v, want not recognized", err)
	}
}

// TestProcessDescription_Overwrite tests that existing output is replaced
// only when requested
func TestProcessDescription_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	dstDir := t.TempDir()
	log := testLogger(t)

	run := func() error {
		return processDescription(ctx, strings.NewReader(sampleYAML), nil, "report.yaml", dstDir, log)
	}

	if err := run(); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	stale := filepath.Join(dstDir, "report", "word", "stale.xml")
	writeFile(t, stale, []byte("<stale/>"))

	err := run()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second run error = %v, want already exists", err)
	}

	env.Overwrite = true
	if err := run(); err != nil {
		t.Fatalf("overwrite run error = %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale part should be removed on overwrite")
	}
}

// TestProcessDescription_Encodings tests descriptions with byte order marks
func TestProcessDescription_Encodings(t *testing.T) {
	for _, enc := range []srcEncoding{encUTF8, encUTF16BigEndian, encUTF16LittleEndian, encUTF32BigEndian, encUTF32LittleEndian} {
		t.Run(enc.String(), func(t *testing.T) {
			ctx, _ := setupTestEnv(t)
			dstDir := t.TempDir()

			r := selectReader(readerForEncoding(t, []byte(sampleYAML), enc), enc)
			if err := processDescription(ctx, r, nil, "report.yaml", dstDir, testLogger(t)); err != nil {
				t.Fatalf("processDescription() error = %v", err)
			}
			doc := readPart(t, filepath.Join(dstDir, "report", "word", "document.xml"))
			if n := len(doc.FindElements("/document/body/p")); n != 3 {
				t.Errorf("paragraphs = %d, want 3", n)
			}
		})
	}
}

// TestProcessDescription_Invalid tests that nothing is written for broken
// description
func TestProcessDescription_Invalid(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	dstDir := t.TempDir()

	broken := "paragraphs:\n  - text: a\n    heading: 9\n  - items:\n      - {}\n"
	err := processDescription(ctx, strings.NewReader(broken), nil, "broken.yaml", dstDir, testLogger(t))
	if err == nil {
		t.Fatal("expected error for broken description")
	}
	for _, want := range []string{"paragraph 1", "paragraph 2"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dstDir, "broken")); !os.IsNotExist(err) {
		t.Error("output should not be created for broken description")
	}
}

// TestProcessDescription_Indent tests serializer indentation from
// configuration
func TestProcessDescription_Indent(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Document.Indent = 2
	dstDir := t.TempDir()

	if err := processDescription(ctx, strings.NewReader(sampleYAML), nil, "report.yaml", dstDir, testLogger(t)); err != nil {
		t.Fatalf("processDescription() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dstDir, "report", "word", "document.xml"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "\n  <w:body>") {
		t.Errorf("document is not indented:\n%s", data)
	}
}

// TestBuildOptions tests mapping of configuration onto build options
func TestBuildOptions(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Document.Page = config.PageConfig{Size: "letter", Landscape: true, Margin: 720, Header: 300, Footer: 400}
	env.Cfg.Document.Bookmarks.Prefix = "_Toc"
	env.Cfg.Document.Images.MaxWidth = 640

	opts, err := buildOptions(env, nil)
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	if opts.Page.Width != 15840 || opts.Page.Height != 12240 {
		t.Errorf("page = %dx%d, want 15840x12240", opts.Page.Width, opts.Page.Height)
	}
	if opts.Page.Top != 720 || opts.Page.Left != 720 || opts.Page.Header != 300 || opts.Page.Footer != 400 {
		t.Errorf("page margins = %+v", opts.Page)
	}
	if !opts.AutoBookmarks || opts.BookmarkPrefix != "_Toc" {
		t.Errorf("bookmarks = %v %q", opts.AutoBookmarks, opts.BookmarkPrefix)
	}
	if opts.Images.MaxWidth != 640 || opts.Images.DPI != 96 {
		t.Errorf("images = %+v", opts.Images)
	}

	env.Cfg.Document.Page.Size = "b5"
	if _, err := buildOptions(env, nil); err == nil {
		t.Error("expected error for unknown page size")
	}
}

// TestDumpResult tests dump of every built part
func TestDumpResult(t *testing.T) {
	_, env := setupTestEnv(t)

	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "images", "logo.png"), pngData(t))

	opts, err := buildOptions(env, os.DirFS(srcDir))
	if err != nil {
		t.Fatalf("buildOptions() error = %v", err)
	}
	res := buildSample(t, imageYAML+"  - text: Chapter\n    heading: 1\n  - text: Item\n    bullet: 0\n", opts)

	out := dumpResult(res)
	for _, want := range []string{"== document ==", "== numbering ==", "== relationships ==", "== media ==", "== bookmarks ==", "w:drawing", "_Refchapter"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
}
