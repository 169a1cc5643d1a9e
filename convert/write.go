package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docxml/describe"
	"docxml/xmltree"
)

// partsDir is where main document part and everything it refers to lives.
const partsDir = "word"

// prepareOutput makes sure parts could be written under outDir. Existing
// parts are removed only when overwrite is requested.
func prepareOutput(outDir string, overwrite bool, log *zap.Logger) error {
	parts := filepath.Join(outDir, partsDir)
	if _, err := os.Stat(parts); err == nil {
		if !overwrite {
			return fmt.Errorf("output already exists: %s", parts)
		}
		log.Warn("Overwriting existing output", zap.String("dir", parts))
		if err := os.RemoveAll(parts); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Join(parts, "_rels"), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

// writeParts writes document, numbering (when used), relationships and media
// files as loose parts.
func writeParts(res *describe.Result, outDir string, indent int) error {
	var opts []xmltree.Option
	if indent > 0 {
		opts = append(opts, xmltree.WithIndent(indent))
	}
	parts := filepath.Join(outDir, partsDir)

	type writerTo interface {
		WriteTo(w io.Writer, opts ...xmltree.Option) (int64, error)
	}
	write := func(name string, p writerTo) (err error) {
		f, err := os.Create(filepath.Join(parts, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		defer func() {
			multierr.AppendInto(&err, f.Close())
		}()
		_, err = p.WriteTo(f, opts...)
		return err
	}

	if err := write("document.xml", res.Document); err != nil {
		return err
	}
	if res.Numbering != nil {
		if err := write("numbering.xml", res.Numbering); err != nil {
			return err
		}
	}
	if err := write("_rels/document.xml.rels", res.Relationships); err != nil {
		return err
	}

	files := res.Media.Files()
	if len(files) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(parts, "media"), 0755); err != nil {
		return fmt.Errorf("unable to create media directory: %w", err)
	}
	for target, data := range files {
		if err := os.WriteFile(filepath.Join(parts, filepath.FromSlash(target)), data, 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", target, err)
		}
	}
	return nil
}
