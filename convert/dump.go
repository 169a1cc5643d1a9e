package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"docxml/describe"
	"docxml/state"
	"docxml/xmltree"
)

// Dump builds single description and prints element tree of every produced
// part instead of writing them.
func Dump(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("dump")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	ok, enc, err := isDescriptionFile(src)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}
	if !ok {
		return fmt.Errorf("input was not recognized as document description (%s)", src)
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(selectReader(f, enc))
	if err != nil {
		return fmt.Errorf("unable to read description (%s): %w", src, err)
	}
	d, err := describe.Load(src, data)
	if err != nil {
		return err
	}
	opts, err := buildOptions(env, os.DirFS(filepath.Dir(src)))
	if err != nil {
		return err
	}
	res, err := describe.Build(d, opts, log)
	if err != nil {
		return fmt.Errorf("unable to build document (%s): %w", src, err)
	}

	out := os.Stdout
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		if out, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}
	if _, err := io.WriteString(out, dumpResult(res)); err != nil {
		return fmt.Errorf("unable to write dump: %w", err)
	}
	return nil
}

func dumpResult(res *describe.Result) string {
	var b strings.Builder
	section := func(name, body string) {
		fmt.Fprintf(&b, "== %s ==\n%s", name, body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteByte('\n')
		}
	}

	section("document", xmltree.Dump(res.Document))
	if res.Numbering != nil {
		section("numbering", xmltree.Dump(res.Numbering))
	}
	section("relationships", xmltree.Dump(res.Relationships))
	if res.Media.Len() > 0 {
		section("media", res.Media.String())
	}
	if len(res.Bookmarks) > 0 {
		section("bookmarks", strings.Join(res.Bookmarks, "\n"))
	}
	return b.String()
}
