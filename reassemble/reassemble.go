// Package reassemble puts directory of fragments produced by disassembly back
// into a single XML document.
package reassemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"xmldisasm/common"
	"xmldisasm/markup"
)

// Options controls reassembly.
type Options struct {
	// Namespace when not empty is written as xmlns attribute of the root.
	Namespace string
	// Extension of the resulting file, "xml" when empty.
	Extension string
	Order     common.NameOrder
	Indent    int
}

// Result describes reassembled document.
type Result struct {
	Output    string
	Root      string
	Fragments int
	// Skipped lists fragments which could not be parsed.
	Skipped []string
}

type fragment struct {
	path string
	doc  *etree.Document
}

// Recompose reads all fragments under inputDir in deterministic order and
// writes single document next to inputDir, named after it.
func Recompose(ctx context.Context, fsys billy.Filesystem, inputDir string, opts Options, log *zap.Logger) (*Result, error) {
	fi, err := fsys.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("unable to access source: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", common.ErrNotADirectory, inputDir)
	}

	c := &collector{fsys: fsys, order: opts.Order, log: log, parsed: make(map[string]*etree.Document)}

	header, found, err := c.discoverRoot(ctx, inputDir)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w under %s", common.ErrNoRootElement, inputDir)
	}

	var fragments []fragment
	if err := c.collect(ctx, inputDir, &fragments); err != nil {
		return nil, err
	}

	doc, root := header.NewFragment()
	if len(opts.Namespace) > 0 {
		root.CreateAttr("xmlns", opts.Namespace)
	}
	for _, f := range fragments {
		appendInner(root, f.doc.Root())
	}

	data, err := markup.Write(doc, opts.Indent)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize reassembled document: %w", err)
	}

	ext := strings.TrimPrefix(opts.Extension, ".")
	if len(ext) == 0 {
		ext = "xml"
	}
	out := fsys.Join(filepath.Dir(inputDir), filepath.Base(inputDir)+"."+ext)
	if err := util.WriteFile(fsys, out, data, 0o644); err != nil {
		return nil, fmt.Errorf("unable to write %s: %w", out, err)
	}
	log.Debug("Document reassembled", zap.String("output", out), zap.Int("fragments", len(fragments)))

	return &Result{Output: out, Root: header.Tag, Fragments: len(fragments), Skipped: c.skipped}, nil
}

// appendInner moves content of the fragment root, but not the root itself,
// under dst. Whitespace between elements is dropped, document is indented
// again on output.
func appendInner(dst, src *etree.Element) {
	for _, tok := range slices.Clone(src.Child) {
		switch t := tok.(type) {
		case *etree.Element:
			dst.AddChild(t)
		case *etree.CharData:
			if t.IsWhitespace() {
				continue
			}
			if !t.IsCData() {
				t.Data = strings.TrimSpace(t.Data)
			}
			dst.AddChild(t)
		case *etree.Comment:
			dst.AddChild(t)
		}
	}
}

type collector struct {
	fsys    billy.Filesystem
	order   common.NameOrder
	log     *zap.Logger
	parsed  map[string]*etree.Document
	skipped []string
}

// entries returns sorted directory listing.
func (c *collector) entries(dir string) ([]os.FileInfo, error) {
	entries, err := c.fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %s: %w", dir, err)
	}
	slices.SortStableFunc(entries, func(a, b os.FileInfo) int {
		return Compare(a.Name(), b.Name(), c.order)
	})
	return entries, nil
}

// load parses fragment once, unparseable fragments are remembered and
// reported as skipped.
func (c *collector) load(path string) (*etree.Document, bool) {
	if doc, ok := c.parsed[path]; ok {
		return doc, doc != nil
	}
	data, err := util.ReadFile(c.fsys, path)
	if err == nil {
		var doc *etree.Document
		if doc, err = markup.Load(path, data); err == nil {
			c.parsed[path] = doc
			return doc, true
		}
	}
	c.log.Warn("Skipping fragment", zap.String("file", path), zap.Error(err))
	c.parsed[path] = nil
	c.skipped = append(c.skipped, path)
	return nil, false
}

func isFragment(fi os.FileInfo) bool {
	return fi.Mode().IsRegular() && strings.HasSuffix(fi.Name(), ".xml") && !strings.HasPrefix(fi.Name(), ".")
}

// discoverRoot looks for the first parseable fragment: files of a directory
// are checked before its subdirectories.
func (c *collector) discoverRoot(ctx context.Context, dir string) (markup.Header, bool, error) {
	entries, err := c.entries(dir)
	if err != nil {
		return markup.Header{}, false, err
	}
	for _, e := range entries {
		if !isFragment(e) {
			continue
		}
		if doc, ok := c.load(c.fsys.Join(dir, e.Name())); ok {
			return markup.HeaderOf(doc.Root()), true, nil
		}
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return markup.Header{}, false, err
		}
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if h, found, err := c.discoverRoot(ctx, c.fsys.Join(dir, e.Name())); err != nil || found {
			return h, found, err
		}
	}
	return markup.Header{}, false, nil
}

// collect flattens all fragments under dir in sorted order.
func (c *collector) collect(ctx context.Context, dir string, out *[]fragment) error {
	entries, err := c.entries(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := c.fsys.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if strings.HasPrefix(e.Name(), ".") {
				c.log.Debug("Skipping hidden directory", zap.String("dir", path))
				continue
			}
			if err := c.collect(ctx, path, out); err != nil {
				return err
			}
		case isFragment(e):
			if doc, ok := c.load(path); ok {
				*out = append(*out, fragment{path: path, doc: doc})
			}
		case strings.HasPrefix(e.Name(), ".") && strings.HasSuffix(e.Name(), ".xml"):
			c.log.Warn("Skipping hidden file", zap.String("file", path))
		default:
			c.log.Debug("Skipping", zap.String("path", path))
		}
	}
	return nil
}

// Compare orders fragment names by the part before the first dot ignoring
// case, full names break ties.
func Compare(a, b string, order common.NameOrder) int {
	ka, kb := common.FoldName(common.StemName(a)), common.FoldName(common.StemName(b))
	if ka != kb {
		if order == common.NameOrderNatural {
			switch {
			case natural.Less(ka, kb):
				return -1
			case natural.Less(kb, ka):
				return 1
			}
		}
		return strings.Compare(ka, kb)
	}
	return strings.Compare(a, b)
}
