// Package disassemble splits XML document into a directory of fragments: one
// file holding all leaf children of the root and one file per nested element.
package disassemble

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"xmldisasm/common"
	"xmldisasm/markup"
	"xmldisasm/uniqueid"
)

// Options controls disassembly of a single document and a batch.
type Options struct {
	// UniqueIDFields is ordered list of candidate fields used to name nested
	// fragments.
	UniqueIDFields []string
	// Indent is number of spaces used to indent fragments.
	Indent        int
	Transliterate bool

	PrePurge  bool
	PostPurge bool
	Staging   bool

	// Inspect when set is called for every successfully parsed document.
	Inspect func(doc *markup.Document)
}

// Fragment is a single file to be written, Dir is relative to the output
// directory and empty for leaf fragment.
type Fragment struct {
	Dir  string
	Name string
	Data []byte
}

// Plan is a complete set of fragments for a document, nothing is written
// until plan is successfully prepared.
type Plan struct {
	Fragments []Fragment
	Leaves    int
	Nested    int
	// Warnings holds *common.DuplicateIdentifierWarning for every renamed
	// fragment.
	Warnings []error
}

type leaf struct {
	line  string
	tag   string
	value markup.Scalar
}

type planner struct {
	plan     *Plan
	header   markup.Header
	indent   int
	resolver *uniqueid.Resolver
	// folded names already taken under each tag directory
	taken map[string]map[string]struct{}
	log   *zap.Logger
}

// Prepare classifies children of the document root and serializes all
// fragments. Documents without nested elements are refused with
// common.ErrNoNestedContent.
func Prepare(doc *markup.Document, baseName string, opts Options, log *zap.Logger) (*Plan, error) {
	p := &planner{
		plan:     &Plan{},
		header:   doc.Header(),
		indent:   opts.Indent,
		resolver: uniqueid.NewResolver(opts.UniqueIDFields, opts.Transliterate, log),
		taken:    make(map[string]map[string]struct{}),
		log:      log,
	}

	var leaves []leaf
	addLeaf := func(tag string, s markup.Scalar) error {
		line, err := markup.Line(tag, s)
		if err != nil {
			return fmt.Errorf("unable to serialize <%s>: %w", tag, err)
		}
		leaves = append(leaves, leaf{line: line, tag: tag, value: s})
		return nil
	}

	for _, f := range doc.Root.Fields() {
		switch v := f.Value.(type) {
		case markup.Scalar:
			if err := addLeaf(f.Name, v); err != nil {
				return nil, err
			}
		case *markup.Element:
			if err := p.nested(f.Name, v, 1); err != nil {
				return nil, err
			}
		case markup.Repeated:
			for i, m := range v {
				var err error
				switch m := m.(type) {
				case markup.Scalar:
					err = addLeaf(f.Name, m)
				case *markup.Element:
					err = p.nested(f.Name, m, i+1)
				}
				if err != nil {
					return nil, err
				}
			}
		}
	}

	if p.plan.Nested == 0 {
		return nil, fmt.Errorf("%w in %s (%d leaf elements)", common.ErrNoNestedContent, doc.Name, len(leaves))
	}
	if len(leaves) > 0 || len(doc.Root.Text.Text) > 0 {
		if err := p.leaves(baseName, doc.Root.Text, leaves); err != nil {
			return nil, err
		}
	}
	return p.plan, nil
}

// leaves produces single fragment with character data of the root followed
// by all leaf children sorted by their serialized form.
func (p *planner) leaves(baseName string, text markup.Scalar, leaves []leaf) error {
	slices.SortStableFunc(leaves, func(a, b leaf) int {
		return strings.Compare(a.line, b.line)
	})

	doc, root := p.header.NewFragment()
	text.AppendTo(root)
	for _, l := range leaves {
		root.AddChild(l.value.Etree(l.tag))
	}
	data, err := markup.Write(doc, p.indent)
	if err != nil {
		return fmt.Errorf("unable to serialize leaf elements: %w", err)
	}
	p.plan.Fragments = append(p.plan.Fragments, Fragment{Name: baseName + ".xml", Data: data})
	p.plan.Leaves = len(leaves)
	return nil
}

func (p *planner) nested(tag string, el *markup.Element, position int) error {
	dir, err := uniqueid.Sanitize(tag)
	if err != nil {
		return err
	}
	id, _ := p.resolver.Name(el, position)
	id = p.claim(tag, id)

	doc, root := p.header.NewFragment()
	root.AddChild(el.Etree())
	data, err := markup.Write(doc, p.indent)
	if err != nil {
		return fmt.Errorf("unable to serialize <%s> %q: %w", tag, id, err)
	}
	p.plan.Fragments = append(p.plan.Fragments, Fragment{Dir: dir, Name: id + "." + dir + "-meta.xml", Data: data})
	p.plan.Nested++
	return nil
}

// claim makes sure identifier is not used twice under the same tag. Names are
// compared case insensitively, so result is usable on any file system.
func (p *planner) claim(tag, id string) string {
	taken, ok := p.taken[tag]
	if !ok {
		taken = make(map[string]struct{})
		p.taken[tag] = taken
	}
	if _, dup := taken[common.FoldName(id)]; !dup {
		taken[common.FoldName(id)] = struct{}{}
		return id
	}

	renamed := id
	for n := 2; ; n++ {
		renamed = fmt.Sprintf("%s_%d", id, n)
		if _, dup := taken[common.FoldName(renamed)]; !dup {
			break
		}
	}
	taken[common.FoldName(renamed)] = struct{}{}

	w := &common.DuplicateIdentifierWarning{Tag: tag, ID: id, Renamed: renamed}
	p.plan.Warnings = append(p.plan.Warnings, w)
	p.log.Warn("Duplicate unique identifier", zap.String("tag", tag), zap.String("id", id), zap.String("renamed", renamed))
	return renamed
}
