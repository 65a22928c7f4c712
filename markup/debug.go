package markup

import (
	"xmldisasm/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns readable tree of the document model showing how every child
// was classified. It is stored in debug report.
func (d *Document) String() string {
	if d == nil || d.Root == nil {
		return "<nil Document>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.Line(0, "Document %q", d.Name)
	tw.element(1, d.Root)
	return tw.String()
}

func (tw treeWriter) element(depth int, el *Element) {
	tw.Line(depth, "Element <%s> attrs=%d fields=%d", el.Tag, len(el.Attrs), len(el.fields))
	for _, a := range el.Attrs {
		tw.Value(depth+1, "@"+a.Key, a.Value)
	}
	if len(el.Text.Text) > 0 {
		tw.scalar(depth+1, "#text", el.Text)
	}
	for _, f := range el.fields {
		tw.value(depth+1, f.Name, f.Value)
	}
}

func (tw treeWriter) scalar(depth int, name string, s Scalar) {
	if s.CData {
		name += " (cdata)"
	}
	tw.Value(depth, name, s.Text)
}

func (tw treeWriter) value(depth int, name string, v Value) {
	switch v := v.(type) {
	case Scalar:
		tw.scalar(depth, name, v)
	case *Element:
		tw.element(depth, v)
	case Repeated:
		tw.Line(depth, "Repeated <%s> count=%d", name, len(v))
		for _, m := range v {
			tw.value(depth+1, name, m)
		}
	}
}
