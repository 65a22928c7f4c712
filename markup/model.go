// Package markup keeps in-memory representation of a parsed XML document
// suitable for disassembly.
//
// Every child of an element is classified when document is parsed. Children
// sharing the same tag are collected into a single repeated field, so element
// children form an ordered mapping from tag name to one of three shapes:
// scalar value, single nested element or repeated field.
package markup

import (
	"github.com/beevik/etree"
)

// Value is one of Scalar, *Element or Repeated.
type Value interface {
	isValue()
}

// Scalar is a leaf value - text of an element without attributes and child
// elements.
type Scalar struct {
	Text  string
	CData bool
}

// Repeated holds all children sharing the same tag in document order. Members
// are either Scalar or *Element.
type Repeated []Value

// Attr is a single attribute, Key includes namespace prefix if any.
type Attr struct {
	Key   string
	Value string
}

// Field is a named child value.
type Field struct {
	Name  string
	Value Value
}

// Element is a node which cannot be represented as Scalar: it has child
// elements, attributes or both.
type Element struct {
	Tag   string
	Attrs []Attr
	// Text is non-whitespace character data of the element itself.
	Text Scalar

	fields []Field
	index  map[string]int
}

func (Scalar) isValue()   {}
func (Repeated) isValue() {}
func (*Element) isValue() {}

// NewElement returns empty element with given tag.
func NewElement(tag string, attrs ...Attr) *Element {
	return &Element{Tag: tag, Attrs: attrs}
}

// Fields returns element children in order of first appearance of each tag.
func (e *Element) Fields() []Field {
	return e.fields
}

// Lookup returns child value by tag name.
func (e *Element) Lookup(name string) (Value, bool) {
	if i, ok := e.index[name]; ok {
		return e.fields[i].Value, true
	}
	return nil, false
}

// Add appends child value. When child with the same name already exists both
// are collected into Repeated.
func (e *Element) Add(name string, v Value) {
	if e.index == nil {
		e.index = make(map[string]int)
	}
	i, ok := e.index[name]
	if !ok {
		e.index[name] = len(e.fields)
		e.fields = append(e.fields, Field{Name: name, Value: v})
		return
	}
	switch prev := e.fields[i].Value.(type) {
	case Repeated:
		e.fields[i].Value = append(prev, v)
	default:
		e.fields[i].Value = Repeated{prev, v}
	}
}

// Document is a parsed XML document. XML declaration is not kept, fragments
// always get fixed one.
type Document struct {
	Name string
	Root *Element
}

// Header returns root metadata of the document.
func (d *Document) Header() Header {
	return Header{Tag: d.Root.Tag, Attrs: d.Root.Attrs}
}

// Etree converts element back into etree form. Children are written grouped
// by tag in field order.
func (e *Element) Etree() *etree.Element {
	out := etree.NewElement(e.Tag)
	for _, a := range e.Attrs {
		out.CreateAttr(a.Key, a.Value)
	}
	if len(e.Text.Text) > 0 {
		e.Text.AppendTo(out)
	}
	for _, f := range e.fields {
		appendValue(out, f.Name, f.Value)
	}
	return out
}

func appendValue(parent *etree.Element, name string, v Value) {
	switch v := v.(type) {
	case Scalar:
		parent.AddChild(v.Etree(name))
	case *Element:
		parent.AddChild(v.Etree())
	case Repeated:
		for _, m := range v {
			appendValue(parent, name, m)
		}
	}
}

// Etree returns leaf element with given tag holding scalar value.
func (s Scalar) Etree(tag string) *etree.Element {
	el := etree.NewElement(tag)
	s.AppendTo(el)
	return el
}

// AppendTo adds scalar value as character data of el, CDATA is kept.
func (s Scalar) AppendTo(el *etree.Element) {
	if len(s.Text) == 0 {
		return
	}
	if s.CData {
		el.AddChild(etree.NewCData(s.Text))
		return
	}
	el.AddChild(etree.NewText(s.Text))
}
