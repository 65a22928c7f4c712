package markup

import (
	"github.com/beevik/etree"
)

// Declaration is XML declaration every produced document starts with.
const Declaration = `version="1.0" encoding="UTF-8"`

// Header carries root element name and attributes of the source document. It
// is reproduced verbatim on every fragment and on reassembled document.
type Header struct {
	Tag   string
	Attrs []Attr
}

// HeaderOf captures root metadata from etree element.
func HeaderOf(el *etree.Element) Header {
	h := Header{Tag: el.FullTag()}
	for _, a := range el.Attr {
		h.Attrs = append(h.Attrs, Attr{Key: a.FullKey(), Value: a.Value})
	}
	return h
}

// Element returns new empty root element, attributes are in original order.
func (h Header) Element() *etree.Element {
	el := etree.NewElement(h.Tag)
	for _, a := range h.Attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	return el
}

// NewFragment returns document with XML declaration and empty root element.
func (h Header) NewFragment() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", Declaration)
	root := h.Element()
	doc.SetRoot(root)
	return doc, root
}

func writeSettings() etree.WriteSettings {
	return etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
}

// Write serializes document indenting nested elements with requested number
// of spaces. Negative indent disables indentation.
func Write(doc *etree.Document, indent int) ([]byte, error) {
	doc.WriteSettings = writeSettings()
	if indent < 0 {
		doc.Indent(etree.NoIndent)
	} else {
		doc.Indent(indent)
	}
	return doc.WriteToBytes()
}

// Line returns serialized form of a single leaf child: <tag>value</tag>.
func Line(tag string, s Scalar) (string, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = writeSettings()
	doc.SetRoot(s.Etree(tag))
	return doc.WriteToString()
}
