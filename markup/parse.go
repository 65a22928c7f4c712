package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ParseError is returned when input is not well formed XML or has no root
// element.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads XML data into etree document. Input encoding is detected from
// XML declaration, CDATA sections are kept as is.
func Load(name string, data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		PreserveCData: true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Path: name, Err: errors.New("document has no root element")}
	}
	return doc, nil
}

// Parse builds document model from XML data. Comments and processing
// instructions are dropped.
func Parse(name string, data []byte) (*Document, error) {
	doc, err := Load(name, data)
	if err != nil {
		return nil, err
	}
	return &Document{Name: name, Root: FromEtree(doc.Root())}, nil
}

// FromEtree converts etree element into model element.
func FromEtree(el *etree.Element) *Element {
	e := &Element{Tag: el.FullTag()}
	for _, a := range el.Attr {
		e.Attrs = append(e.Attrs, Attr{Key: a.FullKey(), Value: a.Value})
	}

	var text strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			e.Add(t.FullTag(), valueOf(t))
		case *etree.CharData:
			if t.IsWhitespace() {
				continue
			}
			text.WriteString(t.Data)
			e.Text.CData = e.Text.CData || t.IsCData()
		}
	}
	e.Text.Text = text.String()
	if len(e.fields) > 0 && !e.Text.CData {
		// mixed content, surrounding whitespace is indentation
		e.Text.Text = strings.TrimSpace(e.Text.Text)
	}
	return e
}

func valueOf(el *etree.Element) Value {
	if len(el.Attr) > 0 || len(el.ChildElements()) > 0 {
		return FromEtree(el)
	}
	var s Scalar
	var text strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			text.WriteString(cd.Data)
			s.CData = s.CData || cd.IsCData()
		}
	}
	s.Text = text.String()
	return s
}
