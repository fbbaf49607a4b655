package notes

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"gopkg.in/yaml.v3"
)

// TreeDecoder turns raw document bytes into a Node tree.
type TreeDecoder func(content []byte) (Node, error)

const maxDepth = 256

var errTooDeep = errors.New("document nesting too deep")

var utf8BOM = []byte("\xef\xbb\xbf")

// DecoderForFilename picks the tree syntax from the file extension. XML is the default.
func DecoderForFilename(name string) TreeDecoder {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return DecodeJSON
	case ".yaml", ".yml":
		return DecodeYAML
	default:
		return DecodeXML
	}
}

// DecodeXML maps elements the way xml2js does: a text-only element becomes a
// scalar, every child element is collected into a sequence under its name,
// attributes go under "$" and mixed text under "_". The root element is the
// single field of the returned object.
func DecodeXML(content []byte) (Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	dec.CharsetReader = charsetReader

	var (
		stack []*xmlFrame
		root  *Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Node{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return Node{}, errors.New("xml: more than one root element")
			}
			if len(stack) >= maxDepth {
				return Node{}, errTooDeep
			}
			f := &xmlFrame{name: t.Name.Local}
			if len(t.Attr) > 0 {
				attrs := make([]Field, 0, len(t.Attr))
				for _, a := range t.Attr {
					attrs = append(attrs, Field{Name: a.Name.Local, Value: Scalar(a.Value)})
				}
				f.fields = append(f.fields, Field{Name: attrField, Value: Object(attrs...)})
			}
			stack = append(stack, f)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if len(bytes.TrimSpace(t)) > 0 {
				return Node{}, errors.New("xml: text outside the root element")
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node := f.node()
			if len(stack) == 0 {
				n := Object(Field{Name: f.name, Value: node})
				root = &n
				continue
			}
			stack[len(stack)-1].addChild(f.name, node)
		}
	}
	if root == nil {
		return Node{}, errors.New("xml: no root element")
	}
	return *root, nil
}

type xmlFrame struct {
	name   string
	fields []Field
	text   strings.Builder
}

func (f *xmlFrame) node() Node {
	if len(f.fields) == 0 {
		return Scalar(f.text.String())
	}
	if text := strings.TrimSpace(f.text.String()); text != "" {
		f.fields = append(f.fields, Field{Name: textField, Value: Scalar(text)})
	}
	return Object(f.fields...)
}

func (f *xmlFrame) addChild(name string, child Node) {
	for i := range f.fields {
		if f.fields[i].Name == name && name != attrField {
			f.fields[i].Value.Items = append(f.fields[i].Value.Items, child)
			return
		}
	}
	f.fields = append(f.fields, Field{Name: name, Value: Sequence(child)})
}

// charsetReader lets ISO-8859-1 and other IANA-registered encodings through;
// encoding/xml only understands UTF-8 on its own.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("xml: unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// DecodeJSON walks the token stream so object fields keep document order.
// Numbers keep their literal text.
func DecodeJSON(content []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	dec.UseNumber()
	n, err := decodeJSONValue(dec, 0)
	if err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, errors.New("json: unexpected data after the top-level value")
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder, depth int) (Node, error) {
	if depth > maxDepth {
		return Node{}, errTooDeep
	}
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			fields := make([]Field, 0)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Node{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Node{}, fmt.Errorf("json: unexpected object key %v", kt)
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return Node{}, err
				}
				fields = append(fields, Field{Name: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}
			return Object(fields...), nil
		case '[':
			items := make([]Node, 0)
			for dec.More() {
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return Node{}, err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}
			return Sequence(items...), nil
		}
		return Node{}, fmt.Errorf("json: unexpected delimiter %v", v)
	case string:
		return Scalar(v), nil
	case json.Number:
		return Scalar(v.String()), nil
	case bool:
		return Scalar(strconv.FormatBool(v)), nil
	case nil:
		return Scalar(""), nil
	}
	return Node{}, fmt.Errorf("json: unexpected token %v", tok)
}

// DecodeYAML converts the first document of a YAML stream. An empty stream is an empty tree.
func DecodeYAML(content []byte) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(bytes.TrimPrefix(content, utf8BOM), &doc); err != nil {
		return Node{}, err
	}
	if doc.Kind == 0 {
		return Object(), nil
	}
	return fromYAML(&doc, 0)
}

func fromYAML(n *yaml.Node, depth int) (Node, error) {
	if depth > maxDepth {
		return Node{}, errTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Object(), nil
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := fromYAML(n.Content[i+1], depth+1)
			if err != nil {
				return Node{}, err
			}
			fields = append(fields, Field{Name: n.Content[i].Value, Value: val})
		}
		return Object(fields...), nil
	case yaml.SequenceNode:
		items := make([]Node, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAML(c, depth+1)
			if err != nil {
				return Node{}, err
			}
			items = append(items, val)
		}
		return Sequence(items...), nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return Scalar(""), nil
		}
		return Scalar(n.Value), nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return Node{}, errors.New("yaml: dangling alias")
		}
		return fromYAML(n.Alias, depth+1)
	}
	return Node{}, fmt.Errorf("yaml: unsupported node kind %d", n.Kind)
}
