package notes

// Kind tags the shape held by a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
	KindObject
)

// textField carries element text when an element also has attributes or children.
const textField = "_"

// attrField groups element attributes.
const attrField = "$"

// Field is a named child of an object node. Objects keep document order.
type Field struct {
	Name  string
	Value Node
}

// Node is the syntax-neutral tree every generic-tree document decodes into.
type Node struct {
	Kind   Kind
	Scalar string
	Items  []Node
	Fields []Field
}

func Scalar(s string) Node { return Node{Kind: KindScalar, Scalar: s} }

func Sequence(items ...Node) Node { return Node{Kind: KindSequence, Items: items} }

func Object(fields ...Field) Node { return Node{Kind: KindObject, Fields: fields} }

// Field returns the first field named name.
func (n Node) Field(name string) (Node, bool) {
	if n.Kind != KindObject {
		return Node{}, false
	}
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Node{}, false
}

// unwrap reduces a field to its scalar text. It accepts a bare scalar, a
// one-element sequence and an object carrying the text under "_".
func unwrap(n Node) (string, bool) {
	switch n.Kind {
	case KindScalar:
		return n.Scalar, true
	case KindSequence:
		if len(n.Items) == 1 {
			return unwrap(n.Items[0])
		}
	case KindObject:
		if text, ok := n.Field(textField); ok && text.Kind == KindScalar {
			return text.Scalar, true
		}
	}
	return "", false
}
