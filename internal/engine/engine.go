package engine

import (
	"io"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NodeType identifies the JSON type of a decoded Node.
type NodeType int

const (
	NodeObject NodeType = iota
	NodeArray
	NodeString
	NodeNumber
	NodeBool
	NodeNull
)

var nodeTypeNames = [...]string{"object", "array", "string", "number", "boolean", "null"}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "NodeType(" + strconv.Itoa(int(t)) + ")"
	}
	return nodeTypeNames[t]
}

// Members holds object members in document order. A repeated key keeps its
// first position and its last value.
type Members = orderedmap.OrderedMap[string, *Node]

// Node is one decoded JSON value. Numbers keep their literal text so callers
// choose integer or float conversion.
type Node struct {
	Type    NodeType
	Path    string // JSON Pointer; "" for the document root
	Text    string // string contents or number literal
	Bool    bool
	Members *Members
	Items   []*Node
}

// Member returns the member named key.
func (n *Node) Member(key string) (*Node, bool) {
	if n.Members == nil {
		return nil, false
	}
	return n.Members.Get(key)
}

// Keys returns member names in document order.
func (n *Node) Keys() []string {
	if n.Members == nil {
		return nil
	}
	return n.Members.Keys()
}

// Decode reads exactly one value from src. Anything after it other than
// io.EOF is reported as ErrTrailingData.
func Decode(src TokenSource) (*Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	n, err := decodeValue(src, tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return n, nil
}

func decodeValue(src TokenSource, tok Token, path string) (*Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, path)
	case KindBeginArray:
		return decodeArray(src, path)
	case KindString:
		return &Node{Type: NodeString, Path: path, Text: tok.String}, nil
	case KindNumber:
		return &Node{Type: NodeNumber, Path: path, Text: tok.Number}, nil
	case KindBool:
		return &Node{Type: NodeBool, Path: path, Bool: tok.Bool}, nil
	case KindNull:
		return &Node{Type: NodeNull, Path: path}, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, path string) (*Node, error) {
	n := &Node{Type: NodeObject, Path: path, Members: orderedmap.NewOrderedMap[string, *Node]()}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eof(err)
		}
		if tok.Kind == KindEndObject {
			return n, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, eof(err)
		}
		v, err := decodeValue(src, vt, joinJSONPointer(path, tok.String))
		if err != nil {
			return nil, err
		}
		n.Members.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource, path string) (*Node, error) {
	n := &Node{Type: NodeArray, Path: path, Items: []*Node{}}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eof(err)
		}
		if tok.Kind == KindEndArray {
			return n, nil
		}
		v, err := decodeValue(src, tok, joinJSONPointer(path, strconv.Itoa(len(n.Items))))
		if err != nil {
			return nil, err
		}
		n.Items = append(n.Items, v)
	}
}

func eof(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
