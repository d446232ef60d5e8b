package jsongram

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/jsongram/internal/ir"
)

// Kind identifies a shape variant.
type Kind = ir.Kind

const (
	KindString  = ir.KindString
	KindInteger = ir.KindInteger
	KindNumber  = ir.KindNumber
	KindBoolean = ir.KindBoolean
	KindNull    = ir.KindNull
	KindArray   = ir.KindArray
	KindObject  = ir.KindObject
)

// Shape is the serializable form of an inferred shape. It is also Decodable:
// compiling a Shape yields the grammar of the shape it describes, and
// decoding JSON through it checks the document against it.
type Shape struct {
	Kind    Kind         `json:"kind" yaml:"kind"`
	Element *Shape       `json:"element,omitempty" yaml:"element,omitempty"`
	Fields  []ShapeField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ShapeField is one object member. Required fields precede optional ones
// when a Shape is produced by Infer.
type ShapeField struct {
	Name     string `json:"name" yaml:"name"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Shape    `yaml:",inline"`
}

// ParseShape reads a Shape document. YAML and JSON are both accepted.
func ParseShape(data []byte) (*Shape, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsongram: parse shape: %w", err)
	}
	if doc.Kind == 0 {
		return nil, errors.New("jsongram: empty shape document")
	}
	// an unquoted `kind: null` is a YAML null, not the string
	quoteNullKinds(&doc)
	norm, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("jsongram: parse shape: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(norm))
	dec.KnownFields(true)
	var s Shape
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("jsongram: empty shape document")
		}
		return nil, fmt.Errorf("jsongram: parse shape: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func quoteNullKinds(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if v := n.Content[i+1]; n.Content[i].Value == "kind" && v.ShortTag() == "!!null" {
				v.Tag, v.Value, v.Style = "!!str", "null", yaml.DoubleQuotedStyle
			}
		}
	}
	for _, c := range n.Content {
		quoteNullKinds(c)
	}
}

// Validate checks that s describes something Compile can render.
func (s *Shape) Validate() error { return s.validate("") }

func (s *Shape) validate(path string) error {
	at := path
	if at == "" {
		at = "/"
	}
	switch s.Kind {
	case KindArray:
		if len(s.Fields) > 0 {
			return fmt.Errorf("jsongram: shape %s: array with fields", at)
		}
		if s.Element == nil {
			return fmt.Errorf("jsongram: shape %s: array without element", at)
		}
		return s.Element.validate(path + "/0")
	case KindObject:
		if s.Element != nil {
			return fmt.Errorf("jsongram: shape %s: object with element", at)
		}
		if len(s.Fields) == 0 {
			return fmt.Errorf("jsongram: shape %s: object without fields", at)
		}
		seen := make(map[string]struct{}, len(s.Fields))
		for i := range s.Fields {
			f := &s.Fields[i]
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("jsongram: shape %s: duplicate field %q", at, f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := f.Shape.validate(path + "/" + escapePointer(f.Name)); err != nil {
				return err
			}
		}
		return nil
	default:
		if s.Element != nil || len(s.Fields) > 0 {
			return fmt.Errorf("jsongram: shape %s: %s cannot have children", at, s.Kind)
		}
		return nil
	}
}

// Decode implements Decodable.
func (s *Shape) Decode(dec Decoder) error {
	switch s.Kind {
	case KindObject:
		k, err := dec.Keyed()
		if err != nil {
			return err
		}
		for i := range s.Fields {
			f := &s.Fields[i]
			if f.Optional {
				_, err = k.OptionalNested(f.Name, &f.Shape)
			} else {
				err = k.Nested(f.Name, &f.Shape)
			}
			if err != nil {
				return err
			}
		}
		return nil
	case KindArray:
		it, err := dec.Indexed()
		if err != nil {
			return err
		}
		if s.Element == nil {
			return nil
		}
		for it.More() {
			if err := it.Nested(s.Element); err != nil {
				return err
			}
		}
		return nil
	}
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	switch s.Kind {
	case KindString:
		_, err = vd.String()
	case KindInteger:
		_, err = vd.Int()
	case KindNumber:
		_, err = vd.Float()
	case KindBoolean:
		_, err = vd.Bool()
	case KindNull:
		vd.IsNull()
	default:
		err = fmt.Errorf("jsongram: unknown kind %s", s.Kind)
	}
	return err
}

func exportShape(a *ir.Arena, id ir.NodeID) *Shape {
	n := a.Node(id)
	s := &Shape{Kind: n.Kind}
	switch n.Kind {
	case ir.KindArray:
		s.Element = exportShape(a, n.Element)
	case ir.KindObject:
		ir.Each(n.Required, func(name string, f ir.NodeID) {
			s.Fields = append(s.Fields, ShapeField{Name: name, Shape: *exportShape(a, f)})
		})
		ir.Each(n.Optional, func(name string, f ir.NodeID) {
			s.Fields = append(s.Fields, ShapeField{Name: name, Optional: true, Shape: *exportShape(a, f)})
		})
	}
	return s
}
