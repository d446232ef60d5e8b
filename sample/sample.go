// Package sample turns an example JSON document into a Decodable whose
// shape is the document's shape: compiling it yields a grammar for documents
// that look like the example.
package sample

import (
	"bytes"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/reoring/jsongram"
)

// Value is a parsed sample document.
type Value struct {
	v *fastjson.Value
}

// Parse parses an example document.
func Parse(data []byte) (*Value, error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return &Value{v: v}, nil
}

// GrammarName implements jsongram.Named.
func (s *Value) GrammarName() string { return "sample" }

// Decode implements jsongram.Decodable. Object keys whose sample value is
// null are optional; arrays take their shape from the first element;
// integral numbers that fit in 64 bits are integers.
func (s *Value) Decode(dec jsongram.Decoder) error {
	switch s.v.Type() {
	case fastjson.TypeObject:
		return s.decodeObject(dec)
	case fastjson.TypeArray:
		return s.decodeArray(dec)
	}
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	switch s.v.Type() {
	case fastjson.TypeString:
		_, err = vd.String()
	case fastjson.TypeNumber:
		if isInteger(s.v) {
			_, err = vd.Int()
		} else {
			_, err = vd.Float()
		}
	case fastjson.TypeTrue, fastjson.TypeFalse:
		_, err = vd.Bool()
	case fastjson.TypeNull:
		vd.IsNull()
	default:
		err = fmt.Errorf("sample: unexpected value type %s", s.v.Type())
	}
	return err
}

func (s *Value) decodeObject(dec jsongram.Decoder) error {
	o, err := s.v.Object()
	if err != nil {
		return err
	}
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	var visitErr error
	o.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		child := &Value{v: v}
		if v.Type() == fastjson.TypeNull {
			_, visitErr = k.OptionalNested(string(key), child)
			return
		}
		visitErr = k.Nested(string(key), child)
	})
	return visitErr
}

func (s *Value) decodeArray(dec jsongram.Decoder) error {
	vs, err := s.v.Array()
	if err != nil {
		return err
	}
	it, err := dec.Indexed()
	if err != nil {
		return err
	}
	if len(vs) == 0 {
		return nil
	}
	first := &Value{v: vs[0]}
	for it.More() {
		if err := it.Nested(first); err != nil {
			return err
		}
	}
	return nil
}

func isInteger(v *fastjson.Value) bool {
	raw := v.MarshalTo(nil)
	if bytes.ContainsAny(raw, ".eE") {
		return false
	}
	_, err := v.Int64()
	return err == nil
}
