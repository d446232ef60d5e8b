package jsondec

import (
	"errors"
	"strconv"
	"strings"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/i18n"
	eng "github.com/reoring/jsongram/internal/engine"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func typeError(n *eng.Node, want string) error {
	it := jsongram.IssueAt(n.Path, jsongram.CodeInvalidType, "expected "+want+", got "+n.Type.String(), nil)
	it.Message = i18n.T(jsongram.CodeInvalidType, map[string]string{"expected": want})
	return jsongram.Issues{it}
}

func missing(path string) error {
	return jsongram.Issues{jsongram.IssueAt(path, jsongram.CodeRequired, "", nil)}
}

func asString(n *eng.Node) (string, error) {
	if n.Type != eng.NodeString {
		return "", typeError(n, "string")
	}
	return n.Text, nil
}

func asInt(n *eng.Node) (int64, error) {
	if n.Type != eng.NodeNumber {
		return 0, typeError(n, "integer")
	}
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, jsongram.Issues{jsongram.IssueAt(n.Path, jsongram.CodeInvalidValue, "integer overflows int64", err)}
	}
	if err != nil {
		return 0, typeError(n, "integer")
	}
	return v, nil
}

func asFloat(n *eng.Node) (float64, error) {
	if n.Type != eng.NodeNumber {
		return 0, typeError(n, "number")
	}
	v, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return 0, typeError(n, "number")
	}
	return v, nil
}

func asBool(n *eng.Node) (bool, error) {
	if n.Type != eng.NodeBool {
		return false, typeError(n, "boolean")
	}
	return n.Bool, nil
}

func nested(n *eng.Node, v jsongram.Decodable) error {
	return wrap(n, v.Decode(decoder{n: n}))
}

func optional[T any](n *eng.Node, ok bool, conv func(*eng.Node) (T, error)) (*T, error) {
	if !ok {
		return nil, nil
	}
	v, err := conv(n)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// decoder implements jsongram.Decoder over a decoded node.
type decoder struct{ n *eng.Node }

func (d decoder) Keyed() (jsongram.KeyedDecoder, error) {
	if d.n.Type != eng.NodeObject {
		return nil, typeError(d.n, "object")
	}
	return keyed(d), nil
}

func (d decoder) Indexed() (jsongram.IndexedDecoder, error) {
	if d.n.Type != eng.NodeArray {
		return nil, typeError(d.n, "array")
	}
	return &indexed{n: d.n}, nil
}

func (d decoder) Value() (jsongram.ValueDecoder, error) { return value(d), nil }

type keyed struct{ n *eng.Node }

func (k keyed) member(key string) (*eng.Node, error) {
	m, ok := k.n.Member(key)
	if !ok {
		return nil, missing(k.n.Path + "/" + pointerEscaper.Replace(key))
	}
	return m, nil
}

// present returns the member when it exists and is not null.
func (k keyed) present(key string) (*eng.Node, bool) {
	m, ok := k.n.Member(key)
	if !ok || m.Type == eng.NodeNull {
		return nil, false
	}
	return m, true
}

func (k keyed) Keys() []string { return k.n.Keys() }

func (k keyed) Contains(key string) bool {
	_, ok := k.n.Member(key)
	return ok
}

func (k keyed) String(key string) (string, error) {
	m, err := k.member(key)
	if err != nil {
		return "", err
	}
	return asString(m)
}

func (k keyed) Int(key string) (int64, error) {
	m, err := k.member(key)
	if err != nil {
		return 0, err
	}
	return asInt(m)
}

func (k keyed) Float(key string) (float64, error) {
	m, err := k.member(key)
	if err != nil {
		return 0, err
	}
	return asFloat(m)
}

func (k keyed) Bool(key string) (bool, error) {
	m, err := k.member(key)
	if err != nil {
		return false, err
	}
	return asBool(m)
}

func (k keyed) Nested(key string, v jsongram.Decodable) error {
	m, err := k.member(key)
	if err != nil {
		return err
	}
	return nested(m, v)
}

func (k keyed) OptionalString(key string) (*string, error) {
	m, ok := k.present(key)
	return optional(m, ok, asString)
}

func (k keyed) OptionalInt(key string) (*int64, error) {
	m, ok := k.present(key)
	return optional(m, ok, asInt)
}

func (k keyed) OptionalFloat(key string) (*float64, error) {
	m, ok := k.present(key)
	return optional(m, ok, asFloat)
}

func (k keyed) OptionalBool(key string) (*bool, error) {
	m, ok := k.present(key)
	return optional(m, ok, asBool)
}

func (k keyed) OptionalNested(key string, v jsongram.Decodable) (bool, error) {
	m, ok := k.present(key)
	if !ok {
		return false, nil
	}
	if err := nested(m, v); err != nil {
		return true, err
	}
	return true, nil
}

type indexed struct {
	n *eng.Node
	i int
}

func (it *indexed) More() bool { return it.i < len(it.n.Items) }

func (it *indexed) next() (*eng.Node, error) {
	if !it.More() {
		return nil, missing(it.n.Path + "/" + strconv.Itoa(it.i))
	}
	m := it.n.Items[it.i]
	it.i++
	return m, nil
}

func (it *indexed) String() (string, error) {
	m, err := it.next()
	if err != nil {
		return "", err
	}
	return asString(m)
}

func (it *indexed) Int() (int64, error) {
	m, err := it.next()
	if err != nil {
		return 0, err
	}
	return asInt(m)
}

func (it *indexed) Float() (float64, error) {
	m, err := it.next()
	if err != nil {
		return 0, err
	}
	return asFloat(m)
}

func (it *indexed) Bool() (bool, error) {
	m, err := it.next()
	if err != nil {
		return false, err
	}
	return asBool(m)
}

func (it *indexed) Nested(v jsongram.Decodable) error {
	m, err := it.next()
	if err != nil {
		return err
	}
	return nested(m, v)
}

type value struct{ n *eng.Node }

func (v value) IsNull() bool { return v.n.Type == eng.NodeNull }
func (v value) String() (string, error) { return asString(v.n) }
func (v value) Int() (int64, error) { return asInt(v.n) }
func (v value) Float() (float64, error) { return asFloat(v.n) }
func (v value) Bool() (bool, error) { return asBool(v.n) }
func (v value) Nested(w jsongram.Decodable) error { return nested(v.n, w) }
