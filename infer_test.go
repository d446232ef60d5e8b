package jsongram_test

import (
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsongram"
)

func leaf(k jsongram.Kind) jsongram.Shape { return jsongram.Shape{Kind: k} }

func field(name string, optional bool, s jsongram.Shape) jsongram.ShapeField {
	return jsongram.ShapeField{Name: name, Optional: optional, Shape: s}
}

func mustInfer(t *testing.T, v jsongram.Decodable) *jsongram.Shape {
	t.Helper()
	s, err := jsongram.Infer(v)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	return s
}

func wantShape(t *testing.T, got *jsongram.Shape, want jsongram.Shape) {
	t.Helper()
	if !reflect.DeepEqual(*got, want) {
		g, _ := json.Marshal(got)
		w, _ := json.Marshal(want)
		t.Fatalf("shape mismatch\n got: %s\nwant: %s", g, w)
	}
}

func TestInfer_Person(t *testing.T) {
	wantShape(t, mustInfer(t, &Person{}), jsongram.Shape{Kind: jsongram.KindObject, Fields: []jsongram.ShapeField{
		field("name", false, leaf(jsongram.KindString)),
		field("age", false, leaf(jsongram.KindInteger)),
		field("city", true, leaf(jsongram.KindString)),
	}})
}

type looper struct{ n, loops *int }

func (p looper) Decode(dec jsongram.Decoder) error {
	it, err := dec.Indexed()
	if err != nil {
		return err
	}
	for it.More() {
		*p.loops++
		for i := 0; i < 3; i++ {
			if err := it.Nested(counter{n: p.n}); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestInfer_ArrayElementRecordedOnce(t *testing.T) {
	var n, loops int
	s := mustInfer(t, looper{n: &n, loops: &loops})
	if n != 1 || loops != 1 {
		t.Fatalf("element decoded %d times over %d loops", n, loops)
	}
	el := leaf(jsongram.KindInteger)
	wantShape(t, s, jsongram.Shape{Kind: jsongram.KindArray, Element: &el})
}

type bareArray struct{}

func (bareArray) Decode(dec jsongram.Decoder) error {
	_, err := dec.Indexed()
	return err
}

func TestInfer_ArrayWithoutElementIsArrayOfNull(t *testing.T) {
	el := leaf(jsongram.KindNull)
	wantShape(t, mustInfer(t, bareArray{}), jsongram.Shape{Kind: jsongram.KindArray, Element: &el})
}

func TestInfer_IsNull(t *testing.T) {
	wantShape(t, mustInfer(t, &NullableString{}), leaf(jsongram.KindString))
	wantShape(t, mustInfer(t, onlyNull{}), leaf(jsongram.KindNull))
}

type rewrite struct{}

func (rewrite) Decode(dec jsongram.Decoder) error {
	k, _ := dec.Keyed()
	if k.Keys() != nil {
		panic("recorder has no keys")
	}
	_, _ = k.String("a")
	_, _ = k.Bool("b")
	if k.Contains("legacy") {
		_, _ = k.Float("legacy")
	}
	_, _ = k.OptionalInt("a")
	return nil
}

func TestInfer_RecordedKeysLastWriteWins(t *testing.T) {
	wantShape(t, mustInfer(t, rewrite{}), jsongram.Shape{Kind: jsongram.KindObject, Fields: []jsongram.ShapeField{
		field("b", false, leaf(jsongram.KindBoolean)),
		field("legacy", false, leaf(jsongram.KindNumber)),
		field("a", true, leaf(jsongram.KindInteger)),
	}})
}

type Address struct {
	Street string  `json:"street"`
	Zip    *string `json:"zip"`
}

type Account struct {
	ID     int64    `json:"id"`
	Email  string   `json:"email"`
	Score  float64  `json:"score,omitempty"`
	Admin  bool     `jsongram:"name=is_admin,optional"`
	Home   *Address `json:"home"`
	Tags   []string `json:"tags"`
	Skip   string   `json:"-"`
	secret string
}

func TestInfer_Reflect(t *testing.T) {
	tags := leaf(jsongram.KindString)
	wantShape(t, mustInfer(t, jsongram.Reflect(&Account{})), jsongram.Shape{Kind: jsongram.KindObject, Fields: []jsongram.ShapeField{
		field("id", false, leaf(jsongram.KindInteger)),
		field("email", false, leaf(jsongram.KindString)),
		field("tags", false, jsongram.Shape{Kind: jsongram.KindArray, Element: &tags}),
		field("score", true, leaf(jsongram.KindNumber)),
		field("is_admin", true, leaf(jsongram.KindBoolean)),
		field("home", true, jsongram.Shape{Kind: jsongram.KindObject, Fields: []jsongram.ShapeField{
			field("street", false, leaf(jsongram.KindString)),
			field("zip", true, leaf(jsongram.KindString)),
		}}),
	}})

	g, err := jsongram.Compile(jsongram.Reflect(&Account{}))
	if err != nil {
		t.Fatal(err)
	}
	if g.Entry != "object_account" {
		t.Fatalf("entry = %s", g.Entry)
	}

	// a Decodable behind Reflect decodes itself
	wantShape(t, mustInfer(t, jsongram.Reflect(&Person{})), *mustInfer(t, &Person{}))
}

func TestShape_YAMLAndJSONRoundTrip(t *testing.T) {
	s := mustInfer(t, &Post{})

	y, err := yaml.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(y), "optional: true") || !strings.Contains(string(y), "kind: array") {
		t.Fatalf("yaml:\n%s", y)
	}
	back, err := jsongram.ParseShape(y)
	if err != nil {
		t.Fatal(err)
	}
	wantShape(t, back, *s)

	j, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	back, err = jsongram.ParseShape(j)
	if err != nil {
		t.Fatalf("json shape: %v\n%s", err, j)
	}
	wantShape(t, back, *s)

	// compiling the shape reproduces the grammar of the type it came from
	fromType, _ := jsongram.Compile(&Post{})
	fromShape, err := jsongram.CompileWith(back, jsongram.CompileOpt{Name: "post"})
	if err != nil {
		t.Fatal(err)
	}
	if fromType.Text != fromShape.Text {
		t.Fatalf("grammar differs\n%s\n---\n%s", fromType.Text, fromShape.Text)
	}
}

func TestParseShape_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unknown kind":  "kind: blob",
		"unknown key":   "kind: string\nfoo: 1",
		"no element":    "kind: array",
		"no fields":     "kind: object",
		"leaf children": "kind: string\nelement: {kind: string}",
		"duplicate":     "kind: object\nfields:\n- {name: a, kind: string}\n- {name: a, kind: int}",
	}
	for name, doc := range cases {
		if _, err := jsongram.ParseShape([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	s, err := jsongram.ParseShape([]byte("kind: object\nfields:\n- {name: n, kind: int, optional: true}"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Fields[0].Kind != jsongram.KindInteger || !s.Fields[0].Optional {
		t.Fatalf("alias not applied: %+v", s.Fields[0])
	}
	s, err = jsongram.ParseShape([]byte("kind: array\nelement:\n  kind: null"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Element.Kind != jsongram.KindNull {
		t.Fatalf("bare null kind = %s", s.Element.Kind)
	}
}
