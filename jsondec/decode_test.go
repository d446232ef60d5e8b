package jsondec_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/jsondec"
)

type Person struct {
	Name string
	Age  int64
	City *string
}

func (p *Person) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if p.Name, err = k.String("name"); err != nil {
		return err
	}
	if p.Age, err = k.Int("age"); err != nil {
		return err
	}
	p.City, err = k.OptionalString("city")
	return err
}

type Item struct {
	SKU   string
	Price float64
	Gift  *bool
}

func (it *Item) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if it.SKU, err = k.String("sku"); err != nil {
		return err
	}
	if it.Price, err = k.Float("price"); err != nil {
		return err
	}
	it.Gift, err = k.OptionalBool("gift")
	return err
}

type Order struct {
	Buyer Person
	Items []Item
	Notes []string
}

func (o *Order) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if err := k.Nested("buyer", &o.Buyer); err != nil {
		return err
	}
	if err := k.Nested("items", jsongram.Slice(&o.Items)); err != nil {
		return err
	}
	_, err = k.OptionalNested("notes", jsongram.Values(&o.Notes))
	return err
}

var errNegative = errors.New("negative quantity")

type Quantity int64

func (q *Quantity) Decode(dec jsongram.Decoder) error {
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	n, err := vd.Int()
	if err != nil {
		return err
	}
	if n < 0 {
		return errNegative
	}
	*q = Quantity(n)
	return nil
}

type Line struct{ Qty Quantity }

func (l *Line) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	return k.Nested("qty", &l.Qty)
}

func firstIssue(t *testing.T, err error) jsongram.Issue {
	t.Helper()
	iss, ok := jsongram.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got %v", err)
	}
	return iss[0]
}

func TestUnmarshal_Person(t *testing.T) {
	var p Person
	if err := jsondec.Unmarshal([]byte(`{"name":"Ada","age":36,"city":null}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ada" || p.Age != 36 || p.City != nil {
		t.Fatalf("got %+v", p)
	}
	if err := jsondec.Unmarshal([]byte(`{"city":"Rome","age":1,"name":"B","extra":[1]}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.City == nil || *p.City != "Rome" {
		t.Fatalf("city = %v", p.City)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	cases := []struct {
		in   string
		code string
		path string
	}{
		{`{"age":36}`, jsongram.CodeRequired, "/name"},
		{`{"name":5,"age":36}`, jsongram.CodeInvalidType, "/name"},
		{`{"name":null,"age":36}`, jsongram.CodeInvalidType, "/name"},
		{`{"name":"Ada","age":36.5}`, jsongram.CodeInvalidType, "/age"},
		{`{"name":"Ada","age":99999999999999999999}`, jsongram.CodeInvalidValue, "/age"},
		{`{"name":"Ada","age":-99999999999999999999}`, jsongram.CodeInvalidValue, "/age"},
		{`{"name":"Ada","age":1,"city":7}`, jsongram.CodeInvalidType, "/city"},
		{`["Ada"]`, jsongram.CodeInvalidType, ""},
		{`{"name":"Ada","name":"Bob","age":1}`, jsongram.CodeDuplicateKey, "/name"},
		{`{"name":"Ada","age":1} {}`, jsongram.CodeParseError, ""},
		{`{"name":"Ada",`, jsongram.CodeParseError, ""},
	}
	for _, tc := range cases {
		var p Person
		it := firstIssue(t, jsondec.Unmarshal([]byte(tc.in), &p))
		if it.Code != tc.code || it.Path != tc.path {
			t.Errorf("%s: got %s at %q, want %s at %q", tc.in, it.Code, it.Path, tc.code, tc.path)
		}
	}
}

func TestUnmarshal_IntegerOverflowHint(t *testing.T) {
	var p Person
	it := firstIssue(t, jsondec.Unmarshal([]byte(`{"name":"Ada","age":99999999999999999999}`), &p))
	if it.Hint != "integer overflows int64" {
		t.Fatalf("hint = %q", it.Hint)
	}
	if !errors.Is(it.Cause, strconv.ErrRange) {
		t.Fatalf("cause = %v", it.Cause)
	}
}

func TestUnmarshal_DuplicatePolicies(t *testing.T) {
	in := []byte(`{"name":"Ada","age":1,"name":"Bob"}`)
	var warned []jsongram.Issue
	var p Person
	err := jsondec.Unmarshal(in, &p,
		jsondec.WithDuplicates(jsondec.DuplicatesWarn),
		jsondec.WithWarnings(func(it jsongram.Issue) { warned = append(warned, it) }))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Bob" || len(warned) != 1 || warned[0].Code != jsongram.CodeDuplicateKey {
		t.Fatalf("name=%s warned=%v", p.Name, warned)
	}
	warned = nil
	if err := jsondec.Unmarshal(in, &p, jsondec.WithDuplicates(jsondec.DuplicatesIgnore),
		jsondec.WithWarnings(func(it jsongram.Issue) { warned = append(warned, it) })); err != nil {
		t.Fatal(err)
	}
	if len(warned) != 0 {
		t.Fatalf("ignore policy warned: %v", warned)
	}
}

func TestUnmarshal_NestedAndArrays(t *testing.T) {
	in := `{"buyer":{"name":"Ada","age":36},"items":[{"sku":"a","price":1},{"sku":"b","price":2.5,"gift":true}],"notes":["x","y"]}`
	var o Order
	if err := jsondec.Unmarshal([]byte(in), &o); err != nil {
		t.Fatal(err)
	}
	if o.Buyer.Name != "Ada" || len(o.Items) != 2 || o.Items[1].Price != 2.5 || o.Items[1].Gift == nil || !*o.Items[1].Gift {
		t.Fatalf("got %+v", o)
	}
	if len(o.Notes) != 2 || o.Notes[1] != "y" {
		t.Fatalf("notes = %v", o.Notes)
	}

	it := firstIssue(t, jsondec.Unmarshal([]byte(`{"buyer":{"name":"Ada","age":1},"items":[{"sku":"a","price":1},{"sku":"b"}]}`), &o))
	if it.Code != jsongram.CodeRequired || it.Path != "/items/1/price" {
		t.Fatalf("got %s at %s", it.Code, it.Path)
	}
}

func TestUnmarshal_UserErrorGetsPath(t *testing.T) {
	var l Line
	err := jsondec.Unmarshal([]byte(`{"qty":-2}`), &l)
	it := firstIssue(t, err)
	if it.Code != jsongram.CodeInvalidValue || it.Path != "/qty" {
		t.Fatalf("got %s at %s", it.Code, it.Path)
	}
	if !errors.Is(err, errNegative) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestUnmarshal_Limits(t *testing.T) {
	var o Order
	deep := `{"buyer":{"name":"Ada","age":1},"items":[]}`
	it := firstIssue(t, jsondec.Unmarshal([]byte(deep), &o, jsondec.WithMaxDepth(1)))
	if it.Code != jsongram.CodeParseError || it.Path != "/buyer" {
		t.Fatalf("depth: %s at %s", it.Code, it.Path)
	}
	it = firstIssue(t, jsondec.Unmarshal([]byte(deep), &o, jsondec.WithMaxBytes(10)))
	if it.Code != jsongram.CodeParseError {
		t.Fatalf("bytes: %s", it.Code)
	}
	it = firstIssue(t, jsondec.NewDecoder(strings.NewReader(deep), jsondec.WithMaxBytes(10)).Decode(&o))
	if it.Code != jsongram.CodeParseError {
		t.Fatalf("reader bytes: %s", it.Code)
	}
	if err := jsondec.NewDecoder(strings.NewReader(deep)).Decode(&o); err != nil {
		t.Fatalf("reader: %v", err)
	}
}
