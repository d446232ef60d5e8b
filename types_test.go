package jsongram_test

import (
	"errors"

	"github.com/reoring/jsongram"
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

type Post struct {
	Title string
	Tags  []string
}

func (p *Post) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if p.Title, err = k.String("title"); err != nil {
		return err
	}
	_, err = k.OptionalNested("tags", jsongram.Values(&p.Tags))
	return err
}

type Empty struct{}

func (*Empty) Decode(dec jsongram.Decoder) error {
	_, err := dec.Keyed()
	return err
}

var errBoom = errors.New("boom")

type broken struct{}

func (broken) Decode(jsongram.Decoder) error { return errBoom }

// halfway records one field and then fails.
type halfway struct{}

func (halfway) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if _, err := k.Int("a"); err != nil {
		return err
	}
	return errBoom
}

type withBroken struct{}

func (withBroken) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if _, err := k.String("ok"); err != nil {
		return err
	}
	if err := k.Nested("broken", broken{}); err != nil {
		return err
	}
	return k.Nested("half", halfway{})
}

type Tree struct {
	Label    string
	Children []Tree
}

func (t *Tree) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if t.Label, err = k.String("label"); err != nil {
		return err
	}
	_, err = k.OptionalNested("children", jsongram.Slice(&t.Children))
	return err
}

// NullableString decodes null or a string.
type NullableString struct {
	Valid bool
	S     string
}

func (n *NullableString) Decode(dec jsongram.Decoder) error {
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	if vd.IsNull() {
		n.Valid = false
		return nil
	}
	n.S, err = vd.String()
	n.Valid = err == nil
	return err
}

type onlyNull struct{}

func (onlyNull) Decode(dec jsongram.Decoder) error {
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	vd.IsNull()
	return nil
}

// counter counts how often Decode runs.
type counter struct{ n *int }

func (c counter) Decode(dec jsongram.Decoder) error {
	*c.n++
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	_, err = vd.Int()
	return err
}
