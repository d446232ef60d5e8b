package jsongram

// Decodable is implemented by types that construct themselves from a
// structured source. Compile drives Decode with a recorder; jsondec drives it
// with real JSON.
type Decodable interface {
	Decode(dec Decoder) error
}

// Decoder hands out one of three views of the current value. A Decode method
// should request exactly one of them.
type Decoder interface {
	Keyed() (KeyedDecoder, error)
	Indexed() (IndexedDecoder, error)
	Value() (ValueDecoder, error)
}

// KeyedDecoder reads the members of a JSON object.
//
// Required accessors fail when the key is absent. Optional accessors return
// nil (or present=false) when the key is absent or its value is null.
type KeyedDecoder interface {
	Keys() []string
	Contains(key string) bool

	String(key string) (string, error)
	Int(key string) (int64, error)
	Float(key string) (float64, error)
	Bool(key string) (bool, error)
	Nested(key string, v Decodable) error

	OptionalString(key string) (*string, error)
	OptionalInt(key string) (*int64, error)
	OptionalFloat(key string) (*float64, error)
	OptionalBool(key string) (*bool, error)
	OptionalNested(key string, v Decodable) (present bool, err error)
}

// IndexedDecoder reads the elements of a JSON array in order.
type IndexedDecoder interface {
	// More reports whether another element can be read.
	More() bool
	String() (string, error)
	Int() (int64, error)
	Float() (float64, error)
	Bool() (bool, error)
	Nested(v Decodable) error
}

// ValueDecoder reads a single value.
type ValueDecoder interface {
	IsNull() bool
	String() (string, error)
	Int() (int64, error)
	Float() (float64, error)
	Bool() (bool, error)
	// Nested decodes v from this same value; useful for wrapper types.
	Nested(v Decodable) error
}

// Slice returns a Decodable that fills *s from a JSON array whose elements
// decode as E.
func Slice[E any, PE interface {
	*E
	Decodable
}](s *[]E) Decodable {
	return sliceOf[E, PE]{s: s}
}

type sliceOf[E any, PE interface {
	*E
	Decodable
}] struct{ s *[]E }

func (d sliceOf[E, PE]) Decode(dec Decoder) error {
	it, err := dec.Indexed()
	if err != nil {
		return err
	}
	out := []E{}
	for it.More() {
		var e E
		if err := it.Nested(PE(&e)); err != nil {
			return err
		}
		out = append(out, e)
	}
	*d.s = out
	return nil
}

// Primitive lists the element types Values accepts.
type Primitive interface {
	string | int | int64 | float64 | bool
}

// Values returns a Decodable that fills *s from a JSON array of primitives.
func Values[E Primitive](s *[]E) Decodable {
	return valuesOf[E]{s: s}
}

type valuesOf[E Primitive] struct{ s *[]E }

func (d valuesOf[E]) Decode(dec Decoder) error {
	it, err := dec.Indexed()
	if err != nil {
		return err
	}
	out := []E{}
	for it.More() {
		var e E
		switch p := any(&e).(type) {
		case *string:
			*p, err = it.String()
		case *int:
			var n int64
			n, err = it.Int()
			*p = int(n)
		case *int64:
			*p, err = it.Int()
		case *float64:
			*p, err = it.Float()
		case *bool:
			*p, err = it.Bool()
		}
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	*d.s = out
	return nil
}
