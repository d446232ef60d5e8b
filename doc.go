package jsongram

// Package jsongram provides:
//
// - Shape inference driven by a type's own Decode method (no reflection over
//   the type, no annotations)
// - GBNF grammar generation that constrains text generation to JSON of that shape
// - A stable error model via Issues (JSON Pointer, code, message)
// - Helpers for slices, primitive lists and tagged Go structs
//
// Design policy:
// - Keep only public APIs in the root package; put the node arena and the
//   generator under internal/.
// - The recognizer lives in grammar/, the real JSON decoder in jsondec/, the
//   CLI under cmd/jsongram.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	type Person struct {
//		Name string
//		Age  int64
//		City *string
//	}
//
//	func (p *Person) Decode(dec jsongram.Decoder) error {
//		k, err := dec.Keyed()
//		if err != nil {
//			return err
//		}
//		if p.Name, err = k.String("name"); err != nil {
//			return err
//		}
//		if p.Age, err = k.Int("age"); err != nil {
//			return err
//		}
//		p.City, err = k.OptionalString("city")
//		return err
//	}
//
//	g, err := jsongram.Compile(&Person{})
//	fmt.Print(g.Text)
//
//	var p Person
//	err = jsondec.Unmarshal(data, &p)
