package jsongram

import (
	"fmt"
	"reflect"
	"strings"
)

// Reflect adapts a pointer to a plain Go value into a Decodable. Struct
// fields are keyed by ResolveStructKey and are optional per IsOptionalField;
// slices become arrays; values that already implement Decodable decode
// themselves.
func Reflect(ptr any) Decodable {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic(fmt.Sprintf("jsongram: Reflect needs a non-nil pointer, got %T", ptr))
	}
	return reflected{v: rv.Elem()}
}

type reflected struct{ v reflect.Value }

// GrammarName implements Named with the wrapped type's name.
func (r reflected) GrammarName() string {
	n := r.v.Type().Name()
	if i := strings.IndexByte(n, '['); i >= 0 {
		n = n[:i]
	}
	return strings.ToLower(n)
}

var decodableType = reflect.TypeOf((*Decodable)(nil)).Elem()

func (r reflected) Decode(dec Decoder) error {
	v := r.v
	if v.CanAddr() && v.Addr().Type().Implements(decodableType) {
		return v.Addr().Interface().(Decodable).Decode(dec)
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return reflected{v: v.Elem()}.Decode(dec)
	case reflect.Struct:
		return decodeStruct(dec, v)
	case reflect.Slice:
		it, err := dec.Indexed()
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(v.Type(), 0, 0)
		for it.More() {
			e := reflect.New(v.Type().Elem()).Elem()
			if err := it.Nested(reflected{v: e}); err != nil {
				return err
			}
			out = reflect.Append(out, e)
		}
		v.Set(out)
		return nil
	}
	vd, err := dec.Value()
	if err != nil {
		return err
	}
	switch v.Kind() {
	case reflect.String:
		s, err := vd.String()
		if err != nil {
			return err
		}
		v.SetString(s)
	case reflect.Bool:
		b, err := vd.Bool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := vd.Int()
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return fmt.Errorf("jsongram: %d overflows %s", n, v.Type())
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := vd.Int()
		if err != nil {
			return err
		}
		if n < 0 || v.OverflowUint(uint64(n)) {
			return fmt.Errorf("jsongram: %d overflows %s", n, v.Type())
		}
		v.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := vd.Float()
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("jsongram: unsupported kind %s", v.Kind())
	}
	return nil
}

func decodeStruct(dec Decoder, v reflect.Value) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		fv := v.Field(i)
		if !IsOptionalField(sf) {
			if err := k.Nested(key, reflected{v: fv}); err != nil {
				return err
			}
			continue
		}
		if sf.Type.Kind() != reflect.Pointer {
			if _, err := k.OptionalNested(key, reflected{v: fv}); err != nil {
				return err
			}
			continue
		}
		tmp := reflect.New(sf.Type.Elem())
		present, err := k.OptionalNested(key, reflected{v: tmp.Elem()})
		if err != nil {
			return err
		}
		if present {
			fv.Set(tmp)
		} else {
			fv.Set(reflect.Zero(sf.Type))
		}
	}
	return nil
}
