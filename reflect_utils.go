package jsongram

import (
	"reflect"
	"strings"
)

// ResolveStructKey resolves a struct field's external key used by Reflect and
// the code generator.
// Priority: jsongram:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("jsongram"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if i == 0 {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// IsOptionalField reports whether a struct field may be absent or null.
// jsongram:"optional" and jsongram:"required" win; otherwise pointer fields
// and fields tagged omitempty/omitzero are optional.
func IsOptionalField(sf reflect.StructField) bool {
	return OptionalByTag(sf.Tag, sf.Type.Kind() == reflect.Pointer)
}

// OptionalByTag applies the IsOptionalField rules to a raw tag, for callers
// that only have source text.
func OptionalByTag(tag reflect.StructTag, pointer bool) bool {
	if gt := tag.Get("jsongram"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			switch strings.TrimSpace(p) {
			case "optional":
				return true
			case "required":
				return false
			}
		}
	}
	if pointer {
		return true
	}
	if jt := tag.Get("json"); jt != "" {
		opts := strings.Split(jt, ",")
		for _, o := range opts[1:] {
			if o == "omitempty" || o == "omitzero" {
				return true
			}
		}
	}
	return false
}
