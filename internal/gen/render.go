package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
)

const importPath = "github.com/reoring/jsongram"

// RenderFile renders one Decode method per struct, gofmt-ed.
func RenderFile(f *File) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by jsongram gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", f.Package)
	fmt.Fprintf(&b, "import %q\n", importPath)
	for _, st := range f.Structs {
		renderStruct(&b, st)
	}
	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w\n%s", err, b.String())
	}
	return out, nil
}

func renderStruct(b *bytes.Buffer, st Struct) {
	recv := receiver(st.Name)
	fmt.Fprintf(b, "\n// Decode implements jsongram.Decodable.\n")
	fmt.Fprintf(b, "func (%s *%s) Decode(dec jsongram.Decoder) error {\n", recv, st.Name)
	if len(st.Fields) == 0 {
		fmt.Fprintf(b, "if _, err := dec.Keyed(); err != nil {\nreturn err\n}\nreturn nil\n}\n")
		return
	}
	fmt.Fprintf(b, "k, err := dec.Keyed()\nif err != nil {\nreturn err\n}\n")
	for _, f := range st.Fields {
		renderField(b, recv+"."+f.Name, f)
	}
	fmt.Fprintf(b, "return nil\n}\n")
}

// receiver picks a short receiver name that cannot shadow the locals used
// in generated bodies.
func receiver(typeName string) string {
	r := strings.ToLower(typeName[:1])
	switch r {
	case "k", "v", "c", "d", "e", "_":
		return "x"
	}
	return r
}

func renderField(b *bytes.Buffer, dst string, f Field) {
	key := fmt.Sprintf("%q", f.Key)
	switch f.Kind {
	case FieldPrimitive:
		renderPrimitive(b, dst, key, f)
	case FieldStruct:
		switch {
		case f.Pointer && f.Optional:
			fmt.Fprintf(b, "{\nvar v %s\nif ok, err := k.OptionalNested(%s, &v); err != nil {\nreturn err\n} else if ok {\n%s = &v\n}\n}\n", f.Type, key, dst)
		case f.Pointer:
			fmt.Fprintf(b, "%s = new(%s)\nif err := k.Nested(%s, %s); err != nil {\nreturn err\n}\n", dst, f.Type, key, dst)
		case f.Optional:
			fmt.Fprintf(b, "if _, err := k.OptionalNested(%s, &%s); err != nil {\nreturn err\n}\n", key, dst)
		default:
			fmt.Fprintf(b, "if err := k.Nested(%s, &%s); err != nil {\nreturn err\n}\n", key, dst)
		}
	case FieldSlice:
		helper := "Slice"
		if _, ok := accessor[f.Type]; ok {
			helper = "Values"
		}
		target := fmt.Sprintf("jsongram.%s(&%s)", helper, dst)
		if f.Optional {
			fmt.Fprintf(b, "if _, err := k.OptionalNested(%s, %s); err != nil {\nreturn err\n}\n", key, target)
		} else {
			fmt.Fprintf(b, "if err := k.Nested(%s, %s); err != nil {\nreturn err\n}\n", key, target)
		}
	}
}

func renderPrimitive(b *bytes.Buffer, dst, key string, f Field) {
	acc := accessor[f.Type]
	conv := func(v string) string {
		if acc.base == f.Type {
			return v
		}
		return f.Type + "(" + v + ")"
	}
	switch {
	case f.Optional && f.Pointer:
		if acc.base == f.Type {
			fmt.Fprintf(b, "if v, err := k.Optional%s(%s); err != nil {\nreturn err\n} else {\n%s = v\n}\n", acc.method, key, dst)
			return
		}
		fmt.Fprintf(b, "if v, err := k.Optional%s(%s); err != nil {\nreturn err\n} else if v != nil {\nc := %s\n%s = &c\n}\n", acc.method, key, conv("*v"), dst)
	case f.Optional:
		fmt.Fprintf(b, "if v, err := k.Optional%s(%s); err != nil {\nreturn err\n} else if v != nil {\n%s = %s\n}\n", acc.method, key, dst, conv("*v"))
	case f.Pointer:
		fmt.Fprintf(b, "if v, err := k.%s(%s); err != nil {\nreturn err\n} else {\nc := %s\n%s = &c\n}\n", acc.method, key, conv("v"), dst)
	default:
		fmt.Fprintf(b, "if v, err := k.%s(%s); err != nil {\nreturn err\n} else {\n%s = %s\n}\n", acc.method, key, dst, conv("v"))
	}
}

// Generate collects types from dir and renders their Decode methods.
func Generate(dir string, types []string) ([]byte, error) {
	f, err := Collect(dir, types)
	if err != nil {
		return nil, err
	}
	return RenderFile(f)
}
