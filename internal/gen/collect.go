// Package gen writes Decode methods for plain struct declarations so they can
// be compiled to grammars and decoded with jsondec.
package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/reoring/jsongram"
)

// FieldKind classifies how a field is read.
type FieldKind int

const (
	FieldPrimitive FieldKind = iota
	FieldStruct
	FieldSlice
)

// Field is one exported struct field bound to a JSON member.
type Field struct {
	Name     string // Go field name
	Key      string // JSON member name
	Kind     FieldKind
	Type     string // value type; element type for slices
	Pointer  bool
	Optional bool
}

// Struct is a struct type to generate a Decode method for.
type Struct struct {
	Name   string
	Fields []Field
}

// File is the input of RenderFile.
type File struct {
	Package string
	Structs []Struct
}

// accessor maps primitive Go types to the decoder method reading them and
// the type that method returns.
var accessor = map[string]struct{ method, base string }{
	"string":  {"String", "string"},
	"bool":    {"Bool", "bool"},
	"int":     {"Int", "int64"},
	"int8":    {"Int", "int64"},
	"int16":   {"Int", "int64"},
	"int32":   {"Int", "int64"},
	"int64":   {"Int", "int64"},
	"uint":    {"Int", "int64"},
	"uint8":   {"Int", "int64"},
	"uint16":  {"Int", "int64"},
	"uint32":  {"Int", "int64"},
	"uint64":  {"Int", "int64"},
	"float32": {"Float", "float64"},
	"float64": {"Float", "float64"},
	"byte":    {"Int", "int64"},
	"rune":    {"Int", "int64"},
}

// predeclared identifiers that are neither primitives nor struct types
var unsupportedIdents = map[string]bool{
	"any": true, "error": true, "uintptr": true, "complex64": true, "complex128": true,
}

// element types jsongram.Values accepts
var valueElems = map[string]bool{"string": true, "int": true, "int64": true, "float64": true, "bool": true}

// Collect parses the non-test Go files in dir and describes the named struct
// types. Struct-typed fields must name types of the same package that have
// (or will get) a Decode method.
func Collect(dir string, types []string) (*File, error) {
	fset := token.NewFileSet()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	decls := map[string]*ast.StructType{}
	pkg := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}
		if pkg == "" {
			pkg = f.Name.Name
		}
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				if st, ok := ts.Type.(*ast.StructType); ok {
					decls[ts.Name.Name] = st
				}
			}
		}
	}
	if pkg == "" {
		return nil, fmt.Errorf("gen: no Go files in %s", dir)
	}

	out := &File{Package: pkg}
	for _, name := range types {
		st, ok := decls[name]
		if !ok {
			return nil, fmt.Errorf("gen: struct type %s not found in %s", name, dir)
		}
		fields, err := structFields(name, st)
		if err != nil {
			return nil, err
		}
		out.Structs = append(out.Structs, Struct{Name: name, Fields: fields})
	}
	return out, nil
}

func structFields(typeName string, st *ast.StructType) ([]Field, error) {
	var out []Field
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, fmt.Errorf("gen: %s: embedded fields are not supported", typeName)
		}
		var tag reflect.StructTag
		if f.Tag != nil {
			tag = reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
		}
		for _, id := range f.Names {
			if !id.IsExported() {
				continue
			}
			key := jsongram.ResolveStructKey(reflect.StructField{Name: id.Name, Tag: tag})
			if key == "-" {
				continue
			}
			field, err := classify(f.Type)
			if err != nil {
				return nil, fmt.Errorf("gen: %s.%s: %w", typeName, id.Name, err)
			}
			field.Name = id.Name
			field.Key = key
			field.Optional = jsongram.OptionalByTag(tag, field.Pointer)
			out = append(out, field)
		}
	}
	return out, nil
}

func classify(expr ast.Expr) (Field, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		if _, ok := accessor[t.Name]; ok {
			return Field{Kind: FieldPrimitive, Type: t.Name}, nil
		}
		if unsupportedIdents[t.Name] {
			break
		}
		return Field{Kind: FieldStruct, Type: t.Name}, nil
	case *ast.StarExpr:
		inner, err := classify(t.X)
		if err != nil {
			return Field{}, err
		}
		if inner.Kind == FieldSlice || inner.Pointer {
			return Field{}, fmt.Errorf("unsupported type %s", exprString(expr))
		}
		inner.Pointer = true
		return inner, nil
	case *ast.ArrayType:
		if t.Len != nil {
			break
		}
		id, ok := t.Elt.(*ast.Ident)
		if !ok {
			break
		}
		if _, prim := accessor[id.Name]; (prim && !valueElems[id.Name]) || unsupportedIdents[id.Name] {
			break
		}
		return Field{Kind: FieldSlice, Type: id.Name}, nil
	}
	return Field{}, fmt.Errorf("unsupported type %s", exprString(expr))
}

func exprString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprString(t.Elt)
		}
		return "[...]" + exprString(t.Elt)
	case *ast.MapType:
		return "map[" + exprString(t.Key) + "]" + exprString(t.Value)
	}
	return fmt.Sprintf("%T", expr)
}

// SplitTypes splits a comma-separated list of type names, dropping blanks and
// duplicates. The result is sorted.
func SplitTypes(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
