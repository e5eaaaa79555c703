package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// ExpandTemplates replaces ${VAR} references in place, walking the struct
// (or slice) in points to.
//
// string, *string and []string fields are only expanded when they carry a
// `template` struct tag; `template:"-"` opts a field out. map[string]string
// fields (headers) are always expanded. Structs, pointers to structs and
// slices are traversed whatever their tags. Every reference to a variable
// missing from variables is reported, each prefixed with the YAML path of
// the field that holds it.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct && v.Kind() != reflect.Slice {
		return fmt.Errorf("ExpandTemplates expects *struct or *[]struct; got *%s", v.Type())
	}

	e := &expander{variables: variables}
	e.walk(v, "", false)
	return errors.Join(e.errs...)
}

// Expand replaces ${VAR} references in value. Referencing a variable that
// is not in variables is an error.
func Expand(value string, variables map[string]string) (string, error) {
	e := &expander{variables: variables}
	out := e.expand("", value)
	return out, errors.Join(e.errs...)
}

type expander struct {
	variables map[string]string
	errs      []error
}

func (e *expander) expand(path, value string) string {
	return os.Expand(value, func(key string) string {
		if val, ok := e.variables[key]; ok {
			return val
		}
		if path == "" {
			e.errs = append(e.errs, fmt.Errorf("variable %q is not in the allowed list", key))
		} else {
			e.errs = append(e.errs, fmt.Errorf("%s: variable %q is not in the allowed list", path, key))
		}
		return ""
	})
}

func (e *expander) walk(v reflect.Value, path string, tagged bool) {
	switch v.Kind() {
	case reflect.String:
		if tagged && v.CanSet() {
			v.SetString(e.expand(path, v.String()))
		}

	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		elem := v.Elem()
		if elem.Kind() == reflect.String {
			if !tagged || !v.CanSet() {
				return
			}
			// A fresh pointer, so strings shared with other specs stay untouched.
			expanded := reflect.New(elem.Type())
			expanded.Elem().SetString(e.expand(path, elem.String()))
			v.Set(expanded)
			return
		}
		e.walk(elem, path, tagged)

	case reflect.Struct:
		typ := v.Type()
		for i := range typ.NumField() {
			sf := typ.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, hasTemplate := sf.Tag.Lookup("template")
			e.walk(v.Field(i), fieldPath(path, sf), hasTemplate && tag != "-")
		}

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			e.walk(v.Index(i), fmt.Sprintf("%s[%d]", path, i), tagged)
		}

	case reflect.Map:
		typ := v.Type()
		if typ.Key().Kind() != reflect.String || typ.Elem().Kind() != reflect.String || v.IsNil() || !v.CanSet() {
			return
		}
		out := reflect.MakeMapWithSize(typ, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			expanded := e.expand(path+"."+key, iter.Value().String())
			out.SetMapIndex(iter.Key(), reflect.ValueOf(expanded).Convert(typ.Elem()))
		}
		v.Set(out)
	}
}

// fieldPath names a field the way the job file does. Inlined structs add
// nothing to the path.
func fieldPath(parent string, sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
	if name == "" {
		if sf.Anonymous {
			return parent
		}
		name = sf.Name
	}
	if parent == "" {
		return name
	}
	return parent + "." + name
}
