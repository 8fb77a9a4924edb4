package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// Columns returns the "db" tag names of T in field order. Embedded structs are
// flattened; fields tagged "-" or untagged are skipped.
//
//	cols := Columns[order.Item]()
//	// ["id", "order_id", "line_no", "product_id", ...]
func Columns[T any]() []string {
	var zero T
	return slices.Clone(metadataFor(reflect.TypeOf(zero)).columns)
}

type column struct {
	path []int
	name string
}

type typeMetadata struct {
	fields  []column
	columns []string
}

var typeCache sync.Map // reflect.Type -> *typeMetadata

func metadataFor(t reflect.Type) *typeMetadata {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		collect(t, nil, meta)
	}
	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

func collect(t reflect.Type, prefix []int, meta *typeMetadata) {
	for i := range t.NumField() {
		f := t.Field(i)
		path := append(slices.Clone(prefix), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collect(f.Type, path, meta)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		meta.fields = append(meta.fields, column{path: path, name: tag})
		meta.columns = append(meta.columns, tag)
	}
}

// Row returns the tagged columns of v and their values in matching order,
// ready for squirrel's Columns(...).Values(...).
func Row(v any, except ...string) ([]string, []any) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, nil
	}

	meta := metadataFor(rv.Type())
	cols := make([]string, 0, len(meta.fields))
	vals := make([]any, 0, len(meta.fields))
	for _, f := range meta.fields {
		if slices.Contains(except, f.name) {
			continue
		}
		cols = append(cols, f.name)
		vals = append(vals, rv.FieldByIndex(f.path).Interface())
	}
	return cols, vals
}

// StructToMap converts v to a column → value map for squirrel's SetMap.
func StructToMap(v any, except ...string) map[string]any {
	cols, vals := Row(v, except...)
	if cols == nil {
		return nil
	}
	res := make(map[string]any, len(cols))
	for i, c := range cols {
		res[c] = vals[i]
	}
	return res
}
