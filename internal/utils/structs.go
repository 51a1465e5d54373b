package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a db-tagged struct, in field order.
func StructTagValues(input any) []string {
	v := structValue(input)
	t := v.Type()

	result := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if tag, ok := columnTag(t.Field(i)); ok {
			result = append(result, tag)
		}
	}

	return result
}

// StructToMap maps column names to field values for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	v := structValue(input)
	t := v.Type()

	result := make(map[string]any, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		if tag, ok := columnTag(t.Field(i)); ok {
			result[tag] = v.Field(i).Interface()
		}
	}

	return result
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("input must be a pointer to a struct or a struct, got %s", v.Kind()))
	}

	return v
}

func columnTag(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" {
		return "", false
	}

	tag := f.Tag.Get(ColumnTag)
	if tag == "" || tag == "-" {
		return "", false
	}

	return tag, true
}
