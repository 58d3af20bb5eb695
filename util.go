package paraffin

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// ParseDBTag reads a `db` struct tag of the form "name,opt opt=bool ...".
// Recognised options are auto (the database assigns the value) and key.
func ParseDBTag(value string) (name string, isAuto bool, isKey bool) {
	tagArr := strings.SplitN(value, ",", 2)

	checkBool := func(key string, tagarr []string) bool {
		bval := false
		skey := strings.TrimSpace(tagarr[0])
		if strings.EqualFold(skey, key) {
			bval = true
		}

		if bval && len(tagarr) > 1 {
			sval := strings.TrimSpace(tagarr[1])
			if strings.EqualFold(sval, "false") {
				bval = false
			}
		}

		return bval
	}

	name = strings.TrimSpace(tagArr[0])
	if len(tagArr) > 1 {
		for _, v := range strings.Fields(tagArr[1]) {
			varr := strings.Split(v, "=")

			if checkBool("auto", varr) {
				isAuto = true
				continue
			}

			if checkBool("key", varr) {
				isKey = true
			}
		}
	}

	return
}

// fieldColumn returns the column a struct field maps to, or "" when the
// field is skipped.
func fieldColumn(field reflect.StructField) (col string, isAuto bool, isKey bool) {
	if !field.IsExported() || field.Name == "DBTable" {
		return "", false, false
	}

	tag, ok := field.Tag.Lookup("db")
	if ok {
		if tag == "-" {
			return "", false, false
		}
		col, isAuto, isKey = ParseDBTag(tag)
	}

	if col == "" {
		col = strcase.ToSnake(field.Name)
	}

	return col, isAuto, isKey
}

func Map[In any, Out any](list []In, mapFn func(val In) Out) []Out {
	var newSlice = make([]Out, len(list))
	for i, val := range list {
		newSlice[i] = mapFn(val)
	}

	return newSlice
}

func Filter[T any](slice []T, filterFunc func(val T) bool) []T {
	var newSlice []T
	for i, val := range slice {
		if filterFunc(val) {
			newSlice = append(newSlice, slice[i])
		}
	}

	return newSlice
}

func SplitBatch[T any](list []T, chunk int) [][]T {
	total := len(list)
	rem := total % chunk
	batch := total / chunk

	if rem > 0 {
		batch++
	}

	var newList = make([][]T, batch)
	start := 0
	end := chunk
	for i := 0; i < batch; i++ {
		if end > total {
			end = total
		}

		newList[i] = list[start:end]
		start += chunk
		end += chunk
	}

	return newList
}
