package paraffin

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/iancoleman/strcase"
)

// Model is implemented by entity types that carry their own table
// descriptor.
type Model interface {
	GetTableDef() TableDef
}

// DBTable marks the table of a struct when embedded as a field named
// DBTable, e.g.
//
//	type Vehicle struct {
//		DBTable `name:"vehicles"`
//		VIN     string `db:"vin,key"`
//	}
type DBTable struct{}

type genericModel struct {
	tableDef TableDef
}

func (g genericModel) GetTableDef() TableDef {
	return g.tableDef
}

func CreateGenericModel(tb TableDef) Model {
	return genericModel{
		tableDef: tb,
	}
}

// TableDefOf returns the descriptor of an entity. Models answer for
// themselves; other structs are read from their DBTable marker and db tags,
// falling back to the snake_cased type name and "id".
func TableDefOf(entity any) (TableDef, error) {
	if model, ok := entity.(Model); ok {
		return model.GetTableDef(), nil
	}

	mtyp := reflect.TypeOf(entity)
	if mtyp == nil {
		return TableDef{}, fmt.Errorf("cannot derive table from nil")
	}

	if mtyp.Kind() == reflect.Ptr {
		mtyp = mtyp.Elem()
	}

	if mtyp.Kind() != reflect.Struct {
		return TableDef{}, fmt.Errorf("cannot derive table from %s", mtyp.Kind())
	}

	td := TableDef{Name: strcase.ToSnake(mtyp.Name()), KeyField: DefaultKeyField}
	for i := 0; i < mtyp.NumField(); i++ {
		field := mtyp.Field(i)
		if field.Name == "DBTable" {
			if name := field.Tag.Get("name"); name != "" {
				td.Name = name
			}
			td.Schema = field.Tag.Get("schema")
			continue
		}

		col, _, isKey := fieldColumn(field)
		if col != "" && isKey {
			td.KeyField = col
		}
	}

	return td, nil
}

// FromStruct converts a struct, or a pointer to one, into a column map.
// Fields tagged auto are left out while they hold their zero value, and
// nil driver.Valuer results are skipped so the database default applies.
func FromStruct(value any) (map[string]any, error) {
	dataVal := reflect.ValueOf(value)
	if dataVal.Kind() == reflect.Ptr {
		dataVal = dataVal.Elem()
	}

	if dataVal.Kind() != reflect.Struct {
		return nil, fmt.Errorf("value must be a struct, got %s", dataVal.Kind())
	}

	valType := dataVal.Type()
	var result = make(map[string]any)
	for i := 0; i < valType.NumField(); i++ {
		col, isAuto, _ := fieldColumn(valType.Field(i))
		if col == "" {
			continue
		}

		fv := dataVal.Field(i)
		if isAuto && fv.IsZero() {
			continue
		}

		val := fv.Interface()
		if v, ok := val.(driver.Valuer); ok {
			if fv.Kind() == reflect.Ptr && fv.IsNil() {
				continue
			}

			buffVal, err := v.Value()
			if err != nil {
				return nil, fmt.Errorf("failed to get value of %s: %w", col, err)
			}

			if buffVal == nil {
				continue
			}

			val = buffVal
		}

		result[col] = val
	}

	return result, nil
}

// Decode copies the record's fields into the struct dest points to.
// Fields implementing sql.Scanner receive the raw value; others are
// assigned when the types are convertible. Columns without a field are
// ignored and fields without a column are left alone.
func (r *Record) Decode(dest any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() || dv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode destination must be a non-nil pointer to struct, got %T", dest)
	}

	sv := dv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		col, _, _ := fieldColumn(st.Field(i))
		if col == "" {
			continue
		}

		val, ok := r.fields[col]
		if !ok {
			continue
		}

		if err := assignField(sv.Field(i), val); err != nil {
			return fmt.Errorf("field %s: %w", st.Field(i).Name, err)
		}
	}

	return nil
}

func assignField(fv reflect.Value, val Value) error {
	if fv.CanAddr() {
		if scanner, ok := fv.Addr().Interface().(sql.Scanner); ok {
			return scanner.Scan(val.Interface())
		}
	}

	if val.IsNull() {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	target := fv.Type()
	if target.Kind() == reflect.Ptr {
		elem := reflect.New(target.Elem())
		if err := assignField(elem.Elem(), val); err != nil {
			return err
		}
		fv.Set(elem)
		return nil
	}

	src := reflect.ValueOf(val.Interface())
	if target.Kind() == reflect.String && src.Kind() != reflect.String {
		fv.SetString(val.String())
		return nil
	}

	if !src.Type().ConvertibleTo(target) {
		return fmt.Errorf("cannot assign %s to %s", val.Kind(), target)
	}

	fv.Set(src.Convert(target))
	return nil
}
