package paraffin

import "fmt"

const DefaultKeyField = "id"

// TableDef describes the table backing one entity type. Schema may be left
// empty to use the connection's current database.
type TableDef struct {
	Schema   string
	Name     string
	KeyField string
}

func (td TableDef) FullTableName() string {
	name := td.Name
	if td.Schema != "" {
		name = fmt.Sprintf("%s.%s", td.Schema, td.Name)
	}
	return name
}

func (td TableDef) keyField() string {
	if td.KeyField == "" {
		return DefaultKeyField
	}
	return td.KeyField
}

func (td TableDef) withName(name string) TableDef {
	td.Name = name
	return td
}
