package schema

import (
	"strings"

	"github.com/koustreak/relcore/internal/value"
)

// ColumnType is the declared type of a column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
)

// ParseColumnType maps a type name (any case, with the usual SQL aliases)
// onto a ColumnType.
func ParseColumnType(name string) (ColumnType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "text", "varchar":
		return TypeString, true
	case "number", "int", "integer", "float", "real":
		return TypeNumber, true
	case "boolean", "bool":
		return TypeBoolean, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the three declared types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	}
	return false
}

// Accepts reports whether a non-null v has exactly this type.
func (t ColumnType) Accepts(v value.Value) bool {
	switch t {
	case TypeString:
		return v.Kind() == value.KindString
	case TypeNumber:
		return v.Kind() == value.KindNumber
	case TypeBoolean:
		return v.Kind() == value.KindBoolean
	}
	return false
}

// ColumnDefinition describes a single column in a table
type ColumnDefinition struct {
	Name       string     `json:"name" yaml:"name"`
	Type       ColumnType `json:"type" yaml:"type"`
	PrimaryKey bool       `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	Unique     bool       `json:"unique,omitempty" yaml:"unique,omitempty"`
	NotNull    bool       `json:"notNull,omitempty" yaml:"notNull,omitempty"`
}

// Indexed reports whether the column carries a hash index.
func (c ColumnDefinition) Indexed() bool {
	return c.PrimaryKey || c.Unique
}

// TableSchema describes a table and its columns
type TableSchema struct {
	Name    string             `json:"name" yaml:"name"`
	Columns []ColumnDefinition `json:"columns" yaml:"columns"`
}
