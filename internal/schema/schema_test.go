package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/value"
)

func usersSchema() *TableSchema {
	return &TableSchema{
		Name: "users",
		Columns: []ColumnDefinition{
			{Name: "id", Type: TypeNumber, PrimaryKey: true},
			{Name: "email", Type: TypeString, Unique: true},
			{Name: "name", Type: TypeString, NotNull: true},
			{Name: "active", Type: TypeBoolean},
		},
	}
}

func TestNormalize_PromotesPrimaryKey(t *testing.T) {
	s := usersSchema()
	require.NoError(t, s.Normalize())

	pk := s.PrimaryKey()
	assert.Equal(t, "id", pk.Name)
	assert.True(t, pk.NotNull)
	assert.Equal(t, []string{"id", "email"}, s.IndexedColumns())
	assert.Equal(t, []string{"id", "email", "name", "active"}, s.ColumnNames())
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		schema TableSchema
	}{
		{"empty name", TableSchema{Columns: []ColumnDefinition{{Name: "id", Type: TypeNumber, PrimaryKey: true}}}},
		{"no columns", TableSchema{Name: "t"}},
		{"duplicate columns", TableSchema{Name: "t", Columns: []ColumnDefinition{
			{Name: "id", Type: TypeNumber, PrimaryKey: true},
			{Name: "id", Type: TypeString},
		}}},
		{"no primary key", TableSchema{Name: "t", Columns: []ColumnDefinition{{Name: "id", Type: TypeNumber}}}},
		{"two primary keys", TableSchema{Name: "t", Columns: []ColumnDefinition{
			{Name: "a", Type: TypeNumber, PrimaryKey: true},
			{Name: "b", Type: TypeNumber, PrimaryKey: true},
		}}},
		{"unknown type", TableSchema{Name: "t", Columns: []ColumnDefinition{{Name: "id", Type: "date", PrimaryKey: true}}}},
		{"dot table name", TableSchema{Name: ".t", Columns: []ColumnDefinition{{Name: "id", Type: TypeNumber, PrimaryKey: true}}}},
		{"slash table name", TableSchema{Name: "a/b", Columns: []ColumnDefinition{{Name: "id", Type: TypeNumber, PrimaryKey: true}}}},
		{"digit table name", TableSchema{Name: "1x", Columns: []ColumnDefinition{{Name: "id", Type: TypeNumber, PrimaryKey: true}}}},
		{"dotted column name", TableSchema{Name: "t", Columns: []ColumnDefinition{{Name: "a.id", Type: TypeNumber, PrimaryKey: true}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.schema
			err := s.Normalize()
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestNormalize_AcceptsIdentifiers(t *testing.T) {
	for _, name := range []string{"t", "_t", "Users", "order_items2"} {
		s := TableSchema{Name: name, Columns: []ColumnDefinition{{Name: "_id", Type: TypeNumber, PrimaryKey: true}}}
		assert.NoError(t, s.Normalize(), name)
	}
}

func TestParseColumnType(t *testing.T) {
	for name, want := range map[string]ColumnType{
		"STRING": TypeString, "text": TypeString, "VarChar": TypeString,
		"int": TypeNumber, "REAL": TypeNumber, "number": TypeNumber,
		"bool": TypeBoolean, "BOOLEAN": TypeBoolean,
	} {
		got, ok := ParseColumnType(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseColumnType("blob")
	assert.False(t, ok)
}

func TestValidateRow(t *testing.T) {
	s := usersSchema()
	require.NoError(t, s.Normalize())

	tests := []struct {
		name       string
		row        Row
		requireAll bool
		wantErr    bool
		column     string
	}{
		{
			name:       "valid full row",
			row:        Row{"id": value.Number(1), "name": value.String("ada"), "email": value.Null()},
			requireAll: true,
		},
		{
			name:       "missing required column",
			row:        Row{"id": value.Number(1)},
			requireAll: true,
			wantErr:    true,
			column:     "name",
		},
		{
			name: "missing column allowed for update",
			row:  Row{"active": value.Bool(true)},
		},
		{
			name:    "null in not-null",
			row:     Row{"name": value.Null()},
			wantErr: true,
			column:  "name",
		},
		{
			name:    "type mismatch",
			row:     Row{"id": value.String("1")},
			wantErr: true,
			column:  "id",
		},
		{
			name:    "unknown column",
			row:     Row{"age": value.Number(3)},
			wantErr: true,
			column:  "age",
		},
		{
			name:    "non-finite number",
			row:     Row{"id": value.Number(math.Inf(-1))},
			wantErr: true,
			column:  "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateRow(tt.row, tt.requireAll)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.column, e.Column)
			assert.Equal(t, "users", e.Table)
		})
	}
}

func TestRow_ProjectAndMerge(t *testing.T) {
	r := Row{"a": value.Number(1), "b": value.String("x")}

	assert.Equal(t, Row{"a": value.Number(1)}, r.Project([]string{"a", "missing"}))
	assert.Equal(t, r, r.Project(nil))

	merged := r.Merge(Row{"b": value.String("y")})
	assert.Equal(t, value.String("y"), merged["b"])
	assert.Equal(t, value.String("x"), r["b"], "merge must not touch the source row")
}

func TestClone_IsIndependent(t *testing.T) {
	s := usersSchema()
	cp := s.Clone()
	cp.Columns[0].Name = "changed"
	assert.Equal(t, "id", s.Columns[0].Name)
}
