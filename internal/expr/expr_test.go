package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

func TestParseOp(t *testing.T) {
	for in, want := range map[string]Op{"=": OpEq, "<>": OpNe, "!=": OpNe, ">=": OpGe, "<": OpLt} {
		got, err := ParseOp(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseOp("LIKE")
	assert.True(t, errs.IsValidation(err))
}

func TestMatch(t *testing.T) {
	row := schema.Row{
		"age":   value.Number(30),
		"name":  value.String("bo"),
		"email": value.Null(),
	}

	tests := []struct {
		name string
		p    *Predicate
		want bool
	}{
		{"nil matches", nil, true},
		{"eq number", &Predicate{"age", OpEq, value.Number(30)}, true},
		{"eq cross type", &Predicate{"age", OpEq, value.String("30")}, false},
		{"ne cross type", &Predicate{"age", OpNe, value.String("30")}, true},
		{"gt", &Predicate{"age", OpGt, value.Number(18)}, true},
		{"le", &Predicate{"age", OpLe, value.Number(29)}, false},
		{"lt string", &Predicate{"name", OpLt, value.String("zz")}, true},
		{"gt cross type", &Predicate{"age", OpGt, value.String("1")}, false},
		{"null equals null", &Predicate{"email", OpEq, value.Null()}, true},
		{"null ne null", &Predicate{"email", OpNe, value.Null()}, false},
		{"null ordering", &Predicate{"email", OpGe, value.Null()}, false},
		{"absent column", &Predicate{"missing", OpEq, value.Null()}, false},
		{"absent column ne", &Predicate{"missing", OpNe, value.Number(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Match(row))
		})
	}
}

func TestIndexKey(t *testing.T) {
	v, ok := Eq("id", value.Number(1)).IndexKey()
	assert.True(t, ok)
	assert.Equal(t, value.Number(1), v)

	_, ok = Eq("id", value.Null()).IndexKey()
	assert.False(t, ok)

	_, ok = (&Predicate{"id", OpGt, value.Number(1)}).IndexKey()
	assert.False(t, ok)

	var none *Predicate
	_, ok = none.IndexKey()
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Eq("id", value.Number(1)).Validate())
	assert.NoError(t, Eq("nope", value.Number(1)).Validate(), "unknown columns are resolved by the caller")
	assert.NoError(t, (&Predicate{"id", "<>", value.Number(1)}).Validate())
	assert.True(t, errs.IsValidation((&Predicate{"id", "~", value.Number(1)}).Validate()))
}
