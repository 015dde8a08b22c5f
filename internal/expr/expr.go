// Package expr evaluates the single-column WHERE predicate.
package expr

import (
	"fmt"

	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/schema"
	"github.com/koustreak/relcore/internal/value"
)

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpGt Op = ">"
	OpLt Op = "<"
	OpGe Op = ">="
	OpLe Op = "<="
)

// ParseOp validates an operator token. "<>" is accepted as !=.
func ParseOp(s string) (Op, error) {
	switch s {
	case "=", "==":
		return OpEq, nil
	case "!=", "<>":
		return OpNe, nil
	case ">":
		return OpGt, nil
	case "<":
		return OpLt, nil
	case ">=":
		return OpGe, nil
	case "<=":
		return OpLe, nil
	}
	return "", errs.Newf(errs.ErrKindValidation, "unsupported operator %q", s)
}

// Predicate is "Column Op Value".
type Predicate struct {
	Column string      `json:"column"`
	Op     Op          `json:"op"`
	Value  value.Value `json:"value"`
}

// Eq builds an equality predicate.
func Eq(column string, v value.Value) *Predicate {
	return &Predicate{Column: column, Op: OpEq, Value: v}
}

func (p *Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.Column, p.Op, p.Value)
}

// Validate checks the operator. A column missing from the table is not an
// error: the predicate simply matches no row.
func (p *Predicate) Validate() error {
	_, err := ParseOp(string(p.Op))
	return err
}

// Match evaluates the predicate against row.
//
// = and != use strict equality, where values of different kinds are never
// equal and null equals null. Ordering operators only hold between two
// non-null values of the same kind. A row without the column never matches.
// A nil predicate matches every row.
func (p *Predicate) Match(row schema.Row) bool {
	if p == nil {
		return true
	}
	got, ok := row[p.Column]
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return got.Equal(p.Value)
	case OpNe:
		return !got.Equal(p.Value)
	}

	cmp, ok := got.Compare(p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGe:
		return cmp >= 0
	case OpLe:
		return cmp <= 0
	}
	return false
}

// IndexKey reports the value to look up when the predicate can be served
// by an equality index: "=" against a non-null literal.
func (p *Predicate) IndexKey() (value.Value, bool) {
	if p == nil || p.Op != OpEq || p.Value.IsNull() {
		return value.Null(), false
	}
	return p.Value, true
}
