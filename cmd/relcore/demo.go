package main

import (
	"fmt"
	"io"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/errs"
	"github.com/koustreak/relcore/internal/executor"
)

type demoStep struct {
	sql     string
	wantErr func(error) bool
}

// runDemo plays two short sessions against an in-memory catalog: primary key
// enforcement, then a join.
func runDemo(w io.Writer) error {
	sessions := [][]demoStep{
		{
			{sql: "CREATE TABLE t (id NUMBER PRIMARY KEY, v STRING NOT NULL)"},
			{sql: "INSERT INTO t VALUES (1, 'x')"},
			{sql: "INSERT INTO t VALUES (1, 'y')", wantErr: errs.IsConstraint},
			{sql: "SELECT * FROM t"},
		},
		{
			{sql: "CREATE TABLE A (id NUMBER PRIMARY KEY, name STRING)"},
			{sql: "CREATE TABLE B (id NUMBER PRIMARY KEY, aId NUMBER)"},
			{sql: "INSERT INTO A VALUES (1, 'a')"},
			{sql: "INSERT INTO A VALUES (2, 'b')"},
			{sql: "INSERT INTO B VALUES (10, 1)"},
			{sql: "INSERT INTO B VALUES (11, 1)"},
			{sql: "INSERT INTO B VALUES (12, 2)"},
			{sql: "SELECT * FROM A JOIN B ON A.id = B.aId"},
		},
	}

	for i, steps := range sessions {
		fmt.Fprintf(w, "-- session %d\n", i+1)
		exec := executor.New(catalog.New(nil))
		for _, step := range steps {
			fmt.Fprintf(w, "> %s;\n", step.sql)
			res, err := exec.ExecSQL(step.sql)
			switch {
			case err != nil && step.wantErr != nil && step.wantErr(err):
				fmt.Fprintf(w, "rejected: %v\n", err)
				continue
			case err != nil:
				return err
			case step.wantErr != nil:
				return fmt.Errorf("%q succeeded but should have failed", step.sql)
			}
			if err := render(w, res); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
