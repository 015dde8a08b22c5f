package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/koustreak/relcore/internal/executor"
	"github.com/koustreak/relcore/internal/schema"
)

// render writes res as an aligned table or a one-line summary.
func render(w io.Writer, res *executor.Result) error {
	switch res.Kind {
	case executor.ResultRows:
		return renderRows(w, res.Columns, res.Rows)
	case executor.ResultTables:
		if len(res.Tables) == 0 {
			_, err := fmt.Fprintln(w, "(no tables)")
			return err
		}
		_, err := fmt.Fprintln(w, strings.Join(res.Tables, "\n"))
		return err
	case executor.ResultSchema:
		if res.Message != "" {
			_, err := fmt.Fprintln(w, res.Message)
			return err
		}
		return renderSchema(w, res.Schema)
	default:
		_, err := fmt.Fprintln(w, res.Message)
		return err
	}
}

func renderRows(w io.Writer, columns []string, rows []schema.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	rule := make([]string, len(columns))
	for i, c := range columns {
		rule[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			cells[i] = ""
			if v, ok := row[c]; ok {
				cells[i] = v.Text()
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "(%d %s)\n", len(rows), noun)
	return err
}

func renderSchema(w io.Writer, s *schema.TableSchema) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\ttype\tconstraints")
	for _, c := range s.Columns {
		var flags []string
		if c.PrimaryKey {
			flags = append(flags, "PRIMARY KEY")
		}
		if c.Unique {
			flags = append(flags, "UNIQUE")
		}
		if c.NotNull && !c.PrimaryKey {
			flags = append(flags, "NOT NULL")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Type, strings.Join(flags, " "))
	}
	return tw.Flush()
}
