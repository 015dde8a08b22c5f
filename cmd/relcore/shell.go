package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/koustreak/relcore/internal/catalog"
	"github.com/koustreak/relcore/internal/config"
	"github.com/koustreak/relcore/internal/executor"
	"github.com/koustreak/relcore/internal/logger"
)

const shellHelp = `statements end with ';' and may span lines:
  CREATE TABLE t (id INT PRIMARY KEY, name TEXT NOT NULL, email TEXT UNIQUE);
  INSERT INTO t VALUES (1, 'ann', 'ann@x');
  SELECT * FROM t WHERE id >= 1;
  SELECT * FROM a JOIN b ON a.id = b.a_id;
  UPDATE t SET name = 'bob' WHERE id = 1;
  DELETE FROM t WHERE id = 1;
  SHOW TABLES;
  DESCRIBE t;

meta commands:
  \q | quit | exit   leave the shell
  \help              show this text`

func runShell(cat *catalog.Catalog, cfg config.ShellConfig, log *logger.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	exec := executor.New(cat, executor.WithLogger(log))
	out := rl.Stdout()
	fmt.Fprintln(out, `relcore shell, type \help for help`)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(cfg.Prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			switch trimmed {
			case "":
				continue
			case `\q`, "quit", "exit":
				return nil
			case `\help`:
				fmt.Fprintln(out, shellHelp)
				continue
			}
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(continuationPrompt(cfg.Prompt))
			continue
		}

		stmt := buf.String()
		buf.Reset()
		rl.SetPrompt(cfg.Prompt)

		res, err := exec.ExecSQL(stmt)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err := render(out, res); err != nil {
			fmt.Fprintf(os.Stderr, "render: %v\n", err)
		}
	}
}

// statementComplete reports whether s has a ';' outside a quoted string.
// A doubled quote inside a string toggles twice, so '' escapes need no
// special case.
func statementComplete(s string) bool {
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}

func continuationPrompt(prompt string) string {
	width := len(prompt)
	if width < 4 {
		return "... "
	}
	return strings.Repeat(" ", width-4) + "... "
}
