package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/n1/sqlitewrap/internal/log"
	"github.com/n1/sqlitewrap/internal/sqlite"
	"github.com/urfave/cli/v2"
)

func execCommand(config *Config) *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run statements in order, stopping at the first failure",
		ArgsUsage: "<db> <sql>...",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("exec requires a database path and at least one statement")
			}
			conn, err := openDB(config, c.Args().First())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.ExecList(c.Args().Tail()); err != nil {
				return fmt.Errorf("exec failed: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "rowid\t%d\nchanges\t%d\n", conn.LastInsertRowID(), conn.Changes())
			return nil
		},
	}
}

func queryCommand(config *Config) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run one statement and print its rows tab-separated",
		ArgsUsage: "<db> <sql>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "arg",
				Aliases: []string{"a"},
				Usage:   "Parameter value, bound in order (integer, float, NULL, else text)",
			},
			&cli.BoolFlag{
				Name:  "no-header",
				Usage: "Do not print column names",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("query requires a database path and one statement")
			}
			conn, err := openDB(config, c.Args().Get(0))
			if err != nil {
				return err
			}
			defer conn.Close()

			var stmt sqlite.Stmt
			defer stmt.Close()
			if err := conn.Prepare(c.Args().Get(1), &stmt); err != nil {
				return fmt.Errorf("prepare failed: %w", err)
			}

			raw := c.StringSlice("arg")
			args := make([]any, len(raw))
			for i, s := range raw {
				args[i] = parseArg(s)
			}
			if len(args) != stmt.BindCount() {
				log.Warn().Int("args", len(args)).Int("params", stmt.BindCount()).Msg("Argument count does not match parameters")
			}
			if err := stmt.BindMulti(0, args...); err != nil {
				return fmt.Errorf("bind failed: %w", err)
			}

			n, err := printRows(c.App.Writer, &stmt, !c.Bool("no-header"))
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			log.Debug().Int("rows", n).Msg("Query finished")
			return nil
		},
	}
}

func existsCommand(config *Config) *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "Report whether a table, or a column of it, exists",
		ArgsUsage: "<db> <table> [column]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 || c.NArg() > 3 {
				return fmt.Errorf("exists requires a database path, a table and an optional column")
			}
			conn, err := openDB(config, c.Args().Get(0))
			if err != nil {
				return err
			}
			defer conn.Close()

			var ok bool
			if c.NArg() == 3 {
				ok, err = conn.ColumnExists(c.Args().Get(1), c.Args().Get(2))
			} else {
				ok, err = conn.TableExists(c.Args().Get(1))
			}
			if err != nil {
				return fmt.Errorf("schema lookup failed: %w", err)
			}
			fmt.Fprintln(c.App.Writer, ok)
			return nil
		},
	}
}

func infoCommand(config *Config) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print open state, journal mode and tables",
		ArgsUsage: "<db>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("info requires a database path")
			}
			conn, err := openDB(config, c.Args().First())
			if err != nil {
				return err
			}
			defer conn.Close()

			mode, err := queryText(conn, "PRAGMA journal_mode")
			if err != nil {
				return fmt.Errorf("failed to read journal mode: %w", err)
			}
			tables, err := queryColumn(conn, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
			if err != nil {
				return fmt.Errorf("failed to list tables: %w", err)
			}

			w := c.App.Writer
			fmt.Fprintf(w, "path\t%s\n", conn.Path())
			fmt.Fprintf(w, "read_only\t%t\n", conn.IsReadOnly())
			fmt.Fprintf(w, "journal_mode\t%s\n", mode)
			fmt.Fprintf(w, "tables\t%s\n", strings.Join(tables, ","))
			return nil
		},
	}
}

// parseArg picks the engine type for a command-line parameter value.
func parseArg(s string) any {
	if s == "NULL" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// printRows steps stmt to completion, writing one tab-separated line per row.
func printRows(w io.Writer, stmt *sqlite.Stmt, header bool) (int, error) {
	cols := stmt.ColumnCount()
	fields := make([]string, cols)

	if header && cols > 0 {
		for i := range fields {
			name, err := stmt.ColumnName(i)
			if err != nil {
				return 0, err
			}
			fields[i] = name
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}

	rows := 0
	for {
		row, err := stmt.Step()
		if err != nil {
			return rows, err
		}
		if !row {
			return rows, nil
		}
		for i := range fields {
			if fields[i], err = formatColumn(stmt, i); err != nil {
				return rows, err
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
		rows++
	}
}

func formatColumn(stmt *sqlite.Stmt, idx int) (string, error) {
	typ, err := stmt.ColumnType(idx)
	if err != nil {
		return "", err
	}
	switch typ {
	case sqlite.TypeNull:
		return "NULL", nil
	case sqlite.TypeBlob:
		b, err := stmt.ColumnRawBlob(idx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("x'%x'", b), nil
	default:
		return stmt.ColumnText(idx)
	}
}

// queryText returns the first column of the first row of query.
func queryText(conn *sqlite.Conn, query string) (string, error) {
	var stmt sqlite.Stmt
	defer stmt.Close()
	if err := conn.Prepare(query, &stmt); err != nil {
		return "", err
	}
	row, err := stmt.Step()
	if err != nil || !row {
		return "", err
	}
	return stmt.ColumnText(0)
}

// queryColumn collects the first column of every row of query.
func queryColumn(conn *sqlite.Conn, query string) ([]string, error) {
	var stmt sqlite.Stmt
	defer stmt.Close()
	if err := conn.Prepare(query, &stmt); err != nil {
		return nil, err
	}
	var out []string
	for {
		row, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !row {
			return out, nil
		}
		out = append(out, stmt.Text(0))
		if err := stmt.Err(); err != nil {
			return nil, err
		}
	}
}
