// Command mimicsql is an interactive shell over the in-memory engine.
//
// It speaks to the engine through database/sql and the "mimicsql" driver,
// so a session here exercises exactly the code path an application under
// test would use. Fixtures can be loaded from YAML before the first
// statement and the full table state dumped back out at any time.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/chzyer/readline"

	"github.com/mimicsql/mimicsql"
	sqldriver "github.com/mimicsql/mimicsql/driver"
)

var (
	flagFixtures = flag.String("fixtures", "", "YAML fixture file to seed tables from")
	flagExecute  = flag.String("e", "", "execute a single statement and exit")
)

var completions = []string{
	"\\q", "\\quit", "\\h", "\\help", "\\dt", "\\load", "\\dump",
	"select", "insert into", "delete from", "drop table",
	"begin", "commit", "rollback",
	"from", "where", "order by", "limit", "offset",
	"inner join", "left join", "right join", "cross join", "on",
	"values", "returning", "and", "or", "not", "like", "between",
}

func main() {
	flag.Parse()

	store := mimicsql.NewStore()
	if *flagFixtures != "" {
		if err := loadFixtures(store, *flagFixtures); err != nil {
			fmt.Fprintln(os.Stderr, "fixtures:", err)
			os.Exit(1)
		}
	}
	sqldriver.RegisterStore("shell", store)

	db, err := sql.Open("mimicsql", "mem://shell")
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	if *flagExecute != "" {
		if err := run(db, *flagExecute); err != nil {
			fmt.Fprintln(os.Stderr, "ERR:", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "mimicsql> ",
		HistoryFile:         historyPath(),
		AutoComplete:        completer(),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "readline:", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("mimicsql shell. \\h for help, \\q to quit.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "\\") {
			if quit := localCommand(store, input); quit {
				return
			}
			continue
		}
		if err := run(db, strings.TrimSuffix(input, ";")); err != nil {
			fmt.Println("ERR:", err)
		}
	}
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(completions))
	for _, c := range completions {
		items = append(items, readline.PcItem(c))
	}
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mimicsql_history")
}

func loadFixtures(store *mimicsql.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.LoadYAML(f)
}

// localCommand handles backslash commands; it reports whether to quit.
func localCommand(store *mimicsql.Store, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "\\q", "\\quit":
		return true
	case "\\h", "\\help":
		fmt.Println("  \\q            quit")
		fmt.Println("  \\dt           list tables")
		fmt.Println("  \\load <file>  seed tables from a YAML fixture")
		fmt.Println("  \\dump         print table state as YAML")
		fmt.Println("  <sql>         execute a statement ($1.. not bound in the shell)")
	case "\\dt":
		for name, rows := range store.Tables() {
			fmt.Printf("  %s (%d rows)\n", name, len(rows))
		}
	case "\\load":
		if len(fields) < 2 {
			fmt.Println("ERR: \\load needs a file path")
			break
		}
		if err := loadFixtures(store, fields[1]); err != nil {
			fmt.Println("ERR:", err)
		}
	case "\\dump":
		if err := store.DumpYAML(os.Stdout); err != nil {
			fmt.Println("ERR:", err)
		}
	default:
		fmt.Printf("ERR: unknown command %s\n", fields[0])
	}
	return false
}

// run executes one statement. Row-returning statements are rendered as a
// table; everything else reports the affected row count.
func run(db *sql.DB, stmt string) error {
	lower := strings.ToLower(strings.TrimSpace(stmt))
	if strings.HasPrefix(lower, "select") || strings.Contains(lower, "returning") {
		rows, err := db.Query(stmt)
		if err != nil {
			return err
		}
		defer rows.Close()
		return render(rows)
	}
	res, err := db.Exec(stmt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	fmt.Printf("OK (%d rows affected)\n", n)
	return nil
}

func render(rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	count := 0
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(cols))
		for i, v := range vals {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("(%d rows)\n", count)
	return nil
}
