package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novarel/internal"
	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/sql/executor"
	"github.com/tuannm99/novarel/sqlclient"
)

// session runs one statement, remotely or in process.
type session interface {
	Exec(sql string) (*executor.Result, error)
}

type localSession struct {
	ex *executor.Executor
}

func (l localSession) Exec(sql string) (*executor.Result, error) { return l.ex.ExecSQL(sql) }

// ---- History (own file) ----

type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(stmt string) error {
	stmt = compactOneLine(stmt)
	if stmt == "" || h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, stmt); err != nil {
		return err
	}
	h.lines = append(h.lines, stmt)
	return nil
}

func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	for i := len(h.lines) - last; i < len(h.lines); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

// compactOneLine collapses all whitespace runs into single spaces.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ---- REPL helpers ----

// statementComplete reports whether buf holds a ';' outside quoted literals.
func statementComplete(buf string) bool {
	var quote rune
	escaped := false

	for _, r := range buf {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			return true
		}
	}
	return false
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") ||
		line == "quit" || line == "exit"
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novarel_history"
	}
	return filepath.Join(home, ".novarel_history")
}

func openSession(local bool, cfg *internal.NovaRelConfig, addr string, timeout time.Duration) (session, func() error, error) {
	if local {
		db := catalog.New(cfg.Catalog.Name)
		ex := executor.NewExecutor(db)
		ex.Dir = cfg.Import.Dir
		if err := ex.Seed(cfg.Import.Files, cfg.Import.Queries); err != nil {
			fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		}
		return localSession{ex: ex}, db.Close, nil
	}

	cli, err := sqlclient.Dial(addr, timeout)
	if err != nil {
		return nil, nil, err
	}
	return cli, cli.Close, nil
}

func main() {
	var (
		cfgPath    = flag.String("config", "", "config file (yaml)")
		addr       = flag.String("addr", "", "server address (default from config)")
		local      = flag.Bool("local", false, "run an embedded session instead of connecting")
		timeout    = flag.Duration("timeout", 3*time.Second, "dial timeout")
		histPath   = flag.String("history", "", "history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShotSQL = flag.String("c", "", "execute one statement and exit (must end with ';')")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if *addr == "" {
		*addr = cfg.Server.Addr
	}
	if *histPath == "" {
		*histPath = cfg.Client.History
	}
	if *histPath == "" {
		*histPath = defaultHistoryPath()
	}

	sess, closeFn, err := openSession(*local, cfg, *addr, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeFn() }()

	// one-shot mode
	if strings.TrimSpace(*oneShotSQL) != "" {
		res, err := sess.Exec(*oneShotSQL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		_ = res.Print(os.Stdout)
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "novarel> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder

	if *local {
		fmt.Printf("embedded session %s\n", cfg.Catalog.Name)
	} else {
		fmt.Printf("connected to %s\n", *addr)
	}
	fmt.Println("type \\help for help")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears current buffer
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt("novarel> ")
				continue
			}
			fmt.Println("^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			switch line {
			case "\\q", "quit", "exit":
				return
			case "\\help":
				fmt.Println(`shell commands:
  \q | quit | exit       quit
  \history               print history
  \help                  show help

statements:
  end every statement with ';' (multiline input waits for it)
  HELP; lists operators and meta statements`)
			case "\\history":
				h.Print(os.Stdout, 50)
			default:
				fmt.Printf("unknown command: %s\n", line)
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt("...> ")
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt("novarel> ")

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		res, err := sess.Exec(stmt)
		if err != nil {
			if c := qerr.CategoryOf(err); c != qerr.CategoryOther {
				fmt.Printf("error (%s): %v\n", c, err)
				continue
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		_ = res.Print(os.Stdout)
	}
}
