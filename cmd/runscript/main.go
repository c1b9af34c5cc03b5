// Command runscript executes a file of statements against a running
// server and prints every result.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tuannm99/novarel/internal"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/sql/parser"
	"github.com/tuannm99/novarel/sqlclient"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 when every statement succeeded,
// 1 on any failure, 2 on usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("runscript", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "config file (yaml)")
	addr := fs.String("addr", "", "server address (default from config)")
	timeout := fs.Duration("timeout", 5*time.Second, "per-statement timeout")
	keepGoing := fs.Bool("k", false, "continue after a failed statement")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: runscript [-config file] [-addr host:port] [-k] script.rel")
		return 2
	}

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *addr == "" {
		*addr = cfg.Server.Addr
	}

	script, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "read script: %v\n", err)
		return 1
	}

	ctx := context.Background()
	c, err := sqlclient.DialContext(ctx, *addr, 2*time.Second)
	if err != nil {
		fmt.Fprintf(stderr, "dial: %v\n", err)
		return 1
	}
	defer func() { _ = c.Close() }()
	c.SetRWTimeout(*timeout)

	failed := 0
	for _, stmt := range parser.SplitScript(string(script)) {
		fmt.Fprintf(stdout, "> %s\n", stmt)
		res, err := c.ExecContext(ctx, stmt)
		if err != nil {
			failed++
			fmt.Fprintf(stdout, "error (%s): %v\n", qerr.CategoryOf(err), err)
			if !*keepGoing {
				return 1
			}
			continue
		}
		_ = res.Print(stdout)
	}
	if failed > 0 {
		return 1
	}
	return 0
}
