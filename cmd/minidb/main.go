package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"minidb/pkg/dbcatalog"
	"minidb/pkg/dblog"
	"minidb/pkg/exec"
	"minidb/pkg/render"
	"minidb/pkg/sql"
)

// config is the REPL's startup configuration, parsed from flags the way
// the engine this module descends from parses its own -db/-data flags.
type config struct {
	DataDir      string
	DatabaseName string
	LogLevel     string
	LogPath      string
}

func parseArgs() config {
	var c config
	flag.StringVar(&c.DataDir, "data", "./data", "data directory path")
	flag.StringVar(&c.DatabaseName, "db", "minidb", "database name")
	flag.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.StringVar(&c.LogPath, "log", "", "log file path (stdout if empty)")
	flag.Parse()
	return c
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	c := parseArgs()

	var logCfg dblog.Config
	logCfg.Level = parseLevel(c.LogLevel)
	logCfg.Format = dblog.FormatText
	if c.LogPath != "" {
		f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logCfg.Output = f
	}
	dblog.Init(logCfg)

	fullPath := filepath.Join(c.DataDir, c.DatabaseName)
	if err := os.MkdirAll(fullPath, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	catalog, err := dbcatalog.Open(fullPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer catalog.Close()

	executor := exec.New(catalog)
	defer executor.Close()

	os.Exit(runREPL(executor))
}

func runREPL(executor *exec.Executor) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "minidb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start input: %v\n", err)
		return 1
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return 0
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" {
			return 0
		}

		stmt, err := sql.Parse(line)
		if err != nil {
			fmt.Println(render.Error(err))
			continue
		}

		res, err := executor.Execute(stmt)
		if err != nil {
			fmt.Println(render.Error(err))
			continue
		}
		fmt.Println(render.Result(res))
	}
}
