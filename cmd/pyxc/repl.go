package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".pyxc_history"
	promptMain  = ">>> "
	promptCont  = "... "
	replFile    = "<stdin>"
)

func cmdRepl(args []string) int {
	fs, opts := newFlagSet("repl", os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := opts.initLogging(os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}
	fmt.Printf("%s %s: enter a snippet, end blocks with an empty line, :quit to exit\n", appName, version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readSnippet(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		switch strings.TrimSpace(code) {
		case "":
			continue
		case ":quit", ":q":
			return 0
		case ":passes":
			listPasses(os.Stdout)
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		lower(replFile, code+"\n", opts, os.Stdout, os.Stdout)
	}
}

// readSnippet reads one statement. A first line opening a block keeps
// reading until an empty line.
func readSnippet(ln *liner.State) (string, bool) {
	var lines []string
	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if len(lines) > 0 && strings.TrimSpace(line) == "" {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
		if !continues(lines) {
			return strings.Join(lines, "\n"), true
		}
	}
}

// continues reports whether the snippet read so far is an unfinished
// block: it opened one with a trailing ':' or is a decorator.
func continues(lines []string) bool {
	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "@") {
		return true
	}
	for _, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), ":") {
			return true
		}
	}
	return false
}
