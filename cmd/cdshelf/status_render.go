package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cdshelf/internal/preflight"
)

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelError
)

const colorReset = "\x1b[0m"

var levelStyles = map[level]struct{ tag, color string }{
	levelInfo:  {"INFO", "\x1b[34m"},
	levelOK:    {"OK", "\x1b[32m"},
	levelWarn:  {"WARN", "\x1b[33m"},
	levelError: {"ERROR", "\x1b[31m"},
}

const labelWidth = 18

// statusSheet collects the sections of a status report as plain lines.
type statusSheet struct {
	colorize bool
	lines    []string
}

func newStatusSheet(w io.Writer) *statusSheet {
	return &statusSheet{colorize: isTerminal(w)}
}

func (s *statusSheet) paint(color, text string) string {
	if !s.colorize {
		return text
	}
	return color + text + colorReset
}

func (s *statusSheet) section(title string) {
	if len(s.lines) > 0 {
		s.lines = append(s.lines, "")
	}
	s.lines = append(s.lines, s.paint(levelStyles[levelInfo].color, strings.ToUpper(title)))
}

func (s *statusSheet) row(label string, lvl level, detail string) {
	style := levelStyles[lvl]
	tag := s.paint(style.color, fmt.Sprintf("%-5s", style.tag))
	text := fmt.Sprintf("  %s %-*s %s", tag, labelWidth, label, detail)
	s.lines = append(s.lines, strings.TrimRight(text, " "))
}

func (s *statusSheet) checks(results []preflight.Result) {
	for _, r := range results {
		lvl := levelOK
		if !r.Passed {
			lvl = levelError
		}
		s.row(r.Name, lvl, r.Detail)
	}
}

func (s *statusSheet) String() string {
	return strings.Join(s.lines, "\n")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
