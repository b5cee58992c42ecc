package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset  = "\x1b[0m"
	labelWidth = 18
	indent     = "  "
)

var numberPrinter = message.NewPrinter(language.English)

// formatCount renders audience sizes with thousands separators.
func formatCount(n int64) string {
	return numberPrinter.Sprintf("%d", n)
}

// report writes aligned "label: value" lines, coloured when out is a terminal.
type report struct {
	out      io.Writer
	colorize bool
}

func newReport(out io.Writer) *report {
	return &report{out: out, colorize: shouldColorize(out)}
}

func (r *report) section(title string) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	if r.colorize {
		color := statusStyles[statusInfo].color
		heading, rule = color+heading+ansiReset, color+rule+ansiReset
	}
	fmt.Fprintln(r.out, heading)
	fmt.Fprintln(r.out, rule)
}

func (r *report) field(label, value string) {
	fmt.Fprintf(r.out, "%s%-*s %s\n", indent, labelWidth, label+":", value)
}

func (r *report) status(label string, kind statusKind, detail string) {
	style := statusStyles[kind]
	value := "[" + style.label + "]"
	if detail != "" {
		value += " " + detail
	}
	line := fmt.Sprintf("%s%-*s %s", indent, labelWidth, label+":", value)
	if r.colorize {
		line = style.color + line + ansiReset
	}
	fmt.Fprintln(r.out, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
