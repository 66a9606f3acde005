package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

var colorDisabled atomic.Bool

// DisableColors disables ANSI color output.
func DisableColors() {
	colorDisabled.Store(true)
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorDisabled.Store(false)
}

// palette wraps text in ANSI color codes when on.
type palette bool

func (p palette) color(code, text string) string {
	if !p {
		return text
	}
	return code + text + colorReset
}

func (p palette) red(text string) string   { return p.color(colorRed, text) }
func (p palette) cyan(text string) string  { return p.color(colorCyan, text) }
func (p palette) white(text string) string { return p.color(colorWhite, text) }
func (p palette) gray(text string) string  { return p.color(colorGray, text) }
func (p palette) bold(text string) string  { return p.color(colorBold, text) }

func terminal() palette { return palette(!colorDisabled.Load()) }

// Format returns a multi-line error report for terminal display.
func (e *Error) Format() string {
	return e.format(terminal())
}

// Plain returns the Format report without color codes, for HTTP bodies
// and log files.
func (e *Error) Plain() string {
	return e.format(palette(false))
}

func (e *Error) format(p palette) string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(p.red(p.bold("ERROR ")))
		b.WriteString(p.white(p.bold(e.Code + ": ")))
		b.WriteString(p.white(e.Message))
	} else {
		b.WriteString(p.red(p.bold("ERROR: ")))
		b.WriteString(p.white(e.Message))
	}
	b.WriteString("\n\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Cause chain, outermost first
	for cause := e.Wrapped; cause != nil; cause = stderrors.Unwrap(cause) {
		b.WriteString("  ")
		b.WriteString(p.gray("Caused by: "))
		b.WriteString(causeMessage(cause))
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(p.cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	if len(e.Stack) > 0 {
		b.WriteString("  ")
		b.WriteString(p.gray("Stack:"))
		b.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(string(e.Stack), "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(p.gray(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *Error) FormatCompact() string {
	return e.Error()
}

// causeMessage returns the message contributed by err itself, without the
// text of the errors it wraps.
func causeMessage(err error) string {
	msg := err.Error()
	if inner := stderrors.Unwrap(err); inner != nil {
		msg = strings.TrimSuffix(msg, ": "+inner.Error())
	}
	return msg
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Pretty renders any error for terminal logs. Errors carrying a code use
// Format; anything else gets a one-line header.
func Pretty(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Format()
	}
	p := terminal()
	return fmt.Sprintf("\n%s %s\n", p.red(p.bold("ERROR:")), err.Error())
}
