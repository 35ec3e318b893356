package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter styles one kind of value in command output. When color is off
// the value is wrapped in plain-text markers instead, so `kaitiaki log` and
// `kaitiaki doctor` stay readable when piped.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func newFormatter(attr color.Attribute, prefix, suffix string) Formatter {
	return Formatter{color: color.New(attr), prefix: prefix, suffix: suffix}
}

// Sprint renders the values as fmt.Sprint would, then styles them.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf is Sprint with a format string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if colorDisabled() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// EnsureNewline terminates gpg-provided text (status messages, armored
// blocks) before it is printed.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// colorDisabled honours NO_COLOR (https://no-color.org/) on top of the
// terminal detection fatih/color already does for TERM=dumb and pipes.
func colorDisabled() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code is a command the user can run next, such as a doctor suggestion.
	Code = newFormatter(color.FgYellow, "`", "`")

	// Path is a file being encrypted, signed or verified, or the homedir.
	Path = newFormatter(color.FgYellow, "", "")

	Flag = newFormatter(color.FgYellow, "", "")

	// KeyID covers long key IDs, fingerprints and keygrips. They are never
	// decorated, so copied IDs can be pasted straight back into gpg.
	KeyID = newFormatter(color.FgMagenta, "", "")

	Success = newFormatter(color.FgGreen, "", "")
	Error   = newFormatter(color.FgRed, "", "")
	Warning = newFormatter(color.FgYellow, "", "")

	// Info marks hints and the "->" of output paths.
	Info = newFormatter(color.FgCyan, "", "")

	// Highlight is a user ID, recipient or signer as gpg reported it.
	Highlight = newFormatter(color.FgCyan, "'", "'")

	// Muted is secondary detail: validity, capabilities, invocation IDs.
	Muted = newFormatter(color.FgHiBlack, "(", ")")
)
