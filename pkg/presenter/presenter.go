// Package presenter provides consistent user-facing CLI output: success,
// error, warning, and informational messages with color support and a
// quiet mode. Structured logs go through pkg/logger; this package is only
// for what the operator reads.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode controls colored output.
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// Presenter writes user-facing messages.
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a presenter on stdout/stderr with color detected from the
// environment.
func New() *Presenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a presenter with explicit outputs and color mode.
func NewWithOptions(output, errorOutput io.Writer, mode ColorMode) *Presenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &Presenter{output: output, errorOutput: errorOutput}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("EVALCOACH_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error writes an error with optional context to stderr. Errors print
// even in quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

// Success writes a success message.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning writes a warning message.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info writes a plain informational message.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section writes an underlined section header.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	header := color.New(color.Bold)
	header.Fprintf(p.output, "%s\n", title)
	header.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Separator writes a visual separator line.
func (p *Presenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// SetQuiet toggles quiet mode; only errors are printed while quiet.
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Global presenter for command-level convenience.
var defaultPresenter = New()

// Error writes an error via the default presenter.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success writes a success message via the default presenter.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning writes a warning via the default presenter.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info writes an informational message via the default presenter.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section writes a section header via the default presenter.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Separator writes a separator via the default presenter.
func Separator() {
	defaultPresenter.Separator()
}

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
