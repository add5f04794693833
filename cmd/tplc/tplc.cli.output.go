package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/itsatony/go-tplc"
	"github.com/mattn/go-runewidth"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	frameColor = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
)

// printResult writes one status line and, for failures, the error detail
func printResult(w io.Writer, r tplc.BatchResult) {
	if r.Err == nil {
		fmt.Fprintf(w, FmtStatusLine, okColor.Sprint(StatusOK), r.Identifier)
		return
	}
	fmt.Fprintf(w, FmtStatusLine, failColor.Sprint(StatusFail), r.Identifier)
	for _, line := range strings.Split(r.Err.Error(), "\n") {
		fmt.Fprintf(w, FmtStatusDetail, line)
	}
}

// printFrames writes a mapped trace, innermost template first
func printFrames(w io.Writer, frames []tplc.Frame) {
	for _, f := range frames {
		fmt.Fprintf(w, FmtFrame, frameColor.Sprint(f.String()))
	}
}

// fit pads or truncates value to exactly width display cells
func fit(value string, width int) string {
	value = strings.NewReplacer("\n", `\n`, "\t", `\t`, "\r", `\r`).Replace(value)
	if runewidth.StringWidth(value) <= width {
		return runewidth.FillRight(value, width)
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// identifiers lists every template the loader knows about, for commands
// run without explicit identifiers
func identifiers(ctx context.Context, loader tplc.Loader) ([]string, error) {
	switch l := loader.(type) {
	case *tplc.FileLoader:
		return l.Identifiers()
	case *tplc.PostgresLoader:
		return l.Identifiers(ctx)
	case *tplc.MemoryLoader:
		return l.Identifiers(), nil
	default:
		return nil, errors.New(ErrMsgListFailed)
	}
}

// closeLoader releases loaders that hold resources
func closeLoader(loader tplc.Loader) {
	if c, ok := loader.(io.Closer); ok {
		_ = c.Close()
	}
}
