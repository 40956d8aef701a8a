// Package explain implements an interactive lookup session over
// internal/errors' code taxonomy: a developer staring at a SIG004 in a
// build log can start the session, type the code, and get back its phase
// and description without grepping the source tree.
package explain

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/ImperatorLang/eopsin/internal/errors"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Lookup renders one code's registry entry, or an error line if the code
// is not registered.
func Lookup(code string) string {
	info, ok := errors.GetErrorInfo(code)
	if !ok {
		return fmt.Sprintf("%s: %s is not a registered diagnostic code", yellow("unknown"), code)
	}
	return fmt.Sprintf("%s  %s\n  %s", bold(info.Code), dim("("+info.Phase+")"), info.Description)
}

// sortedCodes returns every registered code, alphabetically, for tab
// completion.
func sortedCodes() []string {
	codes := make([]string, 0, len(errors.ErrorRegistry))
	for code := range errors.ErrorRegistry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Run starts an interactive session reading codes from the terminal and
// writing explanations to out. It returns on EOF or when the user types
// :quit.
func Run(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCompleter(func(partial string) (matches []string) {
		for _, code := range sortedCodes() {
			if strings.HasPrefix(code, partial) {
				matches = append(matches, code)
			}
		}
		return matches
	})

	fmt.Fprintln(out, bold("eopsin diagnostic explainer"))
	fmt.Fprintln(out, dim("type a code (e.g. SIG004), :list, or :quit"))

	for {
		input, err := line.Prompt(cyan("explain> "))
		if err == io.EOF {
			fmt.Fprintln(out, "goodbye")
			return
		}
		if err != nil {
			fmt.Fprintf(out, "error reading input: %v\n", err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q":
			return
		case ":list":
			for _, code := range sortedCodes() {
				fmt.Fprintln(out, Lookup(code))
			}
		default:
			fmt.Fprintln(out, Lookup(strings.ToUpper(input)))
		}
	}
}
