// Command eopsinc is a thin operator shell around the compiler core: it
// never parses source itself (the host platform's parser is a peripheral
// collaborator, not this repository's concern) but gives a terminal user
// two things the core doesn't: a place to load project configuration
// (internal/config) and a way to look a diagnostic code up without
// reading internal/errors' source (internal/explain).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ImperatorLang/eopsin/internal/config"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/explain"
	"github.com/ImperatorLang/eopsin/internal/schema"
)

var (
	Version = "dev"

	red = color.New(color.FgRed).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Println("eopsinc", Version)
	case "explain":
		runExplain(os.Args[2:])
	case "config":
		runConfig()
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`eopsinc - diagnostic and configuration tooling for the eopsin compiler

Usage:
  eopsinc explain [CODE]   print a diagnostic code's description, or start
                           an interactive lookup session if CODE is omitted
  eopsinc config          print the effective eopsin.yml for this directory
  eopsinc version         print the build version`)
}

func runExplain(args []string) {
	if len(args) == 0 {
		explain.Run(os.Stdout)
		return
	}
	fmt.Println(explain.Lookup(args[0]))
}

func runConfig() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	cfg, err := config.LoadNearest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	schema.SetCompactMode(cfg.Diagnostics.Compact)

	fmt.Printf("color:        %v\n", cfg.Diagnostics.Color)
	fmt.Printf("compact_json: %v\n", cfg.Diagnostics.Compact)
	if len(cfg.Domain.Allow) == 0 {
		fmt.Println("domain.allow: (all registered classes)")
	} else {
		fmt.Println("domain.allow:")
		for _, name := range cfg.Domain.Allow {
			fmt.Println("  -", name)
		}
	}
	fmt.Println()
	fmt.Println("registered diagnostic codes:", len(errors.ErrorRegistry))
}
