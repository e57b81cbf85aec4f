// Command pyrsc is a thin CLI front end over internal/pipeline. The CLI
// surface itself is out of scope (spec.md §1), but the ambient
// logging/coloring stack the teacher's cmd/ailang/main.go carries still
// belongs here: version/help flags, fatih/color-rendered diagnostics, and
// tracelog-rendered phase timing when -trace is set.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/pyrs-lang/pyrs/internal/pipeline"
	"github.com/pyrs-lang/pyrs/internal/tracelog"
)

var (
	// Version is set by ldflags at build time.
	Version = "dev"

	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		traceFlag   = flag.Bool("trace", false, "print per-phase timing to stderr")
		outFlag     = flag.String("o", "", "write Rust output to this path instead of stdout")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("pyrsc %s\n", bold(Version))
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing input file\nUsage: pyrsc [-trace] [-o out.rs] <file.py>\n", red("Error"))
		os.Exit(1)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
		os.Exit(1)
	}

	var trace *tracelog.Tracer
	if *traceFlag {
		trace = tracelog.New(os.Stderr)
	} else {
		trace = tracelog.New(nil)
	}

	result, err := pipeline.Run(pipeline.Config{Trace: trace}, pipeline.Source{Code: string(src), Filename: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
		os.Exit(1)
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s [%s/%s] %s\n", yellow("warning:"), d.Phase, d.Code, d.Message)
	}

	var out io.Writer = os.Stdout
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, result.Rust)
}
