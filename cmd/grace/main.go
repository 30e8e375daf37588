package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/nilp0inter/grace/internal/diagnostics"
	"github.com/nilp0inter/grace/internal/evaluator"
	"github.com/nilp0inter/grace/internal/imports"
	"github.com/nilp0inter/grace/internal/infer"
	"github.com/nilp0inter/grace/internal/parser"
	"github.com/nilp0inter/grace/internal/pipeline"
)

var (
	typeOnly = flag.Bool("type", false, "infer and print the type without evaluating")
	yamlMode = flag.Bool("yaml", false, "treat the input as YAML and lift it into a value")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: grace [flags] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Interprets a grace expression from file or stdin and prints `value : type`.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	filePath := ""
	if flag.NArg() == 1 {
		filePath = flag.Arg(0)
	}

	os.Exit(run(filePath))
}

func run(filePath string) int {
	source, err := readInput(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "grace: %v\n", err)
		return 1
	}

	if *yamlMode {
		return runYaml(source)
	}

	ctx := &pipeline.PipelineContext{FilePath: filePath, Source: string(source)}
	ctx = pipeline.New(&parser.Processor{}).Run(ctx)

	// Imports resolve between parsing and inference; stdin input resolves
	// relative to the working directory.
	if ctx.AstRoot != nil && !ctx.Failed() {
		baseDir := "."
		if filePath != "" {
			baseDir = filepath.Dir(filePath)
		}
		resolved, resolveErr := imports.NewResolver().Resolve(ctx.AstRoot, baseDir)
		if resolveErr != nil {
			ctx.Errors = append(ctx.Errors, resolveErr)
		} else {
			ctx.AstRoot = resolved
		}
	}

	stages := []pipeline.Processor{&infer.Processor{}}
	if !*typeOnly {
		stages = append(stages, &evaluator.Processor{})
	}
	ctx = pipeline.New(stages...).Run(ctx)

	if ctx.Failed() {
		for _, diag := range ctx.Errors {
			reportDiagnostic(diag)
		}
		return 1
	}

	if *typeOnly {
		fmt.Println(ctx.InferredType)
		return 0
	}
	fmt.Printf("%s : %s\n", ctx.Value.Inspect(), ctx.InferredType)
	return 0
}

func runYaml(source []byte) int {
	value, liftedType, err := evaluator.DecodeYAML(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "grace: %v\n", err)
		return 1
	}
	if *typeOnly {
		fmt.Println(liftedType)
		return 0
	}
	fmt.Printf("%s : %s\n", value.Inspect(), liftedType)
	return 0
}

func readInput(filePath string) ([]byte, error) {
	if filePath == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filePath)
}

func reportDiagnostic(diag *diagnostics.DiagnosticError) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "\x1b[31merror\x1b[0m %s\n", diag.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "error %s\n", diag.Error())
}
