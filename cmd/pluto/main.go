// Command pluto is a thin driver over internal/pipeline. The real CLI
// surface (compile/run/test semantics, exit codes matching the target
// binary's own, `emit-ast`/`generate-pt` round-trip) is an external
// collaborator per spec §1 — this binary only exists to drive the
// semantic middle-end end to end and print what it found, the way
// cmd/ailang drives the teacher's own pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plutolang/pluto/internal/binast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/pipeline"
)

var (
	stdlibPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "pluto",
		Short: "Driver for the Pluto semantic middle-end",
	}
	root.PersistentFlags().StringVar(&stdlibPath, "stdlib", "", "path to the standard library tree")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each phase's elapsed time")

	root.AddCommand(checkCmd())
	root.AddCommand(emitASTCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func runPipeline(path string) (*pipeline.Result, error) {
	log := newLogger()
	defer log.Sync() //nolint:errcheck
	return pipeline.Run(pipeline.Config{StdlibPath: stdlibPath, Logger: log}, path)
}

// checkCmd runs every phase over a file and reports diagnostics,
// exiting non-zero on any error — the "compile error" half of spec
// §6's CLI surface, without the codegen half an external collaborator
// owns.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check PATH",
		Short: "Run P1-P7 over a Pluto entry file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(args[0])
			reports := collectReports(res)
			diag.RenderText(os.Stderr, reports)
			diag.RenderSummary(os.Stderr, reports)
			if err != nil {
				os.Exit(1)
			}
			return nil
		},
	}
}

// emitASTCmd prints the declaration-UUID assignment a binary AST
// serializer (out of scope here) would key its cross-references on.
func emitASTCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emit-ast PATH",
		Short: "Dump each declaration's stable id and UUID as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runPipeline(args[0])
			if res.Symbols == nil {
				return err
			}
			out, dumpErr := binast.DumpYAML(res.Symbols)
			if dumpErr != nil {
				return dumpErr
			}
			fmt.Fprint(os.Stdout, string(out))
			if err != nil {
				os.Exit(1)
			}
			return nil
		},
	}
}

func collectReports(res *pipeline.Result) []*diag.Report {
	if res == nil {
		return nil
	}
	var reports []*diag.Report
	for _, e := range res.Errors {
		if r, ok := diag.AsReport(e); ok {
			reports = append(reports, r)
		}
	}
	return reports
}
