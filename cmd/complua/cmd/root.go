// Package cmd wires the complua CLI: a single cobra root command taking
// one positional input file and translating it to plain-dialect output
// (spec.md §6).
//
// Grounded on the teacher's cmd/dwscript/cmd/root.go (single persistent
// verbose flag, Execute() entrypoint) and cmd/dwscript/cmd/compile.go
// (flag wiring style, reading the parser's accumulated errors before
// proceeding). Library: github.com/spf13/cobra.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/complua/complua/internal/compctx"
	"github.com/complua/complua/internal/config"
	"github.com/complua/complua/internal/diag"
	"github.com/complua/complua/internal/evalrt"
	"github.com/complua/complua/internal/lexer"
	"github.com/complua/complua/internal/logging"
	"github.com/complua/complua/internal/parser"
	"github.com/complua/complua/internal/scratch"
	"github.com/complua/complua/internal/serializer"
)

var (
	outputFlag  string
	debugFlag   bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:     "complua <input-file>",
	Short:   "Compile extended-dialect source to plain-dialect output",
	Args:    cobra.ExactArgs(1),
	Version: "0.1.0-dev",
	RunE:    runCompile,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file (default out.luac, or .compluarc.yaml's output:)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "expand #debug directives")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// FormatFatal renders err as the single fatal diagnostic line spec.md §6
// requires. A *diag.Diagnostic already carries this shape; anything else
// (I/O failures before a source position exists) is wrapped plainly.
func FormatFatal(err error) string {
	if d, ok := err.(*diag.Diagnostic); ok {
		return d.Error()
	}
	return fmt.Sprintf("complua: %s", err)
}

const defaultOutput = "out.luac"

func runCompile(_ *cobra.Command, args []string) error {
	file := args[0]

	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	cfg, err := config.Load(filepath.Dir(file))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	output := resolveOutput(cfg)
	debug := debugFlag || cfg.Debug
	interpreter := cfg.Interpreter
	if interpreter == "" {
		interpreter = config.DefaultInterpreter
	}

	log := logging.New(verboseFlag)

	p := parser.New(lexer.New(string(source)))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		return diag.New(file, first.Pos, "%s", first.Message)
	}

	sd, err := scratch.New(".")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sd.Close(); cerr != nil {
			log.WithError(cerr).Warn("scratch directory cleanup")
		}
	}()

	ev := evalrt.New(file, sd, interpreter, log, parser.ParseFragment)
	ctx := compctx.New(debug)

	body, err := ev.Emit.EmitProgram(prog, ctx)
	if err != nil {
		return err
	}

	out := serializer.Prelude() + body
	if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	log.Infof("wrote %s", output)
	return nil
}

func resolveOutput(cfg config.Config) string {
	if outputFlag != "" {
		return outputFlag
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return defaultOutput
}
