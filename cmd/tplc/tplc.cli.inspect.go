package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-tplc"
	"github.com/spf13/cobra"
)

// tokenTypeWidth is the column width of token types in inspect output
const tokenTypeWidth = 20

func (a *app) inspectCommand() *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   CmdNameInspect + " IDENTIFIER",
		Short: "Show a template after a compilation stage",
		Long: `Show the intermediate form of a template:

  tokens       top-level lexer tokens
  ast          parsed tree before imports are resolved
  transformed  tree after layouts and imports are resolved, with dependencies
  map          source map of the generated program`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := a.engine()
			if err != nil {
				return err
			}
			defer closeLoader(engine.Loader())

			id := args[0]
			switch stage {
			case StageTokens, StageAST:
				src, err := engine.Loader().Load(id)
				if err != nil {
					return withExitCode(ExitCodeError, err)
				}
				if stage == StageTokens {
					return a.printTokens(engine, id, src.Code)
				}
				tpl, err := engine.Parse(id, src.Code)
				if err != nil {
					return withExitCode(ExitCodeCompileError, err)
				}
				fmt.Fprintln(a.stdout, tpl.String())
			case StageTransformed:
				tpl, deps, err := engine.Build(id)
				if err != nil {
					return withExitCode(ExitCodeCompileError, err)
				}
				fmt.Fprintln(a.stdout, tpl.String())
				for _, d := range deps {
					fmt.Fprintf(a.stdout, FmtDependencyLine, d.Identifier, dimColor.Sprint(d.Path))
				}
			case StageMap:
				compiled, err := engine.Compile(id)
				if err != nil {
					return withExitCode(ExitCodeCompileError, err)
				}
				a.printSourceMap(compiled)
			default:
				return withExitCode(ExitCodeUsageError, errors.New(ErrMsgInvalidStage))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, FlagStage, FlagDefaultStage, "tokens, ast, transformed or map")
	return cmd
}

func (a *app) printTokens(engine *tplc.Engine, id, code string) error {
	tokens, err := engine.Tokenize(id, code)
	if err != nil {
		return withExitCode(ExitCodeCompileError, err)
	}
	for _, t := range tokens {
		fmt.Fprintf(a.stdout, FmtTokenLine, tokenTypeWidth, fit(string(t.Type), tokenTypeWidth),
			fmt.Sprintf("%s %s", dimColor.Sprint(t.Position.String()), fit(t.Value, MaxValueWidth)))
	}
	return nil
}

func (a *app) printSourceMap(c *tplc.CompiledSource) {
	fmt.Fprintln(a.stdout, FmtMapHeader)
	for _, e := range c.SourceMap.Entries {
		gen := strconv.Itoa(e.GeneratedLine)
		if e.GeneratedEndLine != e.GeneratedLine {
			gen += "-" + strconv.Itoa(e.GeneratedEndLine)
		}
		frame := tplc.Frame{Identifier: e.Context.Identifier, Path: e.Context.Path, Line: e.Line, Column: e.Column}
		fmt.Fprintf(a.stdout, FmtMapRow, gen, frame.String())
	}
}

func (a *app) traceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   CmdNameTrace + " IDENTIFIER LINE",
		Short: "Map a line of the generated program back to its templates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line <= 0 {
				return withExitCode(ExitCodeUsageError, errors.New(ErrMsgInvalidLine))
			}
			engine, _, err := a.engine()
			if err != nil {
				return err
			}
			defer closeLoader(engine.Loader())

			compiled, err := engine.Compile(args[0])
			if err != nil {
				return withExitCode(ExitCodeCompileError, err)
			}
			frames := compiled.Lookup(line)
			if len(frames) == 0 {
				return withExitCode(ExitCodeError, errors.New(ErrMsgLineNotMapped))
			}
			printFrames(a.stdout, frames)
			return nil
		},
	}
}
