package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/itsatony/go-tplc"
	"github.com/spf13/cobra"
)

func (a *app) compileCommand() *cobra.Command {
	var (
		output   string
		artifact bool
		jobs     int
	)
	cmd := &cobra.Command{
		Use:   CmdNameCompile + " IDENTIFIER...",
		Short: "Compile templates into text/template programs",
		Long: `Compile one or more templates. Without --output the programs are written to
stdout. With --output each program is written to DIR/IDENTIFIER.tmpl, and
--artifact additionally writes the program with its source map to
DIR/IDENTIFIER.tplc.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := a.engine()
			if err != nil {
				return err
			}
			defer closeLoader(engine.Loader())

			results, err := engine.CompileAll(cmd.Context(), args, jobs)
			if err != nil {
				return withExitCode(ExitCodeError, err)
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					printResult(a.stderr, r)
					continue
				}
				if err := a.writeCompiled(r.Compiled, output, artifact); err != nil {
					return withExitCode(ExitCodeError, err)
				}
			}
			if failed > 0 {
				return withExitCode(ExitCodeCompileError, fmt.Errorf("%d %s", failed, ErrMsgCompileFailures))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, FlagOutput, FlagOutputShort, "", "output directory")
	cmd.Flags().BoolVar(&artifact, FlagArtifact, false, "also write the msgpack artifact with source map")
	cmd.Flags().IntVarP(&jobs, FlagJobs, FlagJobsShort, 0, "parallel compilations (default GOMAXPROCS)")
	return cmd
}

func (a *app) writeCompiled(c *tplc.CompiledSource, dir string, artifact bool) error {
	if dir == "" {
		_, err := fmt.Fprint(a.stdout, c.Content)
		return err
	}
	base := filepath.Join(dir, filepath.FromSlash(c.Identifier))
	if err := os.MkdirAll(filepath.Dir(base), DirPermission); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFailed, err)
	}
	program := base + ExtProgram
	if err := os.WriteFile(program, []byte(c.Content), FilePermission); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFailed, err)
	}
	fmt.Fprintf(a.stdout, FmtWrote, program)
	if !artifact {
		return nil
	}
	data, err := tplc.MarshalCompiled(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+ExtArtifact, data, FilePermission); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFailed, err)
	}
	fmt.Fprintf(a.stdout, FmtWrote, base+ExtArtifact)
	return nil
}

func (a *app) checkCommand() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   CmdNameCheck + " [IDENTIFIER...]",
		Short: "Compile templates and verify the generated programs parse",
		Long: `Compile templates and parse each generated program with text/template.
Without arguments every template the loader can list is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := a.engine()
			if err != nil {
				return err
			}
			defer closeLoader(engine.Loader())

			ids := args
			if len(ids) == 0 {
				if ids, err = identifiers(cmd.Context(), engine.Loader()); err != nil {
					return withExitCode(ExitCodeUsageError, err)
				}
			}
			if len(ids) == 0 {
				return withExitCode(ExitCodeUsageError, errors.New(ErrMsgNoTemplates))
			}

			results, err := engine.CompileAll(cmd.Context(), ids, jobs)
			if err != nil {
				return withExitCode(ExitCodeError, err)
			}
			failed := 0
			for _, r := range results {
				if r.Err == nil {
					r.Err = verifyProgram(r.Compiled, placeholderFuncs(cfg))
				}
				if r.Err != nil {
					failed++
				}
				printResult(a.stdout, r)
			}
			fmt.Fprintf(a.stdout, FmtSummary, len(results)-failed, failed)
			if failed > 0 {
				return withExitCode(ExitCodeCompileError, fmt.Errorf("%d %s", failed, ErrMsgCompileFailures))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, FlagJobs, FlagJobsShort, 0, "parallel compilations (default GOMAXPROCS)")
	return cmd
}

// verifyProgram parses the generated program, mapping a parse error back
// to the template that produced the failing line
func verifyProgram(c *tplc.CompiledSource, funcs template.FuncMap) error {
	if _, err := template.New(c.Identifier).Funcs(funcs).Parse(c.Content); err != nil {
		return c.MapTemplateError(err)
	}
	return nil
}

// placeholderFuncs declares the functions configured filters call so that
// programs using them parse. They render nothing.
func placeholderFuncs(cfg *tplc.Config) template.FuncMap {
	funcs := template.FuncMap{}
	for _, fn := range cfg.Filters {
		if fn != "" {
			funcs[fn] = func(args ...any) string { return "" }
		}
	}
	return funcs
}
