package main

import (
	"errors"
	"fmt"
	"os"
	"text/template"

	"github.com/itsatony/go-tplc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) renderCommand() *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   CmdNameRender + " IDENTIFIER",
		Short: "Compile a template and execute it with data",
		Long: `Compile a template, execute the program with data from a YAML or JSON file
(or stdin with "-"), and write the result to stdout. Runtime errors are
reported with the template frames that produced the failing line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := a.engine()
			if err != nil {
				return err
			}
			defer closeLoader(engine.Loader())

			data, err := a.readData(dataFile)
			if err != nil {
				return withExitCode(ExitCodeUsageError, err)
			}
			compiled, err := engine.Compile(args[0])
			if err != nil {
				return withExitCode(ExitCodeCompileError, err)
			}
			tmpl, err := template.New(compiled.Identifier).Funcs(placeholderFuncs(cfg)).Parse(compiled.Content)
			if err != nil {
				return withExitCode(ExitCodeCompileError, compiled.MapTemplateError(err))
			}
			if err := tmpl.Execute(a.stdout, data); err != nil {
				mapped := compiled.MapTemplateError(err)
				var me *tplc.MappedError
				if errors.As(mapped, &me) {
					fmt.Fprintln(a.stderr, ErrMsgRenderFailed)
					printFrames(a.stderr, me.Frames)
				}
				return withExitCode(ExitCodeRuntimeError, mapped)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, FlagData, FlagDataShort, "", "YAML or JSON data file, \"-\" for stdin")
	return cmd
}

// readData decodes the data file. YAML is a superset of JSON, so one
// decoder serves both.
func (a *app) readData(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	var (
		raw []byte
		err error
	)
	if path == "-" {
		dec := yaml.NewDecoder(a.stdin)
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgParseDataFailed, err)
		}
		return data, nil
	}
	if raw, err = os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadDataFailed, err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgParseDataFailed, err)
	}
	return data, nil
}
