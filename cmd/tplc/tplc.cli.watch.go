package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/itsatony/go-tplc"
	"github.com/spf13/cobra"
)

func (a *app) watchCommand() *cobra.Command {
	var (
		output   string
		artifact bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   CmdNameWatch + " [IDENTIFIER...]",
		Short: "Recompile templates whenever their files change",
		Long: `Compile templates and recompile them whenever one of the files they were
built from changes. Without arguments every template under the root is
watched. Requires the file loader. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := a.engine()
			if err != nil {
				return err
			}
			watcher, err := tplc.NewWatcher(engine, debounce)
			if err != nil {
				return withExitCode(ExitCodeUsageError, err)
			}

			ids := args
			if len(ids) == 0 {
				if ids, err = identifiers(cmd.Context(), engine.Loader()); err != nil {
					return withExitCode(ExitCodeUsageError, err)
				}
			}
			watcher.Track(ids...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watcher.Run(ctx, func(r tplc.BatchResult) {
				printResult(a.stderr, r)
				if r.Err != nil {
					return
				}
				if err := a.writeCompiled(r.Compiled, output, artifact); err != nil {
					printResult(a.stderr, tplc.BatchResult{Identifier: r.Identifier, Err: err})
				}
			})
		},
	}
	cmd.Flags().StringVarP(&output, FlagOutput, FlagOutputShort, "", "output directory")
	cmd.Flags().BoolVar(&artifact, FlagArtifact, false, "also write the msgpack artifact with source map")
	cmd.Flags().DurationVar(&debounce, FlagDebounce, tplc.DefaultWatchDebounce, "quiet period before recompiling")
	return cmd
}
