package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X main.Version=..."
var (
	Version   = ""
	GitCommit = ""
	BuildDate = ""
)

// versionInfo holds version information
type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (a *app) versionCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// skip config and logger setup
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := getVersionInfo()
			switch format {
			case OutputFormatText:
				outputVersionText(info, a.stdout)
				return nil
			case OutputFormatJSON:
				return outputVersionJSON(info, a.stdout)
			default:
				return withExitCode(ExitCodeUsageError, errors.New(ErrMsgInvalidFormat))
			}
		},
	}
	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "text or json")
	return cmd
}

func getVersionInfo() versionInfo {
	info := versionInfo{
		Version:   valueOrUnknown(Version),
		Commit:    valueOrUnknown(GitCommit),
		BuildDate: valueOrUnknown(BuildDate),
		GoVersion: runtime.Version(),
	}
	// go install builds carry module and vcs data instead of ldflags
	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == VersionUnknown && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == VersionUnknown:
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == VersionUnknown:
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

func outputVersionText(v versionInfo, w io.Writer) {
	fmt.Fprintf(w, FmtVersion, okColor.Sprint(CLIName), v.Version,
		dimColor.Sprint(v.Commit), dimColor.Sprint(v.BuildDate), v.GoVersion)
}

func outputVersionJSON(v versionInfo, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return VersionUnknown
	}
	return s
}
