package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/itsatony/go-tplc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// exitError carries the process exit code of a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// app holds the state shared by all commands of one invocation
type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zap.NewNop(),
	}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	_ = a.logger.Sync()
	if err == nil {
		return ExitCodeSuccess
	}
	fmt.Fprintf(stderr, FmtError, CLIName, err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitCodeUsageError
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   CLIName,
		Short: CLIDescription,
		Long: `tplc compiles markup templates with components, layouts and embedded
expressions into Go text/template programs, and maps runtime errors of those
programs back to the template lines that produced them.

Configuration is read from --config, TPLC_CONFIG or .tplc.yaml in the current
directory. Every flag can also be set as TPLC_<FLAG> (for example TPLC_ROOT).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringP(FlagConfig, FlagConfigShort, "", "config file (.yaml, .yml or .toml)")
	flags.StringP(FlagRoot, FlagRootShort, "", "template directory for the file loader")
	flags.String(FlagLoader, "", "loader driver (file, memory, postgres)")
	flags.String(FlagDSN, "", "connection string for database loaders")
	flags.String(FlagLogLevel, FlagDefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Bool(FlagNoColor, false, "disable colored output")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.compileCommand(),
		a.checkCommand(),
		a.renderCommand(),
		a.inspectCommand(),
		a.traceCommand(),
		a.watchCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(a.v.GetString(FlagLogLevel), a.stderr)
	if err != nil {
		return withExitCode(ExitCodeUsageError, err)
	}
	a.logger = logger
	if a.v.GetBool(FlagNoColor) {
		color.NoColor = true
	}
	return nil
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidLogLevel, err)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// config merges the config file with flags and environment variables
func (a *app) config() (*tplc.Config, error) {
	path := a.v.GetString(FlagConfig)
	if path == "" {
		probe := viper.New()
		probe.AddConfigPath(".")
		probe.SetConfigName(DefaultConfigName)
		probe.SetConfigType(DefaultConfigType)
		if err := probe.ReadInConfig(); err == nil {
			path = probe.ConfigFileUsed()
		}
	}

	cfg := &tplc.Config{}
	if path != "" {
		loaded, err := tplc.LoadConfig(path)
		if err != nil {
			return nil, withExitCode(ExitCodeUsageError, err)
		}
		cfg = loaded
		a.logger.Debug(tplc.LogMsgConfigLoaded, zap.String(tplc.LogFieldPath, path))
	}
	if root := a.v.GetString(FlagRoot); root != "" {
		cfg.Root = root
	}
	if loader := a.v.GetString(FlagLoader); loader != "" {
		cfg.Loader = loader
	}
	if dsn := a.v.GetString(FlagDSN); dsn != "" {
		cfg.DSN = dsn
	}
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitCodeUsageError, err)
	}
	return cfg, nil
}

// engine builds an engine and its loader from the merged configuration
func (a *app) engine() (*tplc.Engine, *tplc.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	loader, err := cfg.OpenLoader()
	if err != nil {
		return nil, nil, withExitCode(ExitCodeError, err)
	}
	opts := append(cfg.Options(), tplc.WithLoader(loader), tplc.WithLogger(a.logger))
	engine, err := tplc.New(opts...)
	if err != nil {
		return nil, nil, withExitCode(ExitCodeUsageError, err)
	}
	return engine, cfg, nil
}
