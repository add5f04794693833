package main

// Command names
const (
	CmdNameCompile = "compile"
	CmdNameCheck   = "check"
	CmdNameRender  = "render"
	CmdNameInspect = "inspect"
	CmdNameTrace   = "trace"
	CmdNameWatch   = "watch"
	CmdNameVersion = "version"
)

// Flag names
const (
	FlagConfig   = "config"
	FlagRoot     = "root"
	FlagLoader   = "loader"
	FlagDSN      = "dsn"
	FlagLogLevel = "log-level"
	FlagNoColor  = "no-color"
	FlagOutput   = "output"
	FlagArtifact = "artifact"
	FlagJobs     = "jobs"
	FlagData     = "data"
	FlagStage    = "stage"
	FlagFormat   = "format"
	FlagDebounce = "debounce"
)

// Flag short forms
const (
	FlagConfigShort = "c"
	FlagRootShort   = "r"
	FlagOutputShort = "o"
	FlagJobsShort   = "j"
	FlagDataShort   = "d"
	FlagFormatShort = "F"
)

// Flag defaults
const (
	FlagDefaultLogLevel = "error"
	FlagDefaultStage    = StageTransformed
	FlagDefaultFormat   = OutputFormatText
)

// Inspect stages
const (
	StageTokens      = "tokens"
	StageAST         = "ast"
	StageTransformed = "transformed"
	StageMap         = "map"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess      = 0
	ExitCodeError        = 1
	ExitCodeUsageError   = 2
	ExitCodeCompileError = 3
	ExitCodeRuntimeError = 4
)

// Environment and config discovery
const (
	EnvPrefix         = "TPLC"
	DefaultConfigName = ".tplc"
	DefaultConfigType = "yaml"
)

// File extensions and permissions
const (
	ExtProgram     = ".tmpl"
	ExtArtifact    = ".tplc"
	FilePermission = 0o644
	DirPermission  = 0o755
)

// Error messages - ALL must be constants
const (
	ErrMsgInvalidStage     = "invalid inspect stage"
	ErrMsgInvalidFormat    = "invalid output format"
	ErrMsgInvalidLine      = "generated line must be a positive integer"
	ErrMsgInvalidLogLevel  = "invalid log level"
	ErrMsgNoTemplates      = "no templates to process"
	ErrMsgReadDataFailed   = "failed to read data file"
	ErrMsgParseDataFailed  = "failed to parse data file"
	ErrMsgWriteFailed      = "failed to write output"
	ErrMsgListFailed       = "cannot list templates for this loader"
	ErrMsgProgramInvalid   = "generated program does not parse"
	ErrMsgCompileFailures  = "templates failed to compile"
	ErrMsgLineNotMapped    = "generated line is not mapped"
	ErrMsgRenderFailed     = "template execution failed"
	ErrMsgConfigLoadFailed = "failed to load configuration"
)

// CLI metadata
const (
	CLIName        = "tplc"
	CLIDescription = "Compile markup templates into Go text/template programs"
	VersionUnknown = "unknown"
)

// Output text
const (
	StatusOK          = "ok"
	StatusFail        = "FAIL"
	FmtStatusLine     = "%s  %s\n"
	FmtStatusDetail   = "      %s\n"
	FmtSummary        = "%d compiled, %d failed\n"
	FmtFrame          = "  at %s\n"
	FmtError          = "%s: %v\n"
	FmtVersion        = "%s version %s\nCommit: %s\nBuilt: %s\nGo: %s\n"
	FmtWrote          = "wrote %s\n"
	FmtMapHeader      = "GEN      SOURCE"
	FmtTokenLine      = "%-*s %s\n"
	FmtMapRow         = "%-8s %s\n"
	FmtDependencyLine = "  %s  %s\n"
	MaxValueWidth     = 60
)
