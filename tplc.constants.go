package tplc

import "github.com/itsatony/go-tplc/internal"

// Error message constants - all error messages are constants
const (
	// Stage errors
	ErrMsgLexFailed     = "template tokenization failed"
	ErrMsgParseFailed   = "template parsing failed"
	ErrMsgImportFailed  = "template import failed"
	ErrMsgCompileFailed = "template compilation failed"
	ErrMsgRuntimeFailed = "template execution failed"

	// Loader errors
	ErrMsgTemplateNotFound = "template not found"
	ErrMsgLoaderFailed     = "template loader failed"
	ErrMsgInvalidID        = "invalid template identifier"
	ErrMsgLoaderClosed     = "loader is closed"
	ErrMsgNilDB            = "database handle cannot be nil"
	ErrMsgNoLoader         = "no loader configured"

	// Configuration errors
	ErrMsgConfigRead      = "failed to read configuration"
	ErrMsgConfigParse     = "failed to parse configuration"
	ErrMsgConfigFormat    = "unsupported configuration format"
	ErrMsgConfigInvalid   = "invalid configuration value"
	ErrMsgRegisterFailed  = "registration failed"
	ErrMsgEmptyDelimiter  = "delimiters cannot be empty"
	ErrMsgSameDelimiters  = "open and close delimiters must differ"
	ErrMsgNegativeDepth   = "max import depth must be positive"
	ErrMsgEmptyNamespace  = "namespace cannot be empty"
	ErrMsgNoDirectoryBase = "directory provider needs a base path"

	// Codec errors
	ErrMsgEncodeFailed   = "failed to encode compiled source"
	ErrMsgDecodeFailed   = "failed to decode compiled source"
	ErrMsgCodecVersion   = "unsupported compiled source version"
	ErrMsgContextRef     = "context reference out of range"
	ErrMsgContextCycle   = "context parent chain is cyclic"
	ErrMsgIntegerRange   = "integer out of range"
	ErrMsgBatchCancelled = "batch compilation cancelled"
)

// Error code constants for categorization
const (
	ErrCodeLex     = "TPLC_LEX"
	ErrCodeParse   = "TPLC_PARSE"
	ErrCodeImport  = "TPLC_IMPORT"
	ErrCodeCompile = "TPLC_COMPILE"
	ErrCodeConfig  = "TPLC_CONFIG"
	ErrCodeLoader  = "TPLC_LOADER"
	ErrCodeRuntime = "TPLC_RUNTIME"
	ErrCodeCodec   = "TPLC_CODEC"
)

// Metadata keys attached to errors
const (
	MetaKeyPath       = "path"
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyKind       = "kind"
	MetaKeyChain      = "chain"
	MetaKeyTag        = "tag"
	MetaKeyIdentifier = "identifier"
	MetaKeyOption     = "option"
	MetaKeyValue      = "value"
	MetaKeyFormat     = "format"
	MetaKeyGenLine    = "generated_line"
)

// Resource names used with not-found errors
const (
	ResourceTemplate = "template"
)

// Default configuration values
const (
	DefaultEchoOpen        = internal.StrEchoOpen
	DefaultEchoClose       = internal.StrEchoClose
	DefaultRawOpen         = internal.StrRawEchoOpen
	DefaultRawClose        = internal.StrRawEchoClose
	DefaultOutputLeft      = internal.DefaultOutputLeftDelim
	DefaultOutputRight     = internal.DefaultOutputRightDelim
	DefaultMaxImportDepth  = internal.DefaultMaxImportDepth
	DefaultConcurrency     = 4
	DefaultTemplateExt     = ".html"
	DefaultPostgresTable   = "tplc_templates"
	DefaultQueryTimeoutSec = 5
)

// Log message constants
const (
	LogMsgEngineCreated     = "engine created"
	LogMsgCompileStart      = "compiling template"
	LogMsgCompileDone       = "template compiled"
	LogMsgCompileFailed     = "template compilation failed"
	LogMsgBatchStart        = "batch compilation started"
	LogMsgBatchDone         = "batch compilation finished"
	LogMsgLoaderHit         = "template loaded"
	LogMsgLoaderMiss        = "template not found"
	LogMsgConfigLoaded      = "configuration loaded"
	LogMsgPostgresConnected = "postgres loader ready"
)

// Log field names
const (
	LogFieldIdentifier = "identifier"
	LogFieldPath       = "path"
	LogFieldCount      = "count"
	LogFieldDeps       = "dependencies"
	LogFieldBytes      = "bytes"
	LogFieldError      = "error"
	LogFieldFormat     = "format"
	LogFieldTable      = "table"
	LogFieldFailed     = "failed"
)

// Config file formats
const (
	ConfigFormatYAML = "yaml"
	ConfigFormatTOML = "toml"
)
