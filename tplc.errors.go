package tplc

import (
	"errors"
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-tplc/internal"
)

// Stage error types. The public API returns them wrapped in a
// *cuserr.CustomError; use errors.As to reach the typed value.
type (
	LexError      = internal.LexError
	ParseError    = internal.ParseError
	ImportError   = internal.ImportError
	CompilerError = internal.CompilerError
	MappedError   = internal.MappedError
)

// Error kinds
const (
	LexErrorUnterminated      = internal.LexErrorUnterminated
	LexErrorStalledGrammar    = internal.LexErrorStalledGrammar
	ParseErrorUnbalancedTag   = internal.ParseErrorUnbalancedTag
	ParseErrorUnexpectedToken = internal.ParseErrorUnexpectedToken
	ImportErrorUnresolved     = internal.ImportErrorUnresolved
	ImportErrorCycle          = internal.ImportErrorCycle
	ImportErrorFailed         = internal.ImportErrorFailed
	CompilerErrorNoRenderer   = internal.CompilerErrorNoRenderer
)

// wrapStageError converts an error from the pipeline into a CustomError
// carrying position metadata. Import errors are checked first since they
// wrap the lexer and parser errors of nested templates.
func wrapStageError(err error, identifier string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*cuserr.CustomError); ok {
		return err
	}

	var (
		importErr *internal.ImportError
		lexErr    *internal.LexError
		parseErr  *internal.ParseError
		compErr   *internal.CompilerError
	)
	switch {
	case errors.As(err, &importErr):
		return withPosition(cuserr.WrapStdError(err, ErrCodeImport, ErrMsgImportFailed), importErr.Path, importErr.Position).
			WithMetadata(MetaKeyKind, string(importErr.Kind)).
			WithMetadata(MetaKeyChain, strings.Join(importErr.Chain, internal.ChainSeparator)).
			WithMetadata(MetaKeyTag, importErr.Tag).
			WithMetadata(MetaKeyIdentifier, importErr.Identifier)
	case errors.As(err, &lexErr):
		return withPosition(cuserr.WrapStdError(err, ErrCodeLex, ErrMsgLexFailed), lexErr.Path, lexErr.Position).
			WithMetadata(MetaKeyKind, string(lexErr.Kind))
	case errors.As(err, &parseErr):
		return withPosition(cuserr.WrapStdError(err, ErrCodeParse, ErrMsgParseFailed), parseErr.Path, parseErr.Position).
			WithMetadata(MetaKeyKind, string(parseErr.Kind)).
			WithMetadata(MetaKeyTag, parseErr.Tag)
	case errors.As(err, &compErr):
		return withPosition(cuserr.WrapStdError(err, ErrCodeCompile, ErrMsgCompileFailed), compErr.Path, compErr.Position).
			WithMetadata(MetaKeyKind, string(compErr.Kind))
	default:
		return NewLoaderError(ErrMsgLoaderFailed, identifier, err)
	}
}

func withPosition(err *cuserr.CustomError, path string, pos internal.Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyPath, path).
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column))
}

// NewLoaderError creates a loader error for identifier
func NewLoaderError(msg, identifier string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeLoader, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeLoader, msg)
	}
	return err.WithMetadata(MetaKeyIdentifier, identifier)
}

// NewTemplateNotFoundError creates a not-found error for identifier
func NewTemplateNotFoundError(identifier string) error {
	return cuserr.NewNotFoundError(ResourceTemplate, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyIdentifier, identifier)
}

// NewInvalidIdentifierError creates an error for identifiers that escape
// the loader root or are empty
func NewInvalidIdentifierError(identifier string) error {
	return cuserr.NewValidationError(ErrCodeLoader, ErrMsgInvalidID).
		WithMetadata(MetaKeyIdentifier, identifier)
}

// NewConfigError creates a configuration error
func NewConfigError(msg, option, value string) error {
	return cuserr.NewValidationError(ErrCodeConfig, msg).
		WithMetadata(MetaKeyOption, option).
		WithMetadata(MetaKeyValue, value)
}

// NewConfigFileError wraps a failure to read or decode a configuration file
func NewConfigFileError(msg, path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyPath, path)
}

// NewCodecError wraps a failure to encode or decode a compiled source
func NewCodecError(msg string, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeCodec, msg)
	}
	return cuserr.WrapStdError(cause, ErrCodeCodec, msg)
}

// NewRuntimeError wraps a mapped runtime error of the generated program.
// The innermost frame's location is attached as metadata.
func NewRuntimeError(mapped *MappedError) error {
	err := cuserr.WrapStdError(mapped, ErrCodeRuntime, ErrMsgRuntimeFailed).
		WithMetadata(MetaKeyGenLine, strconv.Itoa(mapped.GeneratedLine))
	if len(mapped.Frames) == 0 {
		return err
	}
	f := mapped.Frames[0]
	chain := make([]string, 0, len(mapped.Frames))
	for i := len(mapped.Frames) - 1; i >= 0; i-- {
		chain = append(chain, mapped.Frames[i].Identifier)
	}
	return err.
		WithMetadata(MetaKeyPath, f.Path).
		WithMetadata(MetaKeyLine, strconv.Itoa(f.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(f.Column)).
		WithMetadata(MetaKeyChain, strings.Join(chain, internal.ChainSeparator))
}
