package internal

import (
	"fmt"
	"strings"
)

// LexErrorKind classifies lexer failures
type LexErrorKind string

// Lexer error kinds
const (
	LexErrorUnterminated   LexErrorKind = "unterminated"
	LexErrorStalledGrammar LexErrorKind = "stalled_grammar"
)

// ParseErrorKind classifies parser failures
type ParseErrorKind string

// Parser error kinds
const (
	ParseErrorUnbalancedTag   ParseErrorKind = "unbalanced_tag"
	ParseErrorUnexpectedToken ParseErrorKind = "unexpected_token"
)

// ImportErrorKind classifies import resolution failures
type ImportErrorKind string

// Import error kinds
const (
	ImportErrorUnresolved ImportErrorKind = "unresolved"
	ImportErrorCycle      ImportErrorKind = "cycle"
	ImportErrorFailed     ImportErrorKind = "failed"
)

// CompilerErrorKind classifies code generation failures
type CompilerErrorKind string

// Compiler error kinds
const (
	CompilerErrorNoRenderer CompilerErrorKind = "no_renderer"
)

// Lexer error message constants
const (
	ErrMsgUnterminatedTag       = "unterminated tag"
	ErrMsgUnterminatedComment   = "unterminated comment"
	ErrMsgUnterminatedEcho      = "unterminated expression"
	ErrMsgUnterminatedDirective = "unterminated directive body"
	ErrMsgUnterminatedString    = "unterminated string literal"
	ErrMsgStalledGrammar        = "grammar produced tokens without consuming input"
)

// Parser error message constants
const (
	ErrMsgMismatchedTag      = "mismatched closing tag"
	ErrMsgStrayCloseTag      = "closing tag without matching open tag"
	ErrMsgUnclosedTag        = "tag is never closed"
	ErrMsgUnknownDirective   = "unknown directive"
	ErrMsgDirectiveNoBody    = "directive requires a body"
	ErrMsgDirectiveBody      = "directive does not accept a body"
	ErrMsgUnexpectedToken    = "unexpected token"
	ErrMsgNoSyntax           = "no syntax handles token"
	ErrMsgMalformedAttribute = "malformed attribute"
)

// Import error message constants
const (
	ErrMsgUnresolvedImport = "unable to resolve import"
	ErrMsgImportCycle      = "import cycle detected"
	ErrMsgImportFailed     = "import failed"
	ErrMsgImportTooDeep    = "maximum import depth exceeded"
	ErrMsgMissingPath      = "missing path attribute"
	ErrMsgExtendsPosition  = "extends must be the first element of a template"
)

// Compiler error message constants
const (
	ErrMsgNoRenderer = "no renderer supports node"
)

// LexError is returned when the source cannot be tokenized
type LexError struct {
	Kind     LexErrorKind
	Message  string
	Path     string
	Grammar  string
	Position Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf(ErrFmtWithPosition, e.Message, locate(e.Path, e.Position))
}

// ParseError is returned when the token stream does not form a valid tree
type ParseError struct {
	Kind     ParseErrorKind
	Message  string
	Path     string
	Tag      string
	Position Position
}

func (e *ParseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf(ErrFmtWithDetail, e.Message, e.Tag, locate(e.Path, e.Position))
	}
	return fmt.Sprintf(ErrFmtWithPosition, e.Message, locate(e.Path, e.Position))
}

// ImportError is returned when an import or layout cannot be resolved
type ImportError struct {
	Kind       ImportErrorKind
	Message    string
	Path       string
	Tag        string
	Identifier string
	Chain      []string
	Position   Position
	Cause      error
}

func (e *ImportError) Error() string {
	var msg string
	if e.Tag != "" {
		msg = fmt.Sprintf(ErrFmtWithDetail, e.Message, e.Tag, locate(e.Path, e.Position))
	} else {
		msg = fmt.Sprintf(ErrFmtWithPosition, e.Message, locate(e.Path, e.Position))
	}
	if len(e.Chain) > 0 {
		msg += " [" + strings.Join(e.Chain, ChainSeparator) + "]"
	}
	if e.Cause != nil {
		msg = fmt.Sprintf(ErrFmtWithCause, msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the inner loader, parse or import failure
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// CompilerError is returned when a node cannot be rendered
type CompilerError struct {
	Kind     CompilerErrorKind
	Message  string
	Path     string
	Node     string
	Position Position
}

func (e *CompilerError) Error() string {
	return fmt.Sprintf(ErrFmtWithDetail, e.Message, e.Node, locate(e.Path, e.Position))
}

func locate(path string, pos Position) string {
	if path == "" {
		return pos.String()
	}
	return fmt.Sprintf(ErrFmtPosition, path, pos.Line, pos.Column)
}
