package internal

// TokenType represents the type of a lexical token
type TokenType string

// Top-level token types. Composite regions carry their pieces in Token.Children.
const (
	TokenTypeText            TokenType = "TEXT"
	TokenTypeTag             TokenType = "HTML:TAG"
	TokenTypeVerbatim        TokenType = "HTML:VERBATIM"
	TokenTypeComment         TokenType = "HTML:COMMENT"
	TokenTypeEcho            TokenType = "DYNAMIC:ECHO"
	TokenTypeRawEcho         TokenType = "DYNAMIC:RAW_ECHO"
	TokenTypeDirective       TokenType = "DYNAMIC:DIRECTIVE"
	TokenTypeTemplateComment TokenType = "DYNAMIC:COMMENT"
	TokenTypeInline          TokenType = "INLINE:SLOT"
	TokenTypeEscape          TokenType = "DYNAMIC:ESCAPE"
	TokenTypeDeclare         TokenType = "DYNAMIC:DECLARE"
)

// Markup child token types
const (
	TokenTypeTagOpen       TokenType = "HTML:OPEN"
	TokenTypeTagOpenShort  TokenType = "HTML:OPEN_SHORT"
	TokenTypeKeyword       TokenType = "HTML:KEYWORD"
	TokenTypeWhitespace    TokenType = "HTML:WHITESPACE"
	TokenTypeEquals        TokenType = "HTML:EQUAL"
	TokenTypeAttrValue     TokenType = "HTML:ATTRIBUTE"
	TokenTypeTagClose      TokenType = "HTML:CLOSE"
	TokenTypeTagCloseShort TokenType = "HTML:CLOSE_SHORT"
	TokenTypeQuote         TokenType = "HTML:QUOTE"
	TokenTypeCommentOpen   TokenType = "HTML:COMMENT_OPEN"
	TokenTypeCommentBody   TokenType = "HTML:COMMENT_BODY"
	TokenTypeCommentClose  TokenType = "HTML:COMMENT_CLOSE"
)

// Dynamic child token types
const (
	TokenTypeOpenDelim     TokenType = "DYNAMIC:OPEN"
	TokenTypeCloseDelim    TokenType = "DYNAMIC:CLOSE"
	TokenTypeBody          TokenType = "DYNAMIC:BODY"
	TokenTypeDirectiveChar TokenType = "DYNAMIC:AT"
	TokenTypeDirectiveName TokenType = "DYNAMIC:KEYWORD"
	TokenTypeBodyOpen      TokenType = "DYNAMIC:BODY_OPEN"
	TokenTypeBodyClose     TokenType = "DYNAMIC:BODY_CLOSE"
)

// Inline child token types
const (
	TokenTypeInlineOpen    TokenType = "INLINE:OPEN"
	TokenTypeInlineName    TokenType = "INLINE:NAME"
	TokenTypeInlineSep     TokenType = "INLINE:SEPARATOR"
	TokenTypeInlineDefault TokenType = "INLINE:DEFAULT"
	TokenTypeInlineClose   TokenType = "INLINE:CLOSE"
)

// Grammar names
const (
	GrammarNameHTML    = "html"
	GrammarNameDynamic = "dynamic"
	GrammarNameInline  = "inline"
)

// NodeType identifies AST node types
type NodeType int

// Node type constants
const (
	NodeTypeText NodeType = iota
	NodeTypeTag
	NodeTypeDynamic
	NodeTypeDirective
	NodeTypeComment
	NodeTypeSlot
)

// Node type string names for debugging
const (
	NodeTypeNameText      = "TEXT"
	NodeTypeNameTag       = "TAG"
	NodeTypeNameDynamic   = "DYNAMIC"
	NodeTypeNameDirective = "DIRECTIVE"
	NodeTypeNameComment   = "COMMENT"
	NodeTypeNameSlot      = "SLOT"
	NodeTypeNameUnknown   = "UNKNOWN"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeTag:
		return NodeTypeNameTag
	case NodeTypeDynamic:
		return NodeTypeNameDynamic
	case NodeTypeDirective:
		return NodeTypeNameDirective
	case NodeTypeComment:
		return NodeTypeNameComment
	case NodeTypeSlot:
		return NodeTypeNameSlot
	default:
		return NodeTypeNameUnknown
	}
}

// Character constants
const (
	CharLess        = '<'
	CharGreater     = '>'
	CharEquals      = '='
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBacktick    = '`'
	CharSlash       = '/'
	CharStar        = '*'
	CharBackslash   = '\\'
	CharAt          = '@'
	CharDollar      = '$'
	CharPipe        = '|'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
	CharFormFeed    = '\f'
	CharParenOpen   = '('
	CharParenClose  = ')'
	CharBraceOpen   = '{'
	CharBraceClose  = '}'
	CharBrackOpen   = '['
	CharBrackClose  = ']'
)

// Source dialect delimiters
const (
	StrEchoOpen        = "{{"
	StrEchoClose       = "}}"
	StrRawEchoOpen     = "{!!"
	StrRawEchoClose    = "!!}"
	StrCommentOpen     = "{{--"
	StrCommentClose    = "--}}"
	StrHTMLCommentOpen = "<!--"
	StrHTMLCommentEnd  = "-->"
	StrInlineOpen      = "${"
	StrTagOpenShort    = "</"
	StrTagCloseShort   = "/>"
)

// Directive names with grammar-level meaning
const (
	DirectiveDeclare = "declare"
)

// Declare directive options
const (
	DeclareOptSyntax     = "syntax"
	DeclareOptOpen       = "open"
	DeclareOptClose      = "close"
	DeclareOptOpenRaw    = "openRaw"
	DeclareOptCloseRaw   = "closeRaw"
	DeclareSyntaxOff     = "off"
	DeclareSyntaxDefault = "default"
)

// Namespaces with built-in meaning
const (
	NamespaceBlock   = "block"
	NamespaceUse     = "use"
	NamespaceExtends = "extends"
)

// Names used by the composition system
const (
	SlotContext   = "context"
	SlotParent    = "parent"
	UseElement    = "element"
	UseDir        = "dir"
	AttrPath      = "path"
	AttrAs        = "as"
	AttrDir       = "dir"
	AttrNamespace = "ns"
	IdentifierSep = "/"
)

// Output filters
const (
	FilterHTML = "html"
	FilterRaw  = "raw"
	FilterJS   = "js"
	FilterURL  = "url"
)

// Output target defaults (Go text/template)
const (
	DefaultOutputLeftDelim  = "{{"
	DefaultOutputRightDelim = "}}"
	DefaultMaxImportDepth   = 64
)

// Log message constants
const (
	LogMsgLexerCreated    = "lexer created"
	LogMsgTokenizerStart  = "starting tokenization"
	LogMsgTokenizerEnd    = "tokenization complete"
	LogMsgParserCreated   = "parser created"
	LogMsgParserStart     = "starting parse"
	LogMsgParserEnd       = "parse complete"
	LogMsgImportResolved  = "import resolved"
	LogMsgImportProbe     = "probing import provider"
	LogMsgExtendsResolved = "layout resolved"
	LogMsgAttrIgnored     = "unmatched import attribute ignored"
	LogMsgBlockAppended   = "layout has no slot for block, content appended"
	LogMsgCompilerStart   = "starting compile"
	LogMsgCompilerEnd     = "compile complete"
	LogMsgDeclareApplied  = "declare directive applied"
)

// Log field names
const (
	LogFieldSource     = "source_length"
	LogFieldTokens     = "token_count"
	LogFieldNodes      = "node_count"
	LogFieldTag        = "tag"
	LogFieldPath       = "path"
	LogFieldIdentifier = "identifier"
	LogFieldProvider   = "provider"
	LogFieldDepth      = "depth"
	LogFieldAttribute  = "attribute"
	LogFieldLines      = "generated_lines"
	LogFieldEntries    = "map_entries"
	LogFieldOption     = "option"
	LogFieldDisabled   = "disabled"
	LogFieldGrammar    = "grammar"
	LogFieldSlot       = "slot"
)

// Error format string constants (for Error() methods)
const (
	ErrFmtWithPosition = "%s at %s"
	ErrFmtWithDetail   = "%s (%s) at %s"
	ErrFmtWithCause    = "%s: %v"
	ErrFmtPosition     = "%s:%d:%d"
	ErrFmtLineColumn   = "line %d, column %d"
)

// String format constants for AST String() methods
const (
	MaxStringDisplayLength = 40
	TruncatedStringLength  = 37
	TruncationSuffix       = "..."
	ChainSeparator         = " -> "
	StringValueEmpty       = ""
)
