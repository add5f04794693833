package tplc

import "github.com/itsatony/go-tplc/internal"

// Loader contract. Implementations must be safe for concurrent use.
type (
	Loader = internal.Loader
	Source = internal.Source
)

// Source positions and tokens
type (
	Position     = internal.Position
	Token        = internal.Token
	TokenType    = internal.TokenType
	StringStream = internal.StringStream
)

// AST
type (
	Node          = internal.Node
	NodeType      = internal.NodeType
	Template      = internal.Template
	Context       = internal.Context
	TextNode      = internal.TextNode
	TagNode       = internal.TagNode
	Attr          = internal.Attr
	DynamicNode   = internal.DynamicNode
	DirectiveNode = internal.DirectiveNode
	CommentNode   = internal.CommentNode
	SlotNode      = internal.SlotNode
)

// Extension points. Grammars and syntaxes are registered in pairs, renderers
// are tried in order, transforms run after parsing.
type (
	Grammar        = internal.Grammar
	LexRun         = internal.LexRun
	Syntax         = internal.Syntax
	Assembler      = internal.Assembler
	Renderer       = internal.Renderer
	Compilation    = internal.Compilation
	Emitter        = internal.Emitter
	Transform      = internal.Transform
	Builder        = internal.Builder
	ImportProvider = internal.ImportProvider
	Resolution     = internal.Resolution
	DirectiveSpec  = internal.DirectiveSpec
	FilterSpec     = internal.FilterSpec
	BodyRule       = internal.BodyRule
)

// Directive body rules
const (
	BodyForbidden = internal.BodyForbidden
	BodyOptional  = internal.BodyOptional
	BodyRequired  = internal.BodyRequired
)

// Source maps
type (
	SourceMap  = internal.SourceMap
	MapEntry   = internal.MapEntry
	Frame      = internal.Frame
	Dependency = internal.Dependency
)

// Node types
const (
	NodeTypeText      = internal.NodeTypeText
	NodeTypeTag       = internal.NodeTypeTag
	NodeTypeDynamic   = internal.NodeTypeDynamic
	NodeTypeDirective = internal.NodeTypeDirective
	NodeTypeComment   = internal.NodeTypeComment
	NodeTypeSlot      = internal.NodeTypeSlot
)
