package internal

import (
	"fmt"
	"strings"
)

// Context identifies the template a node came from. Contexts form an
// immutable chain from an imported template up to the root template.
type Context struct {
	Identifier string   // Loader identifier
	Path       string   // Resolved path, for diagnostics
	Namespace  string   // Namespace the import was resolved through
	Freshness  string   // Loader freshness token
	Parent     *Context // Importing template, nil for the root
	ImportPos  Position // Where the import sat in the parent
}

// NewContext creates a root context
func NewContext(identifier, path, freshness string) *Context {
	return &Context{Identifier: identifier, Path: path, Freshness: freshness}
}

// Import returns a child context for a template imported at pos
func (c *Context) Import(identifier, path, namespace, freshness string, pos Position) *Context {
	return &Context{
		Identifier: identifier,
		Path:       path,
		Namespace:  namespace,
		Freshness:  freshness,
		Parent:     c,
		ImportPos:  pos,
	}
}

// Chain returns identifiers from the root down to this context
func (c *Context) Chain() []string {
	var chain []string
	for ctx := c; ctx != nil; ctx = ctx.Parent {
		chain = append(chain, ctx.Identifier)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Contains reports whether identifier appears anywhere in the chain
func (c *Context) Contains(identifier string) bool {
	for ctx := c; ctx != nil; ctx = ctx.Parent {
		if ctx.Identifier == identifier {
			return true
		}
	}
	return false
}

// Location returns the path, or the identifier when no path is known
func (c *Context) Location() string {
	if c == nil {
		return StringValueEmpty
	}
	if c.Path != "" {
		return c.Path
	}
	return c.Identifier
}

// Depth returns the number of imports above this context
func (c *Context) Depth() int {
	depth := 0
	for ctx := c.Parent; ctx != nil; ctx = ctx.Parent {
		depth++
	}
	return depth
}

// String returns the identifier chain
func (c *Context) String() string {
	if c == nil {
		return StringValueEmpty
	}
	return strings.Join(c.Chain(), ChainSeparator)
}

// Node is the interface all AST nodes implement
type Node interface {
	// Type returns the node type identifier
	Type() NodeType
	// Pos returns the position of the node's first token
	Pos() Position
	// Context returns the template the node came from
	Context() *Context
	// Clone returns a deep copy
	Clone() Node
	// String returns a human-readable representation
	String() string
}

// Template is a parsed template: an ordered forest plus its context
type Template struct {
	Nodes   []Node
	Context *Context
}

// String returns a string representation of the template
func (t *Template) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template{%s\n", t.Context))
	for i, n := range t.Nodes {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", i, n.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

type baseNode struct {
	pos Position
	ctx *Context
}

// Pos returns the source position
func (b *baseNode) Pos() Position {
	return b.pos
}

// Context returns the originating template context
func (b *baseNode) Context() *Context {
	return b.ctx
}

// TextNode represents literal text
type TextNode struct {
	baseNode
	Content string
}

// NewTextNode creates a new text node
func NewTextNode(content string, pos Position, ctx *Context) *TextNode {
	return &TextNode{baseNode: baseNode{pos: pos, ctx: ctx}, Content: content}
}

// Type returns NodeTypeText
func (n *TextNode) Type() NodeType {
	return NodeTypeText
}

// Clone returns a copy
func (n *TextNode) Clone() Node {
	c := *n
	return &c
}

// String returns a string representation
func (n *TextNode) String() string {
	return fmt.Sprintf("TextNode{%q @ %s}", truncate(n.Content), n.pos)
}

// Attr is one attribute of a tag in source order. Quote is 0 for unquoted
// values; an attribute with nil Value and no quote is a boolean attribute.
// An empty Name marks a dynamic region placed directly in the tag head.
// Space is the whitespace written before the attribute; empty means one space.
type Attr struct {
	Name  string
	Value []Node
	Quote byte
	Space string
	Pos   Position
}

// IsBoolean reports whether the attribute has no value
func (a Attr) IsBoolean() bool {
	return a.Value == nil && a.Quote == 0
}

// Clone returns a deep copy
func (a Attr) Clone() Attr {
	a.Value = CloneNodes(a.Value)
	return a
}

// TagNode represents a markup element
type TagNode struct {
	baseNode
	Name     string
	Attrs    []Attr
	Children []Node
	Void     bool
}

// NewTagNode creates a new tag node
func NewTagNode(name string, attrs []Attr, pos Position, ctx *Context) *TagNode {
	return &TagNode{baseNode: baseNode{pos: pos, ctx: ctx}, Name: name, Attrs: attrs}
}

// Type returns NodeTypeTag
func (n *TagNode) Type() NodeType {
	return NodeTypeTag
}

// Clone returns a deep copy
func (n *TagNode) Clone() Node {
	c := *n
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		for i, a := range n.Attrs {
			c.Attrs[i] = a.Clone()
		}
	}
	c.Children = CloneNodes(n.Children)
	return &c
}

// Attr returns the first attribute with the given name
func (n *TagNode) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrText returns the literal text of an attribute value. Dynamic parts
// are skipped.
func (n *TagNode) AttrText(name string) (string, bool) {
	a, ok := n.Attr(name)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	for _, v := range a.Value {
		if t, ok := v.(*TextNode); ok {
			sb.WriteString(t.Content)
		}
	}
	return sb.String(), true
}

// Namespace splits a qualified name into namespace and local part. The
// first ':', '.' or '/' separates them; ok is false for plain names.
func (n *TagNode) Namespace() (string, string, bool) {
	return SplitQualifiedName(n.Name)
}

// String returns a string representation
func (n *TagNode) String() string {
	if n.Void {
		return fmt.Sprintf("TagNode{%s, void, attrs=%d @ %s}", n.Name, len(n.Attrs), n.pos)
	}
	return fmt.Sprintf("TagNode{%s, attrs=%d, children=%d @ %s}", n.Name, len(n.Attrs), len(n.Children), n.pos)
}

// SplitQualifiedName splits "ns:name", "ns.name" or "ns/name"
func SplitQualifiedName(name string) (string, string, bool) {
	i := strings.IndexAny(name, ":./")
	if i <= 0 || i == len(name)-1 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}

// DynamicNode is an output expression. Filter "" escapes as HTML;
// FilterRaw emits the value unescaped.
type DynamicNode struct {
	baseNode
	Expr   string
	Filter string
}

// NewDynamicNode creates a new dynamic node
func NewDynamicNode(expr, filter string, pos Position, ctx *Context) *DynamicNode {
	return &DynamicNode{baseNode: baseNode{pos: pos, ctx: ctx}, Expr: expr, Filter: filter}
}

// Type returns NodeTypeDynamic
func (n *DynamicNode) Type() NodeType {
	return NodeTypeDynamic
}

// Clone returns a copy
func (n *DynamicNode) Clone() Node {
	c := *n
	return &c
}

// String returns a string representation
func (n *DynamicNode) String() string {
	if n.Filter != "" {
		return fmt.Sprintf("DynamicNode{%q | %s @ %s}", truncate(n.Expr), n.Filter, n.pos)
	}
	return fmt.Sprintf("DynamicNode{%q @ %s}", truncate(n.Expr), n.pos)
}

// DirectiveNode is a control directive such as @if(cond)
type DirectiveNode struct {
	baseNode
	Name    string
	Body    string
	HasBody bool
}

// NewDirectiveNode creates a new directive node
func NewDirectiveNode(name, body string, hasBody bool, pos Position, ctx *Context) *DirectiveNode {
	return &DirectiveNode{baseNode: baseNode{pos: pos, ctx: ctx}, Name: name, Body: body, HasBody: hasBody}
}

// Type returns NodeTypeDirective
func (n *DirectiveNode) Type() NodeType {
	return NodeTypeDirective
}

// Clone returns a copy
func (n *DirectiveNode) Clone() Node {
	c := *n
	return &c
}

// String returns a string representation
func (n *DirectiveNode) String() string {
	if n.HasBody {
		return fmt.Sprintf("DirectiveNode{@%s(%s) @ %s}", n.Name, truncate(n.Body), n.pos)
	}
	return fmt.Sprintf("DirectiveNode{@%s @ %s}", n.Name, n.pos)
}

// CommentNode is a markup comment (kept) or a template comment (stripped)
type CommentNode struct {
	baseNode
	Content  string
	Template bool
}

// NewCommentNode creates a new comment node
func NewCommentNode(content string, template bool, pos Position, ctx *Context) *CommentNode {
	return &CommentNode{baseNode: baseNode{pos: pos, ctx: ctx}, Content: content, Template: template}
}

// Type returns NodeTypeComment
func (n *CommentNode) Type() NodeType {
	return NodeTypeComment
}

// Clone returns a copy
func (n *CommentNode) Clone() Node {
	c := *n
	return &c
}

// String returns a string representation
func (n *CommentNode) String() string {
	return fmt.Sprintf("CommentNode{%q, template=%t @ %s}", truncate(n.Content), n.Template, n.pos)
}

// SlotNode is a named insertion point; Children is the default content.
// Inline marks ${name} slots, which never supply content to an import.
type SlotNode struct {
	baseNode
	Name     string
	Children []Node
	Inline   bool
}

// NewSlotNode creates a new slot node
func NewSlotNode(name string, children []Node, pos Position, ctx *Context) *SlotNode {
	return &SlotNode{baseNode: baseNode{pos: pos, ctx: ctx}, Name: name, Children: children}
}

// Type returns NodeTypeSlot
func (n *SlotNode) Type() NodeType {
	return NodeTypeSlot
}

// Clone returns a deep copy
func (n *SlotNode) Clone() Node {
	c := *n
	c.Children = CloneNodes(n.Children)
	return &c
}

// String returns a string representation
func (n *SlotNode) String() string {
	return fmt.Sprintf("SlotNode{%s, default=%d @ %s}", n.Name, len(n.Children), n.pos)
}

// CloneNodes deep-copies a node list; nil stays nil
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Walk visits nodes in pre-order, descending into tag children, attribute
// values and slot defaults. Returning false from fn skips the subtree.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch v := n.(type) {
		case *TagNode:
			for _, a := range v.Attrs {
				Walk(a.Value, fn)
			}
			Walk(v.Children, fn)
		case *SlotNode:
			Walk(v.Children, fn)
		}
	}
}

func truncate(s string) string {
	if len(s) > MaxStringDisplayLength {
		return s[:TruncatedStringLength] + TruncationSuffix
	}
	return s
}
