package internal

import (
	"fmt"
	"strings"
)

// Renderer generates output for the nodes it supports
type Renderer interface {
	Supports(n Node) bool
	Render(c *Compilation, n Node) error
}

// DefaultRenderers returns the built-in renderers in dispatch order
func DefaultRenderers() []Renderer {
	return []Renderer{
		&TextRenderer{},
		&TagRenderer{},
		&DynamicRenderer{},
		&DirectiveRenderer{},
		&CommentRenderer{},
		&SlotRenderer{},
	}
}

// TextRenderer passes text through, quoting the output's left delimiter
type TextRenderer struct{}

// Supports reports whether n is text
func (r *TextRenderer) Supports(n Node) bool {
	_, ok := n.(*TextNode)
	return ok
}

// Render writes the text
func (r *TextRenderer) Render(c *Compilation, n Node) error {
	text := n.(*TextNode)
	c.Span(n, false, func() {
		c.Emitter().WriteText(text.Content)
	})
	return nil
}

// TagRenderer serializes markup. Void tags render self-closing; the rest of
// the tag head is written as it appears in the source.
type TagRenderer struct{}

// Supports reports whether n is a tag
func (r *TagRenderer) Supports(n Node) bool {
	_, ok := n.(*TagNode)
	return ok
}

// Render writes the open tag, the children and the close tag
func (r *TagRenderer) Render(c *Compilation, n Node) error {
	tag := n.(*TagNode)
	e := c.Emitter()

	var err error
	c.Span(n, false, func() {
		e.Write(string(CharLess) + tag.Name)
		for _, a := range tag.Attrs {
			if err = r.renderAttr(c, a); err != nil {
				return
			}
		}
		if tag.Void {
			e.Write(StrTagCloseShort)
			return
		}
		e.Write(string(CharGreater))
	})
	if err != nil || tag.Void {
		return err
	}

	if err := c.RenderNodes(tag.Children); err != nil {
		return err
	}
	e.Write(StrTagOpenShort + tag.Name + string(CharGreater))
	return nil
}

func (r *TagRenderer) renderAttr(c *Compilation, a Attr) error {
	e := c.Emitter()
	if a.Space != "" {
		e.Write(a.Space)
	} else {
		e.Write(string(CharSpace))
	}
	if a.Name == "" {
		return c.RenderNodes(a.Value)
	}
	e.Write(a.Name)
	if a.IsBoolean() {
		return nil
	}
	e.Write(string(CharEquals))
	if a.Quote != 0 {
		e.Write(string(a.Quote))
	}
	if err := c.RenderNodes(a.Value); err != nil {
		return err
	}
	if a.Quote != 0 {
		e.Write(string(a.Quote))
	}
	return nil
}

// DynamicRenderer turns an expression into an output action. The filter
// picks the wrapping function; FilterRaw emits the expression as is.
type DynamicRenderer struct{}

// Supports reports whether n is an expression
func (r *DynamicRenderer) Supports(n Node) bool {
	_, ok := n.(*DynamicNode)
	return ok
}

// Render writes the action
func (r *DynamicRenderer) Render(c *Compilation, n Node) error {
	dyn := n.(*DynamicNode)
	filter := dyn.Filter
	if filter == "" {
		filter = FilterHTML
	}
	fn := ""
	if spec, ok := c.Registry().Filter(filter); ok {
		fn = spec.Func
	}

	action := dyn.Expr
	if fn != "" {
		action = fmt.Sprintf(FmtFilterCall, fn, dyn.Expr)
	}
	c.Span(n, true, func() {
		c.Emitter().WriteAction(action)
	})
	return nil
}

// DirectiveRenderer writes the registered action of a directive
type DirectiveRenderer struct{}

// Supports reports whether n is a directive
func (r *DirectiveRenderer) Supports(n Node) bool {
	_, ok := n.(*DirectiveNode)
	return ok
}

// Render writes the action
func (r *DirectiveRenderer) Render(c *Compilation, n Node) error {
	dir := n.(*DirectiveNode)
	spec, ok := c.Registry().Directive(dir.Name)
	if !ok {
		return c.noRenderer(n)
	}
	action := spec.Action
	switch {
	case dir.HasBody && strings.Contains(action, "%s"):
		action = fmt.Sprintf(action, dir.Body)
	case !dir.HasBody && spec.ActionNoBody != "":
		action = spec.ActionNoBody
	}
	c.Span(n, true, func() {
		c.Emitter().WriteAction(action)
	})
	return nil
}

// CommentRenderer keeps markup comments and drops template comments
type CommentRenderer struct{}

// Supports reports whether n is a comment
func (r *CommentRenderer) Supports(n Node) bool {
	_, ok := n.(*CommentNode)
	return ok
}

// Render writes a markup comment
func (r *CommentRenderer) Render(c *Compilation, n Node) error {
	comment := n.(*CommentNode)
	if comment.Template {
		return nil
	}
	c.Span(n, false, func() {
		c.Emitter().Write(StrHTMLCommentOpen)
		c.Emitter().WriteText(comment.Content)
		c.Emitter().Write(StrHTMLCommentEnd)
	})
	return nil
}

// SlotRenderer renders a slot nobody filled as its default content
type SlotRenderer struct{}

// Supports reports whether n is a slot
func (r *SlotRenderer) Supports(n Node) bool {
	_, ok := n.(*SlotNode)
	return ok
}

// Render writes the default content
func (r *SlotRenderer) Render(c *Compilation, n Node) error {
	return c.RenderNodes(n.(*SlotNode).Children)
}

// Output format constants
const (
	FmtFilterCall = "%s (%s)"
	FmtAction     = "%s %s %s"
	FmtQuotedLeft = "%s%q%s"
)
