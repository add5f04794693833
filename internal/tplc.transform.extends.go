package internal

import (
	"path"
	"strings"

	"go.uber.org/zap"
)

// ExtendsTransform implements layout inheritance. When the first
// significant node of a template is <extends:name/> or <extends path="..."/>,
// the template is replaced by the layout with its slots filled from the
// child's top-level blocks and the extends tag's attributes.
type ExtendsTransform struct{}

// NewExtendsTransform creates the transform
func NewExtendsTransform() *ExtendsTransform {
	return &ExtendsTransform{}
}

// Name returns the transform name
func (t *ExtendsTransform) Name() string {
	return TransformNameExtends
}

// Apply swaps tpl's nodes for the filled layout when tpl extends one
func (t *ExtendsTransform) Apply(tpl *Template, b Builder) error {
	idx, tag := findExtends(tpl.Nodes)
	if tag == nil {
		return nil
	}

	identifier, err := extendsIdentifier(tag)
	if err != nil {
		return err
	}
	layout, err := b.Import(identifier, NamespaceExtends, tag.Context(), tag.Pos())
	if err != nil {
		return err
	}

	content := newSlotContent()
	blocks := make(map[string]bool)
	var uses []Node
	for i, n := range tpl.Nodes {
		if i == idx {
			continue
		}
		switch v := n.(type) {
		case *SlotNode:
			if !v.Inline {
				content.add(v.Name, v.Children)
				blocks[v.Name] = true
			}
		case *TagNode:
			// Template-local imports still apply to the child's blocks
			if ns, _, ok := v.Namespace(); ok && ns == NamespaceUse {
				uses = append(uses, v)
			}
		}
	}
	for _, a := range tag.Attrs {
		if a.Name == "" || a.Name == AttrPath || content.has(a.Name) {
			continue
		}
		value := a.Value
		if value == nil {
			value = []Node{}
		}
		content.add(a.Name, value)
	}

	b.Logger().Debug(LogMsgExtendsResolved,
		zap.String(LogFieldIdentifier, identifier),
		zap.Int(LogFieldNodes, len(content.order)))
	nodes := fillSlots(layout.Nodes, content)
	for _, name := range content.order {
		if blocks[name] && !content.used[name] {
			b.Logger().Warn(LogMsgBlockAppended,
				zap.String(LogFieldIdentifier, identifier),
				zap.String(LogFieldSlot, name))
			nodes = append(nodes, content.nodes[name]...)
		}
	}
	tpl.Nodes = append(uses, nodes...)
	return nil
}

// findExtends returns the extends tag when it is the first node that is
// not whitespace or a comment
func findExtends(nodes []Node) (int, *TagNode) {
	for i, n := range nodes {
		switch v := n.(type) {
		case *TextNode:
			if strings.TrimSpace(v.Content) == "" {
				continue
			}
			return -1, nil
		case *CommentNode:
			continue
		case *TagNode:
			if isExtendsTag(v) {
				return i, v
			}
			if ns, _, ok := v.Namespace(); ok && ns == NamespaceUse {
				continue
			}
			return -1, nil
		default:
			return -1, nil
		}
	}
	return -1, nil
}

func isExtendsTag(tag *TagNode) bool {
	if tag.Name == NamespaceExtends {
		return true
	}
	ns, _, ok := tag.Namespace()
	return ok && ns == NamespaceExtends
}

func extendsIdentifier(tag *TagNode) (string, error) {
	if p, ok := tag.AttrText(AttrPath); ok && p != "" {
		return path.Clean(strings.Trim(p, IdentifierSep)), nil
	}
	if _, local, ok := tag.Namespace(); ok {
		return JoinIdentifier("", local), nil
	}
	return "", useError(tag)
}
