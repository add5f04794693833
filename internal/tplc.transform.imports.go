package internal

import (
	"strings"

	"go.uber.org/zap"
)

// ImportTransform replaces tags resolved by import providers with the
// imported template, merging the tag's content and attributes into the
// imported template's slots.
type ImportTransform struct {
	providers   []ImportProvider
	passthrough map[string]bool
}

// NewImportTransform creates the transform. Tags in passthrough namespaces
// are left alone when no provider resolves them.
func NewImportTransform(providers []ImportProvider, passthrough []string) *ImportTransform {
	pt := make(map[string]bool, len(passthrough))
	for _, ns := range passthrough {
		pt[ns] = true
	}
	return &ImportTransform{providers: providers, passthrough: pt}
}

// Name returns the transform name
func (t *ImportTransform) Name() string {
	return TransformNameImports
}

// Apply resolves every import in tpl
func (t *ImportTransform) Apply(tpl *Template, b Builder) error {
	nodes, local, err := t.collectUses(tpl.Nodes, b.Logger())
	if err != nil {
		return err
	}
	run := &importRun{
		transform: t,
		builder:   b,
		providers: append(local, t.providers...),
	}
	tpl.Nodes, err = run.resolve(nodes)
	return err
}

// collectUses strips <use:...> declarations anywhere in the tree and
// returns the providers they declare, in source order.
func (t *ImportTransform) collectUses(nodes []Node, logger *zap.Logger) ([]Node, []ImportProvider, error) {
	var providers []ImportProvider
	var strip func([]Node) ([]Node, error)
	strip = func(in []Node) ([]Node, error) {
		out := in[:0:0]
		for _, n := range in {
			switch v := n.(type) {
			case *TagNode:
				if ns, _, ok := v.Namespace(); ok && ns == NamespaceUse {
					p, err := providersFromUse(v, logger)
					if err != nil {
						return nil, err
					}
					providers = append(providers, p)
					continue
				}
				children, err := strip(v.Children)
				if err != nil {
					return nil, err
				}
				v.Children = children
			case *SlotNode:
				children, err := strip(v.Children)
				if err != nil {
					return nil, err
				}
				v.Children = children
			}
			out = append(out, n)
		}
		if in == nil {
			return nil, nil
		}
		return out, nil
	}
	out, err := strip(nodes)
	return out, providers, err
}

type importRun struct {
	transform *ImportTransform
	builder   Builder
	providers []ImportProvider
}

// resolve walks a node list and splices imports in place
func (r *importRun) resolve(nodes []Node) ([]Node, error) {
	if nodes == nil {
		return nil, nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *TagNode:
			spliced, err := r.resolveTag(v)
			if err != nil {
				return nil, err
			}
			out = append(out, spliced...)
		case *SlotNode:
			children, err := r.resolve(v.Children)
			if err != nil {
				return nil, err
			}
			v.Children = children
			out = append(out, v)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *importRun) resolveTag(tag *TagNode) ([]Node, error) {
	// Content supplied to an import belongs to the importer and is resolved first
	for i := range tag.Attrs {
		value, err := r.resolve(tag.Attrs[i].Value)
		if err != nil {
			return nil, err
		}
		tag.Attrs[i].Value = value
	}
	children, err := r.resolve(tag.Children)
	if err != nil {
		return nil, err
	}
	tag.Children = children

	res, ok := r.lookup(tag)
	if !ok {
		if err := r.checkUnresolved(tag); err != nil {
			return nil, err
		}
		return []Node{tag}, nil
	}

	sub, err := r.builder.Import(res.Identifier, res.Namespace, tag.Context(), tag.Pos())
	if err != nil {
		return nil, err
	}
	return mergeImport(tag, sub, r.builder.Logger()), nil
}

func (r *importRun) lookup(tag *TagNode) (Resolution, bool) {
	loader := r.builder.Loader()
	for _, p := range r.providers {
		if res, ok := p.Lookup(tag, loader); ok {
			r.builder.Logger().Debug(LogMsgImportProbe,
				zap.String(LogFieldTag, tag.Name),
				zap.String(LogFieldProvider, p.Name()),
				zap.String(LogFieldIdentifier, res.Identifier))
			return res, true
		}
	}
	return Resolution{}, false
}

// checkUnresolved fails for namespaced tags nobody resolved
func (r *importRun) checkUnresolved(tag *TagNode) error {
	ns, _, qualified := tag.Namespace()
	if tag.Name == NamespaceExtends {
		ns, qualified = NamespaceExtends, true
	}
	if !qualified || ns == NamespaceBlock || r.transform.passthrough[ns] {
		return nil
	}
	message := ErrMsgUnresolvedImport
	if ns == NamespaceExtends {
		message = ErrMsgExtendsPosition
	}
	return &ImportError{
		Kind:     ImportErrorUnresolved,
		Message:  message,
		Path:     tag.Context().Location(),
		Tag:      tag.Name,
		Chain:    tag.Context().Chain(),
		Position: tag.Pos(),
	}
}

// mergeImport fills the imported template's slots from the import tag and
// returns the nodes that replace the tag
func mergeImport(tag *TagNode, sub *Template, logger *zap.Logger) []Node {
	slots := slotNames(sub.Nodes)
	content := newSlotContent()

	var contextNodes []Node
	for _, child := range tag.Children {
		if block, ok := child.(*SlotNode); ok && !block.Inline {
			content.add(block.Name, block.Children)
			continue
		}
		contextNodes = append(contextNodes, child)
	}
	if !isBlank(contextNodes) {
		content.add(SlotContext, contextNodes)
	}

	var aggregate []Attr
	for _, a := range tag.Attrs {
		if a.Name != "" && slots[a.Name] && !content.has(a.Name) {
			value := a.Value
			if value == nil {
				value = []Node{}
			}
			content.add(a.Name, value)
			continue
		}
		aggregate = append(aggregate, a)
	}

	nodes := fillSlots(sub.Nodes, content)
	aggregateAttrs(nodes, aggregate, logger)

	// Content for slots the template does not declare is kept after it
	for _, name := range content.order {
		if !content.used[name] {
			nodes = append(nodes, content.nodes[name]...)
		}
	}
	return nodes
}

// slotContent is the explicit slot name to content map of one merge
type slotContent struct {
	nodes map[string][]Node
	used  map[string]bool
	order []string
}

func newSlotContent() *slotContent {
	return &slotContent{nodes: make(map[string][]Node), used: make(map[string]bool)}
}

func (c *slotContent) add(name string, nodes []Node) {
	if _, ok := c.nodes[name]; !ok {
		c.order = append(c.order, name)
	}
	c.nodes[name] = append(c.nodes[name], nodes...)
}

func (c *slotContent) has(name string) bool {
	_, ok := c.nodes[name]
	return ok
}

// take returns the content for a slot; the first caller gets the nodes,
// later callers deep clones
func (c *slotContent) take(name string) ([]Node, bool) {
	nodes, ok := c.nodes[name]
	if !ok {
		return nil, false
	}
	if c.used[name] {
		return CloneNodes(nodes), true
	}
	c.used[name] = true
	return nodes, true
}

// fillSlots replaces every slot in nodes with supplied content, or with its
// default content when nothing was supplied
func fillSlots(nodes []Node, content *slotContent) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *SlotNode:
			supplied, ok := content.take(v.Name)
			if !ok {
				out = append(out, fillSlots(v.Children, content)...)
				continue
			}
			// Defaults reach the output only through ${parent}
			if !usesParent(supplied) {
				out = append(out, supplied...)
				continue
			}
			out = append(out, expandParent(supplied, fillSlots(v.Children, content))...)
		case *TagNode:
			for i := range v.Attrs {
				v.Attrs[i].Value = fillSlots(v.Attrs[i].Value, content)
			}
			v.Children = fillSlots(v.Children, content)
			out = append(out, v)
		default:
			out = append(out, n)
		}
	}
	return out
}

// usesParent reports whether nodes reference ${parent} or <block:parent/>
func usesParent(nodes []Node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case *SlotNode:
			if v.Name == SlotParent || usesParent(v.Children) {
				return true
			}
		case *TagNode:
			for _, a := range v.Attrs {
				if usesParent(a.Value) {
					return true
				}
			}
			if usesParent(v.Children) {
				return true
			}
		}
	}
	return false
}

// expandParent replaces ${parent} and <block:parent/> inside supplied
// content with the slot's default content
func expandParent(nodes []Node, defaults []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, 0, len(nodes))
	used := false
	for _, n := range nodes {
		switch v := n.(type) {
		case *SlotNode:
			if v.Name == SlotParent {
				if used {
					out = append(out, CloneNodes(defaults)...)
				} else {
					out = append(out, defaults...)
					used = true
				}
				continue
			}
			v.Children = expandParent(v.Children, defaults)
			out = append(out, v)
		case *TagNode:
			for i := range v.Attrs {
				v.Attrs[i].Value = expandParent(v.Attrs[i].Value, defaults)
			}
			v.Children = expandParent(v.Children, defaults)
			out = append(out, v)
		default:
			out = append(out, n)
		}
	}
	return out
}

// aggregateAttrs copies attributes the template has no slot for onto its
// first top-level tag, unless that tag already has one of the same name
func aggregateAttrs(nodes []Node, attrs []Attr, logger *zap.Logger) {
	if len(attrs) == 0 {
		return
	}
	var target *TagNode
	for _, n := range nodes {
		if t, ok := n.(*TagNode); ok {
			target = t
			break
		}
	}
	for _, a := range attrs {
		if target == nil {
			logger.Warn(LogMsgAttrIgnored, zap.String(LogFieldAttribute, a.Name))
			continue
		}
		if a.Name != "" {
			if _, exists := target.Attr(a.Name); exists {
				logger.Warn(LogMsgAttrIgnored, zap.String(LogFieldAttribute, a.Name), zap.String(LogFieldTag, target.Name))
				continue
			}
		}
		target.Attrs = append(target.Attrs, a)
	}
}

// slotNames lists slot names declared anywhere in nodes
func slotNames(nodes []Node) map[string]bool {
	names := make(map[string]bool)
	Walk(nodes, func(n Node) bool {
		if s, ok := n.(*SlotNode); ok {
			names[s.Name] = true
		}
		return true
	})
	return names
}

func isBlank(nodes []Node) bool {
	for _, n := range nodes {
		t, ok := n.(*TextNode)
		if !ok || strings.TrimSpace(t.Content) != "" {
			return false
		}
	}
	return true
}

// Transform names
const (
	TransformNameImports = "imports"
	TransformNameExtends = "extends"
)
