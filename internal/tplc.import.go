package internal

import (
	"path"
	"strings"

	"go.uber.org/zap"
)

// Source is a loaded template
type Source struct {
	Code      string
	Path      string
	Freshness string
}

// Loader fetches template sources by identifier. Implementations must be
// safe for concurrent use.
type Loader interface {
	Load(identifier string) (*Source, error)
	Exists(identifier string) bool
}

// Resolution is what a provider decided for a tag
type Resolution struct {
	Identifier string
	Namespace  string
}

// ImportProvider maps a tag to a template identifier. A provider that does
// not recognize the tag returns false.
type ImportProvider interface {
	Name() string
	Lookup(tag *TagNode, loader Loader) (Resolution, bool)
}

// BundleProvider maps one fixed tag name to one identifier
type BundleProvider struct {
	TagName    string
	Identifier string
}

// NewBundleProvider creates a bundle provider
func NewBundleProvider(tagName, identifier string) *BundleProvider {
	return &BundleProvider{TagName: tagName, Identifier: identifier}
}

// Name returns the provider kind
func (b *BundleProvider) Name() string {
	return ProviderNameBundle
}

// Lookup matches the tag name exactly
func (b *BundleProvider) Lookup(tag *TagNode, _ Loader) (Resolution, bool) {
	if tag.Name != b.TagName {
		return Resolution{}, false
	}
	ns, _, _ := SplitQualifiedName(tag.Name)
	return Resolution{Identifier: b.Identifier, Namespace: ns}, true
}

// DirectoryProvider maps a namespace prefix to a base path. The local part
// of the tag name becomes a path under the base.
type DirectoryProvider struct {
	Namespace string
	Base      string
}

// NewDirectoryProvider creates a directory provider
func NewDirectoryProvider(namespace, base string) *DirectoryProvider {
	return &DirectoryProvider{Namespace: namespace, Base: strings.Trim(base, IdentifierSep)}
}

// Name returns the provider kind
func (d *DirectoryProvider) Name() string {
	return ProviderNameDirectory
}

// Lookup probes the loader for base/local
func (d *DirectoryProvider) Lookup(tag *TagNode, loader Loader) (Resolution, bool) {
	ns, local, ok := SplitQualifiedName(tag.Name)
	if !ok || ns != d.Namespace || loader == nil {
		return Resolution{}, false
	}
	identifier := JoinIdentifier(d.Base, local)
	if !loader.Exists(identifier) {
		return Resolution{}, false
	}
	return Resolution{Identifier: identifier, Namespace: ns}, true
}

// JoinIdentifier joins a base path and a dotted or colon separated local
// name into a slash separated identifier
func JoinIdentifier(base, local string) string {
	local = strings.NewReplacer(":", IdentifierSep, ".", IdentifierSep).Replace(local)
	if base == "" {
		return path.Clean(local)
	}
	return path.Join(base, local)
}

// providersFromUse turns a <use:...> declaration into a provider
func providersFromUse(tag *TagNode, logger *zap.Logger) (ImportProvider, error) {
	_, kind, _ := SplitQualifiedName(tag.Name)
	switch kind {
	case UseElement:
		p, ok := tag.AttrText(AttrPath)
		if !ok || p == "" {
			return nil, useError(tag)
		}
		alias, ok := tag.AttrText(AttrAs)
		if !ok || alias == "" {
			alias = path.Base(p)
		}
		logger.Debug(LogMsgUseDeclared, zap.String(LogFieldTag, alias), zap.String(LogFieldPath, p))
		return NewBundleProvider(alias, p), nil
	case UseDir:
		dir, ok := tag.AttrText(AttrDir)
		if !ok || dir == "" {
			return nil, useError(tag)
		}
		ns, ok := tag.AttrText(AttrNamespace)
		if !ok || ns == "" {
			ns = path.Base(dir)
		}
		logger.Debug(LogMsgUseDeclared, zap.String(LogFieldTag, ns), zap.String(LogFieldPath, dir))
		return NewDirectoryProvider(ns, dir), nil
	}
	return nil, &ImportError{
		Kind:     ImportErrorUnresolved,
		Message:  ErrMsgUnknownUse,
		Path:     tag.Context().Location(),
		Tag:      tag.Name,
		Chain:    tag.Context().Chain(),
		Position: tag.Pos(),
	}
}

func useError(tag *TagNode) error {
	return &ImportError{
		Kind:     ImportErrorUnresolved,
		Message:  ErrMsgMissingPath,
		Path:     tag.Context().Location(),
		Tag:      tag.Name,
		Chain:    tag.Context().Chain(),
		Position: tag.Pos(),
	}
}

// Provider names and import log constants
const (
	ProviderNameBundle    = "bundle"
	ProviderNameDirectory = "directory"
	LogMsgUseDeclared     = "template-local import declared"
	ErrMsgUnknownUse      = "unknown use declaration"
)
