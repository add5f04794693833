package tplc

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FileLoader loads templates from a directory. Identifiers are slash
// separated paths relative to the root; the extension may be omitted and
// is probed in order. The freshness token combines modification time and
// size.
type FileLoader struct {
	root       string
	extensions []string
}

// FileLoaderDriver is the driver for creating FileLoader instances.
type FileLoaderDriver struct{}

func init() {
	RegisterLoaderDriver(LoaderDriverFile, &FileLoaderDriver{})
}

// Open creates a new FileLoader. The connection string is the root directory.
func (d *FileLoaderDriver) Open(connectionString string) (Loader, error) {
	if connectionString == "" {
		return nil, NewConfigError(ErrMsgConfigInvalid, "root", connectionString)
	}
	return NewFileLoader(connectionString), nil
}

// NewFileLoader creates a loader rooted at root. Without extensions the
// default ".html" is probed.
func NewFileLoader(root string, extensions ...string) *FileLoader {
	if len(extensions) == 0 {
		extensions = []string{DefaultTemplateExt}
	}
	return &FileLoader{root: root, extensions: extensions}
}

// Root returns the directory the loader reads from.
func (l *FileLoader) Root() string {
	return l.root
}

// Load reads the template file for identifier.
func (l *FileLoader) Load(identifier string) (*Source, error) {
	if err := validateIdentifier(identifier); err != nil {
		return nil, err
	}
	file, info, ok := l.find(identifier)
	if !ok {
		return nil, NewTemplateNotFoundError(identifier)
	}
	code, err := os.ReadFile(file)
	if err != nil {
		return nil, NewLoaderError(ErrMsgLoaderFailed, identifier, err)
	}
	return &Source{
		Code:      string(code),
		Path:      file,
		Freshness: fileFreshness(info),
	}, nil
}

// Exists reports whether a file for identifier exists.
func (l *FileLoader) Exists(identifier string) bool {
	if validateIdentifier(identifier) != nil {
		return false
	}
	_, _, ok := l.find(identifier)
	return ok
}

// Identifiers walks the root and returns the identifier of every file with
// a known extension, sorted.
func (l *FileLoader) Identifiers() ([]string, error) {
	var ids []string
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if !l.known(ext) {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		ids = append(ids, strings.TrimSuffix(filepath.ToSlash(rel), ext))
		return nil
	})
	if err != nil {
		return nil, NewLoaderError(ErrMsgLoaderFailed, l.root, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Identifier maps a file below the root back to its identifier.
func (l *FileLoader) Identifier(file string) (string, bool) {
	rel, err := filepath.Rel(l.root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	ext := filepath.Ext(rel)
	if !l.known(ext) {
		return "", false
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ext), true
}

func (l *FileLoader) find(identifier string) (string, os.FileInfo, bool) {
	base := filepath.Join(l.root, filepath.FromSlash(identifier))
	candidates := make([]string, 0, len(l.extensions)+1)
	if l.known(path.Ext(identifier)) {
		candidates = append(candidates, base)
	}
	for _, ext := range l.extensions {
		candidates = append(candidates, base+ext)
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.Mode().IsRegular() {
			return c, info, true
		}
	}
	return "", nil, false
}

func (l *FileLoader) known(ext string) bool {
	for _, e := range l.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func fileFreshness(info os.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36)
}

// validateIdentifier rejects identifiers that could escape the loader root.
func validateIdentifier(identifier string) error {
	if identifier == "" || strings.HasPrefix(identifier, "/") || strings.ContainsAny(identifier, "\\\x00") {
		return NewInvalidIdentifierError(identifier)
	}
	for _, part := range strings.Split(identifier, "/") {
		if part == ".." {
			return NewInvalidIdentifierError(identifier)
		}
	}
	return nil
}
