package tplc

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the engine options, loaded from a YAML
// or TOML file.
//
// Example (YAML):
//
//	loader: file
//	root: templates
//	directories:
//	  - namespace: ui
//	    base: components
//	bundles:
//	  - tag: app:layout
//	    identifier: layouts/app
//	filters:
//	  upper: upper
//	max_import_depth: 32
type Config struct {
	Loader         string            `yaml:"loader" toml:"loader"`
	Root           string            `yaml:"root" toml:"root"`
	DSN            string            `yaml:"dsn" toml:"dsn"`
	Extensions     []string          `yaml:"extensions" toml:"extensions"`
	Directories    []DirectoryConfig `yaml:"directories" toml:"directories"`
	Bundles        []BundleConfig    `yaml:"bundles" toml:"bundles"`
	Delimiters     DelimiterConfig   `yaml:"delimiters" toml:"delimiters"`
	Passthrough    []string          `yaml:"passthrough" toml:"passthrough"`
	Filters        map[string]string `yaml:"filters" toml:"filters"`
	MaxImportDepth int               `yaml:"max_import_depth" toml:"max_import_depth"`
	Jobs           int               `yaml:"jobs" toml:"jobs"`
}

// DirectoryConfig maps a namespace to a template directory.
type DirectoryConfig struct {
	Namespace string `yaml:"namespace" toml:"namespace"`
	Base      string `yaml:"base" toml:"base"`
}

// BundleConfig maps a tag name to one template.
type BundleConfig struct {
	Tag        string `yaml:"tag" toml:"tag"`
	Identifier string `yaml:"identifier" toml:"identifier"`
}

// DelimiterConfig overrides source and output delimiters. Empty fields keep
// the defaults.
type DelimiterConfig struct {
	EchoOpen    string `yaml:"echo_open" toml:"echo_open"`
	EchoClose   string `yaml:"echo_close" toml:"echo_close"`
	RawOpen     string `yaml:"raw_open" toml:"raw_open"`
	RawClose    string `yaml:"raw_close" toml:"raw_close"`
	OutputLeft  string `yaml:"output_left" toml:"output_left"`
	OutputRight string `yaml:"output_right" toml:"output_right"`
}

// LoadConfig reads a configuration file. The format follows the extension:
// .yaml and .yml are YAML, .toml is TOML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigFileError(ErrMsgConfigRead, path, err)
	}
	format, err := configFormat(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data, format)
	if err != nil {
		return nil, err
	}
	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, nil
}

// ParseConfig decodes configuration data in the given format and
// validates it. Unknown keys are rejected.
func ParseConfig(data []byte, format string) (*Config, error) {
	cfg := &Config{}
	switch format {
	case ConfigFormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, NewConfigFileError(ErrMsgConfigParse, format, err)
		}
	case ConfigFormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, NewConfigFileError(ErrMsgConfigParse, format, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, NewConfigError(ErrMsgConfigInvalid, undecoded[0].String(), "")
		}
	default:
		return nil, NewConfigError(ErrMsgConfigFormat, MetaKeyFormat, format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ConfigFormatYAML, nil
	case ".toml":
		return ConfigFormatTOML, nil
	default:
		return "", NewConfigError(ErrMsgConfigFormat, MetaKeyFormat, filepath.Ext(path))
	}
}

// Validate checks values that options would reject later.
func (c *Config) Validate() error {
	if c.MaxImportDepth < 0 {
		return NewConfigError(ErrMsgNegativeDepth, "max_import_depth", strconv.Itoa(c.MaxImportDepth))
	}
	if c.Jobs < 0 {
		return NewConfigError(ErrMsgConfigInvalid, "jobs", strconv.Itoa(c.Jobs))
	}
	for _, d := range c.Directories {
		if d.Namespace == "" {
			return NewConfigError(ErrMsgEmptyNamespace, "directories", d.Base)
		}
		if d.Base == "" {
			return NewConfigError(ErrMsgNoDirectoryBase, "directories", d.Namespace)
		}
	}
	for _, b := range c.Bundles {
		if b.Tag == "" || b.Identifier == "" {
			return NewConfigError(ErrMsgConfigInvalid, "bundles", b.Tag)
		}
	}
	if c.Loader != "" && c.Loader != LoaderDriverFile && c.DSN == "" && c.Loader != LoaderDriverMemory {
		return NewConfigError(ErrMsgConfigInvalid, "dsn", c.Loader)
	}
	return nil
}

// Options converts the configuration into engine options. The loader is
// not included; see OpenLoader.
func (c *Config) Options() []Option {
	var opts []Option
	for _, d := range c.Directories {
		opts = append(opts, WithDirectory(d.Namespace, d.Base))
	}
	for _, b := range c.Bundles {
		opts = append(opts, WithBundle(b.Tag, b.Identifier))
	}
	if len(c.Passthrough) > 0 {
		opts = append(opts, WithPassthroughNamespaces(c.Passthrough...))
	}
	names := make([]string, 0, len(c.Filters))
	for name := range c.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, WithFilter(name, c.Filters[name]))
	}
	if c.MaxImportDepth > 0 {
		opts = append(opts, WithMaxImportDepth(c.MaxImportDepth))
	}

	d := c.Delimiters
	if d.EchoOpen != "" || d.EchoClose != "" || d.RawOpen != "" || d.RawClose != "" {
		opts = append(opts, WithEchoDelimiters(
			orDefault(d.EchoOpen, DefaultEchoOpen),
			orDefault(d.EchoClose, DefaultEchoClose),
			orDefault(d.RawOpen, DefaultRawOpen),
			orDefault(d.RawClose, DefaultRawClose)))
	}
	if d.OutputLeft != "" || d.OutputRight != "" {
		opts = append(opts, WithOutputDelimiters(
			orDefault(d.OutputLeft, DefaultOutputLeft),
			orDefault(d.OutputRight, DefaultOutputRight)))
	}
	return opts
}

// OpenLoader creates the configured loader. The file loader is the default.
func (c *Config) OpenLoader() (Loader, error) {
	switch c.Loader {
	case "", LoaderDriverFile:
		root := c.Root
		if root == "" {
			root = "."
		}
		return NewFileLoader(root, c.Extensions...), nil
	default:
		return OpenLoader(c.Loader, c.DSN)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
