package tplc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
loader: file
root: templates
directories:
  - namespace: ui
    base: components
bundles:
  - tag: app:layout
    identifier: layouts/app
passthrough: [svg]
filters:
  upper: upper
max_import_depth: 8
delimiters:
  output_left: "[["
  output_right: "]]"
`

const tomlConfig = `
loader = "file"
root = "templates"
passthrough = ["svg"]
max_import_depth = 8

[[directories]]
namespace = "ui"
base = "components"

[[bundles]]
tag = "app:layout"
identifier = "layouts/app"

[filters]
upper = "upper"

[delimiters]
output_left = "[["
output_right = "]]"
`

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"yaml", yamlConfig, ConfigFormatYAML},
		{"toml", tomlConfig, ConfigFormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, LoaderDriverFile, cfg.Loader)
			assert.Equal(t, "templates", cfg.Root)
			assert.Equal(t, []DirectoryConfig{{Namespace: "ui", Base: "components"}}, cfg.Directories)
			assert.Equal(t, []BundleConfig{{Tag: "app:layout", Identifier: "layouts/app"}}, cfg.Bundles)
			assert.Equal(t, []string{"svg"}, cfg.Passthrough)
			assert.Equal(t, map[string]string{"upper": "upper"}, cfg.Filters)
			assert.Equal(t, 8, cfg.MaxImportDepth)
			assert.Equal(t, "[[", cfg.Delimiters.OutputLeft)
		})
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown yaml key", "loder: file\n", ConfigFormatYAML},
		{"unknown toml key", "loder = \"file\"\n", ConfigFormatTOML},
		{"malformed yaml", "root: [\n", ConfigFormatYAML},
		{"malformed toml", "root = \n", ConfigFormatTOML},
		{"unsupported format", "{}", "json"},
		{"negative depth", "max_import_depth: -1\n", ConfigFormatYAML},
		{"negative jobs", "jobs: -2\n", ConfigFormatYAML},
		{"directory without namespace", "directories:\n  - base: c\n", ConfigFormatYAML},
		{"directory without base", "directories:\n  - namespace: ui\n", ConfigFormatYAML},
		{"incomplete bundle", "bundles:\n  - tag: a:b\n", ConfigFormatYAML},
		{"postgres without dsn", "loader: postgres\n", ConfigFormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), tt.format)
			require.Error(t, err)
			metadata(t, err)
		})
	}
}

func TestParseConfig_EmptyYAML(t *testing.T) {
	cfg, err := ParseConfig(nil, ConfigFormatYAML)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tplc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "templates"), cfg.Root)

	loader, err := cfg.OpenLoader()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "templates"), loader.(*FileLoader).Root())

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	meta := metadata(t, err, MetaKeyPath)
	assert.Equal(t, filepath.Join(dir, "missing.yaml"), meta[MetaKeyPath])

	ini := filepath.Join(dir, "tplc.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x"), 0o644))
	_, err = LoadConfig(ini)
	assert.Error(t, err)
}

func TestConfig_OptionsConfigureEngine(t *testing.T) {
	cfg, err := ParseConfig([]byte(yamlConfig), ConfigFormatYAML)
	require.NoError(t, err)

	loader := NewMemoryLoader(map[string]string{
		"page":            `<ui:card>{{ .A | upper }}</ui:card><svg:rect/>`,
		"components/card": `<div>${context}</div>`,
	})
	engine, err := New(append(cfg.Options(), WithLoader(loader))...)
	require.NoError(t, err)
	assert.Contains(t, engine.Filters(), "upper")

	compiled, err := engine.Compile("page")
	require.NoError(t, err)
	assert.Equal(t, `<div>[[ upper (.A) ]]</div><svg:rect/>`, compiled.Content)
}
