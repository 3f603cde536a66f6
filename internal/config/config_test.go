package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
variables:
  jobs: 8
  src: ~/src
environment:
  MAKEFLAGS: -j{jobs}
projects:
  zeta:
    path: "{src}/zeta"
    variables:
      b: "{a}2"
      a: 1
    build:
      - make
      - make install
  alpha:
    path: /tmp/alpha
    test:
      - ./run-tests
  empty:
`

func TestParsePreservesOrder(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.True(t, cfg.HasVariables)
	assert.Equal(t, []vars.Pair{{Key: "jobs", Value: "8"}, {Key: "src", Value: "~/src"}}, cfg.Variables.Pairs())
	assert.Equal(t, []string{"MAKEFLAGS=-j{jobs}"}, cfg.Environment.Environ())

	require.Len(t, cfg.Projects, 3)
	assert.Equal(t, "zeta", cfg.Projects[0].Name)
	assert.Equal(t, "alpha", cfg.Projects[1].Name)
	assert.Equal(t, "empty", cfg.Projects[2].Name)

	zeta := cfg.Projects[0]
	assert.True(t, zeta.HasPath)
	assert.Equal(t, "{src}/zeta", zeta.Path)
	assert.Equal(t, []string{"b", "a"}, zeta.Variables.Keys())
	steps, ok := zeta.Steps(PhaseBuild)
	assert.True(t, ok)
	assert.Equal(t, []string{"make", "make install"}, steps)
	_, ok = zeta.Steps(PhaseTest)
	assert.False(t, ok)

	empty := cfg.Projects[2]
	assert.False(t, empty.HasPath)
	assert.False(t, empty.HasBuild)
}

func TestParseScalarCoercion(t *testing.T) {
	cfg, err := Parse([]byte(`
variables:
  int: 42
  float: 1.50
  yes: true
  nothing: ~
  list: [a, b]
`))
	require.NoError(t, err)

	want := []vars.Pair{
		{Key: "int", Value: "42"},
		{Key: "float", Value: "1.50"},
		{Key: "yes", Value: "true"},
		{Key: "nothing", Value: ""},
		{Key: "list", Value: "[a, b]"},
	}
	assert.Equal(t, want, cfg.Variables.Pairs())
}

func TestParseAliasesAndMerges(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		project   string
		wantBuild []string
		wantPath  string
		wantVars  []vars.Pair
	}{
		{
			name: "merge key",
			doc: `
common: &common
  path: /common
  build: [make, make install]
projects:
  a:
    <<: *common
    path: /a
`,
			project:   "a",
			wantPath:  "/a",
			wantBuild: []string{"make", "make install"},
		},
		{
			name: "project alias",
			doc: `
projects:
  a: &p
    path: /src
    build: [make]
  b: *p
`,
			project:   "b",
			wantPath:  "/src",
			wantBuild: []string{"make"},
		},
		{
			name: "variables alias",
			doc: `
shared: &v
  jobs: 4
  dir: out
projects:
  a:
    path: /a
    variables: *v
`,
			project:  "a",
			wantPath: "/a",
			wantVars: []vars.Pair{{Key: "jobs", Value: "4"}, {Key: "dir", Value: "out"}},
		},
		{
			name: "merge list earlier wins",
			doc: `
x: &x {path: /x, build: [x]}
y: &y {path: /y, test: [y]}
projects:
  a:
    <<: [*x, *y]
`,
			project:   "a",
			wantPath:  "/x",
			wantBuild: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			var p *Project
			for i := range cfg.Projects {
				if cfg.Projects[i].Name == tt.project {
					p = &cfg.Projects[i]
				}
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.wantPath, p.Path)
			if tt.wantBuild != nil {
				steps, ok := p.Steps(PhaseBuild)
				assert.True(t, ok)
				assert.Equal(t, tt.wantBuild, steps)
			}
			if tt.wantVars != nil {
				assert.True(t, p.HasVariables)
				assert.Equal(t, tt.wantVars, p.Variables.Pairs())
			}
		})
	}
}

func TestParseMergeKeepsExplicitOrder(t *testing.T) {
	cfg, err := Parse([]byte(`
base: &base
  b: from-base
  c: "3"
projects:
  a:
    path: /a
    variables:
      <<: *base
      a: "1"
      b: "2"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 1)
	want := []vars.Pair{{Key: "b", Value: "2"}, {Key: "c", Value: "3"}, {Key: "a", Value: "1"}}
	assert.Equal(t, want, cfg.Projects[0].Variables.Pairs())
}

func TestParseDuplicateProjectNames(t *testing.T) {
	cfg, err := Parse([]byte(`
projects:
  app:
    path: /first
  other:
    path: /other
  app:
    path: /second
`))
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 2)
	assert.Equal(t, "app", cfg.Projects[0].Name)
	assert.Equal(t, "/second", cfg.Projects[0].Path)
	assert.Equal(t, "other", cfg.Projects[1].Name)
}

func TestParseEmptyDocuments(t *testing.T) {
	for _, doc := range []string{"", "---\n", "~\n"} {
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Empty(t, cfg.Projects)
	}
}

func TestParseShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "top level list", doc: "- a\n- b\n"},
		{name: "projects list", doc: "projects:\n  - a\n"},
		{name: "project scalar", doc: "projects:\n  a: nope\n"},
		{name: "build mapping", doc: "projects:\n  a:\n    build:\n      x: y\n"},
		{name: "variables list", doc: "variables:\n  - a\n"},
		{name: "invalid yaml", doc: "projects: [\n"},
		{name: "merge scalar", doc: "projects:\n  a:\n    <<: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Projects, 3)
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, WriteSample(path, false))

	err := WriteSample(path, false)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrExists))
	require.NoError(t, WriteSample(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, "example", cfg.Projects[0].Name)
	assert.Equal(t, "~/src/example", cfg.Projects[0].Path)
	v, ok := cfg.Projects[0].Variables.Get("build_dir")
	assert.True(t, ok)
	assert.Equal(t, "build-{os}-{bt}", v)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BUILDER_CONFIG", "/etc/builder.yml")
	t.Setenv("BUILDER_SHELL", "builtin")

	d, err := LoadDefaults()
	require.NoError(t, err)
	assert.Equal(t, "/etc/builder.yml", d.ConfigPath)
	assert.Equal(t, "builtin", d.Shell)
	assert.Equal(t, "Release", d.BuildType)
}

func TestLoadDefaultsShellUnset(t *testing.T) {
	t.Setenv("BUILDER_SHELL", "")

	d, err := LoadDefaults()
	require.NoError(t, err)
	assert.Empty(t, d.Shell)
}

func TestLoadDefaultsHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("BUILDER_CONFIG", "")

	d, err := LoadDefaults()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultFileName), d.ConfigPath)
}
