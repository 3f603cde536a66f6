// Package config loads the builder configuration file.
//
// The file is decoded at the yaml.Node level rather than into Go maps
// because the order of projects, variables and environment entries is
// significant: projects are tried in the order they are written and each
// variable may reference the ones declared before it.
package config

import (
	"os"
	"strings"

	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when the configuration file does not exist.
var ErrNotFound = eris.New("configuration file not found")

// Config is the root of the configuration file.
type Config struct {
	Variables    vars.Map
	HasVariables bool
	Environment  vars.Map
	Projects     []Project
}

// Project is a single entry under projects. Every key is optional.
type Project struct {
	Name         string
	Path         string
	HasPath      bool
	Variables    vars.Map
	HasVariables bool
	Environment  vars.Map
	Build        []string
	HasBuild     bool
	Test         []string
	HasTest      bool
}

// Phase names a command list of a project.
type Phase string

const (
	PhaseBuild Phase = "build"
	PhaseTest  Phase = "test"
)

// Steps returns the command templates of the given phase and whether the
// project declares that phase at all.
func (p Project) Steps(phase Phase) ([]string, bool) {
	switch phase {
	case PhaseBuild:
		return p.Build, p.HasBuild
	case PhaseTest:
		return p.Test, p.HasTest
	}
	return nil, false
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "failed to read %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}

// Parse decodes configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg := &Config{}
	// An empty document has no content node.
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	root := resolveAlias(doc.Content[0])
	if isNull(root) {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, eris.Errorf("line %d: top level must be a mapping", root.Line)
	}

	pairs, err := entries(root)
	if err != nil {
		return nil, err
	}
	for _, e := range pairs {
		key, value := e.key, e.value
		switch key.Value {
		case "variables":
			cfg.HasVariables = true
			if cfg.Variables, err = parseMap(value, "variables"); err != nil {
				return nil, err
			}
		case "environment":
			if cfg.Environment, err = parseMap(value, "environment"); err != nil {
				return nil, err
			}
		case "projects":
			if cfg.Projects, err = parseProjects(value); err != nil {
				return nil, err
			}
		}
	}
	return cfg, nil
}

// parseProjects keeps the projects in file order. A name given twice keeps
// its first position and its last body.
func parseProjects(node *yaml.Node) ([]Project, error) {
	node = resolveAlias(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, eris.Errorf("line %d: projects must be a mapping", node.Line)
	}

	pairs, err := entries(node)
	if err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(pairs))
	for _, e := range pairs {
		p, err := parseProject(e.key.Value, e.value)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func parseProject(name string, node *yaml.Node) (Project, error) {
	p := Project{Name: name}
	node = resolveAlias(node)
	// A project declared without a body behaves as an empty mapping.
	if isNull(node) {
		return p, nil
	}
	if node.Kind != yaml.MappingNode {
		return p, eris.Errorf("line %d: project %q must be a mapping", node.Line, name)
	}

	pairs, err := entries(node)
	if err != nil {
		return p, err
	}
	for _, e := range pairs {
		key, value := e.key, e.value
		where := "projects." + name + "." + key.Value
		switch key.Value {
		case "path":
			p.HasPath = true
			if p.Path, err = scalarText(value); err != nil {
				return p, err
			}
		case "variables":
			p.HasVariables = true
			if p.Variables, err = parseMap(value, where); err != nil {
				return p, err
			}
		case "environment":
			if p.Environment, err = parseMap(value, where); err != nil {
				return p, err
			}
		case "build":
			p.HasBuild = true
			if p.Build, err = parseList(value, where); err != nil {
				return p, err
			}
		case "test":
			p.HasTest = true
			if p.Test, err = parseList(value, where); err != nil {
				return p, err
			}
		}
	}
	return p, nil
}

func parseMap(node *yaml.Node, where string) (vars.Map, error) {
	var m vars.Map
	node = resolveAlias(node)
	if isNull(node) {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return m, eris.Errorf("line %d: %s must be a mapping", node.Line, where)
	}
	pairs, err := entries(node)
	if err != nil {
		return m, err
	}
	for _, e := range pairs {
		value, err := scalarText(e.value)
		if err != nil {
			return m, err
		}
		m = m.With(e.key.Value, value)
	}
	return m, nil
}

func parseList(node *yaml.Node, where string) ([]string, error) {
	node = resolveAlias(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, eris.Errorf("line %d: %s must be a list", node.Line, where)
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		text, err := scalarText(item)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// scalarText returns the textual form of a value as written in the file.
// Null becomes the empty string and collections are rendered in flow style.
func scalarText(node *yaml.Node) (string, error) {
	node = resolveAlias(node)
	if isNull(node) {
		return "", nil
	}
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}

	flow := *node
	flow.Style = yaml.FlowStyle
	data, err := yaml.Marshal(&flow)
	if err != nil {
		return "", eris.Wrapf(err, "line %d: cannot render value", node.Line)
	}
	return strings.TrimSpace(string(data)), nil
}

func isNull(node *yaml.Node) bool {
	node = resolveAlias(node)
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

// resolveAlias follows alias nodes to the node they refer to.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// maxMergeDepth bounds nested merge keys.
const maxMergeDepth = 32

type entry struct {
	key   *yaml.Node
	value *yaml.Node
}

// entries returns the pairs of a mapping node with merge keys (<<) folded
// in. Merged pairs are placed before the explicit ones so explicit keys
// override them. A repeated key keeps its first position and its last
// value.
func entries(node *yaml.Node) ([]entry, error) {
	var flat []entry
	if err := flatten(node, &flat, 0); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(flat))
	out := make([]entry, 0, len(flat))
	for _, e := range flat {
		if i, ok := index[e.key.Value]; ok {
			out[i].value = e.value
			continue
		}
		index[e.key.Value] = len(out)
		out = append(out, e)
	}
	return out, nil
}

func flatten(node *yaml.Node, out *[]entry, depth int) error {
	if depth > maxMergeDepth {
		return eris.Errorf("line %d: merge keys nested too deeply", node.Line)
	}

	var merged, explicit []entry
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolveAlias(node.Content[i]), node.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			if err := mergeSources(value, &merged, depth); err != nil {
				return err
			}
			continue
		}
		explicit = append(explicit, entry{key: key, value: value})
	}
	*out = append(*out, merged...)
	*out = append(*out, explicit...)
	return nil
}

// mergeSources flattens the value of a merge key: a mapping or a list of
// mappings, where earlier mappings in the list win.
func mergeSources(value *yaml.Node, out *[]entry, depth int) error {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		return flatten(value, out, depth+1)
	case yaml.SequenceNode:
		for i := len(value.Content) - 1; i >= 0; i-- {
			item := resolveAlias(value.Content[i])
			if item.Kind != yaml.MappingNode {
				return eris.Errorf("line %d: merge list must contain mappings", item.Line)
			}
			if err := flatten(item, out, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return eris.Errorf("line %d: merge value must be a mapping or a list of mappings", value.Line)
}
