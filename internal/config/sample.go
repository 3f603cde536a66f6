package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrExists is returned by WriteSample when the target already exists.
var ErrExists = eris.New("configuration file already exists")

// sample is the starter configuration written by `builder init`. It is
// assembled as a node tree so the comments survive marshalling.
func sample() *yaml.Node {
	str := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}
	mapping := func(kv ...*yaml.Node) *yaml.Node {
		return &yaml.Node{Kind: yaml.MappingNode, Content: kv}
	}
	list := func(items ...string) *yaml.Node {
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range items {
			n.Content = append(n.Content, str(it))
		}
		return n
	}
	withComment := func(n *yaml.Node, c string) *yaml.Node {
		n.HeadComment = c
		return n
	}

	project := mapping(
		withComment(str("path"), "Regular expression matched against the start of the working directory."),
		str("~/src/example"),
		str("variables"),
		mapping(str("build_dir"), str("build-{os}-{bt}")),
		str("environment"),
		mapping(str("CMAKE_BUILD_TYPE"), str("{bt}")),
		str("build"),
		list("cmake -B {build_dir} -DCMAKE_BUILD_TYPE={bt}", "cmake --build {build_dir}"),
		str("test"),
		list("ctest --test-dir {build_dir}"),
	)

	root := mapping(
		withComment(str("variables"), "Variables available to every project. {os} and {bt} are predefined."),
		mapping(str("jobs"), str("8")),
		withComment(str("environment"), "Environment added to every executed command."),
		mapping(str("CMAKE_BUILD_PARALLEL_LEVEL"), str("{jobs}")),
		withComment(str("projects"), "Projects are tried in order; the first matching path wins."),
		mapping(str("example"), project),
	)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

// WriteSample writes a starter configuration to path. An existing file is
// only replaced when force is set.
func WriteSample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return eris.Wrapf(ErrExists, "%s", path)
	}

	data, err := yaml.Marshal(sample())
	if err != nil {
		return eris.Wrap(err, "failed to render configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
