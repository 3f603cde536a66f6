// Package matcher decides whether a project applies to a working directory.
package matcher

import (
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harshul/builder/internal/config"
	"github.com/harshul/builder/internal/vars"
	"github.com/rotisserie/eris"
)

var (
	// ErrMissingPath is returned for a project without a path key.
	ErrMissingPath = eris.New("missing path key")
	// ErrInvalidPattern is returned when a path does not compile.
	ErrInvalidPattern = eris.New("invalid path pattern")
)

// Pattern returns the fully expanded path pattern of a project: variables
// substituted, then a leading ~ or ~user replaced by the home directory.
func Pattern(p config.Project, computed, user vars.Map) (string, error) {
	if !p.HasPath {
		return "", eris.Wrapf(ErrMissingPath, "project %q", p.Name)
	}
	return ExpandUser(vars.Resolve(p.Path, computed, user)), nil
}

// Match tests the project's path pattern against the start of cwd and
// returns the matched prefix. The pattern is a regular expression; it only
// has to match a prefix of cwd, not all of it.
func Match(p config.Project, computed, user vars.Map, cwd string) (string, bool, error) {
	pattern, err := Pattern(p, computed, user)
	if err != nil {
		return "", false, err
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return "", false, eris.Wrapf(ErrInvalidPattern, "project %q: %v", p.Name, err)
	}

	loc := re.FindStringIndex(cwd)
	if loc == nil {
		return "", false, nil
	}
	return cwd[:loc[1]], true, nil
}

// ExpandUser replaces a leading ~ or ~name with the corresponding home
// directory. Paths that cannot be expanded are returned unchanged.
func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	name, rest, _ := strings.Cut(path[1:], "/")
	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}

	if rest == "" && !strings.Contains(path, "/") {
		return home
	}
	return strings.TrimSuffix(home, string(filepath.Separator)) + "/" + rest
}
