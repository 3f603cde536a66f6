package vars

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedVariable is returned for a user variable without '='.
var ErrMalformedVariable = eris.New("malformed variable, expected KEY=VALUE")

// ParseUser builds the user scope from KEY=VALUE arguments. The first '='
// separates key and value and the value is trimmed of surrounding
// whitespace.
func ParseUser(args []string) (Map, error) {
	var m Map
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Map{}, eris.Wrapf(ErrMalformedVariable, "-v %q", arg)
		}
		m = m.With(key, strings.TrimSpace(value))
	}
	return m, nil
}
