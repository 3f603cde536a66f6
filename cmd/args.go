package main

import "strings"

// longAliases maps the two-letter single-dash aliases, which pflag cannot
// express as shorthands, to their long flags.
var longAliases = map[string]string{
	"-os": "--operating-system",
	"-bt": "--build-type",
}

// normalizeArgs rewrites -os and -bt (including the -os=value form) to their
// long names. Arguments after "--" are left untouched.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if long, ok := longAliases[name]; ok {
			if hasValue {
				arg = long + "=" + value
			} else {
				arg = long
			}
		}
		out = append(out, arg)
	}
	return out
}
