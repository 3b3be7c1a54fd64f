package config

import (
	"fmt"
	"os"
	"strings"
)

// expandEnv substitutes environment references in configuration text.
// Supported forms:
//   - ${VAR} and $VAR expand to the value of VAR
//   - ${VAR:-default} falls back when VAR is unset or empty
//   - ${VAR:?message} fails with message when VAR is unset or empty
//
// In strict mode a plain reference to an unset variable is an error;
// otherwise it expands to the empty string.
func expandEnv(input string, strict bool) (string, error) {
	var missing []string

	out := os.Expand(input, func(ref string) string {
		name, modifier, hasModifier := strings.Cut(ref, ":")
		value, set := os.LookupEnv(name)

		if hasModifier {
			switch {
			case strings.HasPrefix(modifier, "-"):
				if !set || value == "" {
					return modifier[1:]
				}
			case strings.HasPrefix(modifier, "?"):
				if !set || value == "" {
					missing = append(missing, name+": "+modifier[1:])
					return ""
				}
			}
			return value
		}

		if !set {
			if strict {
				missing = append(missing, name)
			}
			return ""
		}
		return value
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingEnvVar, strings.Join(missing, ", "))
	}
	return out, nil
}

// ExpandEnv expands environment references, treating unset variables as
// empty.
func ExpandEnv(input string) string {
	out, _ := expandEnv(input, false)
	return out
}

// ExpandEnvStrict expands environment references and errors on unset
// variables.
func ExpandEnvStrict(input string) (string, error) {
	return expandEnv(input, true)
}
