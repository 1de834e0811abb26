package main

import (
	"fmt"
	"strings"

	"github.com/cours-de-latin/cartula"
)

// parseBinding reads arguments of the form axis=value[,value].
func parseBinding(args []string) (cartula.Binding, error) {
	b := cartula.Binding{}
	for _, arg := range args {
		axis, values, ok := strings.Cut(arg, "=")
		if !ok || axis == "" || values == "" {
			return nil, fmt.Errorf("expected axis=value, got %q", arg)
		}
		b[axis] = cartula.Any(strings.Split(values, ",")...)
	}
	return b, nil
}

// parseSemes reads flags of the form name.axis=value[,value].
func parseSemes(flags []string) (cartula.Semes, error) {
	semes := cartula.Semes{}
	for _, f := range flags {
		name, rest, ok := strings.Cut(f, ".")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name.axis=value, got %q", f)
		}
		b, err := parseBinding([]string{rest})
		if err != nil {
			return nil, fmt.Errorf("seme %q: %w", name, err)
		}
		if semes[name] == nil {
			semes[name] = cartula.Binding{}
		}
		semes[name] = semes[name].Merge(b)
	}
	return semes, nil
}
