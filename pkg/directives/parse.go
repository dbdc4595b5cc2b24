package directives

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseValue converts the textual value of a pragma comment or command
// line option into the typed value of directive name.
func ParseValue(name, value string) (any, error) {
	spec, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown directive: %q", name)
	}
	switch spec.Kind {
	case Bool:
		switch value {
		case "True":
			return true, nil
		case "False":
			return false, nil
		}
		return nil, fmt.Errorf("%s directive must be set to True or False", name)
	case Int:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s directive must be set to an integer: %w", name, err)
		}
		return i, nil
	case Str:
		return value, nil
	}
	return nil, fmt.Errorf("%s directive cannot be set from a comment or option", name)
}

// ParseList parses "name=value, name=value" as written after
// "# cython:" or passed with -X.
func ParseList(s string) (Set, error) {
	result := Set{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("expected \"=\" in option %q", item)
		}
		name = strings.TrimSpace(name)
		v, err := ParseValue(name, strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		result[name] = v
	}
	return result, nil
}

// PragmaPrefix starts a directive comment line.
const PragmaPrefix = "cython:"

// ParsePragma parses one comment body (the text after '#'). It returns
// ok=false when the comment is not a directive comment.
func ParsePragma(comment string) (set Set, ok bool, err error) {
	body := strings.TrimSpace(comment)
	if !strings.HasPrefix(body, PragmaPrefix) {
		return nil, false, nil
	}
	set, err = ParseList(body[len(PragmaPrefix):])
	return set, true, err
}
