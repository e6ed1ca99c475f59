package modelgraph

import (
	"strconv"
	"strings"
)

// concatKeypath joins a base keypath with a field name, list index, or map
// key using the dotted notation error keypaths are reported in.
func concatKeypath(base string, key any) string {
	var part string
	switch k := key.(type) {
	case string:
		part = k
	case int:
		part = strconv.Itoa(k)
	default:
		part = ""
	}
	if base == "" {
		return part
	}
	if part == "" {
		return base
	}
	return base + "." + part
}

// initialKeypath returns the first component of a dotted keypath, which for
// owned collections is always the field name the collection hangs off.
func initialKeypath(keypath string) string {
	if i := strings.IndexByte(keypath, '.'); i >= 0 {
		return keypath[:i]
	}
	return keypath
}

// camelize converts a snake_case field name into the camelCase JSON key used
// when the class config enables key camelization.
func camelize(name string) string {
	if !strings.ContainsRune(name, '_') {
		return name
	}
	parts := strings.Split(name, "_")
	b := &strings.Builder{}
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
