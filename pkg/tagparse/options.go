package tagparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Options is the fixed configuration of a Parser. The zero value is valid:
// every root tag is structural, nothing is opaque.
type Options struct {
	// TextNodeName is the key used for text content when a tree is
	// converted to its map form (see Result.Map). Default "#text".
	TextNodeName string

	// AttributeNamePrefix is prepended to attribute keys in the map form,
	// keeping them distinct from child element keys. Default "@_".
	AttributeNamePrefix string

	// AlwaysCreateTextNode forces a text child on every element, so
	// downstream code can read element text uniformly without checking
	// for its presence.
	AlwaysCreateTextNode bool

	// StopNodes lists dotted tag paths (e.g. "write_to_file.content")
	// below which markup is kept as one literal text node and never
	// descended into. A path is literal except for an optional trailing
	// ".*" wildcard, which matches the named node and everything beneath
	// it. Invalid paths are rejected by New.
	StopNodes []string

	// AllowedRootNodes restricts which tag names are treated as
	// structural at the top level. Any other top-level tag, however well
	// formed, stays literal text. Empty means no restriction.
	AllowedRootNodes []string
}

func (o *Options) textNodeName() string {
	if o.TextNodeName == "" {
		return "#text"
	}
	return o.TextNodeName
}

func (o *Options) attrPrefix() string {
	if o.AttributeNamePrefix == "" {
		return "@_"
	}
	return o.AttributeNamePrefix
}

// compileLiteralPath compiles a dotted tag path into a matcher expression.
//
// This is the only place patterns are built from externally influenced
// strings. Every regex metacharacter in the path is escaped; the sole
// recognized syntax is the trailing ".*" wildcard. Interpolating a raw tag
// name into a pattern anywhere else is a bug.
func compileLiteralPath(path string) (*regexp.Regexp, error) {
	if path == "" {
		return nil, errors.New("tagparse: empty stop path")
	}
	base, wildcard := strings.CutSuffix(path, ".*")
	if base == "" {
		return nil, fmt.Errorf("tagparse: invalid stop path %q", path)
	}
	if strings.Contains(base, "*") {
		return nil, fmt.Errorf("tagparse: stop path %q: wildcard allowed only as trailing .*", path)
	}
	for _, seg := range strings.Split(base, ".") {
		if seg == "" {
			return nil, fmt.Errorf("tagparse: stop path %q has an empty segment", path)
		}
	}
	expr := "^" + regexp.QuoteMeta(base)
	if wildcard {
		expr += `(?:\..*)?`
	}
	expr += "$"
	return regexp.Compile(expr)
}
