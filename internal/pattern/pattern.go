// Package pattern converts channel selection expressions into matchers.
//
// A Pattern is one of four kinds:
//
//   - Literal: matches a single channel name exactly ("default")
//   - Wildcard: a literal with a leading and/or trailing '*' ("prepend*", "*.one")
//   - Regex: a compiled regular expression (/ONE$/i in text form)
//   - Glob: a gobwas/glob expression (glob:prepend.{one,two} in text form)
//
// Patterns are resolved once into a Matcher before any matching loop runs.
// Only a '*' at the very start or end of a string makes it a wildcard; a '*'
// anywhere else is matched literally.
package pattern

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// ErrInvalidPattern is returned when a pattern cannot be parsed from its text form.
var ErrInvalidPattern = errors.New("invalid pattern")

const (
	globPrefix     = "glob:"
	regexDelimiter = "/"
	wildcard       = "*"
)

// Kind identifies the variant held by a Pattern
type Kind int

const (
	// KindLiteral matches a channel name by exact equality
	KindLiteral Kind = iota
	// KindWildcard matches by prefix and/or suffix
	KindWildcard
	// KindRegex matches with a regular expression
	KindRegex
	// KindGlob matches with a glob expression
	KindGlob
)

// String returns the lower-case name of the kind
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindWildcard:
		return "wildcard"
	case KindRegex:
		return "regex"
	case KindGlob:
		return "glob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Pattern is a single inclusion or exclusion expression
type Pattern struct {
	kind Kind
	text string
	expr *regexp.Regexp
	glob glob.Glob
}

// Literal returns a pattern matching exactly s.
func Literal(s string) Pattern {
	return Pattern{kind: KindLiteral, text: s}
}

// Wildcard returns a pattern for s, where a leading and/or trailing '*' match any
// prefix or suffix. If s has no such '*' the pattern behaves like Literal(s).
func Wildcard(s string) Pattern {
	return Pattern{kind: KindWildcard, text: s}
}

// Regex wraps an already compiled regular expression.
func Regex(re *regexp.Regexp) Pattern {
	return Pattern{kind: KindRegex, text: regexDelimiter + re.String() + regexDelimiter, expr: re}
}

// Glob compiles expr with gobwas/glob. No separators are configured, so '*'
// matches across every character including dots.
func Glob(expr string) (Pattern, error) {
	// filepath.Match catches malformed character classes that glob.Compile accepts
	if _, err := filepath.Match(expr, "test"); err != nil {
		return Pattern{}, fmt.Errorf("%w: glob %q: %v", ErrInvalidPattern, expr, err)
	}
	g, err := glob.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: glob %q: %v", ErrInvalidPattern, expr, err)
	}
	return Pattern{kind: KindGlob, text: globPrefix + expr, glob: g}, nil
}

// NewString classifies a plain string as a Wildcard when it starts or ends with
// '*', and as a Literal otherwise.
func NewString(s string) Pattern {
	if strings.HasPrefix(s, wildcard) || strings.HasSuffix(s, wildcard) {
		return Wildcard(s)
	}
	return Literal(s)
}

// Parse reads the text form of a pattern:
//
//	/expr/flags   regular expression; flags are Go's "imsU", plus "u" which is accepted and ignored
//	glob:expr     glob expression
//	anything else literal or wildcard, see NewString
func Parse(text string) (Pattern, error) {
	if expr, ok := strings.CutPrefix(text, globPrefix); ok {
		return Glob(expr)
	}

	if strings.HasPrefix(text, regexDelimiter) {
		end := strings.LastIndex(text, regexDelimiter)
		if end > 0 {
			re, err := compileRegex(text[1:end], text[end+1:])
			if err != nil {
				return Pattern{}, err
			}
			return Pattern{kind: KindRegex, text: text, expr: re}, nil
		}
	}

	return NewString(text), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level variables.
func MustParse(text string) Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func compileRegex(expr, flags string) (*regexp.Regexp, error) {
	var goFlags strings.Builder
	for _, f := range flags {
		switch {
		case f == 'u':
			// Go regexps are always Unicode-aware
		case strings.ContainsRune("imsU", f):
			goFlags.WriteRune(f)
		default:
			return nil, fmt.Errorf("%w: unknown regex flag %q in /%s/%s", ErrInvalidPattern, f, expr, flags)
		}
	}
	if goFlags.Len() > 0 {
		expr = "(?" + goFlags.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// Kind returns the variant held by the pattern
func (p Pattern) Kind() Kind {
	return p.kind
}

// String returns the text form of the pattern, suitable for Parse
func (p Pattern) String() string {
	return p.text
}

// IsZero reports whether p is the zero Pattern (an empty literal)
func (p Pattern) IsZero() bool {
	return p.kind == KindLiteral && p.text == ""
}
