package pattern

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// MatchKind identifies how a Matcher compares names
type MatchKind int

const (
	// MatchExact compares by string equality
	MatchExact MatchKind = iota
	// MatchRegex tests with a regular expression
	MatchRegex
	// MatchGlob tests with a compiled glob
	MatchGlob
)

// Matcher is the normalized form of a Pattern
type Matcher struct {
	kind   MatchKind
	value  string
	expr   *regexp.Regexp
	glob   glob.Glob
	source string
}

// Resolve converts a pattern into a Matcher. It never fails.
//
// Literal and wildcard text is quoted first, then a single leading and a single
// trailing '*' are replaced by ".*". When either replacement happened the result
// is compiled into a fully anchored expression; otherwise an exact matcher for
// the original text is returned.
func Resolve(p Pattern) Matcher {
	switch p.kind {
	case KindRegex:
		return Matcher{kind: MatchRegex, expr: p.expr, source: p.text}
	case KindGlob:
		return Matcher{kind: MatchGlob, glob: p.glob, source: p.text}
	default:
		return resolveString(p.text)
	}
}

// anyName is what a lone "*" resolves to. The empty name is not matched.
var anyName = regexp.MustCompile(`^.+$`)

func resolveString(s string) Matcher {
	if s == wildcard {
		return Matcher{kind: MatchRegex, expr: anyName, source: s}
	}

	body := s
	leading := strings.HasPrefix(body, wildcard)
	if leading {
		body = body[len(wildcard):]
	}
	trailing := strings.HasSuffix(body, wildcard)
	if trailing {
		body = body[:len(body)-len(wildcard)]
	}

	if !leading && !trailing {
		return Matcher{kind: MatchExact, value: s, source: s}
	}

	var b strings.Builder
	b.WriteString("^")
	if leading {
		b.WriteString(".*")
	}
	b.WriteString(regexp.QuoteMeta(body))
	if trailing {
		b.WriteString(".*")
	}
	b.WriteString("$")

	// QuoteMeta output plus ".*" anchors always compiles
	return Matcher{kind: MatchRegex, expr: regexp.MustCompile(b.String()), source: s}
}

// Kind returns how the matcher compares names
func (m Matcher) Kind() MatchKind {
	return m.kind
}

// Value returns the exact name for MatchExact matchers
func (m Matcher) Value() string {
	return m.value
}

// Expr returns the regular expression for MatchRegex matchers
func (m Matcher) Expr() *regexp.Regexp {
	return m.expr
}

// Match reports whether name satisfies the matcher
func (m Matcher) Match(name string) bool {
	switch m.kind {
	case MatchRegex:
		return m.expr.MatchString(name)
	case MatchGlob:
		return m.glob.Match(name)
	default:
		return m.value == name
	}
}

// String returns the text of the pattern the matcher was resolved from
func (m Matcher) String() string {
	return m.source
}
