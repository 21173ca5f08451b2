package pattern

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolve_Wildcard(t *testing.T) {
	t.Parallel()

	m := Resolve(NewString("prepend*"))
	require.Equal(t, MatchRegex, m.Kind())
	assert.Equal(t, `^prepend.*$`, m.Expr().String())

	assert.True(t, m.Match("prepend"))
	assert.True(t, m.Match("prepend.one"))
	assert.True(t, m.Match("prepend.two"))
	assert.False(t, m.Match("append"))
	assert.False(t, m.Match("xprepend"))
}

func TestResolve_Regex(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`(?i)ONE$`)
	m := Resolve(Regex(re))

	require.Equal(t, MatchRegex, m.Kind())
	assert.Same(t, re, m.Expr(), "regex patterns resolve unchanged")
	assert.True(t, m.Match("prepend.one"))
	assert.False(t, m.Match("prepend.two"))
}

func TestResolve_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pattern   string
		wantKind  MatchKind
		matches   []string
		noMatches []string
	}{
		{
			name:      "literal is exact",
			pattern:   "default",
			wantKind:  MatchExact,
			matches:   []string{"default"},
			noMatches: []string{"defaults", "Default", "prepend"},
		},
		{
			name:      "literal with metacharacters stays exact",
			pattern:   "prepend.one",
			wantKind:  MatchExact,
			matches:   []string{"prepend.one"},
			noMatches: []string{"prependxone"},
		},
		{
			name:      "leading wildcard",
			pattern:   "*.one",
			wantKind:  MatchRegex,
			matches:   []string{"prepend.one", ".one"},
			noMatches: []string{"prependxone", "prepend.one.two"},
		},
		{
			name:      "leading and trailing wildcard",
			pattern:   "*end*",
			wantKind:  MatchRegex,
			matches:   []string{"prepend", "append", "prepend.one", "end"},
			noMatches: []string{"default"},
		},
		{
			name:      "wildcard body is quoted",
			pattern:   "item.(a)*",
			wantKind:  MatchRegex,
			matches:   []string{"item.(a)", "item.(a)-1"},
			noMatches: []string{"itemx(a)", "item.a"},
		},
		{
			name:      "middle star is literal",
			pattern:   "a*b",
			wantKind:  MatchExact,
			matches:   []string{"a*b"},
			noMatches: []string{"ab", "axb"},
		},
		{
			name:      "lone star matches every non-empty name",
			pattern:   "*",
			wantKind:  MatchRegex,
			matches:   []string{"x", "default", "prepend.one"},
			noMatches: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := Resolve(NewString(tt.pattern))
			assert.Equal(t, tt.wantKind, m.Kind())
			assert.Equal(t, tt.pattern, m.String())
			for _, name := range tt.matches {
				assert.True(t, m.Match(name), "expected %q to match %q", tt.pattern, name)
			}
			for _, name := range tt.noMatches {
				assert.False(t, m.Match(name), "expected %q not to match %q", tt.pattern, name)
			}
		})
	}
}

func TestResolve_ExactKeepsOriginalValue(t *testing.T) {
	t.Parallel()

	m := Resolve(Literal("prepend.one"))
	assert.Equal(t, MatchExact, m.Kind())
	assert.Equal(t, "prepend.one", m.Value())
	assert.Nil(t, m.Expr())
}

func TestResolve_LiteralWithStarIsStillWildcard(t *testing.T) {
	t.Parallel()

	// Resolution works on the text, so Literal("x*") behaves like Wildcard("x*")
	m := Resolve(Literal("x*"))
	assert.Equal(t, MatchRegex, m.Kind())
	assert.True(t, m.Match("xyz"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantKind Kind
		wantErr  bool
		match    string
		noMatch  string
	}{
		{name: "literal", text: "default", wantKind: KindLiteral, match: "default", noMatch: "append"},
		{name: "wildcard", text: "prepend*", wantKind: KindWildcard, match: "prepend.two", noMatch: "append"},
		{name: "regex with flag", text: "/ONE$/i", wantKind: KindRegex, match: "prepend.one", noMatch: "prepend.two"},
		{name: "regex without flags", text: "/^app/", wantKind: KindRegex, match: "append", noMatch: "prepend"},
		{name: "regex containing slashes", text: "/a/b/", wantKind: KindRegex, match: "a/b", noMatch: "ab"},
		{name: "single slash is literal", text: "/", wantKind: KindLiteral, match: "/", noMatch: "a"},
		{name: "unterminated regex is literal", text: "/footer", wantKind: KindLiteral, match: "/footer", noMatch: "footer"},
		{name: "glob", text: "glob:prepend.{one,two}", wantKind: KindGlob, match: "prepend.two", noMatch: "prepend"},
		{name: "glob single char", text: "glob:item?", wantKind: KindGlob, match: "item1", noMatch: "item12"},
		{name: "unicode flag is accepted", text: "/^été$/iu", wantKind: KindRegex, match: "ÉTÉ", noMatch: "ete"},
		{name: "ungreedy flag", text: "/^a.*b$/U", wantKind: KindRegex, match: "axxb", noMatch: "axx"},
		{name: "unknown regex flag", text: "/one/g", wantErr: true},
		{name: "invalid regex", text: "/(unclosed/", wantErr: true},
		{name: "invalid glob", text: "glob:[a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := Parse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPattern)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind())
			assert.Equal(t, tt.text, p.String())

			m := Resolve(p)
			assert.True(t, m.Match(tt.match), "expected %q to match %q", tt.text, tt.match)
			assert.False(t, m.Match(tt.noMatch), "expected %q not to match %q", tt.text, tt.noMatch)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustParse("/(/") })
	assert.NotPanics(t, func() { MustParse("default") })
}

func TestRegex_TextRoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	p := Regex(regexp.MustCompile(`(?i)ONE$`))
	parsed, err := Parse(p.String())
	require.NoError(t, err)
	assert.True(t, Resolve(parsed).Match("prepend.one"))
}

func TestParseSet(t *testing.T) {
	t.Parallel()

	set, err := ParseSet("default", "", "prepend*", "/ONE$/i")
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "prepend*", "/ONE$/i"}, set.Strings())
	assert.Len(t, set.Matchers(), 3)

	_, err = ParseSet("default", "/(/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern[1]")
}

func TestOf_DropsZeroPatterns(t *testing.T) {
	t.Parallel()

	set := Of(Literal(""), Literal("default"), Pattern{})
	assert.Equal(t, []string{"default"}, set.Strings())
}

func TestSet_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		want    []string
		wantErr bool
	}{
		{name: "single string", doc: `only: default`, want: []string{"default"}},
		{name: "list", doc: `only: [default, "prepend*", "/ONE$/i"]`, want: []string{"default", "prepend*", "/ONE$/i"}},
		{name: "empty string", doc: `only: ""`, want: []string{}},
		{name: "empty list", doc: `only: []`, want: []string{}},
		{name: "boolean rejected", doc: `only: true`, wantErr: true},
		{name: "number in list rejected", doc: `only: [default, 3]`, wantErr: true},
		{name: "map rejected", doc: "only:\n  a: b", wantErr: true},
		{name: "bad regex rejected", doc: `only: "/(/"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var doc struct {
				Only Set `yaml:"only"`
			}
			err := yaml.Unmarshal([]byte(tt.doc), &doc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Only.Strings())
		})
	}
}

func TestSet_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		want    []string
		wantErr bool
	}{
		{name: "single string", doc: `{"except": "default"}`, want: []string{"default"}},
		{name: "array", doc: `{"except": ["default", "/ONE$/i"]}`, want: []string{"default", "/ONE$/i"}},
		{name: "null", doc: `{"except": null}`, want: []string{}},
		{name: "number rejected", doc: `{"except": 4}`, wantErr: true},
		{name: "object in array rejected", doc: `{"except": [{}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var doc struct {
				Except Set `json:"except"`
			}
			err := json.Unmarshal([]byte(tt.doc), &doc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Except.Strings())
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "literal", KindLiteral.String())
	assert.Equal(t, "wildcard", KindWildcard.String())
	assert.Equal(t, "regex", KindRegex.String())
	assert.Equal(t, "glob", KindGlob.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
