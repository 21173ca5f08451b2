package filtering

import (
	"fmt"

	"github.com/stacklok/forward-slots/internal/pattern"
)

// ChannelFilter decides whether a single channel name is forwarded
type ChannelFilter interface {
	// ShouldInclude determines if a channel should be forwarded under the given rules
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(name string, rules *Rules) (bool, string)
}

// SelectionConfig holds the inputs of one selection decision
type SelectionConfig struct {
	// Allow is the "only" list. When non-empty, Deny is ignored.
	Allow pattern.Set
	// Deny is the "except" list
	Deny pattern.Set
	// NativeNames are the channels the target declares itself
	NativeNames map[string]struct{}
	// FilterNative subjects native channels to Allow/Deny as well
	FilterNative bool
}

// NameSet builds a set of channel names
func NameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Rules is a SelectionConfig with its patterns resolved into matchers
type Rules struct {
	allow        []pattern.Matcher
	deny         []pattern.Matcher
	native       map[string]struct{}
	filterNative bool
}

// NewRules resolves every pattern of cfg once
func NewRules(cfg SelectionConfig) *Rules {
	return &Rules{
		allow:        cfg.Allow.Matchers(),
		deny:         cfg.Deny.Matchers(),
		native:       cfg.NativeNames,
		filterNative: cfg.FilterNative,
	}
}

// IsNative reports whether name is declared natively by the target
func (r *Rules) IsNative(name string) bool {
	_, ok := r.native[name]
	return ok
}

// protects reports whether name bypasses pattern matching
func (r *Rules) protects(name string) bool {
	return !r.filterNative && r.IsNative(name)
}

// defaultChannelFilter implements channel filtering with resolved pattern matchers
type defaultChannelFilter struct{}

var _ ChannelFilter = (*defaultChannelFilter)(nil)

// NewDefaultChannelFilter creates a new defaultChannelFilter
func NewDefaultChannelFilter() ChannelFilter {
	return &defaultChannelFilter{}
}

// ShouldInclude determines if a channel should be forwarded
//
// Logic:
// 1. If the channel is native and native filtering is off -> include
// 2. If allow patterns are specified and name matches any allow pattern -> include
// 3. If allow patterns are specified and name doesn't match any -> exclude
// 4. If no allow patterns and name matches any deny pattern -> exclude
// 5. Otherwise -> include (default behavior)
func (*defaultChannelFilter) ShouldInclude(name string, rules *Rules) (bool, string) {
	if rules.protects(name) {
		return true, "native channel"
	}

	if len(rules.allow) > 0 {
		for _, m := range rules.allow {
			if m.Match(name) {
				return true, fmt.Sprintf("included by pattern '%s'", m)
			}
		}
		return false, fmt.Sprintf("no match found in only patterns %v", rules.allow)
	}

	for _, m := range rules.deny {
		if m.Match(name) {
			return false, fmt.Sprintf("excluded by pattern '%s'", m)
		}
	}

	if len(rules.deny) > 0 {
		return true, fmt.Sprintf("no match in except patterns %v", rules.deny)
	}
	return true, "no channel filters specified"
}
