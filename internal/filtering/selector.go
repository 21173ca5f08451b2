package filtering

import (
	"context"
	"log/slog"
)

// Decision is the outcome for one channel name
type Decision struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
	Native   bool   `json:"native"`
	Reason   string `json:"reason"`
}

// Service computes forwarding decisions for a set of channel names
type Service interface {
	// Decide returns one decision per name, in the order the names were given
	Decide(ctx context.Context, names []string, cfg SelectionConfig) []Decision
}

// defaultService implements selection using a ChannelFilter
type defaultService struct {
	filter ChannelFilter
}

// NewDefaultService creates a new defaultService with the default channel filter
func NewDefaultService() Service {
	return &defaultService{
		filter: NewDefaultChannelFilter(),
	}
}

// NewService creates a new defaultService with a custom channel filter
func NewService(filter ChannelFilter) Service {
	return &defaultService{
		filter: filter,
	}
}

// Decide resolves the patterns of cfg once and decides every name
func (s *defaultService) Decide(ctx context.Context, names []string, cfg SelectionConfig) []Decision {
	if len(cfg.Allow) > 0 && len(cfg.Deny) > 0 {
		slog.DebugContext(ctx, "Both only and except patterns set, except patterns are ignored",
			"only", cfg.Allow.Strings(),
			"except", cfg.Deny.Strings())
	}

	rules := NewRules(cfg)
	decisions := make([]Decision, 0, len(names))
	for _, name := range names {
		included, reason := s.filter.ShouldInclude(name, rules)
		decisions = append(decisions, Decision{
			Name:     name,
			Included: included,
			Native:   rules.IsNative(name),
			Reason:   reason,
		})
		if included {
			slog.DebugContext(ctx, "Forwarding channel", "channel", name, "reason", reason)
		} else {
			slog.DebugContext(ctx, "Dropping channel", "channel", name, "reason", reason)
		}
	}

	return decisions
}

// Selected returns the names of the included decisions
func Selected(decisions []Decision) map[string]struct{} {
	selected := make(map[string]struct{}, len(decisions))
	for _, d := range decisions {
		if d.Included {
			selected[d.Name] = struct{}{}
		}
	}
	return selected
}

// Select returns the subset of names to forward under cfg
func Select(names []string, cfg SelectionConfig) map[string]struct{} {
	return Selected(NewDefaultService().Decide(context.Background(), names, cfg))
}
