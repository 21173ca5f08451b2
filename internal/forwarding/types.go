// Package forwarding passes a parent's channels through to each render target.
//
// For every target the parent channels are merged with the target's own
// natively declared channels, filtered by the filtering package, wrapped so
// their invocation is deferred, and handed with the attribute bag to a Renderer.
// The package never renders and never invokes a channel producer itself.
package forwarding

import (
	"maps"
	"slices"
)

// Producer produces the content of a channel for the given arguments
type Producer func(args any) any

// ChannelMap maps channel names to producers. A nil producer is an absent channel.
type ChannelMap map[string]Producer

// Names returns the channel names in sorted order
func (m ChannelMap) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// nameSet returns the channel names as a set
func (m ChannelMap) nameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for name := range m {
		set[name] = struct{}{}
	}
	return set
}

// Attrs is the ambient attribute bag passed through to targets
type Attrs map[string]any

// Node is whatever a Renderer produces for one target
type Node any

// Target is one child in the content being rendered
type Target interface {
	// NativeChannels returns the channels the target declares itself, or nil
	NativeChannels() ChannelMap
}

// TargetSource yields the render targets for one pass. It is invoked at most
// once per Forwarder.Render call.
type TargetSource func() []Target

// Targets returns a TargetSource that yields the given targets
func Targets(targets ...Target) TargetSource {
	return func() []Target {
		return targets
	}
}

//go:generate mockgen -destination=mocks/mock_renderer.go -package=mocks -source=types.go Renderer

// Renderer instantiates the output for a single target
type Renderer interface {
	// Render is called exactly once per target with the final attributes and channels
	Render(target Target, attrs Attrs, channels ChannelMap, diag Diagnostics) Node
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(target Target, attrs Attrs, channels ChannelMap, diag Diagnostics) Node

// Render calls f
func (f RendererFunc) Render(target Target, attrs Attrs, channels ChannelMap, diag Diagnostics) Node {
	return f(target, attrs, channels, diag)
}
