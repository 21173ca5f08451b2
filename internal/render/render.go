// Package render provides a reference Renderer for forwarding passes.
//
// It is what the CLI and the HTTP API use in place of a real UI framework:
// each target is a Component with a name, a list of declared attributes
// (props) and native channels. Rendering invokes every forwarded channel with
// the configured arguments and reports attributes the component does not
// declare, the way a host framework warns about unknown attributes.
package render

import (
	"fmt"
	"maps"
	"slices"

	"github.com/stacklok/forward-slots/internal/forwarding"
)

// Component is a render target
type Component struct {
	Name  string
	Props []string
	Slots forwarding.ChannelMap
}

var _ forwarding.Target = (*Component)(nil)

// NativeChannels returns the channels the component declares itself
func (c *Component) NativeChannels() forwarding.ChannelMap {
	if c == nil {
		return nil
	}
	return c.Slots
}

// declares reports whether the component declares the attribute
func (c *Component) declares(attr string) bool {
	return slices.Contains(c.Props, attr)
}

// Node is the rendered form of one target
type Node struct {
	Target   string            `json:"target" yaml:"target"`
	Attrs    map[string]any    `json:"attrs" yaml:"attrs"`
	Channels map[string]string `json:"channels" yaml:"channels"`
	Warnings []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Renderer renders Components into Nodes
type Renderer struct {
	args any
}

var _ forwarding.Renderer = (*Renderer)(nil)

// Option configures a Renderer
type Option func(*Renderer)

// WithArgs sets the value every channel producer is invoked with
func WithArgs(args any) Option {
	return func(r *Renderer) {
		r.args = args
	}
}

// NewRenderer creates a new Renderer
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render invokes every channel and checks the attributes against the
// component's declared props. Targets that are not Components are rendered
// under the name "anonymous" and declare nothing.
func (r *Renderer) Render(
	target forwarding.Target,
	attrs forwarding.Attrs,
	channels forwarding.ChannelMap,
	diag forwarding.Diagnostics,
) forwarding.Node {
	comp, ok := target.(*Component)
	if !ok || comp == nil {
		comp = &Component{Name: "anonymous"}
	}

	node := &Node{
		Target:   comp.Name,
		Attrs:    make(map[string]any, len(attrs)),
		Channels: make(map[string]string, len(channels)),
	}

	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		node.Attrs[name] = attrs[name]
		if !comp.declares(name) {
			msg := fmt.Sprintf("extraneous attribute %q passed to component %q", name, comp.Name)
			node.Warnings = append(node.Warnings, msg)
			diag.Warnf("%s", msg)
		}
	}

	for name, producer := range channels {
		if producer == nil {
			continue
		}
		node.Channels[name] = fmt.Sprint(producer(r.args))
	}

	return node
}
