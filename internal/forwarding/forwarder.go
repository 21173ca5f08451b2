package forwarding

import (
	"context"
	"maps"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/forward-slots/internal/filtering"
	fwdotel "github.com/stacklok/forward-slots/internal/otel"
	"github.com/stacklok/forward-slots/internal/pattern"
)

// TracerName is the name of the tracer used for forwarding spans
const TracerName = "github.com/stacklok/forward-slots/forwarding"

// Options is the configuration surface of a Forwarder
type Options struct {
	// Slots are the channels supplied by the parent
	Slots ChannelMap
	// Only is the allow-list. When non-empty, Except is ignored.
	Only pattern.Set
	// Except is the deny-list
	Except pattern.Set
	// InheritAttrs forwards the ambient attributes to every target
	InheritAttrs bool
	// FilterNative subjects the targets' native channels to Only/Except
	FilterNative bool
}

// DefaultOptions returns the defaults: attributes are inherited and native
// channels are always forwarded
func DefaultOptions() Options {
	return Options{InheritAttrs: true}
}

// MetricsRecorder receives the outcome of forwarding passes
type MetricsRecorder interface {
	RecordDecisions(ctx context.Context, decisions []filtering.Decision)
	RecordPass(ctx context.Context, targets int, duration time.Duration)
}

// Forwarder forwards a parent's channels to render targets. It holds no state
// between calls and is safe for concurrent use once built.
type Forwarder struct {
	opts     Options
	renderer Renderer
	diag     Diagnostics
	selector filtering.Service
	metrics  MetricsRecorder
	tracer   trace.Tracer
}

// Option configures a Forwarder
type Option func(*Forwarder)

// WithOptions replaces the whole configuration surface
func WithOptions(opts Options) Option {
	return func(f *Forwarder) {
		f.opts = opts
	}
}

// WithSlots sets the parent channels
func WithSlots(slots ChannelMap) Option {
	return func(f *Forwarder) {
		f.opts.Slots = slots
	}
}

// WithOnly sets the allow-list
func WithOnly(only pattern.Set) Option {
	return func(f *Forwarder) {
		f.opts.Only = only
	}
}

// WithExcept sets the deny-list
func WithExcept(except pattern.Set) Option {
	return func(f *Forwarder) {
		f.opts.Except = except
	}
}

// WithInheritAttrs toggles forwarding of the ambient attributes
func WithInheritAttrs(inherit bool) Option {
	return func(f *Forwarder) {
		f.opts.InheritAttrs = inherit
	}
}

// WithFilterNative toggles filtering of native channels
func WithFilterNative(filterNative bool) Option {
	return func(f *Forwarder) {
		f.opts.FilterNative = filterNative
	}
}

// WithRenderer sets the renderer targets are handed to
func WithRenderer(r Renderer) Option {
	return func(f *Forwarder) {
		if r != nil {
			f.renderer = r
		}
	}
}

// WithDiagnostics sets the sink passed to the renderer
func WithDiagnostics(diag Diagnostics) Option {
	return func(f *Forwarder) {
		if diag != nil {
			f.diag = diag
		}
	}
}

// WithSelector replaces the channel selection service
func WithSelector(selector filtering.Service) Option {
	return func(f *Forwarder) {
		if selector != nil {
			f.selector = selector
		}
	}
}

// WithMetrics sets the recorder for forwarding metrics
func WithMetrics(metrics MetricsRecorder) Option {
	return func(f *Forwarder) {
		f.metrics = metrics
	}
}

// WithTracerProvider sets the provider forwarding spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Forwarder) {
		if tp != nil {
			f.tracer = tp.Tracer(TracerName)
		}
	}
}

// New creates a Forwarder. Without WithRenderer, targets are rendered into
// *Forwarded values.
func New(opts ...Option) *Forwarder {
	f := &Forwarder{
		opts:     DefaultOptions(),
		renderer: RendererFunc(collect),
		diag:     NopDiagnostics,
		selector: filtering.NewDefaultService(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Options returns the configuration the Forwarder was built with
func (f *Forwarder) Options() Options {
	return f.opts
}

// Render runs one forwarding pass over the targets yielded by source. This is
// the recomputation entry point: call it again whenever the upstream content
// changes.
func (f *Forwarder) Render(ctx context.Context, source TargetSource, attrs Attrs) []Node {
	var targets []Target
	if source != nil {
		targets = source()
	}
	return f.Forward(ctx, targets, attrs)
}

// Forward renders every target in order, producing exactly one node per target
func (f *Forwarder) Forward(ctx context.Context, targets []Target, attrs Attrs) []Node {
	ctx, span := fwdotel.StartSpan(ctx, f.tracer, "forwarding.Forward",
		trace.WithAttributes(
			fwdotel.AttrTargetCount.Int(len(targets)),
			fwdotel.AttrSlotCount.Int(len(f.opts.Slots)),
			fwdotel.AttrFilterNative.Bool(f.opts.FilterNative),
			fwdotel.AttrInheritAttrs.Bool(f.opts.InheritAttrs),
		))
	defer span.End()

	start := time.Now()
	nodes := make([]Node, 0, len(targets))
	for _, target := range targets {
		nodes = append(nodes, f.forwardTarget(ctx, target, attrs))
	}

	if f.metrics != nil {
		f.metrics.RecordPass(ctx, len(targets), time.Since(start))
	}

	return nodes
}

func (f *Forwarder) forwardTarget(ctx context.Context, target Target, attrs Attrs) Node {
	var native ChannelMap
	if target != nil {
		native = target.NativeChannels()
	}

	merged := Merge(f.opts.Slots, native)
	decisions := f.selector.Decide(ctx, merged.Names(), filtering.SelectionConfig{
		Allow:        f.opts.Only,
		Deny:         f.opts.Except,
		NativeNames:  native.nameSet(),
		FilterNative: f.opts.FilterNative,
	})

	channels := make(ChannelMap, len(decisions))
	for _, d := range decisions {
		if d.Included {
			channels[d.Name] = Wrap(merged[d.Name])
		}
	}

	if f.metrics != nil {
		f.metrics.RecordDecisions(ctx, decisions)
	}
	trace.SpanFromContext(ctx).AddEvent("forwarding.target", trace.WithAttributes(
		fwdotel.AttrChannelCount.Int(len(decisions)),
		fwdotel.AttrSelectedCount.Int(len(channels)),
	))

	return f.renderer.Render(target, f.attrsFor(attrs), channels, f.diag)
}

// attrsFor returns a per-target copy of attrs, or an empty bag when attributes
// are not inherited
func (f *Forwarder) attrsFor(attrs Attrs) Attrs {
	if !f.opts.InheritAttrs || attrs == nil {
		return Attrs{}
	}
	return maps.Clone(attrs)
}

// Forward runs a single forwarding pass without building a Forwarder first
func Forward(
	ctx context.Context,
	targets []Target,
	parent ChannelMap,
	opts Options,
	attrs Attrs,
	r Renderer,
	diag Diagnostics,
) []Node {
	opts.Slots = parent
	forwarder := New(WithOptions(opts), WithRenderer(r), WithDiagnostics(diag))
	return forwarder.Forward(ctx, targets, attrs)
}

// Merge combines the parent channels with a target's native channels. A native
// producer replaces a parent producer of the same name; a nil native entry only
// fills the name in when the parent has none.
func Merge(parent, native ChannelMap) ChannelMap {
	merged := make(ChannelMap, len(parent)+len(native))
	maps.Copy(merged, parent)
	for name, producer := range native {
		if _, exists := merged[name]; exists && producer == nil {
			continue
		}
		merged[name] = producer
	}
	return merged
}

// Wrap defers to p through a thin pass-through producer. Nil stays nil.
func Wrap(p Producer) Producer {
	if p == nil {
		return nil
	}
	return func(args any) any {
		return p(args)
	}
}

// Forwarded is what the default renderer produces for a target
type Forwarded struct {
	Target   Target
	Attrs    Attrs
	Channels ChannelMap
}

func collect(target Target, attrs Attrs, channels ChannelMap, _ Diagnostics) Node {
	return &Forwarded{Target: target, Attrs: attrs, Channels: channels}
}
