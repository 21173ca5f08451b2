// Package service provides the forwarding operations behind the CLI and the
// HTTP API: channel selection and full forwarding passes over manifests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/filtering"
	"github.com/stacklok/forward-slots/internal/forwarding"
	fwdotel "github.com/stacklok/forward-slots/internal/otel"
	"github.com/stacklok/forward-slots/internal/pattern"
	"github.com/stacklok/forward-slots/internal/render"
)

var (
	// ErrInvalidManifest is returned when a manifest fails validation
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrNoManifest is returned by ForwardDefault when no manifest is configured
	ErrNoManifest = errors.New("no manifest configured")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go ForwardingService

// ForwardingService defines the forwarding operations
type ForwardingService interface {
	// Select decides which of the named channels would be forwarded
	Select(ctx context.Context, req *SelectRequest) (*SelectResult, error)

	// Forward runs one forwarding pass over the manifest
	Forward(ctx context.Context, manifest *config.Manifest) (*ForwardResult, error)

	// ForwardDefault runs one forwarding pass over the configured manifest
	ForwardDefault(ctx context.Context) (*ForwardResult, error)
}

// SelectRequest describes a selection over a list of channel names
type SelectRequest struct {
	Names        []string    `json:"names"`
	Only         pattern.Set `json:"only,omitempty"`
	Except       pattern.Set `json:"except,omitempty"`
	Native       []string    `json:"native,omitempty"`
	FilterNative bool        `json:"filterNative,omitempty"`
}

// SelectResult holds the selected names, in request order, and every decision
type SelectResult struct {
	Selected  []string             `json:"selected"`
	Decisions []filtering.Decision `json:"decisions"`
}

// ForwardResult holds one rendered node per manifest target
type ForwardResult struct {
	// PassID identifies the pass in logs and traces
	PassID   string         `json:"passId" yaml:"passId"`
	Nodes    []*render.Node `json:"nodes" yaml:"nodes"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Option configures the forwarding service
type Option func(*forwardingService)

// ManifestSource supplies the manifest served by ForwardDefault.
// config.ManifestManager implements it.
type ManifestSource interface {
	GetManifest() *config.Manifest
}

type staticManifest struct {
	manifest *config.Manifest
}

func (s staticManifest) GetManifest() *config.Manifest {
	return s.manifest
}

// WithManifest sets the manifest served by ForwardDefault
func WithManifest(manifest *config.Manifest) Option {
	return func(s *forwardingService) {
		s.manifests = staticManifest{manifest: manifest}
	}
}

// WithManifestSource serves whatever manifest src currently holds
func WithManifestSource(src ManifestSource) Option {
	return func(s *forwardingService) {
		if src != nil {
			s.manifests = src
		}
	}
}

// WithSelector replaces the selection service
func WithSelector(selector filtering.Service) Option {
	return func(s *forwardingService) {
		if selector != nil {
			s.selector = selector
		}
	}
}

// WithMetrics sets the recorder for forwarding metrics
func WithMetrics(metrics forwarding.MetricsRecorder) Option {
	return func(s *forwardingService) {
		s.metrics = metrics
	}
}

// WithTracerProvider sets the provider forwarding spans are created from
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *forwardingService) {
		s.tracerProvider = tp
	}
}

type forwardingService struct {
	manifests      ManifestSource
	selector       filtering.Service
	metrics        forwarding.MetricsRecorder
	tracerProvider trace.TracerProvider
}

// New creates a ForwardingService
func New(opts ...Option) ForwardingService {
	s := &forwardingService{
		manifests: staticManifest{},
		selector:  filtering.NewDefaultService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select implements ForwardingService
func (s *forwardingService) Select(ctx context.Context, req *SelectRequest) (*SelectResult, error) {
	if req == nil {
		return nil, fmt.Errorf("select request cannot be nil")
	}

	decisions := s.selector.Decide(ctx, req.Names, filtering.SelectionConfig{
		Allow:        req.Only,
		Deny:         req.Except,
		NativeNames:  filtering.NameSet(req.Native...),
		FilterNative: req.FilterNative,
	})

	result := &SelectResult{
		Selected:  make([]string, 0, len(decisions)),
		Decisions: decisions,
	}
	for _, d := range decisions {
		if d.Included {
			result.Selected = append(result.Selected, d.Name)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordDecisions(ctx, decisions)
	}

	return result, nil
}

// Forward implements ForwardingService
func (s *forwardingService) Forward(ctx context.Context, manifest *config.Manifest) (*ForwardResult, error) {
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	opts, err := manifest.Options()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	source, err := manifest.Source()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	diag := &forwarding.DiagnosticsRecorder{}
	forwarder := forwarding.New(
		forwarding.WithOptions(opts),
		forwarding.WithRenderer(render.NewRenderer(render.WithArgs(manifest.Args))),
		forwarding.WithDiagnostics(diag),
		forwarding.WithSelector(s.selector),
		forwarding.WithMetrics(s.metrics),
		forwarding.WithTracerProvider(s.tracerProvider),
	)

	passID := uuid.NewString()
	trace.SpanFromContext(ctx).SetAttributes(fwdotel.AttrPassID.String(passID))

	nodes := forwarder.Render(ctx, source, manifest.GetAttrs())

	result := &ForwardResult{
		PassID:   passID,
		Nodes:    make([]*render.Node, 0, len(nodes)),
		Warnings: diag.Warnings,
	}
	for _, n := range nodes {
		node, ok := n.(*render.Node)
		if !ok {
			return nil, fmt.Errorf("unexpected node type %T", n)
		}
		result.Nodes = append(result.Nodes, node)
	}

	slog.DebugContext(ctx, "Forwarding pass complete",
		"pass_id", passID,
		"targets", len(result.Nodes),
		"warnings", len(result.Warnings),
	)

	return result, nil
}

// ForwardDefault implements ForwardingService
func (s *forwardingService) ForwardDefault(ctx context.Context) (*ForwardResult, error) {
	manifest := s.manifests.GetManifest()
	if manifest == nil {
		return nil, ErrNoManifest
	}
	return s.Forward(ctx, manifest)
}
