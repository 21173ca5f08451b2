package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/forward-slots/internal/config"
	"github.com/stacklok/forward-slots/internal/filtering"
	"github.com/stacklok/forward-slots/internal/pattern"
)

type countingMetrics struct {
	decisions int
	passes    int
}

func (m *countingMetrics) RecordDecisions(_ context.Context, decisions []filtering.Decision) {
	m.decisions += len(decisions)
}

func (m *countingMetrics) RecordPass(context.Context, int, time.Duration) {
	m.passes++
}

func TestSelect(t *testing.T) {
	t.Parallel()

	names := []string{"prepend", "prepend.one", "prepend.two", "default", "append"}

	tests := []struct {
		name         string
		req          *SelectRequest
		wantSelected []string
	}{
		{
			name:         "no rules forwards everything",
			req:          &SelectRequest{Names: names},
			wantSelected: names,
		},
		{
			name: "only with regex",
			req: &SelectRequest{
				Names: names,
				Only:  pattern.MustParseSet("default", "/ONE$/i"),
			},
			wantSelected: []string{"prepend.one", "default"},
		},
		{
			name: "except with wildcard",
			req: &SelectRequest{
				Names:  names,
				Except: pattern.MustParseSet("prepend*"),
			},
			wantSelected: []string{"default", "append"},
		},
		{
			name: "native names are protected",
			req: &SelectRequest{
				Names:  append(names, "footer"),
				Only:   pattern.MustParseSet("default"),
				Native: []string{"footer"},
			},
			wantSelected: []string{"default", "footer"},
		},
		{
			name: "filterNative subjects native names to the rules",
			req: &SelectRequest{
				Names:        append(names, "footer"),
				Only:         pattern.MustParseSet("default"),
				Native:       []string{"footer"},
				FilterNative: true,
			},
			wantSelected: []string{"default"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			metrics := &countingMetrics{}
			svc := New(WithMetrics(metrics))

			result, err := svc.Select(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, result.Selected)
			assert.Len(t, result.Decisions, len(tt.req.Names))
			assert.Equal(t, len(tt.req.Names), metrics.decisions)
		})
	}
}

func TestSelectNilRequest(t *testing.T) {
	t.Parallel()

	_, err := New().Select(context.Background(), nil)
	require.Error(t, err)
}

func TestForward(t *testing.T) {
	t.Parallel()

	manifest, err := config.ParseManifest([]byte(`
except: "prepend*"
attrs: {foo: bar, baz: 1}
args: world
slots:
  prepend: "Before"
  default: "Hello {{.}}"
targets:
  - name: Inner
    props: [foo]
  - name: Second
    props: [foo, baz]
    slots:
      default: "Second default"
`))
	require.NoError(t, err)

	metrics := &countingMetrics{}
	result, err := New(WithMetrics(metrics)).Forward(context.Background(), manifest)
	require.NoError(t, err)

	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "Inner", result.Nodes[0].Target)
	assert.Equal(t, map[string]string{"default": "Hello world"}, result.Nodes[0].Channels)
	assert.Equal(t, "Second", result.Nodes[1].Target)
	assert.Equal(t, map[string]string{"default": "Second default"}, result.Nodes[1].Channels)
	assert.Equal(t, []string{`extraneous attribute "baz" passed to component "Inner"`}, result.Warnings)
	assert.Equal(t, 1, metrics.passes)

	_, err = uuid.Parse(result.PassID)
	require.NoError(t, err)

	again, err := New().Forward(context.Background(), manifest)
	require.NoError(t, err)
	assert.NotEqual(t, result.PassID, again.PassID)
}

func TestForwardInvalidManifest(t *testing.T) {
	t.Parallel()

	manifest := &config.Manifest{Targets: []config.TargetConfig{{Name: ""}}}
	_, err := New().Forward(context.Background(), manifest)
	require.ErrorIs(t, err, ErrInvalidManifest)
}

func TestForwardDefault(t *testing.T) {
	t.Parallel()

	_, err := New().ForwardDefault(context.Background())
	require.ErrorIs(t, err, ErrNoManifest)

	manifest := &config.Manifest{
		Slots:   map[string]string{"default": "Hello"},
		Targets: []config.TargetConfig{{Name: "Inner"}},
	}
	result, err := New(WithManifest(manifest)).ForwardDefault(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, "Hello", result.Nodes[0].Channels["default"])
	assert.Empty(t, result.Warnings)
}

type swappableManifest struct {
	manifest *config.Manifest
}

func (s *swappableManifest) GetManifest() *config.Manifest {
	return s.manifest
}

func TestForwardDefaultFollowsSource(t *testing.T) {
	t.Parallel()

	src := &swappableManifest{}
	svc := New(WithManifestSource(src))

	_, err := svc.ForwardDefault(context.Background())
	require.ErrorIs(t, err, ErrNoManifest)

	src.manifest = &config.Manifest{
		Slots:   map[string]string{"default": "first"},
		Targets: []config.TargetConfig{{Name: "Inner"}},
	}
	result, err := svc.ForwardDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", result.Nodes[0].Channels["default"])

	src.manifest = &config.Manifest{
		Slots:   map[string]string{"default": "second"},
		Targets: []config.TargetConfig{{Name: "Inner"}},
	}
	result, err = svc.ForwardDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", result.Nodes[0].Channels["default"])
}
