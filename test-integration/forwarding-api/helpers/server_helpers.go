// Package helpers provides utilities for the forwarding API integration tests.
package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"

	forwardingapp "github.com/stacklok/forward-slots/internal/app"
	"github.com/stacklok/forward-slots/internal/config"
)

// ServerTestHelper manages the forwarding API server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	cancel     context.CancelFunc
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *forwardingapp.ForwardingApp
	done       chan error
}

// NewServerTestHelper creates a new server test helper
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StartServer loads the configuration and its default manifest, then serves on
// a free local port in the background
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var manifest *config.Manifest
	if cfg.Manifest != "" {
		manifest, err = config.LoadManifestFrom(s.ctx, cfg.Manifest, nil)
		if err != nil {
			return fmt.Errorf("failed to load manifest: %w", err)
		}
	}

	app, err := forwardingapp.NewForwardingApp(s.ctx,
		forwardingapp.WithConfig(cfg),
		forwardingapp.WithManifest(manifest),
		forwardingapp.WithShutdownTimeout(5*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.app = app
	s.baseURL = "http://" + ln.Addr().String()
	s.done = make(chan error, 1)

	var serveCtx context.Context
	serveCtx, s.cancel = context.WithCancel(s.ctx)
	go func() {
		if err := app.Serve(serveCtx, ln); err != nil {
			// The test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			s.done <- err
		}
		close(s.done)
	}()

	return nil
}

// StopServer stops the server and waits for it to exit
func (s *ServerTestHelper) StopServer() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	return <-s.done
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.GetHealth()
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetHealth makes a GET request to /health
func (s *ServerTestHelper) GetHealth() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/health")
}

// GetForward makes a GET request to /api/v1/forward
func (s *ServerTestHelper) GetForward() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/api/v1/forward")
}

// PostForward posts a JSON manifest to /api/v1/forward
func (s *ServerTestHelper) PostForward(manifest any) (*http.Response, error) {
	return s.postJSON("/api/v1/forward", manifest)
}

// PostSelect posts a selection request to /api/v1/select
func (s *ServerTestHelper) PostSelect(req any) (*http.Response, error) {
	return s.postJSON("/api/v1/select", req)
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}

func (s *ServerTestHelper) postJSON(path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return s.httpClient.Post(s.baseURL+path, "application/json", bytes.NewReader(data))
}

// DecodeJSON reads and decodes a response body, failing the test on error
func DecodeJSON(resp *http.Response, v any) {
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(json.Unmarshal(body, v)).To(gomega.Succeed(), "body: %s", string(body))
}
