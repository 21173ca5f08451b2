package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/stacklok/forward-slots/internal/httpclient"
)

// IsRemote reports whether location is an http or https URL
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FetchManifest downloads, parses and validates a manifest
func FetchManifest(ctx context.Context, client httpclient.Client, location string) (*Manifest, error) {
	data, err := client.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	return ParseManifest(data)
}

// LoadManifestFrom loads a manifest from a local path or an http(s) URL. A nil
// client uses httpclient.NewDefaultClient for remote locations.
func LoadManifestFrom(ctx context.Context, location string, client httpclient.Client) (*Manifest, error) {
	if !IsRemote(location) {
		return LoadManifest(WithConfigPath(location))
	}
	if client == nil {
		client = httpclient.NewDefaultClient(0)
	}
	return FetchManifest(ctx, client, location)
}
