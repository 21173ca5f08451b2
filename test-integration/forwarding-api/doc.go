// Package integration provides integration tests for the forward-slots API
// server. These tests start the complete server from configuration files and
// exercise channel selection and forwarding passes over HTTP.
package integration
