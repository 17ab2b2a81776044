package resource

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	stdnet "vellum/std/net"
)

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches http(s) and file resources, resolving relative
// URIs against a base URL.
type DefaultFetcher struct {
	baseURL string
}

// NewFetcher creates a DefaultFetcher with the given base URL.
// Relative URIs passed to Fetch will be resolved against this base.
func NewFetcher(baseURL string) *DefaultFetcher {
	return &DefaultFetcher{baseURL: baseURL}
}

// Fetch retrieves the resource at the given URI.
// Relative URIs are resolved against the fetcher's base URL.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	resolved := uri
	if !stdnet.IsNetworkURL(uri) && !stdnet.IsFileURL(uri) && f.baseURL != "" {
		resolved = stdnet.ResolveURL(f.baseURL, uri)
	}
	switch {
	case stdnet.IsNetworkURL(resolved):
		return stdnet.Fetch(ctx, resolved)
	case stdnet.IsFileURL(resolved):
		body, err := stdnet.ReadFileURL(resolved)
		if err != nil {
			return nil, "", err
		}
		return body, mime.TypeByExtension(filepath.Ext(resolved)), nil
	}
	return nil, "", fmt.Errorf("cannot fetch URI without a scheme: %s", resolved)
}

// FetchDocument fetches an HTML document and returns its text content.
// Returns an error if the content type does not look like text.
func (f *DefaultFetcher) FetchDocument(ctx context.Context, uri string) (string, error) {
	body, contentType, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		return "", fmt.Errorf("unexpected content type for document: %s", contentType)
	}
	return string(body), nil
}

// FetchImage fetches an image URI and returns its raw bytes.
func (f *DefaultFetcher) FetchImage(ctx context.Context, uri string) ([]byte, error) {
	body, _, err := f.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// DocumentURL turns a command-line argument into an absolute URL. Plain
// paths become file:// URLs.
func DocumentURL(arg string) (string, error) {
	if stdnet.IsNetworkURL(arg) || stdnet.IsFileURL(arg) {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
