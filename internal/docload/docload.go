// Package docload provides the resolve.Loader implementation shared by
// the CLI and the MCP server: fetching a document a $ref or `local`/
// `cwd`/`file` URI points to and decoding it as YAML/JSON.
package docload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// httpTimeout bounds how long a remote $ref fetch may take.
const httpTimeout = 10 * time.Second

// ReadFile reads a local document off disk, for the top-level rule
// document a command-line invocation names directly (not a $ref URI).
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docload: read %q: %w", path, err)
	}
	return data, nil
}

// Load implements resolve.Loader over file:// and http(s):// URIs, the
// two schemes ResolveURI ever hands to a Loader (spec.md §4.3).
func Load(uri string) (any, error) {
	data, err := fetch(uri)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("docload: parse %q: %w", uri, err)
	}
	return v, nil
}

func fetch(uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "file://"):
		return ReadFile(strings.TrimPrefix(uri, "file://"))
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return fetchHTTP(uri)
	default:
		return nil, fmt.Errorf("docload: unsupported URI %q", uri)
	}
}

func fetchHTTP(uri string) ([]byte, error) {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("docload: fetch %q: %w", uri, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("docload: fetch %q: status %s", uri, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("docload: read body of %q: %w", uri, err)
	}
	return data, nil
}
