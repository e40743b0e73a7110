// Package mcpsrv exposes the validation engine as a Model Context
// Protocol tool server, so an LLM agent can ask "does this directory
// satisfy this schema" without shelling out to the CLI. Grounded on the
// teacher's own mcp-go dependency, which ships in go.mod but (like
// hashicorp/hcl/v2) was never wired to any handler in the original repo.
package mcpsrv

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/docload"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/driver"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/eval"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/jsonvalidate"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/meta"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/ruleset"
)

const (
	toolValidateDirectory = "validate_directory"
	name                  = "dirschema"
	version               = "0.1.0"
)

// New builds an MCP server exposing the validate_directory tool.
func New() *server.MCPServer {
	s := server.NewMCPServer(name, version)

	s.AddTool(mcp.NewTool(toolValidateDirectory,
		mcp.WithDescription("Validate a directory tree against a DirSchema rule document, returning a YAML or JSON error report."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the directory to validate.")),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Absolute path of the DirSchema rule document (YAML or JSON).")),
		mcp.WithString("format", mcp.Description("Report format: 'yaml' (default) or 'json'.")),
	), handleValidateDirectory)

	return s
}

// Serve runs the server over stdio, the transport MCP clients like
// Claude Desktop and other agent hosts expect for a local tool server.
func Serve() error {
	return server.ServeStdio(New())
}

func handleValidateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetPath := req.GetString("path", "")
	schemaPath := req.GetString("schema", "")
	format := req.GetString("format", "yaml")

	if targetPath == "" || schemaPath == "" {
		return mcp.NewToolResultError("both 'path' and 'schema' arguments are required"), nil
	}

	report, err := validateDirectory(targetPath, schemaPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out string
	switch format {
	case "json":
		out, err = driver.FormatJSON(report)
	default:
		out, err = driver.FormatYAML(report)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(report) == 0 {
		out = "# no violations found\n" + out
	}
	return mcp.NewToolResultText(out), nil
}

func validateDirectory(targetPath, schemaPath string) (driver.Report, error) {
	raw, err := docload.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("mcpsrv: read schema %q: %w", schemaPath, err)
	}

	resolver := &resolve.Resolver{LocalBaseDir: filepath.Dir(schemaPath), WorkingDir: targetPath}
	root, _, err := ruleset.ParseDocumentWithRefs(raw, resolver, docload.Load)
	if err != nil {
		return nil, fmt.Errorf("mcpsrv: parse schema: %w", err)
	}

	conv, err := meta.New(api.DefaultMetaConvention())
	if err != nil {
		return nil, fmt.Errorf("mcpsrv: metadata convention: %w", err)
	}

	ad, err := adapter.ForPath(targetPath)
	if err != nil {
		return nil, fmt.Errorf("mcpsrv: select adapter: %w", err)
	}
	if c, ok := ad.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	evalCfg := &eval.Config{
		Adapter:    ad,
		Meta:       conv,
		Resolver:   resolver,
		Validator:  jsonvalidate.New(),
		LoadSchema: docload.Load,
	}

	d := driver.New(ad, conv, evalCfg, root)
	return d.Run()
}
