package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/labelscan/internal/export"
	"github.com/usestring/labelscan/internal/mcp/tools"
	"github.com/usestring/labelscan/internal/schema"
)

// Resource URIs:
//   labelscan://schema
//   labelscan://result/current
//   labelscan://attempt/{id}

const (
	uriScheme        = "labelscan://"
	schemaURI        = uriScheme + "schema"
	currentResultURI = uriScheme + "result/current"
)

// registerResources registers resources and templates with their handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         schemaURI,
		Name:        "Result Schema",
		Description: "JSON Schema of an extraction result and of extracted_data.json.",
		MIMEType:    tools.MimeJSON,
	}, s.handleResourceSchema)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         currentResultURI,
		Name:        "Current Result",
		Description: "The last successful extraction exactly as labelscan_export writes extracted_data.json.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.8,
		},
	}, s.handleResourceCurrentResult)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: uriScheme + "attempt/{id}",
		Name:        "Attempt",
		Description: "Summary of one finished extraction attempt. Use labelscan_history to list IDs.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceAttempt)
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return toResourceResult(req.Params.URI, schema.OkSchema())
}

func (s *Server) handleResourceCurrentResult(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	ok, err := s.deps.Machine.Succeeded()
	if err != nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	artifact, err := export.Serialize(ok)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: artifact.MIMEType,
				Text:     string(artifact.Data),
			},
		},
	}, nil
}

func (s *Server) handleResourceAttempt(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	id, err := parseAttemptURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	a, ok := s.deps.App.History.Get(id)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	return toResourceResult(req.Params.URI, tools.ToAttemptInfo(a))
}

// parseAttemptURI extracts the attempt ID from a labelscan://attempt/{id} URI.
func parseAttemptURI(uri string) (string, error) {
	path, found := strings.CutPrefix(uri, uriScheme)
	if !found {
		return "", tools.ErrInvalidInput("invalid URI scheme: expected " + uriScheme)
	}

	id, found := strings.CutPrefix(path, "attempt/")
	if !found || id == "" || strings.Contains(id, "/") {
		return "", tools.ErrInvalidInput("attempt URI requires one attempt ID")
	}
	return id, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
