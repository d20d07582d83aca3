// ABOUTME: MCP resources exposing notes as readable markdown.
// ABOUTME: Allows AI agents to read note content via the inote:// URI scheme.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/inote/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const noteURIPrefix = "inote://note/"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: noteURIPrefix + "{id}",
			Name:        "Note",
			Description: "Access individual notes by ID or ID prefix",
			MIMEType:    "text/markdown",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, ok := strings.CutPrefix(req.Params.URI, noteURIPrefix)
	if !ok || id == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	note, err := s.resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     renderResource(note),
			},
		},
	}, nil
}

func renderResource(note models.Note) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", note.Title)
	if note.IsFavorite {
		sb.WriteString("**Favorite**\n\n")
	}
	if note.Category != "" {
		name := note.Category
		if c, ok := models.CategoryByID(note.Category); ok {
			name = c.Name
		}
		fmt.Fprintf(&sb, "**Category:** %s\n\n", name)
	}
	if note.Priority != "" && note.Priority != models.PriorityNone {
		fmt.Fprintf(&sb, "**Priority:** %s\n\n", note.Priority)
	}
	if len(note.Tags) > 0 {
		fmt.Fprintf(&sb, "**Tags:** %s\n\n", strings.Join(note.Tags, ", "))
	}
	sb.WriteString(note.Content)
	for _, uri := range note.Images {
		fmt.Fprintf(&sb, "\n\n![image](%s)", uri)
	}
	return sb.String()
}
