// ABOUTME: MCP tools for note operations.
// ABOUTME: Maps CLI functionality to the MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/inote/internal/export"
	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "add_note",
		Description: "Create a new note. Only the title is required.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Note title"},
				"content": {"type": "string", "description": "Note body (markdown)"},
				"category": {"type": "string", "description": "Category id, e.g. work, personal, projects, ideas, tasks, archive"},
				"priority": {"type": "string", "description": "high, medium, low or none"},
				"tags": {"type": "array", "items": {"type": "string"}, "description": "Optional tags"},
				"background_color": {"type": "string", "description": "Hex color or palette id"},
				"text_color": {"type": "string", "description": "Hex color"},
				"font_size": {"type": "integer", "description": "Font size (clamped to the allowed range)"},
				"images": {"type": "array", "items": {"type": "string"}, "description": "Image URIs"},
				"favorite": {"type": "boolean", "description": "Mark as favorite"}
			},
			"required": ["title"]
		}`),
	}, s.handleAddNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, most recently edited first, with optional filtering",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Category id, or 'all'"},
				"search": {"type": "string", "description": "Case-insensitive text in title or content"},
				"tag": {"type": "string", "description": "Filter by tag"},
				"priority": {"type": "string", "description": "Filter by priority"},
				"favorites_only": {"type": "boolean", "description": "Only favorites"},
				"limit": {"type": "integer", "description": "Max results", "default": 20}
			}
		}`),
	}, s.handleListNotes)

	s.server.AddTool(&mcp.Tool{
		Name:        "get_note",
		Description: "Get a note by ID or ID prefix",
		InputSchema: idSchema("Note ID or prefix (6+ chars)"),
	}, s.handleGetNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "update_note",
		Description: "Update fields of a note. Omitted fields are left unchanged.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"title": {"type": "string", "description": "New title"},
				"content": {"type": "string", "description": "New content"},
				"category": {"type": "string", "description": "New category id ('' clears it)"},
				"priority": {"type": "string", "description": "New priority ('' clears it)"},
				"background_color": {"type": "string", "description": "New background color"},
				"text_color": {"type": "string", "description": "New text color"},
				"font_size": {"type": "integer", "description": "New font size"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
		InputSchema: idSchema("Note ID or prefix"),
	}, s.handleDeleteNote)

	s.server.AddTool(&mcp.Tool{
		Name:        "set_favorite",
		Description: "Mark or unmark a note as favorite without changing its edit time",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"favorite": {"type": "boolean", "description": "Favorite state"}
			},
			"required": ["id", "favorite"]
		}`),
	}, s.handleSetFavorite)

	s.server.AddTool(&mcp.Tool{
		Name:        "add_tag",
		Description: "Add a tag to a note",
		InputSchema: tagSchema(),
	}, s.handleAddTag)

	s.server.AddTool(&mcp.Tool{
		Name:        "remove_tag",
		Description: "Remove a tag from a note",
		InputSchema: tagSchema(),
	}, s.handleRemoveTag)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags in use with counts",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListTags)

	s.server.AddTool(&mcp.Tool{
		Name:        "add_image",
		Description: "Attach an image reference (URI) to a note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"uri": {"type": "string", "description": "Image URI"}
			},
			"required": ["id", "uri"]
		}`),
	}, s.handleAddImage)

	s.server.AddTool(&mcp.Tool{
		Name:        "remove_image",
		Description: "Remove the image at a position from a note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"index": {"type": "integer", "description": "Zero-based image position"}
			},
			"required": ["id", "index"]
		}`),
	}, s.handleRemoveImage)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_categories",
		Description: "List categories with the number of notes in each",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListCategories)

	s.server.AddTool(&mcp.Tool{
		Name:        "export_note",
		Description: "Export a note as JSON or markdown",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"format": {"type": "string", "description": "Format: json or md", "default": "json"}
			},
			"required": ["id"]
		}`),
	}, s.handleExportNote)
}

func idSchema(desc string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": %q}
		},
		"required": ["id"]
	}`, desc))
}

func tagSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"id": {"type": "string", "description": "Note ID or prefix"},
			"tag": {"type": "string", "description": "Tag name"}
		},
		"required": ["id", "tag"]
	}`)
}

// decodeArgs unmarshals tool arguments; clients may omit them entirely.
func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	r := textResult(format, args...)
	r.IsError = true
	return r
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return textResult("%s", data), nil
}

// resolve finds a note by exact id first, then by prefix.
func (s *Server) resolve(ctx context.Context, id string) (models.Note, error) {
	note, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNoteNotFound) && len(id) >= 6 {
		return s.store.GetByPrefix(ctx, id)
	}
	return note, err
}

// editNote resolves a note, applies fn and saves it.
func (s *Server) editNote(ctx context.Context, id string, fn func(n *models.Note) error) (models.Note, error) {
	note, err := s.resolve(ctx, id)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to find note: %w", err)
	}
	if err := fn(&note); err != nil {
		return models.Note{}, err
	}
	saved, err := s.store.Save(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to save note: %w", err)
	}
	return saved, nil
}

func (s *Server) handleAddNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Title           string   `json:"title"`
		Content         string   `json:"content"`
		Category        string   `json:"category"`
		Priority        string   `json:"priority"`
		Tags            []string `json:"tags"`
		BackgroundColor string   `json:"background_color"`
		TextColor       string   `json:"text_color"`
		FontSize        int      `json:"font_size"`
		Images          []string `json:"images"`
		Favorite        bool     `json:"favorite"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note := models.NewNote(params.Title, params.Content)
	note.Category = params.Category
	note.Priority = params.Priority
	for _, tag := range params.Tags {
		note.AddTag(tag)
	}
	if params.BackgroundColor != "" {
		note.BackgroundColor = models.ResolveColor(params.BackgroundColor)
	}
	if params.TextColor != "" {
		note.TextColor = params.TextColor
	}
	if params.FontSize != 0 {
		note.FontSize = params.FontSize
	}
	for _, uri := range params.Images {
		note.AddImage(uri)
	}
	note.IsFavorite = params.Favorite

	saved, err := s.store.Save(ctx, *note)
	if err != nil {
		return errorResult("failed to create note: %v", err), nil
	}
	s.logger.Debug("mcp created note", "id", saved.ID)
	return textResult("Created note %s", saved.ID), nil
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Category      string `json:"category"`
		Search        string `json:"search"`
		Tag           string `json:"tag"`
		Priority      string `json:"priority"`
		FavoritesOnly bool   `json:"favorites_only"`
		Limit         int    `json:"limit"`
	}
	params.Limit = defaultListLimit
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	filtered := store.FilterAndSort(s.store.LoadOrEmpty(ctx), store.Filter{
		Category:      params.Category,
		SearchText:    params.Search,
		Tag:           params.Tag,
		Priority:      params.Priority,
		FavoritesOnly: params.FavoritesOnly,
		Limit:         params.Limit,
	})

	out := make([]store.NoteData, 0, len(filtered))
	for _, n := range filtered {
		out = append(out, store.FromModel(n))
	}
	return jsonResult(out)
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get note: %v", err), nil
	}
	return jsonResult(store.FromModel(note))
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID              string  `json:"id"`
		Title           *string `json:"title"`
		Content         *string `json:"content"`
		Category        *string `json:"category"`
		Priority        *string `json:"priority"`
		BackgroundColor *string `json:"background_color"`
		TextColor       *string `json:"text_color"`
		FontSize        *int    `json:"font_size"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	saved, err := s.editNote(ctx, params.ID, func(n *models.Note) error {
		if params.Title != nil {
			n.Title = *params.Title
		}
		if params.Content != nil {
			n.Content = *params.Content
		}
		if params.Category != nil {
			n.Category = *params.Category
		}
		if params.Priority != nil {
			n.Priority = *params.Priority
		}
		if params.BackgroundColor != nil {
			n.BackgroundColor = models.ResolveColor(*params.BackgroundColor)
		}
		if params.TextColor != nil {
			n.TextColor = *params.TextColor
		}
		if params.FontSize != nil {
			n.FontSize = *params.FontSize
		}
		return nil
	})
	if err != nil {
		return errorResult("%v", err), nil
	}
	return textResult("Updated note %s", saved.ID), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.Delete(ctx, note.ID); err != nil {
		return errorResult("failed to delete note: %v", err), nil
	}
	return textResult("Deleted note %s", note.ID), nil
}

func (s *Server) handleSetFavorite(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID       string `json:"id"`
		Favorite bool   `json:"favorite"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	if err := s.store.SetFavorite(ctx, note.ID, params.Favorite); err != nil {
		return errorResult("failed to set favorite: %v", err), nil
	}
	if params.Favorite {
		return textResult("Note %s is a favorite", note.ID), nil
	}
	return textResult("Note %s is no longer a favorite", note.ID), nil
}

func (s *Server) handleAddTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	saved, err := s.editNote(ctx, params.ID, func(n *models.Note) error {
		if !n.AddTag(params.Tag) {
			return fmt.Errorf("note already has tag %q", params.Tag)
		}
		return nil
	})
	if err != nil {
		return errorResult("failed to add tag: %v", err), nil
	}
	return textResult("Added tag '%s' to note %s", models.NewTag(params.Tag).Name, saved.ID), nil
}

func (s *Server) handleRemoveTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	saved, err := s.editNote(ctx, params.ID, func(n *models.Note) error {
		if !n.RemoveTag(params.Tag) {
			return fmt.Errorf("note has no tag %q", params.Tag)
		}
		return nil
	})
	if err != nil {
		return errorResult("failed to remove tag: %v", err), nil
	}
	return textResult("Removed tag '%s' from note %s", params.Tag, saved.ID), nil
}

func (s *Server) handleListTags(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.LoadAll(ctx)
	if err != nil {
		return errorResult("failed to list tags: %v", err), nil
	}

	type tagCount struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	var out []tagCount
	for _, tc := range store.ListTags(notes) {
		out = append(out, tagCount{Name: tc.Tag.Name, Count: tc.Count})
	}
	return jsonResult(out)
}

func (s *Server) handleAddImage(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID  string `json:"id"`
		URI string `json:"uri"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}
	if params.URI == "" {
		return errorResult("uri is required"), nil
	}

	saved, err := s.editNote(ctx, params.ID, func(n *models.Note) error {
		n.AddImage(params.URI)
		return nil
	})
	if err != nil {
		return errorResult("failed to add image: %v", err), nil
	}
	return textResult("Added image %d to note %s", len(saved.Images)-1, saved.ID), nil
}

func (s *Server) handleRemoveImage(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID    string `json:"id"`
		Index int    `json:"index"`
	}
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	saved, err := s.editNote(ctx, params.ID, func(n *models.Note) error {
		if !n.RemoveImage(params.Index) {
			return fmt.Errorf("no image at index %d", params.Index)
		}
		return nil
	})
	if err != nil {
		return errorResult("failed to remove image: %v", err), nil
	}
	return textResult("Removed image %d from note %s", params.Index, saved.ID), nil
}

func (s *Server) handleListCategories(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.LoadAll(ctx)
	if err != nil {
		return errorResult("failed to list categories: %v", err), nil
	}
	counts := store.CountByCategory(notes)

	type category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Count int    `json:"count"`
	}
	out := make([]category, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, category{ID: c.ID, Name: c.Name, Color: c.Color, Count: counts[c.ID]})
	}
	return jsonResult(out)
}

func (s *Server) handleExportNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID     string `json:"id"`
		Format string `json:"format"`
	}
	params.Format = "json"
	if err := decodeArgs(req, &params); err != nil {
		return nil, err
	}

	note, err := s.resolve(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get note: %v", err), nil
	}

	switch params.Format {
	case "json":
		return jsonResult(export.FromModel(note))
	case "md", "markdown":
		data, err := export.Markdown(note)
		if err != nil {
			return errorResult("failed to render markdown: %v", err), nil
		}
		return textResult("%s", data), nil
	default:
		return errorResult("unknown format: %s", params.Format), nil
	}
}
