// ABOUTME: Tests for MCP tool, resource and prompt handlers.
// ABOUTME: Handlers are called directly against an in-memory note store.

package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harper/inote/internal/models"
	"github.com/harper/inote/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolHandler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *store.Store, *store.MemoryStorage) {
	t.Helper()
	mem := store.NewMemoryStorage()
	st := store.New(mem)
	return NewServer(st, nil), st, mem
}

func call(t *testing.T, h toolHandler, args string) *mcp.CallToolResult {
	t.Helper()
	res, err := h(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func seed(t *testing.T, st *store.Store, title string, mutate func(n *models.Note)) models.Note {
	t.Helper()
	n := models.NewNote(title, "")
	if mutate != nil {
		mutate(n)
	}
	saved, err := st.Save(context.Background(), *n)
	require.NoError(t, err)
	return saved
}

func TestAddNote(t *testing.T) {
	s, st, _ := newTestServer(t)

	res := call(t, s.handleAddNote, `{"title":"From agent","content":"hi","category":"ideas","tags":["Todo"],"background_color":"mint","font_size":99,"favorite":true}`)
	assert.False(t, res.IsError)
	assert.True(t, strings.HasPrefix(text(t, res), "Created note "))

	notes, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	n := notes[0]
	assert.Equal(t, "ideas", n.Category)
	assert.Equal(t, []string{"todo"}, n.Tags)
	assert.Equal(t, "#E0F5E9", n.BackgroundColor)
	assert.Equal(t, models.FontSizeMax, n.FontSize)
	assert.True(t, n.IsFavorite)
}

func TestAddNoteRequiresTitle(t *testing.T) {
	s, st, _ := newTestServer(t)

	res := call(t, s.handleAddNote, `{"title":"  ","content":"body"}`)
	assert.True(t, res.IsError)

	notes, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotesFilters(t *testing.T) {
	s, st, _ := newTestServer(t)
	seed(t, st, "Buy milk", func(n *models.Note) { n.Category = "personal" })
	seed(t, st, "Sprint plan", func(n *models.Note) { n.Category = "work" })

	res := call(t, s.handleListNotes, `{"category":"work"}`)
	require.False(t, res.IsError)

	var out []store.NoteData
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Sprint plan", out[0].Title)

	res = call(t, s.handleListNotes, ``)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Len(t, out, 2)
}

func TestListNotesDegradesOnCorruptStorage(t *testing.T) {
	s, _, mem := newTestServer(t)
	mem.Put(store.DefaultKey, "not json")

	res := call(t, s.handleListNotes, `{}`)
	require.False(t, res.IsError)
	assert.JSONEq(t, `[]`, text(t, res))

	res = call(t, s.handleAddNote, `{"title":"blocked"}`)
	assert.True(t, res.IsError)
}

func TestGetNoteByPrefix(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Lookup", nil)

	res := call(t, s.handleGetNote, `{"id":"`+n.ID[:8]+`"}`)
	require.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"title": "Lookup"`)

	res = call(t, s.handleGetNote, `{"id":"nope"}`)
	assert.True(t, res.IsError)
}

func TestUpdateNoteLeavesOmittedFields(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Before", func(n *models.Note) {
		n.Content = "keep me"
		n.Category = "work"
	})

	res := call(t, s.handleUpdateNote, `{"id":"`+n.ID+`","title":"After","category":""}`)
	require.False(t, res.IsError, text(t, res))

	got, err := st.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "keep me", got.Content)
	assert.Empty(t, got.Category)
	assert.True(t, got.CreatedAt.Equal(n.CreatedAt))
}

func TestDeleteNote(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Doomed", nil)

	res := call(t, s.handleDeleteNote, `{"id":"`+n.ID+`"}`)
	require.False(t, res.IsError)

	_, err := st.Get(context.Background(), n.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestSetFavorite(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Star", nil)

	res := call(t, s.handleSetFavorite, `{"id":"`+n.ID+`","favorite":true}`)
	require.False(t, res.IsError)

	got, err := st.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.LastEdited.Equal(n.LastEdited))
}

func TestTagTools(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Tagged", nil)

	res := call(t, s.handleAddTag, `{"id":"`+n.ID+`","tag":"Urgent"}`)
	require.False(t, res.IsError)
	res = call(t, s.handleAddTag, `{"id":"`+n.ID+`","tag":"urgent"}`)
	assert.True(t, res.IsError, "duplicate tag")

	res = call(t, s.handleListTags, `{}`)
	assert.Contains(t, text(t, res), `"urgent"`)

	res = call(t, s.handleRemoveTag, `{"id":"`+n.ID+`","tag":"URGENT"}`)
	require.False(t, res.IsError)
	got, err := st.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestImageTools(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Pictures", nil)

	call(t, s.handleAddImage, `{"id":"`+n.ID+`","uri":"file:///one.png"}`)
	res := call(t, s.handleAddImage, `{"id":"`+n.ID+`","uri":"file:///two.png"}`)
	assert.Contains(t, text(t, res), "Added image 1")

	res = call(t, s.handleRemoveImage, `{"id":"`+n.ID+`","index":0}`)
	require.False(t, res.IsError)
	res = call(t, s.handleRemoveImage, `{"id":"`+n.ID+`","index":5}`)
	assert.True(t, res.IsError)

	got, err := st.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///two.png"}, got.Images)
}

func TestListCategories(t *testing.T) {
	s, st, _ := newTestServer(t)
	seed(t, st, "a", func(n *models.Note) { n.Category = "work" })
	seed(t, st, "b", func(n *models.Note) { n.Category = "work" })

	res := call(t, s.handleListCategories, `{}`)
	var out []struct {
		ID    string `json:"id"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	require.Len(t, out, len(models.Categories))
	assert.Equal(t, "all", out[0].ID)
	assert.Equal(t, 2, out[0].Count)
	assert.Equal(t, 2, out[1].Count)
}

func TestExportNote(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Exported", func(n *models.Note) { n.Content = "body text" })

	res := call(t, s.handleExportNote, `{"id":"`+n.ID+`","format":"md"}`)
	require.False(t, res.IsError)
	md := text(t, res)
	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.True(t, strings.HasSuffix(md, "body text"))

	res = call(t, s.handleExportNote, `{"id":"`+n.ID+`"}`)
	assert.Contains(t, text(t, res), `"title": "Exported"`)

	res = call(t, s.handleExportNote, `{"id":"`+n.ID+`","format":"pdf"}`)
	assert.True(t, res.IsError)
}

func TestReadResource(t *testing.T) {
	s, st, _ := newTestServer(t)
	n := seed(t, st, "Readable", func(n *models.Note) {
		n.Content = "hello"
		n.Category = "work"
		n.Images = []string{"file:///x.png"}
	})

	res, err := s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: noteURIPrefix + n.ID},
	})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	body := res.Contents[0].Text
	assert.Contains(t, body, "# Readable")
	assert.Contains(t, body, "Work Ideas")
	assert.Contains(t, body, "![image](file:///x.png)")

	_, err = s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "other://note/x"},
	})
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	s, _, _ := newTestServer(t)

	res, err := s.getMeetingNotesPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"meeting_title": "Standup"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "Standup")

	_, err = s.getSummarizeNotePrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{}},
	})
	assert.Error(t, err)
}
