// ABOUTME: MCP prompts for common note-taking workflows.
// ABOUTME: Each prompt ends by pointing the agent at the note tools that save its result.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type promptDef struct {
	name, description string
	args              []*mcp.PromptArgument
	handler           mcp.PromptHandler
}

func promptArg(name, description string, required bool) *mcp.PromptArgument {
	return &mcp.PromptArgument{Name: name, Description: description, Required: required}
}

func (s *Server) registerPrompts() {
	defs := []promptDef{
		{
			name:        "create-meeting-notes",
			description: "Create a work note for a meeting with agenda, decisions and action items",
			args:        []*mcp.PromptArgument{promptArg("meeting_title", "Title of the meeting", true)},
			handler:     s.getMeetingNotesPrompt,
		},
		{
			name:        "create-daily-journal",
			description: "Create a personal journal note for a day",
			args:        []*mcp.PromptArgument{promptArg("date", "Date for the journal entry (YYYY-MM-DD)", false)},
			handler:     s.getDailyJournalPrompt,
		},
		{
			name:        "summarize-note",
			description: "Summarize an existing note in place",
			args:        []*mcp.PromptArgument{promptArg("note_id", "ID of the note to summarize", true)},
			handler:     s.getSummarizeNotePrompt,
		},
		{
			name:        "organize-notes",
			description: "Suggest categories, priorities, tags and favorites for existing notes",
			handler:     s.getOrganizeNotesPrompt,
		},
		{
			name:        "create-project-note",
			description: "Create a project planning note with goals and milestones",
			args:        []*mcp.PromptArgument{promptArg("project_name", "Name of the project", true)},
			handler:     s.getProjectNotePrompt,
		},
	}
	for _, d := range defs {
		s.server.AddPrompt(&mcp.Prompt{Name: d.name, Description: d.description, Arguments: d.args}, d.handler)
	}
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (s *Server) getMeetingNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	meetingTitle, ok := req.Params.Arguments["meeting_title"]
	if !ok || meetingTitle == "" {
		meetingTitle = "Meeting"
	}

	return userPrompt(fmt.Sprintf(`Write up notes for the meeting: %s

Sections:

## Attendees
## Agenda
## Discussion
## Decisions
## Action Items
- [ ] item - owner - due date

Save it with the add_note tool using category "work", a priority that matches the
urgency of the action items, and tags such as "meeting".`, meetingTitle)), nil
}

func (s *Server) getDailyJournalPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	date, ok := req.Params.Arguments["date"]
	if !ok || date == "" {
		date = "today"
	}

	return userPrompt(fmt.Sprintf(`Write a journal entry for %s.

## Highlights
## Challenges and lessons
## Progress on goals
## Top priorities for tomorrow

Save it with the add_note tool using category "personal" and the tag "journal".`, date)), nil
}

func (s *Server) getSummarizeNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	noteID, ok := req.Params.Arguments["note_id"]
	if !ok || noteID == "" {
		return nil, fmt.Errorf("note_id argument is required")
	}

	return userPrompt(fmt.Sprintf(`Summarize the note with ID %s.

1. Read it with the get_note tool.
2. Write a short summary: main topic, key points, open action items.
3. Prepend the summary under a "Summary" heading using the update_note tool,
   keeping the rest of the content unchanged.`, noteID)), nil
}

func (s *Server) getOrganizeNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt(`Help me organize my notes.

1. Call list_categories and list_notes (with a high limit) to see what exists.
2. Propose a category for each uncategorized note.
3. Suggest priorities for notes that contain tasks.
4. Suggest tags that group related notes, reusing existing tags from list_tags.
5. Point out notes worth marking as favorites, and stale ones that belong in "archive".

Refer to notes by ID and wait for my confirmation before changing anything.`), nil
}

func (s *Server) getProjectNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectName, ok := req.Params.Arguments["project_name"]
	if !ok || projectName == "" {
		projectName = "Project"
	}

	return userPrompt(fmt.Sprintf(`Draft a planning note for the project: %s

## Overview
## Goals
- [ ] goal
## Milestones
1. milestone - date
## Tasks
- [ ] task
## Open questions

Save it with the add_note tool using category "projects", priority "medium" unless I
say otherwise, and the tag "planning".`, projectName)), nil
}
