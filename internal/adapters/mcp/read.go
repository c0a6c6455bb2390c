// Package mcp exposes read-only sync state over the Model Context
// Protocol so assistants can inspect what has been pushed to Zotero
// without being able to mutate anything.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

// RegisterReadTools adds all read-only sync tools to the MCP server.
// history may be nil when run recording is disabled.
func RegisterReadTools(s *server.MCPServer, journals ports.JournalStore, store ports.RemoteStore, history ports.RunHistory) {
	s.AddTool(statusTool(), statusHandler(journals))
	s.AddTool(booksTool(), booksHandler(journals))
	s.AddTool(lookupTool(), lookupHandler(store))
	if history != nil {
		s.AddTool(runsTool(), runsHandler(history))
	}
}

// --- status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Summarize the sync journal: how many books are linked, completed, and how many highlights were sent."),
	)
}

func statusHandler(journals ports.JournalStore) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		j := journals.Load()
		sent := 0
		for title := range j.Sent {
			sent += len(j.SentFingerprints(title))
		}
		text := fmt.Sprintf("%d books linked, %d completed, %d highlights sent",
			len(j.Items), len(j.Done), sent)
		return mcp.NewToolResultText(text), nil
	}
}

// --- books ---

func booksTool() mcp.Tool {
	return mcp.NewTool("books",
		mcp.WithDescription("List books known to the sync journal with their Zotero item keys and completion state."),
	)
}

func booksHandler(journals ports.JournalStore) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		j := journals.Load()
		if len(j.Items) == 0 {
			return mcp.NewToolResultText("No books in the journal."), nil
		}
		var sb strings.Builder
		for _, title := range sortedKeys(j.Items) {
			state := "pending"
			if j.IsDone(title) {
				state = "done"
			}
			fmt.Fprintf(&sb, "%s  %s  %s\n", j.Items[title], state, title)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- lookup ---

func lookupTool() mcp.Tool {
	return mcp.NewTool("lookup",
		mcp.WithDescription("Search the Zotero library for book items matching a title."),
		mcp.WithString("title",
			mcp.Description("Title to search for"),
			mcp.Required(),
		),
	)
}

func lookupHandler(store ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title := req.GetString("title", "")
		if title == "" {
			return toolError(fmt.Errorf("title is required"))
		}

		records, err := store.SearchParents(ctx, domain.NormalizeTitle(title))
		if err != nil {
			return toolError(err)
		}
		if len(records) == 0 {
			return mcp.NewToolResultText("No matching items."), nil
		}

		var sb strings.Builder
		for _, r := range records {
			fmt.Fprintf(&sb, "%s  %s  (%s)\n", r.Key, r.Title, r.AuthorLastNames)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- runs ---

func runsTool() mcp.Tool {
	return mcp.NewTool("runs",
		mcp.WithDescription("List recent sync runs with their totals."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to return (default 10)"),
		),
	)
}

func runsHandler(history ports.RunHistory) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		runs, err := history.RecentRuns(limit)
		if err != nil {
			return toolError(err)
		}
		if len(runs) == 0 {
			return mcp.NewToolResultText("No recorded runs."), nil
		}

		var sb strings.Builder
		for _, r := range runs {
			fmt.Fprintf(&sb, "#%d %s %s: %d processed, %d notes, %d duplicates, %d failed\n",
				r.ID, r.Mode, r.StartedAt.Format("2006-01-02 15:04"),
				r.Processed, r.NotesCreated, r.Duplicates, r.Failed)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
