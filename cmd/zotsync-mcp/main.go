package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"zotsync/internal/adapters/journal"
	mcpadapter "zotsync/internal/adapters/mcp"
	"zotsync/internal/adapters/sqlite"
	"zotsync/internal/adapters/zotero"
	"zotsync/internal/config"
	"zotsync/internal/ports"
)

func main() {
	configDir := flag.String("config-dir", config.Dir(), "configuration directory")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("zotsync-mcp: %v", err)
	}

	journals := journal.NewStore(cfg.VaultPath, nil)
	store := zotero.NewClient(cfg.APIKey, cfg.UserID, cfg.UseGroup)

	var history ports.RunHistory
	if cfg.History {
		h, err := sqlite.Open(cfg.VaultPath)
		if err != nil {
			log.Printf("run history unavailable: %v", err)
		} else {
			history = h
			defer h.Close()
		}
	}

	mcpServer := server.NewMCPServer(
		"zotsync-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, journals, store, history)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("zotsync-mcp: %v", err)
	}
}
