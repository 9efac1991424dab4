package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	appQuery "github.com/tubesage/backend/internal/application/query"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server         *mcp.Server
	handler        http.Handler
	retriever      *appQuery.Retriever
	catalogService *appQuery.CatalogService
}

// NewServer 创建 MCP 服务器
func NewServer(
	retriever *appQuery.Retriever,
	catalogService *appQuery.CatalogService,
) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tubesage-backend",
			Version: "0.1.0",
		},
		nil, // 使用默认能力
	)

	// 创建服务器实例（用于闭包捕获依赖）
	mcpServer := &MCPServer{
		server:         server,
		retriever:      retriever,
		catalogService: catalogService,
	}

	// 注册工具：search_transcripts
	mcp.AddTool(server, &mcp.Tool{
		Name: "search_transcripts",
		Description: `Search the indexed video transcript corpus by semantic similarity.

Use this tool when you need to:
- Find which videos discuss a specific topic
- Retrieve transcript passages relevant to a question

Parameters:
- query (string, required): Natural language description of what you're looking for.
- mode (string, optional): "whole" to match whole videos, "chunked" to match transcript passages. Defaults to "chunked".
- limit (int, optional): Maximum number of results to return (1-20, default: 5)

Returns: List of results with citation (filename, plus chunk number in chunked mode), content, and similarity score.`,
	}, mcpServer.searchTranscriptsTool)

	// 注册工具：list_videos
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_videos",
		Description: "List all videos in the transcript corpus. No parameters required. Returns: list of videos with id and filename, plus total count.",
	}, mcpServer.listVideosTool)

	// 注册工具：get_video_metadata
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_metadata",
		Description: "Get the generated summary and keywords for a video. Parameters: video_id (string, required) - video ID as returned by list_videos. Returns: summary, keywords, and found flag.",
	}, mcpServer.getVideoMetadataTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	mcpServer.handler = handler
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Stop 停止服务器
// HTTP/SSE 模式下，生命周期由 HTTP 服务器统一管理
func (s *MCPServer) Stop() error {
	return nil
}
