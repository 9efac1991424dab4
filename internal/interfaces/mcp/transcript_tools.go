package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	appQuery "github.com/tubesage/backend/internal/application/query"
	"github.com/tubesage/backend/internal/domain/transcript"
)

// SearchTranscriptsInput 转写稿搜索工具输入
type SearchTranscriptsInput struct {
	Query string `json:"query" jsonschema:"Search query - describe what you're looking for in natural language (required)"`
	Mode  string `json:"mode,omitempty" jsonschema:"Retrieval mode: whole (match whole videos) or chunked (match transcript passages), defaults to chunked"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return, defaults to 5, max 20"`
}

// SearchTranscriptsOutput 转写稿搜索工具输出
type SearchTranscriptsOutput struct {
	Results    []*TranscriptSearchResult `json:"results" jsonschema:"List of relevant transcript passages or videos"`
	TotalCount int                       `json:"total_count" jsonschema:"Total number of results found"`
}

// TranscriptSearchResult 单条搜索结果
type TranscriptSearchResult struct {
	Citation string  `json:"citation" jsonschema:"Source video filename, with chunk number in chunked mode"`
	Content  string  `json:"content" jsonschema:"Matched transcript content"`
	Score    float32 `json:"score" jsonschema:"Similarity score (higher is more relevant)"`
}

// searchTranscriptsTool 转写稿搜索工具实现
func (s *MCPServer) searchTranscriptsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchTranscriptsInput,
) (*mcp.CallToolResult, SearchTranscriptsOutput, error) {
	output := SearchTranscriptsOutput{
		Results: []*TranscriptSearchResult{},
	}

	// 验证输入
	if input.Query == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	mode := appQuery.ModeChunked
	if input.Mode != "" {
		parsed, err := appQuery.ParseMode(input.Mode)
		if err != nil {
			return nil, output, err
		}
		mode = parsed
	}

	// 设置默认值（默认 5 个，最多 20 个，避免上下文过载）
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	result, err := s.retriever.Retrieve(ctx, input.Query, mode, limit)
	if err != nil {
		if errors.Is(err, transcript.ErrNoResults) {
			// 无结果不是工具错误，返回空列表
			return nil, output, nil
		}
		return nil, output, fmt.Errorf("search failed: %w", err)
	}

	output.Results = make([]*TranscriptSearchResult, 0, len(result.Blocks))
	for _, block := range result.Blocks {
		output.Results = append(output.Results, &TranscriptSearchResult{
			Citation: block.Citation,
			Content:  block.Content,
			Score:    block.Score,
		})
	}
	output.TotalCount = len(output.Results)

	// 返回 nil，SDK 会自动序列化 output
	return nil, output, nil
}

// ListVideosInput 视频列表工具输入（无参数）
type ListVideosInput struct{}

// ListVideosOutput 视频列表工具输出
type ListVideosOutput struct {
	Videos     []*VideoEntry `json:"videos" jsonschema:"List of videos in the corpus"`
	TotalCount int           `json:"total_count" jsonschema:"Total number of videos"`
}

// VideoEntry 视频列表项
type VideoEntry struct {
	VideoID  string `json:"video_id" jsonschema:"Stable video ID, use with get_video_metadata"`
	Filename string `json:"filename" jsonschema:"Transcript filename"`
}

// listVideosTool 视频列表工具实现
func (s *MCPServer) listVideosTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListVideosInput,
) (*mcp.CallToolResult, ListVideosOutput, error) {
	output := ListVideosOutput{
		Videos: []*VideoEntry{},
	}

	docs, err := s.catalogService.ListDocuments()
	if err != nil {
		return nil, output, fmt.Errorf("failed to list videos: %w", err)
	}

	output.Videos = make([]*VideoEntry, 0, len(docs))
	for _, doc := range docs {
		output.Videos = append(output.Videos, &VideoEntry{
			VideoID:  doc.MDID,
			Filename: doc.Filename,
		})
	}
	output.TotalCount = len(output.Videos)

	return nil, output, nil
}

// GetVideoMetadataInput 视频元数据工具输入
type GetVideoMetadataInput struct {
	VideoID string `json:"video_id" jsonschema:"Video ID as returned by list_videos (required)"`
}

// GetVideoMetadataOutput 视频元数据工具输出
type GetVideoMetadataOutput struct {
	Found    bool   `json:"found" jsonschema:"Whether the video exists"`
	Summary  string `json:"summary,omitempty" jsonschema:"Generated summary of the video"`
	Keywords string `json:"keywords,omitempty" jsonschema:"Comma-separated lowercase topic keywords"`
}

// getVideoMetadataTool 视频元数据工具实现
func (s *MCPServer) getVideoMetadataTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetVideoMetadataInput,
) (*mcp.CallToolResult, GetVideoMetadataOutput, error) {
	output := GetVideoMetadataOutput{}

	if input.VideoID == "" {
		return nil, output, fmt.Errorf("video_id is required")
	}

	meta, err := s.catalogService.GetMetadata(input.VideoID)
	if err != nil {
		if errors.Is(err, transcript.ErrNotFound) {
			// 不存在返回 found=false，不作为工具错误
			return nil, output, nil
		}
		return nil, output, fmt.Errorf("failed to get video metadata: %w", err)
	}

	output.Found = true
	output.Summary = meta.Summary
	output.Keywords = meta.Keywords

	return nil, output, nil
}
