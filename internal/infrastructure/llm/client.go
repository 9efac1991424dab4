package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/log"
)

// Client Chat Completions 客户端（OpenAI 兼容）
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient 创建 LLM 客户端
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: log.NewModuleLogger("llm", "client"),
	}
}

// Model 模型名称
func (c *Client) Model() string { return c.model }

// buildChatURL 构建 Chat Completions API URL
func buildChatURL(baseURL string) string {
	if strings.Contains(baseURL, "/v1/chat/completions") {
		return baseURL
	}
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL + "/chat/completions"
	}
	if strings.HasSuffix(baseURL, "/v1/") {
		return baseURL + "chat/completions"
	}
	return fmt.Sprintf("%s/v1/chat/completions", baseURL)
}

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat 发送对话请求，返回模型回复文本
func (c *Client) Chat(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := buildChatURL(c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// GenerateMetadata 为整篇转写稿生成摘要和关键词
func (c *Client) GenerateMetadata(ctx context.Context, filename, content string) (*transcript.VideoMetadata, error) {
	systemPrompt := "You are an assistant that summarizes video transcripts. " +
		"Respond with a JSON object containing exactly two fields: " +
		"\"summary\" (a concise 2-4 sentence summary of the transcript) and " +
		"\"keywords\" (a single comma-separated string of 5-10 lowercase topic keywords)."

	userPrompt := fmt.Sprintf("Video file: %s\n\nTranscript:\n%s", filename, content)

	raw, err := c.Chat(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, true)
	if err != nil {
		return nil, err
	}

	var meta transcript.VideoMetadata
	if err := json.Unmarshal([]byte(extractJSON(raw)), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata response: %w", err)
	}
	if meta.Summary == "" {
		return nil, fmt.Errorf("metadata response missing summary")
	}

	return &meta, nil
}

// Answer 结构化问答结果
type Answer struct {
	Answer   string `json:"answer"`
	Citation string `json:"citation"`
}

// GenerateAnswer 基于检索上下文生成回答，附带引用
func (c *Client) GenerateAnswer(ctx context.Context, prompt string, history []Message) (*Answer, error) {
	systemPrompt := "You are an assistant that answers questions about video transcripts. " +
		"Use only the provided context. " +
		"Respond with a JSON object containing exactly two fields: " +
		"\"answer\" (your answer) and \"citation\" (the source reference, " +
		"e.g. the video filename and chunk that supports the answer)."

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	raw, err := c.Chat(ctx, messages, true)
	if err != nil {
		return nil, err
	}

	var answer Answer
	if err := json.Unmarshal([]byte(extractJSON(raw)), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse answer response: %w", err)
	}

	return &answer, nil
}

// extractJSON 从模型输出中提取 JSON 片段
// 容忍 markdown 代码块包裹
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// maskAPIKey 脱敏 API Key 用于日志
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// TestConnection 测试连接
func (c *Client) TestConnection(ctx context.Context) error {
	c.logger.Info("Testing LLM API connection",
		"base_url", c.baseURL,
		"model", c.model,
		"api_key", maskAPIKey(c.apiKey),
	)

	_, err := c.Chat(ctx, []Message{{Role: "user", Content: "ping"}}, false)
	if err != nil {
		return err
	}

	c.logger.Info("LLM API connection test successful")
	return nil
}
