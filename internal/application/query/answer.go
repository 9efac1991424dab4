package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tubesage/backend/internal/infrastructure/llm"
	"github.com/tubesage/backend/internal/infrastructure/log"
)

// AnswerService 问答服务
// 组装检索上下文和调用方携带的会话历史，让 LLM 生成带引用的回答。
// 服务本身无状态：历史由调用方传入并自行维护
type AnswerService struct {
	retriever *Retriever
	llmClient *llm.Client
	logger    *slog.Logger
}

// NewAnswerService 创建问答服务
func NewAnswerService(retriever *Retriever, llmClient *llm.Client) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		llmClient: llmClient,
		logger:    log.NewModuleLogger("query", "answer"),
	}
}

// Query 检索并生成回答
func (s *AnswerService) Query(ctx context.Context, text string, mode Mode, k int, history []llm.Message) (*llm.Answer, error) {
	result, err := s.retriever.Retrieve(ctx, text, mode, k)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Retrieved context for query",
		"mode", mode,
		"blocks", len(result.Blocks),
	)

	prompt := fmt.Sprintf("Context:\n%s\nQuestion: %s", result.Context(), text)

	answer, err := s.llmClient.GenerateAnswer(ctx, prompt, history)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	// 模型偶尔漏掉引用字段，用最高分结果兜底
	if answer.Citation == "" && len(result.Blocks) > 0 {
		answer.Citation = result.Blocks[0].Citation
	}

	return answer, nil
}
