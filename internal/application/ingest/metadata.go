package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/llm"
)

// MetadataGenerator 文档元数据生成器
// 调用 LLM 为整篇转写稿生成摘要和关键词
type MetadataGenerator struct {
	client *llm.Client
}

// NewMetadataGenerator 创建元数据生成器
func NewMetadataGenerator(client *llm.Client) *MetadataGenerator {
	return &MetadataGenerator{client: client}
}

// Generate 生成摘要和关键词，关键词已规范化
func (g *MetadataGenerator) Generate(ctx context.Context, filename, content string) (*transcript.VideoMetadata, error) {
	meta, err := g.client.GenerateMetadata(ctx, filename, content)
	if err != nil {
		return nil, err
	}

	meta.Keywords = strings.ToLower(NormalizeKeywords(meta.Keywords))
	return meta, nil
}

var (
	keywordSplitRe = regexp.MustCompile(`[\n,]`)
	bulletPrefixRe = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)
)

// NormalizeKeywords 将 LLM 自由文本输出规范化为逗号分隔标签串
// 按换行/逗号拆分，去掉列表前缀和空项
func NormalizeKeywords(raw string) string {
	parts := keywordSplitRe.Split(raw, -1)

	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		item = bulletPrefixRe.ReplaceAllString(item, "")
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}

	return strings.Join(cleaned, ", ")
}
